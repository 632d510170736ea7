package cli

import (
	"github.com/gdmirror/gdmirror/internal/auth"
	"github.com/gdmirror/gdmirror/internal/config"
	"github.com/gdmirror/gdmirror/internal/utils"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage service account credential profiles",
}

var authSaveCmd = &cobra.Command{
	Use:   "save <credentials>",
	Short: "Store a service account key under the current profile",
	Long: `Save validates and stores a service account key for later runs. The
argument is either a path to a .json key file or a base64-encoded key blob.
Keys are kept in the system keyring when one is available.`,
	Args: cobra.ExactArgs(1),
	RunE: runAuthSave,
}

var authShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the identity stored under the current profile",
	RunE:  runAuthShow,
}

var authListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored credential profiles",
	RunE:  runAuthList,
}

var authRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove the current profile's stored credentials",
	RunE:  runAuthRemove,
}

func init() {
	authCmd.AddCommand(authSaveCmd)
	authCmd.AddCommand(authShowCmd)
	authCmd.AddCommand(authListCmd)
	authCmd.AddCommand(authRemoveCmd)
	rootCmd.AddCommand(authCmd)
}

func authManager() (*auth.Manager, error) {
	configDir, err := config.GetConfigDir()
	if err != nil {
		return nil, err
	}
	return auth.NewManager(configDir), nil
}

func runAuthSave(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)

	keyData, err := auth.ResolveKey(args[0])
	if err != nil {
		return writeCommandError(out, "auth.save", err)
	}
	key, err := auth.ParseKey(keyData)
	if err != nil {
		return writeCommandError(out, "auth.save", err)
	}

	mgr, err := authManager()
	if err != nil {
		return writeCommandError(out, "auth.save", err)
	}
	if warning := mgr.StorageWarning(); warning != "" {
		out.AddWarning("INSECURE_STORAGE", warning, "warning")
	}
	if err := mgr.SaveProfile(flags.Profile, keyData); err != nil {
		return writeCommandError(out, "auth.save", err)
	}

	return out.WriteSuccess("auth.save", map[string]interface{}{
		"profile":             flags.Profile,
		"serviceAccountEmail": key.ClientEmail,
		"projectId":           key.ProjectID,
		"storage":             mgr.StorageName(),
	})
}

func runAuthShow(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)

	mgr, err := authManager()
	if err != nil {
		return writeCommandError(out, "auth.show", err)
	}
	keyData, err := mgr.LoadProfile(flags.Profile)
	if err != nil {
		return writeCommandError(out, "auth.show",
			utils.NewAppError(utils.NewCLIError(utils.ErrCodeNotFound, err.Error()).Build()))
	}
	key, err := auth.ParseKey(keyData)
	if err != nil {
		return writeCommandError(out, "auth.show", err)
	}

	// The private key never leaves storage
	return out.WriteSuccess("auth.show", map[string]interface{}{
		"profile":             flags.Profile,
		"serviceAccountEmail": key.ClientEmail,
		"projectId":           key.ProjectID,
		"clientId":            key.ClientID,
		"storage":             mgr.StorageName(),
	})
}

func runAuthList(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)

	mgr, err := authManager()
	if err != nil {
		return writeCommandError(out, "auth.list", err)
	}
	profiles, err := mgr.ListProfiles()
	if err != nil {
		return writeCommandError(out, "auth.list", err)
	}

	return out.WriteSuccess("auth.list", map[string]interface{}{
		"profiles": profiles,
		"storage":  mgr.StorageName(),
	})
}

func runAuthRemove(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)

	mgr, err := authManager()
	if err != nil {
		return writeCommandError(out, "auth.remove", err)
	}
	if err := mgr.DeleteProfile(flags.Profile); err != nil {
		return writeCommandError(out, "auth.remove",
			utils.NewAppError(utils.NewCLIError(utils.ErrCodeNotFound, err.Error()).Build()))
	}

	return out.WriteSuccess("auth.remove", map[string]interface{}{
		"profile": flags.Profile,
	})
}
