package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/gdmirror/gdmirror/internal/api"
	"github.com/gdmirror/gdmirror/internal/auth"
	"github.com/gdmirror/gdmirror/internal/config"
	"github.com/gdmirror/gdmirror/internal/drive"
	"github.com/gdmirror/gdmirror/internal/logging"
	"github.com/gdmirror/gdmirror/internal/mirror"
	"github.com/gdmirror/gdmirror/internal/report"
	"github.com/gdmirror/gdmirror/internal/types"
	"github.com/gdmirror/gdmirror/internal/utils"
	"github.com/spf13/cobra"
)

var mirrorCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Mirror a local directory into a Drive folder",
	Long: `Mirror uploads every file under the input directory into the target Drive
folder, recreating the directory structure. File content is always
transferred; a remote file already at the destination path is rewritten in
place rather than duplicated.

With --purge-stale, remote files the service account owns that have no local
counterpart are deleted, duplicate objects are removed, and folders left
empty are cleaned up bottom-up. Objects owned by other accounts are never
touched, and neither is the output folder itself.`,
	RunE: runMirror,
}

var (
	mirrorInput       string
	mirrorTarget      string
	mirrorOutputName  string
	mirrorFilter      string
	mirrorCredentials string
	mirrorPurgeStale  bool
	mirrorConcurrency int
	mirrorNoHistory   bool
)

func init() {
	mirrorCmd.Flags().StringVarP(&mirrorInput, "input", "i", "", "Local directory to mirror (required)")
	mirrorCmd.Flags().StringVarP(&mirrorTarget, "target", "t", "", "Target Drive folder ID (required)")
	mirrorCmd.Flags().StringVarP(&mirrorOutputName, "output-name", "o", "", "Output folder path under the target, slash-separated (e.g. reports/2026)")
	mirrorCmd.Flags().StringVarP(&mirrorFilter, "filter", "f", "", "Glob matched against file names (e.g. *.pdf)")
	mirrorCmd.Flags().StringVarP(&mirrorCredentials, "credentials", "c", "", "Service account key (path to .json file or base64 blob)")
	mirrorCmd.Flags().BoolVar(&mirrorPurgeStale, "purge-stale", false, "Delete owned remote objects with no local counterpart")
	mirrorCmd.Flags().IntVar(&mirrorConcurrency, "concurrency", 0, "Parallel uploads (0 uses the configured default)")
	mirrorCmd.Flags().BoolVar(&mirrorNoHistory, "no-history", false, "Skip recording this run in local history")
	_ = mirrorCmd.MarkFlagRequired("input")
	_ = mirrorCmd.MarkFlagRequired("target")

	rootCmd.AddCommand(mirrorCmd)
}

func runMirror(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)
	log := GetLogger()

	cfg, err := config.Load()
	if err != nil {
		return writeCommandError(out, "mirror", err)
	}
	concurrency := mirrorConcurrency
	if concurrency <= 0 {
		concurrency = cfg.Concurrency
	}

	inputDir, err := filepath.Abs(mirrorInput)
	if err != nil {
		return writeCommandError(out, "mirror",
			utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument, err.Error()).Build()))
	}

	client, creds, err := buildClient(ctx, flags, cfg, log)
	if err != nil {
		return writeCommandError(out, "mirror", err)
	}
	store := drive.NewStore(client)

	entries, err := mirror.Scan(ctx, inputDir, mirrorFilter)
	if err != nil {
		return writeCommandError(out, "mirror", err)
	}
	log.Info("Local scan complete",
		logging.F("files", len(entries)),
		logging.F("input", inputDir),
	)

	reqCtx := api.NewRequestContext(flags.Profile, types.RequestTypeUpload)
	rootID, rootFolders, err := mirror.ResolveOutputRoot(ctx, store, reqCtx, mirrorTarget, mirrorOutputName, flags.DryRun)
	if err != nil {
		return writeCommandError(out, "mirror", err)
	}

	var idx *mirror.RemoteIndex
	if rootID == "" {
		// Dry run against an output folder that does not exist yet
		idx = mirror.NewRemoteIndex("")
	} else {
		idx, err = mirror.BuildIndex(ctx, store, reqCtx, rootID, log)
		if err != nil {
			return writeCommandError(out, "mirror", err)
		}
	}

	plan := mirror.BuildPlan(entries, idx, mirror.PlanOptions{
		PurgeStale: mirrorPurgeStale,
		OwnerEmail: creds.ServiceAccountEmail,
	})
	log.Info("Plan built",
		logging.F("uploads", len(plan.Uploads)),
		logging.F("deletions", len(plan.Deletions)),
	)

	resolver := mirror.NewResolver(store, reqCtx, idx, log)
	executor := mirror.NewExecutor(store, resolver, reqCtx, log)
	rep, execErr := executor.Apply(ctx, plan, mirror.ExecOptions{
		Concurrency: concurrency,
		DryRun:      flags.DryRun,
	})
	if !flags.DryRun {
		rep.FoldersCreated += rootFolders
	}

	if !mirrorNoHistory && cfg.HistoryEnabled {
		if err := recordRun(ctx, rep, report.RunMeta{
			InputDir:   inputDir,
			TargetID:   mirrorTarget,
			OutputName: mirrorOutputName,
			Profile:    flags.Profile,
		}); err != nil {
			out.AddWarning("HISTORY_WRITE_FAILED", err.Error(), "warning")
			log.Warn("Failed to record run history", logging.F("error", err.Error()))
		}
	}

	if execErr != nil {
		var cliErr types.CLIError
		if appErr, ok := execErr.(*utils.AppError); ok {
			cliErr = appErr.CLIError
		} else {
			cliErr = utils.NewCLIError(utils.ErrCodeUnknown, execErr.Error()).Build()
		}
		cliErr.Context = withReportContext(cliErr.Context, rep)
		_ = out.WriteError("mirror", cliErr)
		return utils.NewAppError(cliErr)
	}

	return out.WriteSuccess("mirror", &reportView{Report: rep})
}

// buildClient resolves key material and constructs an authenticated API client.
// An explicit --credentials argument wins over the stored profile.
func buildClient(ctx context.Context, flags types.GlobalFlags, cfg *config.Config, log logging.Logger) (*api.Client, *types.Credentials, error) {
	var keyData []byte
	var err error

	if mirrorCredentials != "" {
		keyData, err = auth.ResolveKey(mirrorCredentials)
	} else {
		configDir, dirErr := config.GetConfigDir()
		if dirErr != nil {
			return nil, nil, dirErr
		}
		mgr := auth.NewManager(configDir)
		keyData, err = mgr.LoadProfile(flags.Profile)
		if err != nil {
			err = utils.NewAppError(utils.NewCLIError(utils.ErrCodeAuthInvalid,
				fmt.Sprintf("no credentials given and no stored profile %q", flags.Profile)).Build())
		}
	}
	if err != nil {
		return nil, nil, err
	}

	service, creds, err := auth.BuildDriveService(ctx, keyData, utils.ScopesMirror)
	if err != nil {
		return nil, nil, err
	}

	client := api.NewClient(service, cfg.MaxRetries, cfg.RetryBaseDelay, log)
	return client, creds, nil
}

func recordRun(ctx context.Context, rep *mirror.Report, meta report.RunMeta) error {
	configDir, err := config.GetConfigDir()
	if err != nil {
		return err
	}
	hist, err := report.Open(report.DefaultPath(configDir))
	if err != nil {
		return err
	}
	defer hist.Close()
	return hist.Record(ctx, rep, meta)
}

func withReportContext(base map[string]interface{}, rep *mirror.Report) map[string]interface{} {
	if base == nil {
		base = make(map[string]interface{})
	}
	base["runId"] = rep.RunID
	base["failed"] = rep.Failed
	return base
}

// reportView renders a run report as a table
type reportView struct {
	*mirror.Report
}

func (v *reportView) AsTableRenderer() types.TableRenderer { return v }

func (v *reportView) Headers() []string {
	return []string{"Action", "Path", "ID", "Status"}
}

func (v *reportView) Rows() [][]string {
	rows := make([][]string, 0, len(v.Items))
	for _, item := range v.Items {
		status := "ok"
		if !item.OK {
			status = "failed: " + item.Error
		} else if v.DryRun {
			status = "planned"
		}
		rows = append(rows, []string{
			item.Action,
			truncate(item.RelPath, 60),
			truncate(item.ID, 15),
			status,
		})
	}
	return rows
}

func (v *reportView) EmptyMessage() string {
	return "Nothing to do (uploaded " + strconv.Itoa(v.Uploaded) + ", deleted " + strconv.Itoa(v.Deleted) + ")"
}
