package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/gdmirror/gdmirror/internal/types"
	"github.com/gdmirror/gdmirror/internal/utils"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// ServiceAccountKey represents the JSON structure of a service account key file
type ServiceAccountKey struct {
	Type                    string `json:"type"`
	ProjectID               string `json:"project_id"`
	PrivateKeyID            string `json:"private_key_id"`
	PrivateKey              string `json:"private_key"`
	ClientEmail             string `json:"client_email"`
	ClientID                string `json:"client_id"`
	AuthURI                 string `json:"auth_uri"`
	TokenURI                string `json:"token_uri"`
	AuthProviderX509CertURL string `json:"auth_provider_x509_cert_url"`
	ClientX509CertURL       string `json:"client_x509_cert_url"`
}

// ResolveKey loads service account key material from a credentials argument.
// The argument is either a path to a .json key file or a base64-encoded key blob.
func ResolveKey(credentialsArg string) ([]byte, error) {
	if credentialsArg == "" {
		return nil, authError("credentials required (base64 blob or path to key file)")
	}

	if strings.HasSuffix(credentialsArg, ".json") {
		if _, err := os.Stat(credentialsArg); err == nil {
			data, err := os.ReadFile(credentialsArg)
			if err != nil {
				return nil, authError(fmt.Sprintf("failed to read key file: %s", err))
			}
			return data, nil
		}
	}

	data, err := base64.StdEncoding.DecodeString(credentialsArg)
	if err != nil {
		return nil, authError(fmt.Sprintf("credentials are neither a readable key file nor valid base64: %s", err))
	}
	return data, nil
}

// ParseKey validates raw key material and extracts the service account identity.
func ParseKey(keyData []byte) (*ServiceAccountKey, error) {
	var saKey ServiceAccountKey
	if err := json.Unmarshal(keyData, &saKey); err != nil {
		return nil, authError(fmt.Sprintf("failed to parse service account key: %s", err))
	}
	if saKey.Type != "service_account" {
		return nil, authError(fmt.Sprintf("invalid service account key type: %q", saKey.Type))
	}
	if saKey.ClientEmail == "" {
		return nil, authError("missing client_email in service account key")
	}
	if saKey.PrivateKey == "" {
		return nil, authError("missing private_key in service account key")
	}
	return &saKey, nil
}

// BuildDriveService creates a Drive API service and resolved identity from key material.
func BuildDriveService(ctx context.Context, keyData []byte, scopes []string) (*drive.Service, *types.Credentials, error) {
	saKey, err := ParseKey(keyData)
	if err != nil {
		return nil, nil, err
	}
	if len(scopes) == 0 {
		scopes = utils.ScopesMirror
	}

	config, err := google.CredentialsFromJSON(ctx, keyData, scopes...)
	if err != nil {
		return nil, nil, authError(fmt.Sprintf("failed to build credentials: %s", err))
	}

	service, err := drive.NewService(ctx, option.WithTokenSource(config.TokenSource))
	if err != nil {
		return nil, nil, authError(fmt.Sprintf("failed to create drive service: %s", err))
	}

	return service, &types.Credentials{
		ServiceAccountEmail: saKey.ClientEmail,
		Scopes:              scopes,
	}, nil
}

func authError(message string) error {
	return utils.NewAppError(utils.NewCLIError(utils.ErrCodeAuthInvalid, message).Build())
}
