package utils

// OAuth scopes
const (
	ScopeFull             = "https://www.googleapis.com/auth/drive"
	ScopeFile             = "https://www.googleapis.com/auth/drive.file"
	ScopeMetadataReadonly = "https://www.googleapis.com/auth/drive.metadata.readonly"
)

// ScopesMirror is the scope set requested for mirror runs.
var ScopesMirror = []string{
	ScopeMetadataReadonly,
	ScopeFile,
	ScopeFull,
}

// Retry configuration
const (
	DefaultMaxRetries   = 5
	DefaultRetryDelayMs = 1000
	MaxRetryDelayMs     = 32000
)

// MimeTypeFolder is the Drive MIME type marking folders.
const MimeTypeFolder = "application/vnd.google-apps.folder"

// MimeTypeDefault is used when content sniffing cannot identify a file.
const MimeTypeDefault = "application/octet-stream"

// Upload thresholds (binary units)
const (
	UploadChunkSize = 8 * 1024 * 1024 // 8 MiB
)

// Schema version of the CLI output envelope
const SchemaVersion = "1.0"
