package types

// OutputFormat selects how command results are rendered.
type OutputFormat string

const (
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatTable OutputFormat = "table"
)

// GlobalFlags holds flags shared by every command.
type GlobalFlags struct {
	Profile      string
	OutputFormat OutputFormat
	Quiet        bool
	Verbose      bool
	Debug        bool
	LogFile      string
	DryRun       bool
	JSON         bool
}

// RequestType categorizes API requests for logging and request shaping.
type RequestType string

const (
	RequestTypeListOrSearch RequestType = "list_or_search"
	RequestTypeMutation     RequestType = "mutation"
	RequestTypeUpload       RequestType = "upload"
)

// RequestContext carries per-request metadata through the API layer.
type RequestContext struct {
	Profile           string
	InvolvedFileIDs   []string
	InvolvedParentIDs []string
	RequestType       RequestType
	TraceID           string
}

// CLIError is the stable error envelope emitted to callers.
type CLIError struct {
	Code        string                 `json:"code"`
	Message     string                 `json:"message"`
	HTTPStatus  int                    `json:"httpStatus,omitempty"`
	DriveReason string                 `json:"driveReason,omitempty"`
	Retryable   bool                   `json:"retryable,omitempty"`
	Context     map[string]interface{} `json:"context,omitempty"`
}

// CLIWarning is a non-fatal notice attached to command output.
type CLIWarning struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// CLIOutput is the top-level JSON envelope for every command.
type CLIOutput struct {
	SchemaVersion string        `json:"schemaVersion"`
	TraceID       string        `json:"traceId"`
	Command       string        `json:"command"`
	Data          interface{}   `json:"data"`
	Warnings      []CLIWarning  `json:"warnings"`
	Errors        []CLIError    `json:"errors"`
}

// Credentials holds a resolved service-account identity.
type Credentials struct {
	ServiceAccountEmail string   `json:"serviceAccountEmail"`
	Scopes              []string `json:"scopes"`
}
