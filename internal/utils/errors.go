package utils

import (
	"fmt"

	"github.com/gdmirror/gdmirror/internal/types"
)

// Exit codes
const (
	ExitSuccess = 0
	// Auth errors (10-19)
	ExitAuthInvalid       = 10
	ExitScopeInsufficient = 11
	// Local filesystem errors (20-29)
	ExitScanError = 20
	// Remote errors (30-39)
	ExitRemoteAccess    = 30
	ExitPermissionDenied = 31
	ExitQuotaExceeded   = 32
	ExitNetworkError    = 33
	ExitRateLimited     = 34
	// Validation errors (40-49)
	ExitInvalidArgument = 40
	// Run-level outcomes
	ExitPartialFailure = 60
	// Unknown
	ExitUnknown = 99
)

// Error codes (tool-owned, stable)
const (
	ErrCodeAuthInvalid       = "AUTH_INVALID"
	ErrCodeScopeInsufficient = "SCOPE_INSUFFICIENT"
	ErrCodeScanError         = "SCAN_ERROR"
	ErrCodeRemoteAccess      = "REMOTE_ACCESS"
	ErrCodePermissionDenied  = "PERMISSION_DENIED"
	ErrCodeQuotaExceeded     = "QUOTA_EXCEEDED"
	ErrCodeNetworkError      = "NETWORK_ERROR"
	ErrCodeRateLimited       = "RATE_LIMITED"
	ErrCodeInvalidArgument   = "INVALID_ARGUMENT"
	ErrCodeUploadFailed      = "UPLOAD_FAILED"
	ErrCodeDeleteFailed      = "DELETE_FAILED"
	ErrCodePartialFailure    = "PARTIAL_FAILURE"
	ErrCodeCancelled         = "CANCELLED"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeUnknown           = "UNKNOWN"
)

// CLIErrorBuilder helps construct CLIError instances
type CLIErrorBuilder struct {
	err types.CLIError
}

// NewCLIError creates a new error builder
func NewCLIError(code, message string) *CLIErrorBuilder {
	return &CLIErrorBuilder{
		err: types.CLIError{
			Code:    code,
			Message: message,
		},
	}
}

func (b *CLIErrorBuilder) WithHTTPStatus(status int) *CLIErrorBuilder {
	b.err.HTTPStatus = status
	return b
}

func (b *CLIErrorBuilder) WithDriveReason(reason string) *CLIErrorBuilder {
	b.err.DriveReason = reason
	return b
}

func (b *CLIErrorBuilder) WithRetryable(retryable bool) *CLIErrorBuilder {
	b.err.Retryable = retryable
	return b
}

func (b *CLIErrorBuilder) WithContext(key string, value interface{}) *CLIErrorBuilder {
	if b.err.Context == nil {
		b.err.Context = make(map[string]interface{})
	}
	b.err.Context[key] = value
	return b
}

func (b *CLIErrorBuilder) Build() types.CLIError {
	return b.err
}

// GetExitCode returns the exit code for an error code
func GetExitCode(errorCode string) int {
	mapping := map[string]int{
		ErrCodeAuthInvalid:       ExitAuthInvalid,
		ErrCodeScopeInsufficient: ExitScopeInsufficient,
		ErrCodeScanError:         ExitScanError,
		ErrCodeRemoteAccess:      ExitRemoteAccess,
		ErrCodePermissionDenied:  ExitPermissionDenied,
		ErrCodeQuotaExceeded:     ExitQuotaExceeded,
		ErrCodeNetworkError:      ExitNetworkError,
		ErrCodeRateLimited:       ExitRateLimited,
		ErrCodeInvalidArgument:   ExitInvalidArgument,
		ErrCodeNotFound:          ExitRemoteAccess,
		ErrCodeUploadFailed:      ExitPartialFailure,
		ErrCodeDeleteFailed:      ExitPartialFailure,
		ErrCodePartialFailure:    ExitPartialFailure,
	}
	if code, ok := mapping[errorCode]; ok {
		return code
	}
	return ExitUnknown
}

// AppError is a custom error type that carries CLI error info
type AppError struct {
	CLIError types.CLIError
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.CLIError.Code, e.CLIError.Message)
}

// NewAppError creates an AppError from a CLIError
func NewAppError(cliErr types.CLIError) *AppError {
	return &AppError{CLIError: cliErr}
}
