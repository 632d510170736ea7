package errors

import (
	"fmt"
	"testing"

	"github.com/gdmirror/gdmirror/internal/logging"
	"github.com/gdmirror/gdmirror/internal/types"
	"github.com/gdmirror/gdmirror/internal/utils"
	"google.golang.org/api/googleapi"
)

func classify(t *testing.T, err error) *utils.AppError {
	t.Helper()
	reqCtx := &types.RequestContext{TraceID: "trace-1", RequestType: types.RequestTypeUpload}
	result := ClassifyGoogleAPIError("drive", err, reqCtx, logging.NewNoOpLogger())
	appErr, ok := result.(*utils.AppError)
	if !ok {
		t.Fatalf("expected AppError, got %T", result)
	}
	return appErr
}

func TestClassifyStatusCodes(t *testing.T) {
	tests := []struct {
		status        int
		wantCode      string
		wantRetryable bool
	}{
		{400, utils.ErrCodeInvalidArgument, false},
		{401, utils.ErrCodeAuthInvalid, false},
		{403, utils.ErrCodePermissionDenied, false},
		{404, utils.ErrCodeNotFound, false},
		{429, utils.ErrCodeRateLimited, true},
		{500, utils.ErrCodeNetworkError, true},
		{503, utils.ErrCodeNetworkError, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %d", tt.status), func(t *testing.T) {
			appErr := classify(t, &googleapi.Error{Code: tt.status, Message: "boom"})
			if appErr.CLIError.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", appErr.CLIError.Code, tt.wantCode)
			}
			if appErr.CLIError.Retryable != tt.wantRetryable {
				t.Errorf("retryable = %v, want %v", appErr.CLIError.Retryable, tt.wantRetryable)
			}
			if appErr.CLIError.HTTPStatus != tt.status {
				t.Errorf("httpStatus = %d", appErr.CLIError.HTTPStatus)
			}
		})
	}
}

func TestClassify403Reasons(t *testing.T) {
	tests := []struct {
		reason   string
		wantCode string
	}{
		{"storageQuotaExceeded", utils.ErrCodeQuotaExceeded},
		{"userRateLimitExceeded", utils.ErrCodeRateLimited},
		{"rateLimitExceeded", utils.ErrCodeRateLimited},
		{"dailyLimitExceeded", utils.ErrCodeRateLimited},
		{"insufficientPermissions", utils.ErrCodeScopeInsufficient},
	}
	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			apiErr := &googleapi.Error{
				Code:    403,
				Message: "denied",
				Errors:  []googleapi.ErrorItem{{Reason: tt.reason}},
			}
			appErr := classify(t, apiErr)
			if appErr.CLIError.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", appErr.CLIError.Code, tt.wantCode)
			}
			if appErr.CLIError.DriveReason != tt.reason {
				t.Errorf("driveReason = %q", appErr.CLIError.DriveReason)
			}
		})
	}
}

func TestClassifyNonAPIError(t *testing.T) {
	appErr := classify(t, fmt.Errorf("connection refused"))
	if appErr.CLIError.Code != utils.ErrCodeNetworkError {
		t.Errorf("code = %q", appErr.CLIError.Code)
	}
	if !appErr.CLIError.Retryable {
		t.Error("transport errors should be retryable")
	}
	if appErr.CLIError.Context["traceId"] != "trace-1" {
		t.Errorf("context = %v", appErr.CLIError.Context)
	}
}
