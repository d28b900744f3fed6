package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"doc-study-server/internal/domain"
)

func TestFromExtraction(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantType   ErrorType
		wantStatus int
	}{
		{
			name:       "empty document",
			err:        &domain.ExtractionError{Kind: domain.ExtractionSubmission, Err: &domain.ValidationError{Field: "data", Message: "document is empty"}},
			wantType:   ErrorTypeValidation,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "provider rejected",
			err:        &domain.ExtractionError{Kind: domain.ExtractionSubmission, StatusCode: 401},
			wantType:   ErrorTypeUpstream,
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "poll timeout wrapped",
			err:        fmt.Errorf("extract: %w", &domain.ExtractionError{Kind: domain.ExtractionPollTimeout}),
			wantType:   ErrorTypeTimeout,
			wantStatus: http.StatusGatewayTimeout,
		},
		{
			name:       "provider failed",
			err:        &domain.ExtractionError{Kind: domain.ExtractionFailed, Handle: "h"},
			wantType:   ErrorTypeExtraction,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "unrelated error",
			err:        stderrors.New("disk full"),
			wantType:   ErrorTypeInternal,
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := FromExtraction(tt.err)
			if appErr.Type != tt.wantType {
				t.Errorf("type = %q, want %q", appErr.Type, tt.wantType)
			}
			if GetStatusCode(appErr) != tt.wantStatus {
				t.Errorf("status = %d, want %d", GetStatusCode(appErr), tt.wantStatus)
			}
			if !IsType(fmt.Errorf("wrapped: %w", appErr), tt.wantType) {
				t.Errorf("IsType should see through wrapping")
			}
		})
	}
}

func TestAppError_Error(t *testing.T) {
	err := NewValidationError("Invalid document", "data: document is empty")
	if got, want := err.Error(), "validation: Invalid document (data: document is empty)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if got, want := NewNotFoundError("Analysis not found").Error(), "not_found: Analysis not found"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if GetStatusCode(stderrors.New("plain")) != http.StatusInternalServerError {
		t.Errorf("plain errors should map to 500")
	}
}
