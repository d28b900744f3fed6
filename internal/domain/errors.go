package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrAnalysisNotFound      = errors.New("analysis not found")
	ErrInvalidFile           = errors.New("invalid file")
	ErrUnsupportedFileType   = errors.New("unsupported file type")
	ErrFileTooLarge          = errors.New("file too large")
	ErrNoTextExtracted       = errors.New("no text could be extracted")
	ErrProviderNotConfigured = errors.New("provider not configured")
)

// ValidationError represents a validation error with field and message information.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

// ExtractionErrorKind classifies a terminal OCR failure.
type ExtractionErrorKind string

// ExtractionSubmission covers documents the provider rejected as well as
// documents rejected locally before any request was made.
const (
	ExtractionSubmission      ExtractionErrorKind = "submission"
	ExtractionInvalidHandle   ExtractionErrorKind = "invalid_handle"
	ExtractionFailed          ExtractionErrorKind = "extraction_failed"
	ExtractionPollTimeout     ExtractionErrorKind = "poll_timeout"
	ExtractionMalformedResult ExtractionErrorKind = "malformed_result"
	ExtractionCancelled       ExtractionErrorKind = "cancelled"
)

// ExtractionError is the single error type surfaced by the OCR poller.
type ExtractionError struct {
	Kind       ExtractionErrorKind
	Handle     OperationHandle
	StatusCode int
	Body       string
	Err        error
}

func (e *ExtractionError) Error() string {
	msg := "ocr " + string(e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Handle != "" {
		msg += " handle=" + string(e.Handle)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	} else if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// IsExtractionKind reports whether err is an ExtractionError of the given kind.
func IsExtractionKind(err error, kind ExtractionErrorKind) bool {
	var extErr *ExtractionError
	if errors.As(err, &extErr) {
		return extErr.Kind == kind
	}
	return false
}
