// Package ocr submits documents to the Azure Computer Vision Read API and
// polls the resulting long-running operation until it finishes.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"doc-study-server/internal/domain"
)

const (
	subscriptionKeyHeader   = "Ocp-Apim-Subscription-Key"
	operationLocationHeader = "Operation-Location"

	DefaultReadPath     = "/vision/v3.2/read/analyze"
	DefaultPollInterval = time.Second
	DefaultMaxAttempts  = 60

	maxResponseBytes = 32 << 20
)

// Config for the poller.
type Config struct {
	Endpoint          string
	Key               string
	Language          string
	DetectOrientation bool
	ReadPath          string
	PollInterval      time.Duration
	MaxAttempts       int
	Timeout           time.Duration // per HTTP request
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Option customises a Poller.
type Option func(*Poller)

// WithHTTPClient replaces the HTTP client used for provider calls.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Poller) {
		p.client = client
	}
}

// WithSleep replaces the wait between status queries.
func WithSleep(sleep SleepFunc) Option {
	return func(p *Poller) {
		p.sleep = sleep
	}
}

// Submission is the outcome of a successful Submit. Exactly one of Handle
// and Result is set: Result when the provider answered synchronously.
type Submission struct {
	Handle domain.OperationHandle
	Result *domain.ExtractionResult
}

// Synchronous reports whether the provider returned the text inline.
func (s *Submission) Synchronous() bool {
	return s.Result != nil
}

// Operation is a single status observation of a handle.
type Operation struct {
	Status domain.OperationStatus
	Result *domain.ExtractionResult
}

// Poller implements domain.TextExtractor on top of the Read API.
type Poller struct {
	cfg    Config
	client *http.Client
	logger domain.Logger
	sleep  SleepFunc
}

// NewPoller creates a poller. Zero values in cfg fall back to defaults.
func NewPoller(cfg Config, logger domain.Logger, opts ...Option) *Poller {
	if cfg.ReadPath == "" {
		cfg.ReadPath = DefaultReadPath
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	p := &Poller{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Configured reports whether an endpoint and key are set.
func (p *Poller) Configured() bool {
	return p.cfg.Endpoint != "" && p.cfg.Key != ""
}

// Extract returns the text of doc, submitting it and polling when needed.
func (p *Poller) Extract(ctx context.Context, doc *domain.Document) (string, error) {
	result, err := p.ExtractResult(ctx, doc)
	if err != nil {
		return "", err
	}
	return result.Text(), nil
}

// ExtractResult is Extract without flattening the lines.
func (p *Poller) ExtractResult(ctx context.Context, doc *domain.Document) (*domain.ExtractionResult, error) {
	sub, err := p.Submit(ctx, doc)
	if err != nil {
		return nil, err
	}
	if sub.Synchronous() {
		p.logger.Debug("OCR returned synchronous result", "filename", doc.Filename, "lines", len(sub.Result.Lines))
		return sub.Result, nil
	}
	return p.Poll(ctx, sub.Handle)
}

// Submit sends doc to the provider. A 202 yields a handle, a 200 yields the
// result inline, anything else is a submission error.
func (p *Poller) Submit(ctx context.Context, doc *domain.Document) (*Submission, error) {
	if doc == nil {
		return nil, &domain.ExtractionError{Kind: domain.ExtractionSubmission, Err: domain.ErrInvalidFile}
	}
	if err := doc.Validate(); err != nil {
		return nil, &domain.ExtractionError{Kind: domain.ExtractionSubmission, Err: err}
	}
	if p.cfg.Endpoint == "" {
		return nil, &domain.ExtractionError{Kind: domain.ExtractionSubmission, Err: domain.ErrProviderNotConfigured}
	}

	endpoint, err := p.analyzeURL()
	if err != nil {
		return nil, &domain.ExtractionError{Kind: domain.ExtractionSubmission, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(doc.Data))
	if err != nil {
		return nil, &domain.ExtractionError{Kind: domain.ExtractionSubmission, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set(subscriptionKeyHeader, p.cfg.Key)
	req.Header.Set("Content-Type", "application/octet-stream")

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, contextError("", ctxErr)
		}
		return nil, &domain.ExtractionError{Kind: domain.ExtractionSubmission, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &domain.ExtractionError{Kind: domain.ExtractionSubmission, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	p.logger.Info("OCR submission answered",
		"filename", doc.Filename,
		"kind", doc.Kind,
		"bytes", doc.Size(),
		"status", resp.StatusCode,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	switch resp.StatusCode {
	case http.StatusAccepted:
		location := strings.TrimSpace(resp.Header.Get(operationLocationHeader))
		if location == "" {
			return nil, &domain.ExtractionError{
				Kind:       domain.ExtractionSubmission,
				StatusCode: resp.StatusCode,
				Err:        errors.New("accepted response without Operation-Location header"),
			}
		}
		return &Submission{Handle: domain.OperationHandle(location)}, nil
	case http.StatusOK:
		result, err := parseSyncResult(body)
		if err != nil {
			return nil, &domain.ExtractionError{Kind: domain.ExtractionMalformedResult, StatusCode: resp.StatusCode, Err: err}
		}
		return &Submission{Result: result}, nil
	default:
		return nil, &domain.ExtractionError{
			Kind:       domain.ExtractionSubmission,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}
}

// Poll queries handle until it reaches a terminal status or the attempt
// budget runs out. The first query is immediate; PollInterval is waited
// between queries.
func (p *Poller) Poll(ctx context.Context, handle domain.OperationHandle) (*domain.ExtractionResult, error) {
	if err := validateHandle(handle); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= p.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := p.sleep(ctx, p.cfg.PollInterval); err != nil {
				return nil, contextError(handle, err)
			}
		}

		op, err := p.CheckStatus(ctx, handle)
		if err != nil {
			var tErr *transientError
			if !errors.As(err, &tErr) {
				return nil, err
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, contextError(handle, ctxErr)
			}
			lastErr = tErr.err
			p.logger.Warn("OCR status check failed, retrying",
				"handle", handle,
				"attempt", attempt,
				"max_attempts", p.cfg.MaxAttempts,
				"error", tErr.err,
			)
			continue
		}

		switch op.Status {
		case domain.OperationSucceeded:
			p.logger.Info("OCR operation succeeded", "handle", handle, "attempts", attempt, "lines", len(op.Result.Lines))
			return op.Result, nil
		case domain.OperationFailed:
			return nil, &domain.ExtractionError{Kind: domain.ExtractionFailed, Handle: handle}
		}
		p.logger.Debug("OCR operation still running", "handle", handle, "attempt", attempt)
	}

	timeoutErr := fmt.Errorf("no terminal status after %d attempts", p.cfg.MaxAttempts)
	if lastErr != nil {
		timeoutErr = fmt.Errorf("no terminal status after %d attempts, last error: %w", p.cfg.MaxAttempts, lastErr)
	}
	return nil, &domain.ExtractionError{Kind: domain.ExtractionPollTimeout, Handle: handle, Err: timeoutErr}
}

// CheckStatus performs a single status query. Retryable failures are
// returned as errors for which IsTransient is true.
func (p *Poller) CheckStatus(ctx context.Context, handle domain.OperationHandle) (*Operation, error) {
	if err := validateHandle(handle); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, string(handle), nil)
	if err != nil {
		return nil, &domain.ExtractionError{Kind: domain.ExtractionInvalidHandle, Handle: handle, Err: err}
	}
	req.Header.Set(subscriptionKeyHeader, p.cfg.Key)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &transientError{err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &transientError{err: fmt.Errorf("read status response: %w", err)}
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case isTransientStatus(resp.StatusCode):
		return nil, &transientError{err: fmt.Errorf("status endpoint returned %d", resp.StatusCode)}
	default:
		return nil, &domain.ExtractionError{
			Kind:       domain.ExtractionInvalidHandle,
			Handle:     handle,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	var payload readOperationResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &transientError{err: fmt.Errorf("decode status response: %w", err)}
	}

	op := &Operation{Status: normalizeStatus(payload.Status)}
	if op.Status == domain.OperationSucceeded {
		result, err := payload.extractionResult()
		if err != nil {
			return nil, &domain.ExtractionError{Kind: domain.ExtractionMalformedResult, Handle: handle, Err: err}
		}
		op.Result = result
	}
	return op, nil
}

func (p *Poller) analyzeURL() (string, error) {
	base, err := url.Parse(strings.TrimRight(p.cfg.Endpoint, "/") + p.cfg.ReadPath)
	if err != nil {
		return "", fmt.Errorf("invalid OCR endpoint: %w", err)
	}
	q := base.Query()
	if p.cfg.Language != "" {
		q.Set("language", p.cfg.Language)
	}
	if p.cfg.DetectOrientation {
		q.Set("detectOrientation", "true")
	}
	base.RawQuery = q.Encode()
	return base.String(), nil
}

// transientError marks a status query failure that the poll loop retries.
type transientError struct {
	err error
}

func (e *transientError) Error() string {
	return "transient: " + e.err.Error()
}

func (e *transientError) Unwrap() error {
	return e.err
}

// IsTransient reports whether err is a retryable status query failure.
func IsTransient(err error) bool {
	var tErr *transientError
	return errors.As(err, &tErr)
}

func isTransientStatus(code int) bool {
	return code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || code >= 500
}

func validateHandle(handle domain.OperationHandle) error {
	u, err := url.Parse(strings.TrimSpace(string(handle)))
	if err != nil || !u.IsAbs() || u.Host == "" {
		if err == nil {
			err = errors.New("operation handle must be an absolute URL")
		}
		return &domain.ExtractionError{Kind: domain.ExtractionInvalidHandle, Handle: handle, Err: err}
	}
	return nil
}

func contextError(handle domain.OperationHandle, err error) error {
	kind := domain.ExtractionCancelled
	if errors.Is(err, context.DeadlineExceeded) {
		kind = domain.ExtractionPollTimeout
	}
	return &domain.ExtractionError{Kind: kind, Handle: handle, Err: err}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
