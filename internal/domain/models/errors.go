package models

import (
	"errors"
	"fmt"
)

var (
	ErrAuditNotFound     = errors.New("audit not found")
	ErrInvalidTransition = errors.New("invalid audit status transition")
	ErrPipelineTimeout   = errors.New("audit pipeline timed out")
	ErrQueueFull         = errors.New("audit queue is full")
	ErrShuttingDown      = errors.New("audit service is shutting down")
)

type FetchReason string

const (
	FetchTimeout      FetchReason = "timeout"
	FetchDNS          FetchReason = "dns"
	FetchTLS          FetchReason = "tls"
	FetchHTTPStatus   FetchReason = "http_status"
	FetchNetwork      FetchReason = "network"
	FetchRedirectLoop FetchReason = "redirect_loop"
	FetchInvalidURL   FetchReason = "invalid_url"
)

// FetchError is fatal to an audit. Its message is shown to clients, so it
// carries no stack or file information.
type FetchError struct {
	URL        string
	Reason     FetchReason
	StatusCode int
	Cause      error
}

func (e *FetchError) Error() string {
	switch {
	case e.Reason == FetchHTTPStatus:
		return fmt.Sprintf("fetch %s failed: %s: HTTP status %d", e.URL, e.Reason, e.StatusCode)
	case e.Cause != nil:
		return fmt.Sprintf("fetch %s failed: %s: %v", e.URL, e.Reason, e.Cause)
	default:
		return fmt.Sprintf("fetch %s failed: %s", e.URL, e.Reason)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// ExtractionError degrades a single fact sub-record to absent.
type ExtractionError struct {
	Extractor string `json:"extractor"`
	Message   string `json:"message"`
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extractor %s failed: %s", e.Extractor, e.Message)
}

// LinkProbeError marks a single link as broken. It never leaves the link checker.
type LinkProbeError struct {
	URL   string
	Cause error
}

func (e *LinkProbeError) Error() string {
	return fmt.Sprintf("probe %s: %v", e.URL, e.Cause)
}

func (e *LinkProbeError) Unwrap() error {
	return e.Cause
}

// PersistenceError is returned to the caller of the pipeline when the store
// rejects or fails a write. The audit may be left in processing.
type PersistenceError struct {
	AuditID string
	Op      string
	Cause   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist audit %s (%s): %v", e.AuditID, e.Op, e.Cause)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}
