package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNoActiveTab is returned when the browser has no active page to scan
	ErrNoActiveTab = errors.New("no active tab")
	// ErrStorageUnavailable is returned by stores whose backing capability is absent
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrScanInProgress is returned when a manual scan is already running
	ErrScanInProgress = errors.New("scan already in progress")
)

// ExtractionError is returned when the host runtime refuses to run the page probe
type ExtractionError struct {
	URL string
	Err error
}

func (e *ExtractionError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("failed to read page %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("failed to read page: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// RemoteScoringError wraps any failure of an external scorer
type RemoteScoringError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *RemoteScoringError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("remote scoring at %s failed with status %d: %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("remote scoring at %s failed: %v", e.Endpoint, e.Err)
}

func (e *RemoteScoringError) Unwrap() error {
	return e.Err
}
