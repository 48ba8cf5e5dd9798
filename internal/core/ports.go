package core

import (
	"context"
)

// Scorer defines a strategy that turns page content into a scan result
type Scorer interface {
	// Score evaluates the content. A non-nil error means the caller should fall back.
	Score(ctx context.Context, content *PageContent) (*ScanResult, error)
}

// ContentExtractor reads the active page from the host browser
type ContentExtractor interface {
	// Extract returns the visible text, URL and title of the active page
	Extract(ctx context.Context) (*PageContent, error)
}

// KVStore defines the raw key-value persistence capability
type KVStore interface {
	// Get returns the values present for the given keys
	Get(ctx context.Context, keys []string) (map[string][]byte, error)

	// Set stores every key in values, overwriting existing entries
	Set(ctx context.Context, values map[string][]byte) error
}

// Presenter renders scan state to the user
type Presenter interface {
	ShowLoading()
	ShowResult(result *ScanResult)
	ShowError(err error)
}
