package static

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mikey/phish-scanner/internal/core"
)

// Extractor serves page content supplied up front, for offline checks
type Extractor struct {
	content core.PageContent
}

// NewExtractor creates an extractor that always returns content
func NewExtractor(content core.PageContent) *Extractor {
	return &Extractor{content: content}
}

// NewExtractorFromReader reads the page text from r
func NewExtractorFromReader(r io.Reader, pageURL, title string) (*Extractor, error) {
	text, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read page text: %w", err)
	}
	return NewExtractor(core.PageContent{
		Text:  strings.TrimSpace(string(text)),
		URL:   pageURL,
		Title: title,
	}), nil
}

// Extract returns a copy of the configured content
func (e *Extractor) Extract(ctx context.Context) (*core.PageContent, error) {
	if err := ctx.Err(); err != nil {
		return nil, &core.ExtractionError{URL: e.content.URL, Err: err}
	}
	content := e.content
	return &content, nil
}
