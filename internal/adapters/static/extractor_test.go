package static

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/phish-scanner/internal/core"
)

func TestExtractorFromReader(t *testing.T) {
	extractor, err := NewExtractorFromReader(strings.NewReader("\n  Verify your account now  \n"), "http://10.0.0.1/login", "Bank")
	require.NoError(t, err)

	content, err := extractor.Extract(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Verify your account now", content.Text)
	assert.Equal(t, "http://10.0.0.1/login", content.URL)
	assert.Equal(t, "Bank", content.Title)

	// callers get their own copy
	content.Text = "changed"
	again, err := extractor.Extract(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Verify your account now", again.Text)
}

func TestExtractor_CanceledContext(t *testing.T) {
	extractor := NewExtractor(core.PageContent{URL: "https://example.com"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := extractor.Extract(ctx)

	var extractionErr *core.ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "https://example.com", extractionErr.URL)
}
