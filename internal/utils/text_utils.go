package utils

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

const truncationMarker = "\n[... Page text truncated due to size limits ...]"

// TextProcessor prepares page text before it is sent to an external model
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{
		logger: logger,
	}
}

// TruncateText cuts text to at most maxSize bytes on a rune boundary
func (tp *TextProcessor) TruncateText(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	truncated := text[:maxSize]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}

	tp.logger.Debug("Page text truncated",
		zap.Int("original_size", len(text)),
		zap.Int("truncated_size", len(truncated)),
		zap.Int("max_size", maxSize))

	return truncated + truncationMarker
}

// NormalizeText drops invalid UTF-8, applies NFC and collapses the blank
// lines innerText tends to produce
func (tp *TextProcessor) NormalizeText(text string) string {
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "")
	}
	text = norm.NFC.String(text)

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// ProcessText normalizes and then truncates text
func (tp *TextProcessor) ProcessText(text string, maxSize int) string {
	return tp.TruncateText(tp.NormalizeText(text), maxSize)
}

// DecodeJSONObject decodes a model reply into v. Replies wrapped in prose or
// code fences are accepted as long as they contain one JSON object.
func DecodeJSONObject(reply string, v any) error {
	if err := json.Unmarshal([]byte(reply), v); err == nil {
		return nil
	}

	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return fmt.Errorf("no JSON object in model response")
	}

	if err := json.Unmarshal([]byte(reply[start:end+1]), v); err != nil {
		return fmt.Errorf("failed to parse model response as JSON: %w", err)
	}
	return nil
}
