package presenter

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/mikey/phish-scanner/internal/core"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var safetyTips = map[core.ThreatLevel][]string{
	core.ThreatHigh: {
		"Do NOT enter passwords or payment details on this page",
		"Close the tab and open the site from a bookmark instead",
		"If you already entered credentials, change them now",
	},
	core.ThreatMedium: {
		"Check the address bar carefully before typing anything",
		"Contact the organization using official contact details",
		"Never provide passwords in response to unexpected prompts",
	},
	core.ThreatLow: {
		"Page appears relatively safe, but stay vigilant",
		"Enable two-factor authentication on your accounts",
	},
}

// ConsolePresenter renders scan state to a writer
type ConsolePresenter struct {
	out     io.Writer
	format  string
	verbose bool
	logger  *zap.Logger
	mu      sync.Mutex
}

// NewConsolePresenter creates a new console presenter
func NewConsolePresenter(out io.Writer, format string, verbose bool, logger *zap.Logger) (*ConsolePresenter, error) {
	switch format {
	case "":
		format = FormatText
	case FormatText, FormatJSON, FormatYAML:
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsolePresenter{
		out:     out,
		format:  format,
		verbose: verbose,
		logger:  logger,
	}, nil
}

// ShowLoading prints a scanning marker in text mode
func (p *ConsolePresenter) ShowLoading() {
	if p.format != FormatText || !p.verbose {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "Scanning page...\n")
}

// ShowResult renders a scan result
func (p *ConsolePresenter) ShowResult(result *core.ScanResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.format {
	case FormatJSON:
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			p.logger.Error("Failed to render result", zap.Error(err))
		}
	case FormatYAML:
		enc := yaml.NewEncoder(p.out)
		if err := enc.Encode(yamlResult(result)); err != nil {
			p.logger.Error("Failed to render result", zap.Error(err))
		}
		enc.Close()
	default:
		p.writeText(result)
	}
}

// ShowError renders a failed scan in place of a result
func (p *ConsolePresenter) ShowError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	failure := map[string]string{"status": "failed", "error": err.Error()}

	switch p.format {
	case FormatJSON:
		if encErr := json.NewEncoder(p.out).Encode(failure); encErr != nil {
			p.logger.Error("Failed to render error", zap.Error(encErr))
		}
	case FormatYAML:
		enc := yaml.NewEncoder(p.out)
		if encErr := enc.Encode(failure); encErr != nil {
			p.logger.Error("Failed to render error", zap.Error(encErr))
		}
		enc.Close()
	default:
		fmt.Fprintf(p.out, "\n=== Results ===\n")
		fmt.Fprintf(p.out, "Risk score: !\n")
		fmt.Fprintf(p.out, "⚠️ %s\n", err.Error())
		fmt.Fprintf(p.out, "Scan failed\n")
	}
}

func (p *ConsolePresenter) writeText(r *core.ScanResult) {
	fmt.Fprintf(p.out, "\n=== Results ===\n")
	fmt.Fprintf(p.out, "Page: %s\n", r.Title)
	fmt.Fprintf(p.out, "URL: %s\n", r.URL)
	fmt.Fprintf(p.out, "Risk score: %d/100\n", r.RiskScore)
	fmt.Fprintf(p.out, "Threat level: %s\n", r.ThreatLevel)
	fmt.Fprintf(p.out, "%s\n", r.Warning)

	if p.verbose {
		if len(r.Reasons) > 0 {
			fmt.Fprintf(p.out, "\nWhy this was flagged:\n")
			for _, reason := range r.Reasons {
				fmt.Fprintf(p.out, "  - %s\n", reason)
			}
		}
		fmt.Fprintf(p.out, "\nSafety tips:\n")
		for _, tip := range safetyTips[r.ThreatLevel] {
			fmt.Fprintf(p.out, "  - %s\n", tip)
		}
		if r.Source != "" {
			fmt.Fprintf(p.out, "\nScored by: %s\n", r.Source)
		}
	}

	fmt.Fprintf(p.out, "Last scanned: %s\n", r.Timestamp.Local().Format("15:04:05"))
}

// yamlResult mirrors the JSON field names for YAML output
func yamlResult(r *core.ScanResult) map[string]any {
	out := map[string]any{
		"risk_score":   r.RiskScore,
		"threat_level": string(r.ThreatLevel),
		"warning":      r.Warning,
		"url":          r.URL,
		"title":        r.Title,
		"timestamp":    r.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
	if len(r.Reasons) > 0 {
		out["reasons"] = r.Reasons
	}
	if r.Source != "" {
		out["source"] = r.Source
	}
	if r.ScanID != "" {
		out["scan_id"] = r.ScanID
	}
	return out
}
