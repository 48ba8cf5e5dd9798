// Package browser reads the active page of a Chrome instance over the
// DevTools protocol. The probe is read-only: it never touches the DOM.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/mikey/phish-scanner/internal/core"
	"go.uber.org/zap"
)

const (
	stateScript = `() => ({
		visible: document.visibilityState === "visible",
		focused: document.hasFocus()
	})`

	probeScript = `() => ({
		text: document.body ? document.body.innerText : "",
		url: location.href,
		title: document.title
	})`
)

// Config configures the extractor
type Config struct {
	// ControlURL is the DevTools WebSocket URL of a running Chrome.
	// Empty launches a local Chrome.
	ControlURL string
	Headless   bool
	Timeout    time.Duration
}

// Extractor implements core.ContentExtractor with go-rod
type Extractor struct {
	cfg    Config
	logger *zap.Logger

	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
}

// NewExtractor creates an extractor. The browser connection is opened lazily.
func NewExtractor(cfg Config, logger *zap.Logger) *Extractor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Extractor{
		cfg:    cfg,
		logger: logger,
	}
}

// Extract returns the content of the active tab
func (e *Extractor) Extract(ctx context.Context) (*core.PageContent, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	b, err := e.connect()
	if err != nil {
		return nil, &core.ExtractionError{Err: err}
	}

	pages, err := b.Pages()
	if err != nil {
		return nil, &core.ExtractionError{Err: fmt.Errorf("list tabs: %w", err)}
	}

	tabs := make([]tab, 0, len(pages))
	for _, p := range pages {
		tabs = append(tabs, &rodTab{page: p})
	}

	return extractActive(ctx, tabs, e.logger)
}

// Close releases the browser connection and any Chrome we launched
func (e *Extractor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var err error
	if e.browser != nil {
		err = e.browser.Close()
		e.browser = nil
	}
	if e.lnch != nil {
		e.lnch.Cleanup()
		e.lnch = nil
	}
	return err
}

func (e *Extractor) connect() (*rod.Browser, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browser != nil {
		return e.browser, nil
	}

	wsURL := e.cfg.ControlURL
	if wsURL == "" {
		l := launcher.New().Headless(e.cfg.Headless)
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
		wsURL = u
		e.lnch = l
		e.logger.Info("Launched local Chrome", zap.String("control_url", wsURL))
	} else {
		e.logger.Info("Connecting to Chrome", zap.String("control_url", wsURL))
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		if e.lnch != nil {
			e.lnch.Cleanup()
			e.lnch = nil
		}
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}

	e.browser = b
	return b, nil
}

type tabState struct {
	Visible bool `json:"visible"`
	Focused bool `json:"focused"`
}

// tab is the slice of a browser page the extractor needs
type tab interface {
	State(ctx context.Context) (tabState, error)
	Probe(ctx context.Context) (*core.PageContent, error)
	URL() string
}

type rodTab struct {
	page *rod.Page
}

func (t *rodTab) State(ctx context.Context) (tabState, error) {
	var st tabState
	res, err := t.page.Context(ctx).Eval(stateScript)
	if err != nil {
		return st, err
	}
	err = res.Value.Unmarshal(&st)
	return st, err
}

func (t *rodTab) Probe(ctx context.Context) (*core.PageContent, error) {
	res, err := t.page.Context(ctx).Eval(probeScript)
	if err != nil {
		return nil, err
	}
	var content core.PageContent
	if err := res.Value.Unmarshal(&content); err != nil {
		return nil, fmt.Errorf("decode probe result: %w", err)
	}
	return &content, nil
}

func (t *rodTab) URL() string {
	info, err := t.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// pickActive prefers a visible, focused tab and otherwise the first visible
// one. Tabs whose state cannot be read are skipped.
func pickActive(ctx context.Context, tabs []tab, logger *zap.Logger) tab {
	var firstVisible tab
	for _, t := range tabs {
		st, err := t.State(ctx)
		if err != nil {
			logger.Debug("Skipping unreadable tab", zap.String("url", t.URL()), zap.Error(err))
			continue
		}
		if !st.Visible {
			continue
		}
		if st.Focused {
			return t
		}
		if firstVisible == nil {
			firstVisible = t
		}
	}
	return firstVisible
}

func extractActive(ctx context.Context, tabs []tab, logger *zap.Logger) (*core.PageContent, error) {
	active := pickActive(ctx, tabs, logger)
	if active == nil {
		return nil, core.ErrNoActiveTab
	}

	content, err := active.Probe(ctx)
	if err != nil {
		return nil, &core.ExtractionError{URL: active.URL(), Err: err}
	}
	if content == nil || (content.URL == "" && content.Text == "" && content.Title == "") {
		return nil, &core.ExtractionError{URL: active.URL(), Err: errors.New("empty probe result")}
	}

	logger.Debug("Extracted page content",
		zap.String("url", content.URL),
		zap.String("title", content.Title),
		zap.Int("text_length", len(content.Text)))

	return content, nil
}
