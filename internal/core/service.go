package core

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultAutoScanInterval is used when no positive interval is configured
	DefaultAutoScanInterval = 5000 * time.Millisecond

	// SourceAllowlist identifies results short-circuited by a trusted domain
	SourceAllowlist = "allowlist"
)

// TrustChecker reports whether a page URL belongs to a trusted domain
type TrustChecker interface {
	IsTrusted(pageURL string) bool
}

// ScanService coordinates extraction, scoring, persistence and display,
// and owns the auto-scan timer.
type ScanService struct {
	extractor ContentExtractor
	scorer    Scorer
	fallback  *RiskEngine
	store     *SafeStore
	presenter Presenter
	trusted   TrustChecker
	logger    *zap.Logger
	interval  time.Duration
	now       func() time.Time

	// manual trigger gate; timer-driven scans do not consult it
	scanning atomic.Bool

	mu     sync.Mutex
	stopCh chan struct{}
	closed bool
	loops  atomic.Int32
}

// NewScanService creates a new scan service
func NewScanService(
	extractor ContentExtractor,
	scorer Scorer,
	fallback *RiskEngine,
	store *SafeStore,
	presenter Presenter,
	trusted TrustChecker,
	logger *zap.Logger,
	interval time.Duration,
) *ScanService {
	if interval <= 0 {
		interval = DefaultAutoScanInterval
	}
	if fallback == nil {
		fallback = NewRiskEngine()
	}
	if scorer == nil {
		scorer = fallback
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = NewSafeStore(nil, logger, 0)
	}
	return &ScanService{
		extractor: extractor,
		scorer:    scorer,
		fallback:  fallback,
		store:     store,
		presenter: presenter,
		trusted:   trusted,
		logger:    logger,
		interval:  interval,
		now:       time.Now,
	}
}

// Initialize restores persisted state for a new session. The last result is
// rendered before the auto-scan loop can produce a fresh one.
func (s *ScanService) Initialize(ctx context.Context) error {
	state := s.store.LoadAutoScanState(ctx)
	last := s.store.LoadLastResult(ctx)

	if last != nil {
		s.logger.Debug("Restoring last scan result",
			zap.String("url", last.URL),
			zap.Int("risk_score", last.RiskScore))
		s.presenter.ShowResult(last)
	}

	if state.Enabled {
		s.logger.Info("Auto-scan restored from storage", zap.Duration("interval", s.interval))
		s.startAutoScan()
	}

	return nil
}

// TriggerScan runs a user-initiated scan. Only one may be in flight at a time.
func (s *ScanService) TriggerScan(ctx context.Context) (*ScanResult, error) {
	if !s.scanning.CompareAndSwap(false, true) {
		return nil, ErrScanInProgress
	}
	defer s.scanning.Store(false)

	return s.RunScan(ctx)
}

// RunScan performs one extract, score, persist and display cycle
func (s *ScanService) RunScan(ctx context.Context) (*ScanResult, error) {
	scanID := uuid.NewString()
	logger := s.logger.With(zap.String("scan_id", scanID))

	s.presenter.ShowLoading()

	content, err := s.extractor.Extract(ctx)
	if err == nil && content == nil {
		err = &ExtractionError{Err: fmt.Errorf("empty probe result")}
	}
	if err != nil {
		logger.Error("Scan failed", zap.Error(err))
		s.presenter.ShowError(err)
		return nil, err
	}

	result := s.score(ctx, logger, content)
	result.ScanID = scanID

	s.store.SaveLastResult(ctx, result)
	s.presenter.ShowResult(result)

	logger.Info("Scan completed",
		zap.String("url", result.URL),
		zap.Int("risk_score", result.RiskScore),
		zap.String("threat_level", string(result.ThreatLevel)),
		zap.String("source", result.Source))

	return result, nil
}

// score picks the result for content, falling back to the heuristic when
// the configured scorer fails
func (s *ScanService) score(ctx context.Context, logger *zap.Logger, content *PageContent) *ScanResult {
	if s.trusted != nil && s.trusted.IsTrusted(content.URL) {
		logger.Info("Skipping scoring for trusted domain",
			zap.String("url", content.URL),
			zap.String("action", "allowlist_bypass"))
		return &ScanResult{
			RiskScore:   0,
			ThreatLevel: ThreatLow,
			Warning:     WarningFor(ThreatLow),
			URL:         content.URL,
			Title:       content.Title,
			Timestamp:   s.now(),
			Reasons:     []string{"Domain is on the trusted list"},
			Source:      SourceAllowlist,
		}
	}

	result, err := s.scorer.Score(ctx, content)
	if err != nil || result == nil {
		logger.Warn("Scorer failed, falling back to heuristic", zap.Error(err))
		return s.fallback.Assess(content)
	}
	return result
}

// ToggleAutoScan persists the toggle and starts or stops the timer
func (s *ScanService) ToggleAutoScan(ctx context.Context, enabled bool) {
	s.store.SaveAutoScanState(ctx, AutoScanState{Enabled: enabled})

	if enabled {
		s.startAutoScan()
	} else {
		s.stopAutoScan()
	}
}

// AutoScanActive reports whether a timer is currently running
func (s *ScanService) AutoScanActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopCh != nil
}

// Close cancels the auto-scan timer. It is safe to call more than once.
func (s *ScanService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.stopLocked()
}

func (s *ScanService) startAutoScan() {
	s.mu.Lock()
	defer s.mu.Unlock()

	// single timer invariant
	s.stopLocked()
	if s.closed {
		return
	}

	stop := make(chan struct{})
	s.stopCh = stop
	s.loops.Add(1)
	go s.autoScanLoop(stop)
}

func (s *ScanService) stopAutoScan() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *ScanService) stopLocked() {
	if s.stopCh != nil {
		close(s.stopCh)
		s.stopCh = nil
	}
}

// autoScanLoop runs one scan immediately and then one per tick until stop is
// closed. Stopping never interrupts a scan already running.
func (s *ScanService) autoScanLoop(stop <-chan struct{}) {
	defer s.loops.Add(-1)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runTimedScan()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			select {
			case <-stop:
				return
			default:
			}
			s.runTimedScan()
		}
	}
}

func (s *ScanService) runTimedScan() {
	if _, err := s.RunScan(context.Background()); err != nil {
		s.logger.Debug("Timed scan did not complete", zap.Error(err))
	}
}

// activeLoops is the number of auto-scan goroutines still running
func (s *ScanService) activeLoops() int {
	return int(s.loops.Load())
}
