package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeExtractor struct {
	calls       atomic.Int32
	extractFunc func(ctx context.Context) (*PageContent, error)
}

func (f *fakeExtractor) Extract(ctx context.Context) (*PageContent, error) {
	f.calls.Add(1)
	return f.extractFunc(ctx)
}

type fakeScorer struct {
	scoreFunc func(ctx context.Context, content *PageContent) (*ScanResult, error)
}

func (f *fakeScorer) Score(ctx context.Context, content *PageContent) (*ScanResult, error) {
	return f.scoreFunc(ctx, content)
}

type recordingPresenter struct {
	mu      sync.Mutex
	events  []string
	results []*ScanResult
	errs    []error
}

func (p *recordingPresenter) ShowLoading() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, "loading")
}

func (p *recordingPresenter) ShowResult(result *ScanResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, "result")
	p.results = append(p.results, result)
}

func (p *recordingPresenter) ShowError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, "error")
	p.errs = append(p.errs, err)
}

func (p *recordingPresenter) snapshot() ([]string, []*ScanResult, []error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...), append([]*ScanResult(nil), p.results...), append([]error(nil), p.errs...)
}

type staticTrust map[string]bool

func (s staticTrust) IsTrusted(pageURL string) bool { return s[pageURL] }

func pageExtractor(content PageContent) *fakeExtractor {
	return &fakeExtractor{extractFunc: func(context.Context) (*PageContent, error) {
		c := content
		return &c, nil
	}}
}

func newTestService(extractor ContentExtractor, scorer Scorer, backend KVStore, presenter Presenter, interval time.Duration) *ScanService {
	engine := NewRiskEngineWithClock(fixedClock)
	var store *SafeStore
	if backend != nil {
		store = NewSafeStore(backend, zap.NewNop(), 0)
	}
	return NewScanService(extractor, scorer, engine, store, presenter, nil, zap.NewNop(), interval)
}

var phishingPage = PageContent{
	Text:  "Verify your account and update payment",
	URL:   "http://192.168.1.10/login",
	Title: "Bank",
}

func TestScanService_RunScan(t *testing.T) {
	backend := newMapStore()
	presenter := &recordingPresenter{}
	service := newTestService(pageExtractor(phishingPage), nil, backend, presenter, time.Hour)

	result, err := service.RunScan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 65, result.RiskScore)
	assert.Equal(t, ThreatMedium, result.ThreatLevel)
	assert.Equal(t, "⚠️ Suspicious page. Be careful.", result.Warning)
	assert.NotEmpty(t, result.ScanID)

	events, results, _ := presenter.snapshot()
	assert.Equal(t, []string{"loading", "result"}, events)
	require.Len(t, results, 1)
	assert.Same(t, result, results[0])

	stored := NewSafeStore(backend, nil, 0).LoadLastResult(context.Background())
	require.NotNil(t, stored)
	assert.Equal(t, 65, stored.RiskScore)
	assert.Equal(t, result.ScanID, stored.ScanID)
}

func TestScanService_RunScanWithoutStorage(t *testing.T) {
	presenter := &recordingPresenter{}
	service := newTestService(pageExtractor(PageContent{URL: "https://example.com"}), nil, nil, presenter, time.Hour)

	result, err := service.RunScan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.RiskScore)
	assert.Equal(t, ThreatLow, result.ThreatLevel)

	events, _, _ := presenter.snapshot()
	assert.Equal(t, []string{"loading", "result"}, events)
}

func TestScanService_RunScanExtractionFailure(t *testing.T) {
	backend := newMapStore()
	presenter := &recordingPresenter{}
	extractor := &fakeExtractor{extractFunc: func(context.Context) (*PageContent, error) {
		return nil, &ExtractionError{URL: "chrome://settings", Err: errors.New("cannot access a chrome:// URL")}
	}}
	service := newTestService(extractor, nil, backend, presenter, time.Hour)

	result, err := service.RunScan(context.Background())
	require.Error(t, err)
	assert.Nil(t, result)

	var extractionErr *ExtractionError
	assert.ErrorAs(t, err, &extractionErr)

	events, results, errs := presenter.snapshot()
	assert.Equal(t, []string{"loading", "error"}, events)
	assert.Empty(t, results)
	require.Len(t, errs, 1)
	assert.False(t, backend.has(KeyLastScanResult))
}

func TestScanService_RunScanNilContent(t *testing.T) {
	presenter := &recordingPresenter{}
	extractor := &fakeExtractor{extractFunc: func(context.Context) (*PageContent, error) {
		return nil, nil
	}}
	service := newTestService(extractor, nil, nil, presenter, time.Hour)

	_, err := service.RunScan(context.Background())

	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
}

func TestScanService_ScorerFailureFallsBack(t *testing.T) {
	presenter := &recordingPresenter{}
	scorer := &fakeScorer{scoreFunc: func(context.Context, *PageContent) (*ScanResult, error) {
		return nil, &RemoteScoringError{Endpoint: "http://localhost:8501/analyze", Err: errors.New("connection refused")}
	}}
	service := newTestService(pageExtractor(phishingPage), scorer, nil, presenter, time.Hour)

	result, err := service.RunScan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 65, result.RiskScore)
	assert.Equal(t, ThreatMedium, result.ThreatLevel)
	assert.Equal(t, SourceHeuristic, result.Source)
}

func TestScanService_ScorerResultUsed(t *testing.T) {
	scorer := &fakeScorer{scoreFunc: func(_ context.Context, content *PageContent) (*ScanResult, error) {
		return &ScanResult{
			RiskScore:   85,
			ThreatLevel: ThreatHigh,
			Warning:     WarningFor(ThreatHigh),
			URL:         content.URL,
			Source:      "remote",
		}, nil
	}}
	service := newTestService(pageExtractor(phishingPage), scorer, nil, &recordingPresenter{}, time.Hour)

	result, err := service.RunScan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 85, result.RiskScore)
	assert.Equal(t, "remote", result.Source)
}

func TestScanService_TrustedDomainBypassesScorer(t *testing.T) {
	scorer := &fakeScorer{scoreFunc: func(context.Context, *PageContent) (*ScanResult, error) {
		t.Fatal("scorer must not be called for trusted pages")
		return nil, nil
	}}
	trusted := staticTrust{phishingPage.URL: true}
	service := NewScanService(pageExtractor(phishingPage), scorer, NewRiskEngineWithClock(fixedClock),
		nil, &recordingPresenter{}, trusted, zap.NewNop(), time.Hour)

	result, err := service.RunScan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.RiskScore)
	assert.Equal(t, ThreatLow, result.ThreatLevel)
	assert.Equal(t, SourceAllowlist, result.Source)
}

func TestScanService_TriggerScanGate(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	extractor := &fakeExtractor{extractFunc: func(context.Context) (*PageContent, error) {
		close(entered)
		<-release
		return &PageContent{URL: "https://example.com"}, nil
	}}
	service := newTestService(extractor, nil, nil, &recordingPresenter{}, time.Hour)

	done := make(chan error, 1)
	go func() {
		_, err := service.TriggerScan(context.Background())
		done <- err
	}()
	<-entered

	_, err := service.TriggerScan(context.Background())
	assert.ErrorIs(t, err, ErrScanInProgress)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), extractor.calls.Load())

	// the gate is released after completion
	extractor.extractFunc = func(context.Context) (*PageContent, error) {
		return &PageContent{URL: "https://example.com"}, nil
	}
	_, err = service.TriggerScan(context.Background())
	assert.NoError(t, err)
}

func TestScanService_ToggleAutoScanKeepsSingleTimer(t *testing.T) {
	backend := newMapStore()
	extractor := pageExtractor(PageContent{URL: "https://example.com"})
	service := newTestService(extractor, nil, backend, &recordingPresenter{}, 10*time.Millisecond)
	defer service.Close()
	ctx := context.Background()

	service.ToggleAutoScan(ctx, true)
	service.ToggleAutoScan(ctx, true)

	assert.True(t, service.AutoScanActive())
	require.Eventually(t, func() bool { return service.activeLoops() == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return extractor.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	assert.True(t, NewSafeStore(backend, nil, 0).LoadAutoScanState(ctx).Enabled)

	service.ToggleAutoScan(ctx, false)

	assert.False(t, service.AutoScanActive())
	require.Eventually(t, func() bool { return service.activeLoops() == 0 }, time.Second, 5*time.Millisecond)
	assert.False(t, NewSafeStore(backend, nil, 0).LoadAutoScanState(ctx).Enabled)

	stopped := extractor.calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, stopped, extractor.calls.Load())
}

func TestScanService_InitializeRestoresState(t *testing.T) {
	backend := newMapStore()
	seed := NewSafeStore(backend, nil, 0)
	ctx := context.Background()
	seed.SaveAutoScanState(ctx, AutoScanState{Enabled: true})
	seed.SaveLastResult(ctx, &ScanResult{
		RiskScore:   80,
		ThreatLevel: ThreatHigh,
		Warning:     WarningFor(ThreatHigh),
		URL:         "http://10.0.0.1/login",
		Timestamp:   fixedTime,
	})

	presenter := &recordingPresenter{}
	service := newTestService(pageExtractor(PageContent{URL: "https://example.com"}), nil, backend, presenter, time.Hour)
	defer service.Close()

	require.NoError(t, service.Initialize(ctx))
	assert.True(t, service.AutoScanActive())

	// the restored result is shown before the immediate timed scan
	require.Eventually(t, func() bool {
		_, results, _ := presenter.snapshot()
		return len(results) == 2
	}, time.Second, 5*time.Millisecond)

	_, results, _ := presenter.snapshot()
	assert.Equal(t, 80, results[0].RiskScore)
	assert.Equal(t, 0, results[1].RiskScore)
}

func TestScanService_InitializeWithoutState(t *testing.T) {
	presenter := &recordingPresenter{}
	service := newTestService(pageExtractor(PageContent{}), nil, newMapStore(), presenter, time.Hour)
	defer service.Close()

	require.NoError(t, service.Initialize(context.Background()))

	assert.False(t, service.AutoScanActive())
	events, _, _ := presenter.snapshot()
	assert.Empty(t, events)
}

func TestScanService_CloseStopsTimer(t *testing.T) {
	service := newTestService(pageExtractor(PageContent{}), nil, nil, &recordingPresenter{}, 10*time.Millisecond)
	ctx := context.Background()

	service.ToggleAutoScan(ctx, true)
	service.Close()
	service.Close()

	assert.False(t, service.AutoScanActive())
	require.Eventually(t, func() bool { return service.activeLoops() == 0 }, time.Second, 5*time.Millisecond)

	// a closed service never restarts the timer
	service.ToggleAutoScan(ctx, true)
	assert.False(t, service.AutoScanActive())
}
