package core

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Persisted keys
const (
	KeyAutoScanEnabled = "autoScanEnabled"
	KeyLastScanResult  = "lastScanResult"
)

const defaultStorageTimeout = 2 * time.Second

// SafeStore wraps an optional KVStore. It never returns errors to callers:
// a missing or failing backend degrades to an in-memory-only session.
type SafeStore struct {
	store   KVStore
	logger  *zap.Logger
	timeout time.Duration
}

// NewSafeStore creates a new safe store. store may be nil.
func NewSafeStore(store KVStore, logger *zap.Logger, timeout time.Duration) *SafeStore {
	if timeout <= 0 {
		timeout = defaultStorageTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SafeStore{
		store:   store,
		logger:  logger,
		timeout: timeout,
	}
}

// Available reports whether a backing store is configured
func (s *SafeStore) Available() bool {
	return s.store != nil
}

// Get retrieves raw values for keys, or an empty mapping on any failure
func (s *SafeStore) Get(ctx context.Context, keys ...string) map[string]json.RawMessage {
	values := make(map[string]json.RawMessage)
	if s.store == nil {
		return values
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.store.Get(ctx, keys)
	if err != nil {
		s.logger.Warn("Storage read failed, continuing without persisted state",
			zap.Strings("keys", keys), zap.Error(err))
		return values
	}

	for k, v := range raw {
		values[k] = json.RawMessage(v)
	}
	return values
}

// Set stores values best-effort
func (s *SafeStore) Set(ctx context.Context, values map[string]any) {
	if s.store == nil {
		return
	}

	encoded := make(map[string][]byte, len(values))
	for k, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			s.logger.Warn("Failed to encode value for storage", zap.String("key", k), zap.Error(err))
			continue
		}
		encoded[k] = data
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.store.Set(ctx, encoded); err != nil {
		s.logger.Warn("Storage write failed", zap.Error(err))
	}
}

// LoadAutoScanState reads the persisted toggle; absent means disabled
func (s *SafeStore) LoadAutoScanState(ctx context.Context) AutoScanState {
	raw, ok := s.Get(ctx, KeyAutoScanEnabled)[KeyAutoScanEnabled]
	if !ok {
		return AutoScanState{}
	}

	var enabled bool
	if err := json.Unmarshal(raw, &enabled); err != nil {
		s.logger.Debug("Ignoring malformed auto-scan state", zap.Error(err))
		return AutoScanState{}
	}
	return AutoScanState{Enabled: enabled}
}

// SaveAutoScanState persists the toggle
func (s *SafeStore) SaveAutoScanState(ctx context.Context, state AutoScanState) {
	s.Set(ctx, map[string]any{KeyAutoScanEnabled: state.Enabled})
}

// LoadLastResult returns the last persisted result, or nil
func (s *SafeStore) LoadLastResult(ctx context.Context) *ScanResult {
	raw, ok := s.Get(ctx, KeyLastScanResult)[KeyLastScanResult]
	if !ok {
		return nil
	}

	var result ScanResult
	if err := json.Unmarshal(raw, &result); err != nil {
		s.logger.Debug("Ignoring malformed last scan result", zap.Error(err))
		return nil
	}
	return &result
}

// SaveLastResult persists the result as the last scan
func (s *SafeStore) SaveLastResult(ctx context.Context, result *ScanResult) {
	s.Set(ctx, map[string]any{KeyLastScanResult: result})
}

// Close stops the backing store if it holds resources
func (s *SafeStore) Close() {
	if stopper, ok := s.store.(interface{ Stop() }); ok {
		stopper.Stop()
	}
}
