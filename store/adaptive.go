package store

import "github.com/cellgate/cellgate/gcra"

// Defaults for the Adaptive policy, per the component design.
const (
	DefaultAdaptiveMinInterval     int64   = 1 * 1_000_000_000
	DefaultAdaptiveMaxInterval     int64   = 300 * 1_000_000_000
	DefaultAdaptiveInitialInterval int64   = 10 * 1_000_000_000
	DefaultAdaptiveMaxOps          int64   = 100_000
	DefaultAdaptiveHighWatermark   float64 = 0.25
	DefaultAdaptiveLowWatermark    float64 = 0.01
)

// AdaptiveStore sweeps when either an operation-count budget or a wall-time
// budget is exhausted, whichever comes first, then widens or narrows its
// own interval based on how much the last sweep actually reclaimed.
type AdaptiveStore struct {
	data map[string]gcra.CellState

	minIntervalNano int64
	maxIntervalNano int64
	maxOps          int64
	highWatermark   float64
	lowWatermark    float64

	currentIntervalNano int64
	lastSweepNano       int64
	ops                 int64
}

// AdaptiveConfig holds the tunable watermarks and bounds; zero values fall
// back to the component-design defaults.
type AdaptiveConfig struct {
	MinIntervalNano     int64
	MaxIntervalNano     int64
	InitialIntervalNano int64
	MaxOps              int64
	HighWatermark       float64
	LowWatermark        float64
}

func NewAdaptive(capacityHint int, cfg AdaptiveConfig) *AdaptiveStore {
	if cfg.MinIntervalNano <= 0 {
		cfg.MinIntervalNano = DefaultAdaptiveMinInterval
	}
	if cfg.MaxIntervalNano <= 0 {
		cfg.MaxIntervalNano = DefaultAdaptiveMaxInterval
	}
	if cfg.InitialIntervalNano <= 0 {
		cfg.InitialIntervalNano = DefaultAdaptiveInitialInterval
	}
	if cfg.MaxOps <= 0 {
		cfg.MaxOps = DefaultAdaptiveMaxOps
	}
	if cfg.HighWatermark <= 0 {
		cfg.HighWatermark = DefaultAdaptiveHighWatermark
	}
	if cfg.LowWatermark <= 0 {
		cfg.LowWatermark = DefaultAdaptiveLowWatermark
	}
	return &AdaptiveStore{
		data:                make(map[string]gcra.CellState, capacityHint),
		minIntervalNano:     cfg.MinIntervalNano,
		maxIntervalNano:     cfg.MaxIntervalNano,
		maxOps:              cfg.MaxOps,
		highWatermark:       cfg.HighWatermark,
		lowWatermark:        cfg.LowWatermark,
		currentIntervalNano: cfg.InitialIntervalNano,
	}
}

func (s *AdaptiveStore) GetOrDefault(key string, nowNano int64) gcra.CellState {
	s.ops++
	if state, ok := s.data[key]; ok && state.ExpiryNano >= nowNano {
		return state
	}
	return defaultState(nowNano)
}

func (s *AdaptiveStore) Insert(key string, state gcra.CellState) {
	s.data[key] = state
}

func (s *AdaptiveStore) MaybeCleanup(nowNano int64) {
	elapsed := nowNano - s.lastSweepNano
	if s.ops < s.maxOps && elapsed < s.currentIntervalNano {
		return
	}

	before := len(s.data)
	removed := sweep(s.data, nowNano)

	var removedRatio float64
	if before > 0 {
		removedRatio = float64(removed) / float64(before)
	}

	switch {
	case removedRatio >= s.highWatermark:
		s.currentIntervalNano = max64(s.minIntervalNano, s.currentIntervalNano/2)
	case removedRatio <= s.lowWatermark:
		s.currentIntervalNano = min64(s.maxIntervalNano, s.currentIntervalNano*2)
	}

	s.lastSweepNano = nowNano
	s.ops = 0
}

func (s *AdaptiveStore) Len() int { return len(s.data) }

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
