package store

import "github.com/cellgate/cellgate/gcra"

const DefaultPeriodicInterval int64 = 60 * 1_000_000_000 // 60s in ns

// PeriodicStore sweeps on a fixed wall-clock interval: the first
// MaybeCleanup call at or after nextCleanupNano runs a full sweep and
// reschedules nextCleanupNano relative to the sweep time.
type PeriodicStore struct {
	data            map[string]gcra.CellState
	intervalNano    int64
	nextCleanupNano int64
}

// NewPeriodic creates a Periodic store. capacityHint preallocates the
// backing map; intervalNano <= 0 uses DefaultPeriodicInterval. The first
// sweep is due once nowNano reaches intervalNano.
func NewPeriodic(capacityHint int, intervalNano int64) *PeriodicStore {
	if intervalNano <= 0 {
		intervalNano = DefaultPeriodicInterval
	}
	return &PeriodicStore{
		data:            make(map[string]gcra.CellState, capacityHint),
		intervalNano:    intervalNano,
		nextCleanupNano: intervalNano,
	}
}

func (s *PeriodicStore) GetOrDefault(key string, nowNano int64) gcra.CellState {
	if state, ok := s.data[key]; ok && state.ExpiryNano >= nowNano {
		return state
	}
	return defaultState(nowNano)
}

func (s *PeriodicStore) Insert(key string, state gcra.CellState) {
	s.data[key] = state
}

func (s *PeriodicStore) MaybeCleanup(nowNano int64) {
	if nowNano < s.nextCleanupNano {
		return
	}
	sweep(s.data, nowNano)
	s.nextCleanupNano = nowNano + s.intervalNano
}

func (s *PeriodicStore) Len() int { return len(s.data) }
