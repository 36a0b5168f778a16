package store

import (
	"math/rand"

	"github.com/cellgate/cellgate/gcra"
)

const DefaultProbabilisticDenominator int64 = 10_000

// ProbabilisticStore sweeps with probability 1/denominator on each
// MaybeCleanup call, so cost is amortized rather than clock-driven.
type ProbabilisticStore struct {
	data        map[string]gcra.CellState
	denominator int64
	rng         *rand.Rand
}

// NewProbabilistic creates a Probabilistic store. denominator <= 0 uses
// DefaultProbabilisticDenominator. seed makes sweep timing reproducible
// across runs with identical request sequences (§8 policy-parity testing);
// it never affects GCRA outcomes, only when memory is reclaimed.
func NewProbabilistic(capacityHint int, denominator int64, seed int64) *ProbabilisticStore {
	if denominator <= 0 {
		denominator = DefaultProbabilisticDenominator
	}
	return &ProbabilisticStore{
		data:        make(map[string]gcra.CellState, capacityHint),
		denominator: denominator,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

func (s *ProbabilisticStore) GetOrDefault(key string, nowNano int64) gcra.CellState {
	if state, ok := s.data[key]; ok && state.ExpiryNano >= nowNano {
		return state
	}
	return defaultState(nowNano)
}

func (s *ProbabilisticStore) Insert(key string, state gcra.CellState) {
	s.data[key] = state
}

func (s *ProbabilisticStore) MaybeCleanup(nowNano int64) {
	if s.rng.Int63n(s.denominator) != 0 {
		return
	}
	sweep(s.data, nowNano)
}

func (s *ProbabilisticStore) Len() int { return len(s.data) }
