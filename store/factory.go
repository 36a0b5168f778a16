package store

import "fmt"

// Kind tags which cleanup policy a Config selects. The three kinds share
// one contract (Store) and differ only in when MaybeCleanup sweeps —
// a tagged variant, not a class hierarchy (see the component design notes
// on policy-as-strategy).
type Kind int

const (
	Periodic Kind = iota
	Probabilistic
	Adaptive
)

func (k Kind) String() string {
	switch k {
	case Periodic:
		return "periodic"
	case Probabilistic:
		return "probabilistic"
	case Adaptive:
		return "adaptive"
	default:
		return "unknown"
	}
}

// Config selects a Kind and carries every variant's parameters; only the
// fields relevant to the selected Kind are consulted.
type Config struct {
	Kind Kind

	// CapacityHint preallocates the backing map. All variants grow past it.
	CapacityHint int

	// PeriodicIntervalNano is used when Kind == Periodic.
	PeriodicIntervalNano int64

	// ProbabilisticDenominator and ProbabilisticSeed are used when
	// Kind == Probabilistic.
	ProbabilisticDenominator int64
	ProbabilisticSeed        int64

	// Adaptive is used when Kind == Adaptive.
	Adaptive AdaptiveConfig
}

// New constructs the Store variant named by cfg.Kind.
func New(cfg Config) (Store, error) {
	switch cfg.Kind {
	case Periodic:
		return NewPeriodic(cfg.CapacityHint, cfg.PeriodicIntervalNano), nil
	case Probabilistic:
		return NewProbabilistic(cfg.CapacityHint, cfg.ProbabilisticDenominator, cfg.ProbabilisticSeed), nil
	case Adaptive:
		return NewAdaptive(cfg.CapacityHint, cfg.Adaptive), nil
	default:
		return nil, fmt.Errorf("store: unknown kind %v", cfg.Kind)
	}
}
