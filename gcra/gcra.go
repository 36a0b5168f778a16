// Package gcra implements the Generic Cell Rate Algorithm decision function:
// a pure function from (state, policy, now) to (new state, outcome). It owns
// no storage and no clock; both are supplied by the caller.
package gcra

import "math"

const nanosPerSecond int64 = 1_000_000_000

// CellState is the persisted state for a single key.
type CellState struct {
	// TATNano is the Theoretical Arrival Time, in nanoseconds since the
	// Unix epoch.
	TATNano int64
	// ExpiryNano is the wall-clock instant after which this entry may be
	// garbage collected.
	ExpiryNano int64
}

// Policy is the set of per-request parameters that are not themselves
// stored; only their effect (the resulting CellState) persists.
type Policy struct {
	// MaxBurst is the maximum burst capacity; must be >= 0.
	MaxBurst int64
	// CountPerPeriod is the number of cells admitted per Period; must be > 0.
	CountPerPeriod int64
	// PeriodSeconds is the period length in seconds; must be > 0.
	PeriodSeconds int64
	// Quantity is the number of cells this request consumes; must be >= 0.
	// A quantity of 0 is a peek.
	Quantity int64
}

// Outcome is the result of a single decision.
type Outcome struct {
	Allowed     bool
	Limit       int64
	Remaining   int64
	RetryAfterS int64
	ResetAfterS int64
}

// Decide evaluates one request against the given state (nil if the key has
// no prior entry, or the entry has expired) and returns the state to commit
// (only meaningful when Outcome.Allowed) plus the outcome.
//
// Decide never mutates state; committing the returned CellState to the
// store is the caller's responsibility, and only happens on allow.
func Decide(state *CellState, policy Policy, nowNano int64) (CellState, Outcome, error) {
	if policy.CountPerPeriod <= 0 || policy.PeriodSeconds <= 0 || policy.MaxBurst < 0 || policy.Quantity < 0 {
		return CellState{}, Outcome{}, ErrInvalidParameter
	}

	emissionInterval, err := checkedDiv(policy.PeriodSeconds, nanosPerSecond, policy.CountPerPeriod)
	if err != nil {
		return CellState{}, Outcome{}, err
	}

	// limit (burst+1) is the drop-in-compatible reported capacity; dvt is
	// scaled by the same quantity, not by burst alone, or burst=0 would
	// deny every request regardless of timing (dvt=0 leaves no room for
	// even a single admitted cell).
	limit := policy.MaxBurst + 1

	dvt, err := checkedMul(emissionInterval, limit)
	if err != nil {
		return CellState{}, Outcome{}, err
	}

	tat := nowNano
	if state != nil && state.ExpiryNano >= nowNano {
		tat = state.TATNano
	}

	increment, err := checkedMul(emissionInterval, policy.Quantity)
	if err != nil {
		return CellState{}, Outcome{}, err
	}

	base := tat
	if nowNano > base {
		base = nowNano
	}
	newTAT, err := checkedAdd(base, increment)
	if err != nil {
		return CellState{}, Outcome{}, err
	}

	allowAt, err := checkedSub(newTAT, dvt)
	if err != nil {
		return CellState{}, Outcome{}, err
	}
	allowed := nowNano >= allowAt

	var tatEffective int64
	var newState CellState
	if allowed {
		tatEffective = newTAT
		expiry, err := checkedAdd(newTAT, dvt)
		if err != nil {
			return CellState{}, Outcome{}, err
		}
		newState = CellState{TATNano: newTAT, ExpiryNano: expiry}
	} else {
		tatEffective = tat
		newState = CellState{TATNano: tat, ExpiryNano: tat + dvt}
	}

	var remaining int64
	if emissionInterval > 0 {
		remaining = max64(0, floorDiv(dvt-(tatEffective-nowNano), emissionInterval))
	}

	var retryAfterS int64
	if !allowed {
		retryAfterS = ceilDiv(allowAt-nowNano, nanosPerSecond)
	}
	resetAfterS := ceilDiv(max64(0, tatEffective-nowNano), nanosPerSecond)

	return newState, Outcome{
		Allowed:     allowed,
		Limit:       limit,
		Remaining:   remaining,
		RetryAfterS: retryAfterS,
		ResetAfterS: resetAfterS,
	}, nil
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func ceilDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) == (b < 0)) {
		q++
	}
	return q
}

// checkedDiv computes (a * scale) / divisor, failing with ErrOverflow if
// a*scale would exceed the signed 64-bit range.
func checkedDiv(a, scale, divisor int64) (int64, error) {
	product, err := checkedMul(a, scale)
	if err != nil {
		return 0, err
	}
	return product / divisor, nil
}

func checkedMul(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	result := a * b
	if result/b != a {
		return 0, ErrOverflow
	}
	return result, nil
}

func checkedAdd(a, b int64) (int64, error) {
	result := a + b
	if (b > 0 && result < a) || (b < 0 && result > a) {
		return 0, ErrOverflow
	}
	return result, nil
}

func checkedSub(a, b int64) (int64, error) {
	return checkedAdd(a, -b)
}

// MaxInt64 is exported for tests that construct deliberately overflowing
// policies.
const MaxInt64 = math.MaxInt64
