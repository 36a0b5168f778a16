package actor

import "sync/atomic"

// Metrics is the set of monotonic counters the Actor maintains. Every field
// is updated with an atomic add on the decision path and read with an
// atomic load by external readers (e.g. the Prometheus collector in
// transport/httpapi); no lock is needed because each counter is written by
// exactly one goroutine (the Actor) and read by many.
type Metrics struct {
	total   atomic.Int64
	allowed atomic.Int64
	denied  atomic.Int64
}

func (m *Metrics) recordAllowed() {
	m.total.Add(1)
	m.allowed.Add(1)
}

func (m *Metrics) recordDenied() {
	m.total.Add(1)
	m.denied.Add(1)
}

// Snapshot is a point-in-time read of the counters.
type Snapshot struct {
	Total   int64
	Allowed int64
	Denied  int64
}

func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		Total:   m.total.Load(),
		Allowed: m.allowed.Load(),
		Denied:  m.denied.Load(),
	}
}
