// Package store implements the keyed CellState map with pluggable
// expiry-cleanup policies. A Store is owned exclusively by one Actor
// goroutine (see package actor); it performs no internal locking.
package store

import "github.com/cellgate/cellgate/gcra"

// Store is the common contract shared by all cleanup-policy variants. They
// differ only in when MaybeCleanup performs a full sweep.
type Store interface {
	// GetOrDefault returns the live (non-expired) state for key, or a
	// synthetic default (TATNano: nowNano, ExpiryNano: 0) if absent or
	// expired.
	GetOrDefault(key string, nowNano int64) gcra.CellState

	// Insert commits state for key.
	Insert(key string, state gcra.CellState)

	// MaybeCleanup gives the policy a chance to run a full sweep,
	// removing entries whose ExpiryNano < nowNano. It may be a no-op.
	MaybeCleanup(nowNano int64)

	// Len returns the number of keys currently held, which may include
	// expired entries not yet swept.
	Len() int
}

// defaultState is the synthetic state GetOrDefault returns for an absent or
// expired key: tat == now, expiry == 0 so it is immediately eligible for
// cleanup.
func defaultState(nowNano int64) gcra.CellState {
	return gcra.CellState{TATNano: nowNano, ExpiryNano: 0}
}

// sweep removes every key whose state has expired as of nowNano. It is the
// one full O(n) pass shared by all three policies; they differ only in
// deciding *when* to call it.
func sweep(data map[string]gcra.CellState, nowNano int64) (removed int) {
	for key, state := range data {
		if state.ExpiryNano < nowNano {
			delete(data, key)
			removed++
		}
	}
	return removed
}
