package actor

import "errors"

// ErrBackpressure is returned to a producer when the command queue is full.
var ErrBackpressure = errors.New("actor: queue full, backpressure")

// ErrUnavailable is returned to a producer when the Actor is draining or
// has terminated.
var ErrUnavailable = errors.New("actor: unavailable (draining or terminated)")
