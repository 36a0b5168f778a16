package gcra

import "errors"

// ErrInvalidParameter is returned when a policy parameter violates a
// precondition of the kernel: count_per_period <= 0, period_seconds <= 0,
// max_burst < 0, or quantity < 0.
var ErrInvalidParameter = errors.New("gcra: invalid parameter")

// ErrOverflow is returned when a derived product (emission interval, delay
// variation tolerance, or increment) would exceed the signed 64-bit range.
var ErrOverflow = errors.New("gcra: arithmetic overflow")
