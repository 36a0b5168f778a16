// Package grpcapi implements the gRPC transport codec (§6.2): a
// RateLimiter service with one Throttle RPC, whose field names mirror the
// HTTP/JSON body one-for-one.
package grpcapi

// ThrottleRequest mirrors the HTTP/JSON request body's fields.
type ThrottleRequest struct {
	Key            string `json:"key"`
	MaxBurst       int32  `json:"max_burst"`
	CountPerPeriod int32  `json:"count_per_period"`
	Period         int32  `json:"period"`
	Quantity       int32  `json:"quantity"`
}

// ThrottleResponse mirrors the HTTP/JSON response body's fields.
type ThrottleResponse struct {
	Allowed    bool  `json:"allowed"`
	Limit      int32 `json:"limit"`
	Remaining  int32 `json:"remaining"`
	RetryAfter int32 `json:"retry_after"`
	ResetAfter int32 `json:"reset_after"`
}
