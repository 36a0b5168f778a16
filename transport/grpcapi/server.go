package grpcapi

import (
	"context"
	"errors"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/cellgate/cellgate/actor"
	"github.com/cellgate/cellgate/gcra"
)

// Server implements RateLimiterServer by forwarding Throttle calls to a
// shared Actor handle. It performs no GCRA logic and no Store access.
type Server struct {
	handle *actor.Actor
	logger *slog.Logger
	grpc   *grpc.Server
}

// New wraps a grpc.Server around the given Actor handle.
func New(a *actor.Actor, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{handle: a, logger: logger.With("component", "grpc")}
	s.grpc = grpc.NewServer()
	RegisterRateLimiterServer(s.grpc, s)
	return s
}

// Throttle implements RateLimiterServer.
func (s *Server) Throttle(ctx context.Context, req *ThrottleRequest) (*ThrottleResponse, error) {
	// Unlike the HTTP/JSON body, a proto3 scalar field cannot distinguish
	// "omitted" from an explicit zero, so quantity is forwarded as sent;
	// callers wanting the HTTP transport's implicit default of 1 must
	// send it explicitly.
	outcome, err := s.handle.Throttle(ctx, actor.Request{
		Key:            req.Key,
		MaxBurst:       int64(req.MaxBurst),
		CountPerPeriod: int64(req.CountPerPeriod),
		PeriodSeconds:  int64(req.Period),
		Quantity:       int64(req.Quantity),
	})
	if err != nil {
		return nil, mapError(err)
	}

	return &ThrottleResponse{
		Allowed:    outcome.Allowed,
		Limit:      int32(outcome.Limit),
		Remaining:  int32(outcome.Remaining),
		RetryAfter: int32(outcome.RetryAfterS),
		ResetAfter: int32(outcome.ResetAfterS),
	}, nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, gcra.ErrInvalidParameter), errors.Is(err, gcra.ErrOverflow):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, actor.ErrBackpressure):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, actor.ErrUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

// Serve blocks, accepting connections on lis until GracefulStop is called.
func (s *Server) Serve(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

// GracefulStop stops accepting new RPCs and waits for in-flight ones to
// finish.
func (s *Server) GracefulStop() { s.grpc.GracefulStop() }
