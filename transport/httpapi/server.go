// Package httpapi implements the HTTP/JSON transport codec: it decodes
// POST /throttle bodies into actor.Request, forwards them to the shared
// Actor, and encodes the outcome back onto the wire. It never touches the
// Store or the GCRA kernel directly.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cellgate/cellgate/actor"
	"github.com/cellgate/cellgate/gcra"
)

// throttleRequest mirrors §6.1 of the wire contract.
type throttleRequest struct {
	Key            string `json:"key"`
	MaxBurst       int64  `json:"max_burst"`
	CountPerPeriod int64  `json:"count_per_period"`
	Period         int64  `json:"period"`
	Quantity       *int64 `json:"quantity,omitempty"`
}

// throttleResponse mirrors §6.1's response body.
type throttleResponse struct {
	Allowed    bool  `json:"allowed"`
	Limit      int64 `json:"limit"`
	Remaining  int64 `json:"remaining"`
	RetryAfter int64 `json:"retry_after"`
	ResetAfter int64 `json:"reset_after"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server is the Echo-backed HTTP/JSON transport.
type Server struct {
	echo    *echo.Echo
	handle  *actor.Actor
	logger  *slog.Logger
	metrics *collector
}

// New builds the HTTP transport around a shared Actor handle. addr is only
// used by ListenAndServe; the Echo instance can also be exercised directly
// in tests via Handler().
func New(a *actor.Actor, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{echo: e, handle: a, logger: logger.With("component", "http")}
	s.metrics = newCollector(a)

	reg := prometheus.NewRegistry()
	reg.MustRegister(s.metrics)

	e.POST("/throttle", s.handleThrottle)
	e.GET("/health", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	return s
}

// Handler exposes the underlying http.Handler for tests (httptest) and for
// embedding behind another listener.
func (s *Server) Handler() http.Handler { return s.echo }

// ListenAndServe starts the HTTP listener; it blocks until the server
// stops or returns an error.
func (s *Server) ListenAndServe(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown gracefully stops accepting new connections.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleThrottle(c echo.Context) error {
	var req throttleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed request body"})
	}

	quantity := int64(1)
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	outcome, err := s.handle.Throttle(c.Request().Context(), actor.Request{
		Key:            req.Key,
		MaxBurst:       req.MaxBurst,
		CountPerPeriod: req.CountPerPeriod,
		PeriodSeconds:  req.Period,
		Quantity:       quantity,
	})
	if err != nil {
		return s.encodeError(c, err)
	}

	return c.JSON(http.StatusOK, throttleResponse{
		Allowed:    outcome.Allowed,
		Limit:      outcome.Limit,
		Remaining:  outcome.Remaining,
		RetryAfter: outcome.RetryAfterS,
		ResetAfter: outcome.ResetAfterS,
	})
}

func (s *Server) encodeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, gcra.ErrInvalidParameter), errors.Is(err, gcra.ErrOverflow):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, actor.ErrBackpressure), errors.Is(err, actor.ErrUnavailable):
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	default:
		s.logger.Error("unexpected throttle error", "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
