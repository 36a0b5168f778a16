package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cellgate/cellgate/actor"
	"github.com/cellgate/cellgate/clock"
	"github.com/cellgate/cellgate/store"
)

func newTestServer(t *testing.T) (*Server, *actor.Actor) {
	t.Helper()
	st := store.NewPeriodic(16, 60_000_000_000)
	a := actor.New(st, clock.System{})
	go a.Run()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = a.Shutdown(ctx)
	})
	return New(a, nil), a
}

func TestHTTP_ThrottleAllowed(t *testing.T) {
	s, _ := newTestServer(t)

	body := `{"key":"user1","max_burst":2,"count_per_period":1,"period":1,"quantity":1}`
	req := httptest.NewRequest(http.MethodPost, "/throttle", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"allowed":true`)
}

func TestHTTP_MalformedBodyReturns400(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/throttle", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTP_InvalidParameterReturns400(t *testing.T) {
	s, _ := newTestServer(t)

	body := `{"key":"user1","max_burst":-1,"count_per_period":1,"period":1}`
	req := httptest.NewRequest(http.MethodPost, "/throttle", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTP_Health(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHTTP_MetricsExposesCounters(t *testing.T) {
	s, _ := newTestServer(t)

	body := `{"key":"user1","max_burst":2,"count_per_period":1,"period":1,"quantity":1}`
	req := httptest.NewRequest(http.MethodPost, "/throttle", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.Handler().ServeHTTP(httptest.NewRecorder(), req)

	metricsReq := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, metricsReq)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cellgate_requests_total")
}
