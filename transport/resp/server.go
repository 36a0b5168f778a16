package resp

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/cellgate/cellgate/actor"
	"github.com/cellgate/cellgate/gcra"
)

// Server is the RESP2 transport: one goroutine per accepted connection,
// each a producer against the shared Actor handle.
type Server struct {
	handle *actor.Actor
	logger *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	wg       sync.WaitGroup
	closed   bool
}

// New wraps a RESP listener around the given Actor handle.
func New(a *actor.Actor, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{handle: a, logger: logger.With("component", "resp")}
}

// Serve accepts connections on lis until Close is called.
func (s *Server) Serve(lis net.Listener) error {
	s.mu.Lock()
	s.listener = lis
	s.mu.Unlock()

	for {
		conn, err := lis.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return nil
			}
			return err
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

// Close stops accepting new connections and waits for every open
// connection to end. It does not close open connections itself, so it
// returns only once each client has disconnected (or its read fails).
func (s *Server) Close() error {
	s.mu.Lock()
	s.closed = true
	lis := s.listener
	s.mu.Unlock()

	var err error
	if lis != nil {
		err = lis.Close()
	}
	s.wg.Wait()
	return err
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	connID := uuid.New().String()
	s.logger.Debug("resp: connection opened", "conn_id", connID, "remote", conn.RemoteAddr())
	defer s.logger.Debug("resp: connection closed", "conn_id", connID, "remote", conn.RemoteAddr())

	r := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)

	for {
		cmd, err := readCommand(r)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.logger.Debug("resp: connection read error", "conn_id", connID, "error", err, "remote", conn.RemoteAddr())
			}
			return
		}

		if len(cmd.args) == 0 {
			_ = writeError(w, "wrong number of arguments")
			continue
		}

		switch strings.ToUpper(cmd.args[0]) {
		case "PING":
			if err := writeSimpleString(w, "PONG"); err != nil {
				return
			}
		case "QUIT":
			_ = writeSimpleString(w, "OK")
			return
		case "THROTTLE":
			if err := s.handleThrottle(w, cmd.args[1:]); err != nil {
				return
			}
		default:
			if err := writeError(w, "unknown command"); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleThrottle(w *bufio.Writer, args []string) error {
	if len(args) < 4 || len(args) > 5 {
		return writeError(w, "wrong number of arguments")
	}

	key := args[0]

	nums := make([]int64, 0, 4)
	for _, a := range args[1:] {
		n, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return writeError(w, "value is not an integer")
		}
		nums = append(nums, n)
	}

	quantity := int64(1)
	if len(nums) == 4 {
		quantity = nums[3]
	}

	outcome, err := s.handle.Throttle(context.Background(), actor.Request{
		Key:            key,
		MaxBurst:       nums[0],
		CountPerPeriod: nums[1],
		PeriodSeconds:  nums[2],
		Quantity:       quantity,
	})
	if err != nil {
		return s.writeMappedError(w, err)
	}

	allowed := int64(0)
	if outcome.Allowed {
		allowed = 1
	}

	// §6.3: array reply order is [allowed, limit, remaining, reset_after,
	// retry_after] — reset before retry, matching Redis-cell exactly.
	return writeArray(w, []int64{allowed, outcome.Limit, outcome.Remaining, outcome.ResetAfterS, outcome.RetryAfterS})
}

func (s *Server) writeMappedError(w *bufio.Writer, err error) error {
	switch {
	case errors.Is(err, gcra.ErrInvalidParameter), errors.Is(err, gcra.ErrOverflow):
		return writeError(w, "invalid parameter: "+err.Error())
	case errors.Is(err, actor.ErrBackpressure), errors.Is(err, actor.ErrUnavailable):
		return writeError(w, "unavailable: "+err.Error())
	default:
		return writeError(w, "internal error")
	}
}
