package resp

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cellgate/cellgate/actor"
	"github.com/cellgate/cellgate/clock"
	"github.com/cellgate/cellgate/store"
)

func newTestServer(t *testing.T) net.Addr {
	t.Helper()

	st := store.NewPeriodic(16, 60_000_000_000)
	a := actor.New(st, clock.System{})
	go a.Run()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := New(a, nil)
	go func() { _ = srv.Serve(lis) }()

	t.Cleanup(func() {
		_ = srv.Close()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = a.Shutdown(ctx)
	})

	return lis.Addr()
}

func dial(t *testing.T, addr net.Addr) (*bufio.Reader, net.Conn) {
	t.Helper()
	conn, err := net.Dial("tcp", addr.String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return bufio.NewReader(conn), conn
}

func sendCommand(t *testing.T, conn net.Conn, args ...string) {
	t.Helper()
	w := bufio.NewWriter(conn)
	_, err := w.WriteString("*" + strconv.Itoa(len(args)) + "\r\n")
	require.NoError(t, err)
	for _, a := range args {
		_, err := w.WriteString("$" + strconv.Itoa(len(a)) + "\r\n" + a + "\r\n")
		require.NoError(t, err)
	}
	require.NoError(t, w.Flush())
}

func TestRESP_Ping(t *testing.T) {
	addr := newTestServer(t)
	r, conn := dial(t, addr)

	sendCommand(t, conn, "PING")
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "+PONG\r\n", line)
}

func TestRESP_ThrottleAllowed(t *testing.T) {
	addr := newTestServer(t)
	r, conn := dial(t, addr)

	sendCommand(t, conn, "THROTTLE", "user1", "2", "1", "1", "1")
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "*5\r\n", line)

	allowed, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ":1\r\n", allowed)
}

func TestRESP_UnknownCommand(t *testing.T) {
	addr := newTestServer(t)
	r, conn := dial(t, addr)

	sendCommand(t, conn, "BOGUS")
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "-ERR unknown command\r\n", line)
}

func TestRESP_WrongNumberOfArguments(t *testing.T) {
	addr := newTestServer(t)
	r, conn := dial(t, addr)

	sendCommand(t, conn, "THROTTLE", "user1", "2")
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "-ERR wrong number of arguments\r\n", line)
}

func TestRESP_ValueNotInteger(t *testing.T) {
	addr := newTestServer(t)
	r, conn := dial(t, addr)

	sendCommand(t, conn, "THROTTLE", "user1", "oops", "1", "1")
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "-ERR value is not an integer\r\n", line)
}
