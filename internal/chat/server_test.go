package chat

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestServer_RejectsWhenFull(t *testing.T) {
	_, addr := startServer(t, Options{MaxSessions: 1})

	first := connect(t, addr)
	first.login("alice")

	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	require.NoError(t, err)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))

	line, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, serverFullText, strings.TrimSpace(line))

	// The admitted session is unaffected.
	first.send("users")
	first.expect("No other users are connected")
}

func TestServer_StopClosesSessions(t *testing.T) {
	srv, addr := startServer(t, Options{})

	alice := connect(t, addr)
	alice.login("alice")
	bob := connect(t, addr)
	bob.login("bob")
	require.Equal(t, 2, srv.Registry().Len())

	srv.Stop()

	for _, c := range []*testClient{alice, bob} {
		for {
			if _, err := c.next(); err != nil {
				break
			}
		}
	}
	assert.Equal(t, 0, srv.Registry().Len())

	_, err := net.DialTimeout("tcp", addr, 500*time.Millisecond)
	assert.Error(t, err)
}

func TestServer_ServeAfterStop(t *testing.T) {
	srv, err := NewServer(Options{}, zaptest.NewLogger(t))
	require.NoError(t, err)
	srv.Stop()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	assert.ErrorIs(t, srv.Serve(context.Background(), ln), ErrServerClosed)
}

func TestServer_ContextCancelEndsServe(t *testing.T) {
	srv, err := NewServer(Options{}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(srv.Stop)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ctx, ln) }()

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestServer_ListenAndServeBadAddr(t *testing.T) {
	srv, err := NewServer(Options{Addr: "256.0.0.1:bad"}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(srv.Stop)

	assert.Error(t, srv.ListenAndServe(context.Background()))
}
