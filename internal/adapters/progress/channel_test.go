package progress

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"route-dashboard/internal/domain"
)

type recorder struct {
	notes  chan domain.ProgressNotification
	states chan domain.ConnectionState
}

func newRecorder() *recorder {
	return &recorder{
		notes:  make(chan domain.ProgressNotification, 100),
		states: make(chan domain.ConnectionState, 100),
	}
}

func (r *recorder) OnNotification(n domain.ProgressNotification) { r.notes <- n }
func (r *recorder) OnStateChange(s domain.ConnectionState)       { r.states <- s }

func (r *recorder) waitState(t *testing.T, want domain.ConnectionState) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case s := <-r.states:
			if s == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state %q", want)
		}
	}
}

func (r *recorder) nextNote(t *testing.T) domain.ProgressNotification {
	t.Helper()
	select {
	case n := <-r.notes:
		return n
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for notification")
		return domain.ProgressNotification{}
	}
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

func TestChannelDeliversSubscribedEvent(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		frames := []string{
			`{"event":"other","data":{"message":"ignored","style":"info"}}`,
			`{"event":"ReceiveProgress","data":{"message":"Building","style":"step"}}`,
			`not json`,
			`{"type":1,"target":"ReceiveProgress","arguments":[{"message":"50%","style":"progress","clearPreviousProgress":true}]}` + "\x1e",
			`{"event":"receiveprogress","data":"plain text"}`,
		}
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		// Hold the connection until the client leaves.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	ch, err := NewChannel(wsURL(srv), "ReceiveProgress")
	require.NoError(t, err)

	rec := newRecorder()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- ch.Run(ctx, rec) }()

	rec.waitState(t, domain.ConnConnected)

	n := rec.nextNote(t)
	assert.Equal(t, "Building", n.Message)
	assert.Equal(t, domain.StyleStep, n.Style)
	assert.False(t, n.ReceivedAt.IsZero())

	n = rec.nextNote(t)
	assert.Equal(t, "50%", n.Message)
	assert.True(t, n.ClearPreviousProgress)

	n = rec.nextNote(t)
	assert.Equal(t, "plain text", n.Message)

	cancel()
	require.NoError(t, <-errCh)
	assert.Equal(t, domain.ConnDisconnected, ch.State())
}

func TestChannelInitialConnectFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	ch, err := NewChannel(wsURL(srv), "ReceiveProgress")
	require.NoError(t, err)

	rec := newRecorder()
	err = ch.Run(context.Background(), rec)

	require.Error(t, err)
	assert.Equal(t, domain.ConnFailed, ch.State())
	rec.waitState(t, domain.ConnConnecting)
	rec.waitState(t, domain.ConnFailed)
}

func TestChannelReconnectsAfterDrop(t *testing.T) {
	defer goleak.VerifyNone(t)

	var connections atomic.Int32
	hub := NewHub("ReceiveProgress", nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if connections.Add(1) == 1 {
			conn, err := upgrader.Upgrade(w, r, nil)
			if err == nil {
				conn.Close()
			}
			return
		}
		hub.ServeHTTP(w, r)
	}))
	defer srv.Close()
	defer hub.Close()

	ch, err := NewChannel(wsURL(srv), "ReceiveProgress", WithRetryDelays([]time.Duration{0, 10 * time.Millisecond}))
	require.NoError(t, err)

	rec := newRecorder()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- ch.Run(ctx, rec) }()

	rec.waitState(t, domain.ConnConnected)
	rec.waitState(t, domain.ConnReconnecting)
	rec.waitState(t, domain.ConnConnected)

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, hub.Publish(domain.ProgressNotification{Message: "after reconnect", Style: domain.StyleInfo}))
	assert.Equal(t, "after reconnect", rec.nextNote(t).Message)

	cancel()
	require.NoError(t, <-errCh)
	rec.waitState(t, domain.ConnDisconnected)
}

func TestChannelFailsWhenRetriesExhausted(t *testing.T) {
	defer goleak.VerifyNone(t)

	var connections atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if connections.Add(1) == 1 {
			conn, err := upgrader.Upgrade(w, r, nil)
			if err == nil {
				conn.Close()
			}
			return
		}
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ch, err := NewChannel(wsURL(srv), "ReceiveProgress", WithRetryDelays([]time.Duration{0, time.Millisecond, time.Millisecond}))
	require.NoError(t, err)

	rec := newRecorder()
	err = ch.Run(context.Background(), rec)

	require.Error(t, err)
	assert.Equal(t, domain.ConnFailed, ch.State())
	assert.Equal(t, int32(4), connections.Load())
}

func TestChannelCancelDuringBackoffDisconnects(t *testing.T) {
	defer goleak.VerifyNone(t)

	var connections atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if connections.Add(1) == 1 {
			conn, err := upgrader.Upgrade(w, r, nil)
			if err == nil {
				conn.Close()
			}
			return
		}
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ch, err := NewChannel(wsURL(srv), "ReceiveProgress", WithRetryDelays([]time.Duration{time.Hour}))
	require.NoError(t, err)

	rec := newRecorder()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- ch.Run(ctx, rec) }()

	rec.waitState(t, domain.ConnReconnecting)
	cancel()

	require.NoError(t, <-errCh)
	assert.Equal(t, domain.ConnDisconnected, ch.State())
}

func TestNewChannelURLs(t *testing.T) {
	ch, err := NewChannel("https://solver.example/progress", "ReceiveProgress")
	require.NoError(t, err)
	assert.Equal(t, "wss://solver.example/progress", ch.url)
	assert.Equal(t, domain.ConnNotConnected, ch.State())

	_, err = NewChannel("ftp://solver.example", "ReceiveProgress")
	assert.Error(t, err)

	_, err = NewChannel("ws://solver.example", " ")
	assert.Error(t, err)
}
