package progress

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"route-dashboard/internal/domain"
	"route-dashboard/internal/ports"
)

// DefaultRetryDelays is the reconnection schedule used after a live
// connection drops. After the last attempt fails the channel gives up.
var DefaultRetryDelays = []time.Duration{0, 2 * time.Second, 10 * time.Second, 30 * time.Second}

// Channel subscribes to one named event on a websocket push endpoint and
// forwards each notification to a sink.
type Channel struct {
	url         string
	event       string
	dialer      *websocket.Dialer
	retryDelays []time.Duration
	logger      *zap.Logger

	mu    sync.Mutex
	state domain.ConnectionState
}

type Option func(*Channel)

func WithRetryDelays(d []time.Duration) Option {
	return func(c *Channel) { c.retryDelays = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Channel) { c.logger = l }
}

func NewChannel(rawURL, event string, opts ...Option) (*Channel, error) {
	u, err := toWebsocketURL(rawURL)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(event) == "" {
		return nil, errors.New("progress channel: event name is empty")
	}

	c := &Channel{
		url:         u,
		event:       event,
		dialer:      &websocket.Dialer{Proxy: http.ProxyFromEnvironment, HandshakeTimeout: 10 * time.Second},
		retryDelays: DefaultRetryDelays,
		logger:      zap.NewNop(),
		state:       domain.ConnNotConnected,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var _ ports.ProgressFeed = (*Channel)(nil)

func (c *Channel) State() domain.ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Channel) setState(sink ports.ProgressSink, s domain.ConnectionState) {
	c.mu.Lock()
	changed := c.state != s
	c.state = s
	c.mu.Unlock()

	if changed {
		c.logger.Info("progress channel state", zap.String("state", string(s)), zap.String("url", c.url))
		sink.OnStateChange(s)
	}
}

// Run connects and delivers notifications until ctx is cancelled or the
// retry schedule is exhausted. Cancelling ctx always leaves the channel
// disconnected, whatever state it was in.
func (c *Channel) Run(ctx context.Context, sink ports.ProgressSink) error {
	c.setState(sink, domain.ConnConnecting)

	conn, err := c.dial(ctx)
	if err != nil {
		if ctx.Err() != nil {
			c.setState(sink, domain.ConnDisconnected)
			return nil
		}
		c.setState(sink, domain.ConnFailed)
		return fmt.Errorf("progress channel: connect %s: %w", c.url, err)
	}

	for {
		c.setState(sink, domain.ConnConnected)
		readErr := c.read(ctx, conn, sink)

		if ctx.Err() != nil {
			c.setState(sink, domain.ConnDisconnected)
			return nil
		}
		c.logger.Warn("progress channel dropped", zap.Error(readErr))

		c.setState(sink, domain.ConnReconnecting)
		conn, err = c.reconnect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.setState(sink, domain.ConnDisconnected)
				return nil
			}
			c.setState(sink, domain.ConnFailed)
			return fmt.Errorf("progress channel: reconnect %s: %w", c.url, err)
		}
	}
}

func (c *Channel) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, resp, err := c.dialer.DialContext(ctx, c.url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// reconnect walks the retry schedule while respecting ctx cancellation.
func (c *Channel) reconnect(ctx context.Context) (*websocket.Conn, error) {
	var lastErr error

	for attempt, delay := range c.retryDelays {
		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		conn, err := c.dial(ctx)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		c.logger.Debug("progress channel reconnect failed", zap.Int("attempt", attempt+1), zap.Error(err))
	}

	if lastErr == nil {
		lastErr = errors.New("no retry attempts configured")
	}
	return nil, lastErr
}

// read blocks until the connection fails or ctx is cancelled.
func (c *Channel) read(ctx context.Context, conn *websocket.Conn, sink ports.ProgressSink) error {
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second),
			)
			conn.Close()
		case <-done:
			conn.Close()
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		for _, record := range splitFrames(msg) {
			n, ok, err := decodeNotification(record, c.event)
			if err != nil {
				c.logger.Warn("progress channel: dropping undecodable frame", zap.Error(err))
				continue
			}
			if !ok {
				continue
			}
			n.ReceivedAt = time.Now()
			sink.OnNotification(n)
		}
	}
}

// toWebsocketURL accepts http(s) URLs as well, since hub endpoints are often
// configured with the same base as the HTTP API.
func toWebsocketURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("progress channel: parse url %q: %w", raw, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("progress channel: unsupported url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("progress channel: url %q has no host", raw)
	}
	return u.String(), nil
}
