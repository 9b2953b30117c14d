package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = 30 * time.Second
)

// WSClient manages one WebSocket push channel (system health or live
// traffic). Messages are validated and turned into Bubble Tea messages.
type WSClient struct {
	kind    StreamKind
	url     string
	session *Session

	mu      sync.Mutex
	writeMu sync.Mutex // serialises pings
	conn    *websocket.Conn
	backoff *backoff.ExponentialBackOff
	pingCtx context.CancelFunc // cancels the active ping goroutine
	redial  bool               // set once Listen has run; cleared by Close

	now func() time.Time
}

// NewWSClient creates a client for the given channel kind and URL.
func NewWSClient(kind StreamKind, url string, sess *Session, policy ReconnectPolicy) *WSClient {
	return &WSClient{
		kind:    kind,
		url:     url,
		session: sess,
		backoff: policy.newBackOff(),
		now:     time.Now,
	}
}

// Kind returns the channel this client serves.
func (c *WSClient) Kind() StreamKind { return c.kind }

// --- Bubble Tea messages ---

// StreamConnectedMsg is sent when a push channel connects.
type StreamConnectedMsg struct{ Kind StreamKind }

// StreamDisconnectedMsg is sent when a push channel drops or is closed.
type StreamDisconnectedMsg struct {
	Kind StreamKind
	Err  error
}

// StreamRejectedMsg reports a pushed message that failed validation.
type StreamRejectedMsg struct {
	Kind StreamKind
	Err  error
}

// SecurityEventMsg delivers one security event.
type SecurityEventMsg struct{ Event SecurityEvent }

// HealthMsg delivers one system-health snapshot.
type HealthMsg struct{ Snapshot HealthSnapshot }

// TrafficMsg delivers one traffic sample.
type TrafficMsg struct{ Sample TrafficSample }

// Listen returns a command that dials the socket, retrying with backoff
// until it connects or ctx is done. A redial after a drop waits out the
// backoff first; the backoff only resets once a message has arrived.
func (c *WSClient) Listen(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		c.mu.Lock()
		wait := c.redial
		c.redial = true
		c.mu.Unlock()

		for {
			if ctx.Err() != nil {
				return nil
			}
			if wait && !sleepCtx(ctx, c.nextBackOff()) {
				return nil
			}
			wait = true

			token := c.session.Token()
			if token == "" {
				return StreamDisconnectedMsg{Kind: c.kind, Err: ErrNoCredential}
			}

			header := http.Header{}
			header.Set("Authorization", "Bearer "+token)
			conn, resp, err := websocket.DefaultDialer.DialContext(ctx, c.url, header)
			if err != nil {
				if resp != nil && resp.StatusCode >= 400 && resp.StatusCode < 500 {
					return StreamDisconnectedMsg{Kind: c.kind, Err: &HTTPError{
						Method: http.MethodGet, Path: c.url, StatusCode: resp.StatusCode, Message: err.Error(),
					}}
				}
				slog.Warn("ws dial failed", "kind", c.kind, "err", err)
				continue
			}

			c.mu.Lock()
			if c.pingCtx != nil {
				c.pingCtx()
			}
			pingCtx, pingCancel := context.WithCancel(ctx)
			c.conn = conn
			c.pingCtx = pingCancel
			c.mu.Unlock()

			go c.pingLoop(pingCtx, conn)

			slog.Info("ws connected", "kind", c.kind, "url", c.url)
			return StreamConnectedMsg{Kind: c.kind}
		}
	}
}

func (c *WSClient) nextBackOff() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.backoff.NextBackOff()
}

// ReadLoop returns a command that reads the next valid message. It should be
// re-issued after each message it delivers.
func (c *WSClient) ReadLoop(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil {
			return StreamDisconnectedMsg{Kind: c.kind, Err: fmt.Errorf("no connection")}
		}

		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongTimeout))
		})
		conn.SetReadDeadline(time.Now().Add(pongTimeout)) //nolint:errcheck // surfaced by the next read

		_, data, err := conn.ReadMessage()
		if err != nil {
			c.drop(conn)
			if ctx.Err() != nil {
				return nil
			}
			return StreamDisconnectedMsg{Kind: c.kind, Err: err}
		}
		c.mu.Lock()
		c.backoff.Reset()
		c.mu.Unlock()
		return c.decode(data)
	}
}

// Close closes the active connection, if any.
func (c *WSClient) Close() {
	c.mu.Lock()
	conn := c.conn
	c.redial = false
	c.backoff.Reset()
	c.mu.Unlock()
	if conn != nil {
		c.drop(conn)
	}
}

func (c *WSClient) drop(conn *websocket.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
		if c.pingCtx != nil {
			c.pingCtx()
			c.pingCtx = nil
		}
	}
	c.mu.Unlock()
	conn.Close() //nolint:errcheck
}

func (c *WSClient) decode(data []byte) tea.Msg {
	at := c.now()
	switch c.kind {
	case KindHealthMetric:
		snap, err := DecodeHealth(data, at)
		if err != nil {
			return StreamRejectedMsg{Kind: c.kind, Err: err}
		}
		return HealthMsg{Snapshot: snap}
	case KindTrafficSample:
		sample, err := DecodeTraffic(data, at)
		if err != nil {
			return StreamRejectedMsg{Kind: c.kind, Err: err}
		}
		return TrafficMsg{Sample: sample}
	case KindSecurityEvent:
		ev, err := DecodeSecurityEvent(data, at)
		if err != nil {
			return StreamRejectedMsg{Kind: c.kind, Err: err}
		}
		return SecurityEventMsg{Event: ev}
	}
	return StreamRejectedMsg{Kind: c.kind, Err: fmt.Errorf("%w: unknown channel %q", ErrMalformedMessage, c.kind)}
}

// pingLoop sends periodic pings on the given connection. It exits when the
// context is cancelled or the connection changes.
func (c *WSClient) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			cc := c.conn
			c.mu.Unlock()
			if cc != conn {
				return
			}
			c.writeMu.Lock()
			conn.SetWriteDeadline(time.Now().Add(writeTimeout)) //nolint:errcheck
			err := conn.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
