package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	tea "github.com/charmbracelet/bubbletea"
)

// maxEventBytes caps a single server-sent event.
const maxEventBytes = 1 << 20

// SSEClient subscribes to the security-events server-sent event stream.
type SSEClient struct {
	url     string
	session *Session
	http    *http.Client

	mu      sync.Mutex
	body    io.ReadCloser
	reader  *bufio.Reader
	backoff *backoff.ExponentialBackOff
	redial  bool // set once Listen has run; cleared by Close

	now func() time.Time
}

// NewSSEClient creates a client for the given event-stream URL. The HTTP
// client has no overall timeout because the response never completes.
func NewSSEClient(url string, sess *Session, policy ReconnectPolicy) *SSEClient {
	return &SSEClient{
		url:     url,
		session: sess,
		http:    &http.Client{},
		backoff: policy.newBackOff(),
		now:     time.Now,
	}
}

// Listen returns a command that opens the stream, retrying with backoff
// until it connects, a final error occurs or ctx is done. A redial after a
// drop waits out the backoff first; the backoff only resets once the stream
// has delivered an event.
func (c *SSEClient) Listen(ctx context.Context) tea.Cmd {
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
				return StreamDisconnectedMsg{Kind: KindSecurityEvent, Err: ErrNoCredential}
			}

			body, err := c.open(ctx, token)
			if err != nil {
				if !Retryable(err) {
					return StreamDisconnectedMsg{Kind: KindSecurityEvent, Err: err}
				}
				slog.Warn("sse connect failed", "err", err)
				continue
			}

			c.mu.Lock()
			if c.body != nil {
				c.body.Close() //nolint:errcheck
			}
			c.body = body
			c.reader = bufio.NewReader(body)
			c.mu.Unlock()

			slog.Info("sse connected", "url", c.url)
			return StreamConnectedMsg{Kind: KindSecurityEvent}
		}
	}
}

func (c *SSEClient) nextBackOff() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.backoff.NextBackOff()
}

func (c *SSEClient) open(ctx context.Context, token string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16)) //nolint:errcheck // best-effort read for error message
		resp.Body.Close()                                      //nolint:errcheck
		return nil, &HTTPError{Method: http.MethodGet, Path: c.url, StatusCode: resp.StatusCode, Message: string(msg)}
	}
	return resp.Body, nil
}

// ReadLoop returns a command that reads the next event from the stream. It
// should be re-issued after each message it delivers. Oversized and
// malformed events are rejected without dropping the stream.
func (c *SSEClient) ReadLoop(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		c.mu.Lock()
		body, reader := c.body, c.reader
		c.mu.Unlock()
		if reader == nil {
			return StreamDisconnectedMsg{Kind: KindSecurityEvent, Err: fmt.Errorf("no connection")}
		}

		data, err := readEvent(reader)
		if errors.Is(err, ErrMalformedMessage) {
			c.delivered()
			return StreamRejectedMsg{Kind: KindSecurityEvent, Err: err}
		}
		if err != nil {
			c.drop(body)
			if ctx.Err() != nil {
				return nil
			}
			return StreamDisconnectedMsg{Kind: KindSecurityEvent, Err: err}
		}
		c.delivered()

		ev, err := DecodeSecurityEvent([]byte(data), c.now())
		if err != nil {
			return StreamRejectedMsg{Kind: KindSecurityEvent, Err: err}
		}
		return SecurityEventMsg{Event: ev}
	}
}

// delivered marks the stream healthy so the next redial starts from the
// initial delay.
func (c *SSEClient) delivered() {
	c.mu.Lock()
	c.backoff.Reset()
	c.mu.Unlock()
}

// Close closes the active stream, if any.
func (c *SSEClient) Close() {
	c.mu.Lock()
	body := c.body
	c.redial = false
	c.backoff.Reset()
	c.mu.Unlock()
	if body != nil {
		c.drop(body)
	}
}

func (c *SSEClient) drop(body io.ReadCloser) {
	c.mu.Lock()
	if c.body == body {
		c.body = nil
		c.reader = nil
	}
	c.mu.Unlock()
	body.Close() //nolint:errcheck
}

// readEvent reads lines up to the next blank line and returns the joined
// data field. Events without data (comments, keep-alives) are skipped. An
// event or line longer than maxEventBytes is consumed up to its terminating
// blank line and reported as ErrMalformedMessage.
func readEvent(r *bufio.Reader) (string, error) {
	var data strings.Builder
	hasData, oversized := false, false
	for {
		line, long, err := readLine(r, maxEventBytes)
		if err == io.EOF {
			return "", io.ErrUnexpectedEOF
		}
		if err != nil {
			return "", err
		}
		if long {
			oversized = true
			continue
		}

		if line == "" {
			switch {
			case oversized:
				return "", fmt.Errorf("%w: event exceeds %d bytes", ErrMalformedMessage, maxEventBytes)
			case hasData:
				return data.String(), nil
			}
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		// "event", "id", "retry" and ":" comments carry nothing the table uses.
		if field != "data" || oversized {
			continue
		}
		if hasData {
			data.WriteByte('\n')
		}
		data.WriteString(value)
		hasData = true
		if data.Len() > maxEventBytes {
			oversized = true
			data.Reset()
		}
	}
}

// readLine returns the next line without its terminator. A line longer than
// limit is read to its end and discarded; long reports that it happened.
func readLine(r *bufio.Reader, limit int) (line string, long bool, err error) {
	var buf []byte
	for {
		chunk, err := r.ReadSlice('\n')
		if !long {
			if len(buf)+len(chunk) > limit+2 {
				long = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if long {
			return "", true, err
		}
		return strings.TrimRight(string(buf), "\r\n"), false, err
	}
}
