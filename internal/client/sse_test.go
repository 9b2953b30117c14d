package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestReadEvent(t *testing.T) {
	input := ": keep-alive\n\n" +
		"event: security\nid: 1\ndata: {\"a\":1}\n\n" +
		"data: line one\r\ndata: line two\r\n\r\n" +
		"data: trailing"
	r := bufio.NewReader(strings.NewReader(input))

	got, err := readEvent(r)
	if err != nil {
		t.Fatalf("first event: %v", err)
	}
	if got != `{"a":1}` {
		t.Errorf("first event = %q", got)
	}

	got, err = readEvent(r)
	if err != nil {
		t.Fatalf("second event: %v", err)
	}
	if got != "line one\nline two" {
		t.Errorf("second event = %q", got)
	}

	// An event cut off by EOF is not delivered.
	if _, err := readEvent(r); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected ErrUnexpectedEOF, got %v", err)
	}
}

func TestReadEvent_TooLarge(t *testing.T) {
	big := "data: " + strings.Repeat("x", maxEventBytes+1) + "\n\n" + "data: next\n\n"
	r := bufio.NewReader(strings.NewReader(big))
	if _, err := readEvent(r); !errors.Is(err, ErrMalformedMessage) {
		t.Errorf("expected ErrMalformedMessage, got %v", err)
	}
	got, err := readEvent(r)
	if err != nil || got != "next" {
		t.Errorf("event after oversized one = %q, %v; want \"next\"", got, err)
	}
}

func TestReadEvent_TooLargeAcrossLines(t *testing.T) {
	line := "data: " + strings.Repeat("y", maxEventBytes/2) + "\n"
	r := bufio.NewReader(strings.NewReader(line + line + line + "\n"))
	if _, err := readEvent(r); !errors.Is(err, ErrMalformedMessage) {
		t.Errorf("expected ErrMalformedMessage, got %v", err)
	}
}

func TestSSEClient_Stream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"id\":\"e1\",\"type\":\"login_failure\",\"severity\":\"critical\"}\n\n")
		fmt.Fprint(w, "data: {\"nope\":true}\n\n")
		w.(http.Flusher).Flush()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := NewSSEClient(srv.URL, NewSession("tok"), DefaultReconnectPolicy())
	defer c.Close()

	if msg := c.Listen(ctx)(); msg != (StreamConnectedMsg{Kind: KindSecurityEvent}) {
		t.Fatalf("Listen() = %#v, want connected", msg)
	}

	msg := c.ReadLoop(ctx)()
	ev, ok := msg.(SecurityEventMsg)
	if !ok {
		t.Fatalf("first ReadLoop() = %#v, want SecurityEventMsg", msg)
	}
	if ev.Event.ID != "e1" || !ev.Event.Severity.Critical() {
		t.Errorf("unexpected event: %+v", ev.Event)
	}

	if _, ok := c.ReadLoop(ctx)().(StreamRejectedMsg); !ok {
		t.Error("second ReadLoop() should reject the malformed event")
	}

	if _, ok := c.ReadLoop(ctx)().(StreamDisconnectedMsg); !ok {
		t.Error("third ReadLoop() should report the closed stream")
	}
}

func TestSSEClient_UnauthorizedIsFinal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewSSEClient(srv.URL, NewSession("expired"), DefaultReconnectPolicy())
	msg, ok := c.Listen(context.Background())().(StreamDisconnectedMsg)
	if !ok {
		t.Fatalf("Listen() = %#v, want disconnected", msg)
	}
	if !IsStatus(msg.Err, http.StatusUnauthorized) {
		t.Errorf("Err = %v, want 401", msg.Err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server called %d times, want 1", n)
	}
}

func TestSSEClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.(http.Flusher).Flush()
	}))
	defer srv.Close()

	policy := ReconnectPolicy{Initial: 5 * time.Millisecond, Max: 20 * time.Millisecond, Multiplier: 2, Jitter: 0}
	c := NewSSEClient(srv.URL, NewSession("tok"), policy)
	defer c.Close()

	if _, ok := c.Listen(context.Background())().(StreamConnectedMsg); !ok {
		t.Fatal("expected connection after retries")
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("server called %d times, want 3", n)
	}
}

func TestSSEClient_NoCredential(t *testing.T) {
	c := NewSSEClient("http://127.0.0.1:0", &Session{}, DefaultReconnectPolicy())
	msg, ok := c.Listen(context.Background())().(StreamDisconnectedMsg)
	if !ok || !errors.Is(msg.Err, ErrNoCredential) {
		t.Fatalf("Listen() = %#v, want ErrNoCredential", msg)
	}
}

func TestSSEClient_CancelStopsRetry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	policy := ReconnectPolicy{Initial: time.Second, Max: time.Second, Multiplier: 1, Jitter: 0}
	c := NewSSEClient(srv.URL, NewSession("tok"), policy)
	if msg := c.Listen(ctx)(); msg != nil {
		t.Errorf("Listen() after cancel = %#v, want nil", msg)
	}
}

func TestSSEClient_OversizedEventIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: "+strings.Repeat("x", maxEventBytes+1)+"\n\n")
		fmt.Fprint(w, "data: {\"id\":\"e2\",\"type\":\"scan\",\"severity\":\"low\"}\n\n")
		w.(http.Flusher).Flush()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := NewSSEClient(srv.URL, NewSession("tok"), DefaultReconnectPolicy())
	defer c.Close()

	if _, ok := c.Listen(ctx)().(StreamConnectedMsg); !ok {
		t.Fatal("expected connection")
	}
	if _, ok := c.ReadLoop(ctx)().(StreamRejectedMsg); !ok {
		t.Fatal("oversized event should be rejected")
	}
	msg, ok := c.ReadLoop(ctx)().(SecurityEventMsg)
	if !ok || msg.Event.ID != "e2" {
		t.Errorf("ReadLoop() after rejection = %#v, want event e2", msg)
	}
}

// A server that accepts and immediately ends the stream must not be redialled
// faster than the backoff allows.
func TestSSEClient_RedialWaitsForBackoff(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	policy := ReconnectPolicy{Initial: 50 * time.Millisecond, Max: 50 * time.Millisecond, Multiplier: 1, Jitter: 0}
	c := NewSSEClient(srv.URL, NewSession("tok"), policy)
	defer c.Close()

	for {
		if _, ok := c.Listen(ctx)().(StreamConnectedMsg); !ok {
			break
		}
		d, ok := c.ReadLoop(ctx)().(StreamDisconnectedMsg)
		if !ok || !Retryable(d.Err) {
			break
		}
	}

	if n := calls.Load(); n < 2 || n > 8 {
		t.Errorf("server called %d times in 300ms with a 50ms backoff, want 2..8", n)
	}
}
