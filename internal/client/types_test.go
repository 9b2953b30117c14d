package client

import (
	"errors"
	"testing"
	"time"
)

func TestDecodeSecurityEvent(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		data    string
		wantID  string
		wantErr bool
	}{
		{"string id", `{"id":"e1","type":"login_failure","severity":"high","timestamp":"2026-03-01T11:59:00Z"}`, "e1", false},
		{"numeric id", `{"id":17,"type":"login_failure","severity":"low"}`, "17", false},
		{"missing severity", `{"id":"e1","type":"login_failure"}`, "", true},
		{"missing id", `{"type":"x","severity":"low"}`, "", true},
		{"not json", `hello`, "", true},
		{"array", `[1,2]`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := DecodeSecurityEvent([]byte(tt.data), at)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedMessage) {
					t.Fatalf("expected ErrMalformedMessage, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ev.ID != tt.wantID {
				t.Errorf("ID = %q, want %q", ev.ID, tt.wantID)
			}
			if !ev.ReceivedAt.Equal(at) {
				t.Errorf("ReceivedAt = %v, want %v", ev.ReceivedAt, at)
			}
		})
	}
}

func TestDecodeHealth(t *testing.T) {
	snap, err := DecodeHealth([]byte(`{"cpu":"42%","uptime":3600,"db":{"ok":true}}`), time.Now())
	if err != nil {
		t.Fatalf("DecodeHealth() error: %v", err)
	}
	want := map[string]string{"cpu": "42%", "uptime": "3600", "db": `{"ok":true}`}
	for k, v := range want {
		if snap.Fields[k] != v {
			t.Errorf("Fields[%q] = %q, want %q", k, snap.Fields[k], v)
		}
	}

	for _, bad := range []string{`{}`, `[]`, `"ok"`, `{`} {
		if _, err := DecodeHealth([]byte(bad), time.Now()); !errors.Is(err, ErrMalformedMessage) {
			t.Errorf("DecodeHealth(%s) = %v, want ErrMalformedMessage", bad, err)
		}
	}
}

func TestDecodeTraffic(t *testing.T) {
	tests := []struct {
		data    string
		want    float64
		wantErr bool
	}{
		{`{"requestsPerSecond":12.5}`, 12.5, false},
		{`{"requestsPerSecond":0}`, 0, false},
		{`{"requestsPerSecond":-1}`, 0, true},
		{`{"rps":3}`, 0, true},
		{`{"requestsPerSecond":"fast"}`, 0, true},
	}
	for _, tt := range tests {
		s, err := DecodeTraffic([]byte(tt.data), time.Now())
		if tt.wantErr {
			if err == nil {
				t.Errorf("DecodeTraffic(%s) expected error", tt.data)
			}
			continue
		}
		if err != nil {
			t.Errorf("DecodeTraffic(%s) error: %v", tt.data, err)
			continue
		}
		if s.RequestsPerSecond != tt.want {
			t.Errorf("DecodeTraffic(%s) = %v, want %v", tt.data, s.RequestsPerSecond, tt.want)
		}
	}
}

func TestSeverityRank(t *testing.T) {
	if SeverityCritical.Rank() <= SeverityHigh.Rank() || SeverityHigh.Rank() <= SeverityMedium.Rank() || SeverityMedium.Rank() <= SeverityLow.Rank() {
		t.Error("severity ranks are not strictly increasing")
	}
	if Severity("CRITICAL").Rank() != SeverityCritical.Rank() || !Severity("Critical").Critical() {
		t.Error("severity comparison should ignore case")
	}
	if Severity("bogus").Rank() != 0 {
		t.Error("unknown severity should rank 0")
	}
}

func TestRoleCycle(t *testing.T) {
	if got := NextRole(RoleSuperadmin); got != RoleUser {
		t.Errorf("NextRole(superadmin) = %q, want user", got)
	}
	if got := PrevRole(RoleUser); got != RoleSuperadmin {
		t.Errorf("PrevRole(user) = %q, want superadmin", got)
	}
	if got := NextRole(RoleUser); got != RoleAdmin {
		t.Errorf("NextRole(user) = %q, want admin", got)
	}
}

func TestSessionClear(t *testing.T) {
	s := NewSession("t")
	s.SetRole(RoleAdmin)
	if !s.Authenticated() {
		t.Fatal("expected authenticated")
	}
	s.Clear()
	if s.Authenticated() || s.Role() != "" {
		t.Errorf("session not cleared: token=%q role=%q", s.Token(), s.Role())
	}
	var nilSession *Session
	if nilSession.Authenticated() {
		t.Error("nil session should not be authenticated")
	}
}
