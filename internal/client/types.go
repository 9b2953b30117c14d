// Package client provides the HTTP, server-sent event and WebSocket clients
// for the Warden admin API. Types mirror the API wire format.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
)

// ErrMalformedMessage is returned when a pushed message or response body does
// not have the expected shape.
var ErrMalformedMessage = errors.New("malformed message")

// Role is a user's privilege level.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

// Roles lists the assignable roles in privilege order.
var Roles = []Role{RoleUser, RoleAdmin, RoleSuperadmin}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperadmin:
		return true
	}
	return false
}

// Session is the authenticated session for this process. The same value is
// shared by every API-calling component; clearing it signs them all out.
// Request commands read it off the update loop, so every access is locked.
type Session struct {
	mu    sync.RWMutex
	token string
	role  Role
}

// NewSession returns a session holding token.
func NewSession(token string) *Session {
	return &Session{token: token}
}

// Token returns the bearer token, or "" when signed out.
func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken replaces the bearer token.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// Role returns the role confirmed by the admin check.
func (s *Session) Role() Role {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

// SetRole records the role confirmed by the admin check.
func (s *Session) SetRole(r Role) {
	s.mu.Lock()
	s.role = r
	s.mu.Unlock()
}

// Authenticated reports whether a bearer token is present.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Clear drops the token and role.
func (s *Session) Clear() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.token = ""
	s.role = ""
	s.mu.Unlock()
}

// --- HTTP request/response types ---

// VerifyResponse is returned by /api/auth/verify-admin.
type VerifyResponse struct {
	User struct {
		Role Role `json:"role"`
	} `json:"user"`
}

// User is a row of the user management table.
type User struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	Status     string    `json:"status"`
	LastActive time.Time `json:"lastActive"`
}

// RoleUpdate is the body of PUT /api/admin/users/{id}/role.
type RoleUpdate struct {
	Role Role `json:"role"`
}

// BulkActionRequest is the body of POST /api/admin/users/bulk-action.
type BulkActionRequest struct {
	Action  string  `json:"action"`
	UserIDs []int64 `json:"userIds"`
}

// AuditRequest is the body of POST /api/admin/audit-logs.
type AuditRequest struct {
	Action string `json:"action"`
}

// EventDetail is returned by /api/admin/security-events/{id}.
type EventDetail struct {
	Type               string    `json:"type"`
	Severity           Severity  `json:"severity"`
	Timestamp          time.Time `json:"timestamp"`
	Details            string    `json:"details"`
	RecommendedActions []string  `json:"recommendedActions"`
}

// --- Stream payload types ---

// StreamKind identifies which push channel a message came from.
type StreamKind string

const (
	KindSecurityEvent StreamKind = "security-event"
	KindHealthMetric  StreamKind = "health-metric"
	KindTrafficSample StreamKind = "traffic-sample"
)

// Severity ranks a security event.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank orders severities from least to most severe. Unknown values rank 0.
func (s Severity) Rank() int {
	switch Severity(strings.ToLower(string(s))) {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	}
	return 0
}

// Critical reports whether the event warrants a detail lookup.
func (s Severity) Critical() bool {
	return strings.EqualFold(string(s), string(SeverityCritical))
}

// SecurityEvent is pushed on the security-events stream.
type SecurityEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Severity   Severity  `json:"severity"`
	Timestamp  time.Time `json:"timestamp"`
	Message    string    `json:"message,omitempty"`
	Source     string    `json:"source,omitempty"`
	ReceivedAt time.Time `json:"-"`
}

// HealthSnapshot is pushed on the system-health socket. Fields are merged
// into the status panel by name.
type HealthSnapshot struct {
	Fields     map[string]string
	ReceivedAt time.Time
}

// TrafficSample is pushed on the live-traffic socket.
type TrafficSample struct {
	RequestsPerSecond float64   `json:"requestsPerSecond"`
	ReceivedAt        time.Time `json:"-"`
}

// DecodeSecurityEvent validates and decodes a security-event payload.
func DecodeSecurityEvent(data []byte, at time.Time) (SecurityEvent, error) {
	type wire SecurityEvent
	var raw struct {
		wire
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return SecurityEvent{}, fmt.Errorf("%w: security event: %v", ErrMalformedMessage, err)
	}
	ev := SecurityEvent(raw.wire)
	// IDs arrive as strings or numbers depending on the backend.
	var id string
	if json.Unmarshal(raw.ID, &id) != nil {
		var n json.Number
		if json.Unmarshal(raw.ID, &n) == nil {
			id = n.String()
		}
	}
	ev.ID = id
	if ev.ID == "" || ev.Type == "" || ev.Severity == "" {
		return SecurityEvent{}, fmt.Errorf("%w: security event missing id, type or severity", ErrMalformedMessage)
	}
	ev.ReceivedAt = at
	return ev, nil
}

// DecodeHealth validates and decodes a system-health payload. The payload must
// be a non-empty JSON object; nested values are kept in their JSON form.
func DecodeHealth(data []byte, at time.Time) (HealthSnapshot, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return HealthSnapshot{}, fmt.Errorf("%w: health snapshot: %v", ErrMalformedMessage, err)
	}
	if len(raw) == 0 {
		return HealthSnapshot{}, fmt.Errorf("%w: empty health snapshot", ErrMalformedMessage)
	}
	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		var s string
		if json.Unmarshal(v, &s) == nil {
			fields[k] = s
			continue
		}
		fields[k] = string(v)
	}
	return HealthSnapshot{Fields: fields, ReceivedAt: at}, nil
}

// DecodeTraffic validates and decodes a live-traffic payload.
func DecodeTraffic(data []byte, at time.Time) (TrafficSample, error) {
	var raw struct {
		RequestsPerSecond *float64 `json:"requestsPerSecond"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return TrafficSample{}, fmt.Errorf("%w: traffic sample: %v", ErrMalformedMessage, err)
	}
	if raw.RequestsPerSecond == nil {
		return TrafficSample{}, fmt.Errorf("%w: traffic sample missing requestsPerSecond", ErrMalformedMessage)
	}
	v := *raw.RequestsPerSecond
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return TrafficSample{}, fmt.Errorf("%w: traffic sample out of range: %v", ErrMalformedMessage, v)
	}
	return TrafficSample{RequestsPerSecond: v, ReceivedAt: at}, nil
}
