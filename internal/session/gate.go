package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/warden/console/internal/client"
)

// ErrAuthorizationDenied is wrapped by every gate failure.
var ErrAuthorizationDenied = errors.New("authorization denied")

// Verifier checks the current credential against the auth service.
type Verifier interface {
	VerifyAdmin(ctx context.Context) (client.Role, error)
}

// Verdict is the gate outcome. Err is nil exactly when Verified is true.
type Verdict struct {
	Verified bool
	Role     client.Role
	Err      error
}

// Superadmin reports whether superadmin-only sections should be shown.
func (v Verdict) Superadmin() bool {
	return v.Verified && v.Role == client.RoleSuperadmin
}

// Gate runs the single launch-time admin check.
type Gate struct {
	verifier Verifier
	session  *client.Session
}

// NewGate creates a gate for sess.
func NewGate(v Verifier, sess *client.Session) *Gate {
	return &Gate{verifier: v, session: sess}
}

// Check verifies the session once. On success the role is stored on the
// session. Any failure, including a missing token, yields a denied verdict.
func (g *Gate) Check(ctx context.Context) Verdict {
	if !g.session.Authenticated() {
		return Verdict{Err: fmt.Errorf("%w: %w", ErrAuthorizationDenied, client.ErrNoCredential)}
	}
	role, err := g.verifier.VerifyAdmin(ctx)
	if err != nil {
		return Verdict{Err: fmt.Errorf("%w: %w", ErrAuthorizationDenied, err)}
	}
	g.session.SetRole(role)
	return Verdict{Verified: true, Role: role}
}

// Logout deletes the stored token and clears sess. The in-memory session is
// cleared even when the store fails.
func Logout(ctx context.Context, store *Store, sess *client.Session) error {
	sess.Clear()
	if store == nil {
		return nil
	}
	if err := store.Delete(ctx, KeyAuthToken); err != nil {
		return fmt.Errorf("session.Logout: %w", err)
	}
	return nil
}
