// Package authguard owns the client-side authentication state: who is signed
// in, whether they are an admin, and the login/register/logout transitions.
// A Guard is an explicit instance handed to its consumers, never a hidden
// package-level singleton, so tests can build isolated guards at will.
package authguard

import (
	"context"
	"time"

	"github.com/davehub/parc-manager/internal/apperr"
	"github.com/davehub/parc-manager/internal/client"
	"github.com/davehub/parc-manager/internal/session"
	"github.com/davehub/parc-manager/internal/util"
)

// Guard is the single source of truth for authentication state.
// All transitions happen on the caller's goroutine; after Login or Register
// return nil, IsAuthenticated is guaranteed true for that caller.
type Guard struct {
	store *session.Store
	api   *client.Client

	authenticated bool
	admin         bool
	user          *session.User
}

// New builds a Guard over a session store and an API client.
func New(store *session.Store, api *client.Client) *Guard {
	return &Guard{store: store, api: api}
}

// IsAuthenticated reports whether a session is active.
func (g *Guard) IsAuthenticated() bool { return g.authenticated }

// IsAdmin reports whether the active session has the admin role.
func (g *Guard) IsAdmin() bool { return g.admin }

// User returns the signed-in user descriptor, or nil when logged out.
func (g *Guard) User() *session.User { return g.user }

// Initialize restores a persisted session on process start. The token's
// expiry claim is decoded locally, without signature verification: that check
// is only a UX shortcut to drop obviously stale sessions, the backend's own
// 401/403 stays authoritative. A token that cannot be decoded is treated
// exactly like an expired one.
func (g *Guard) Initialize() error {
	sess, err := g.store.Load()
	if err != nil {
		return err
	}
	if sess == nil {
		return nil
	}

	expiry, err := util.DecodeExpiry(sess.Token)
	if err != nil || !expiry.After(time.Now()) {
		return g.Logout()
	}

	g.adopt(sess)
	return nil
}

// Login authenticates against the backend. On success the session is
// persisted and the state updated before returning. Bad credentials surface
// as AuthError(InvalidCredentials); transport failures as NetworkError.
func (g *Guard) Login(ctx context.Context, username, password string) error {
	creds, err := g.api.Login(ctx, username, password)
	if err != nil {
		return err
	}
	return g.adoptCredentials(creds)
}

// Register creates an account and signs it in, with the same side-effect
// contract as Login. The role must be one of the two known roles; empty
// defaults to "user".
func (g *Guard) Register(ctx context.Context, username, email, password, role string) error {
	if role == "" {
		role = "user"
	}
	if role != "admin" && role != "user" {
		return apperr.Validation("role", "must be admin or user")
	}

	creds, err := g.api.Register(ctx, username, email, password, role)
	if err != nil {
		return err
	}
	return g.adoptCredentials(creds)
}

// Logout clears the persisted session and resets the state. Idempotent:
// logging out twice is the same as logging out once.
func (g *Guard) Logout() error {
	err := g.store.Clear()
	g.api.ClearToken()
	g.authenticated = false
	g.admin = false
	g.user = nil
	return err
}

func (g *Guard) adoptCredentials(creds *client.Credentials) error {
	user := session.User{Username: creds.Username, Role: creds.Role}
	// the auth response carries no id; the token claims do
	if claims, err := util.DecodeClaims(creds.Token); err == nil {
		user.ID = claims.UserID
	}
	sess := &session.Session{Token: creds.Token, User: user}
	// persist first: state must never claim a session the store does not hold
	if err := g.store.Save(sess); err != nil {
		g.api.ClearToken()
		return err
	}
	g.adopt(sess)
	return nil
}

func (g *Guard) adopt(sess *session.Session) {
	g.api.SetToken(sess.Token)
	user := sess.User
	g.user = &user
	g.authenticated = true
	g.admin = user.Role == "admin"
}
