// internal/client/guard/guard.go

// Package guard evaluates navigation predicates against the current session.
// Guards never return errors; every outcome is an allow or a redirect.
package guard

import (
	"context"
	"time"

	"leadscout-service/internal/client"
	"leadscout-service/internal/pkg/roles"
)

// Redirect targets for denied navigations.
const (
	LoginPath  = "/login"
	DeniedPath = "/denied"
	OfferPath  = "/app/subscriptions"
)

// defaultTimeout bounds the entitlement check so a hung backend denies
// instead of stalling navigation forever.
const defaultTimeout = 10 * time.Second

// Decision is the outcome of one guard evaluation.
type Decision struct {
	Allowed  bool
	Redirect string
}

func allow() Decision               { return Decision{Allowed: true} }
func deny(redirect string) Decision { return Decision{Redirect: redirect} }

// SessionSource reads the current session.
type SessionSource interface {
	Current() *client.Session
}

// EntitlementSource reports whether the principal holds a valid
// subscription. Implementations fail closed on error.
type EntitlementSource interface {
	IsEntitled(ctx context.Context) bool
}

// Guard bundles the three navigation predicates.
type Guard struct {
	sessions     SessionSource
	entitlements EntitlementSource
	timeout      time.Duration
}

func New(sessions SessionSource, entitlements EntitlementSource) *Guard {
	return &Guard{sessions: sessions, entitlements: entitlements, timeout: defaultTimeout}
}

// Auth passes iff a session is present. Pure function of session state.
func (g *Guard) Auth() Decision {
	if g.sessions.Current() == nil {
		return deny(LoginPath)
	}
	return allow()
}

// Admin passes iff authenticated and the role set grants ADMIN. An
// authenticated non-admin lands on the denied surface, not on login.
func (g *Guard) Admin() Decision {
	sess := g.sessions.Current()
	if sess == nil {
		return deny(LoginPath)
	}
	if !g.roleSet(sess).IsAdmin() {
		return deny(DeniedPath)
	}
	return allow()
}

// Subscription passes iff authenticated and either an admin (admins are
// never entitlement-gated, the resolver is not even consulted) or currently
// entitled. Unentitled users are sent to the offer page, not login. A check
// that errors or outlives the timeout denies.
func (g *Guard) Subscription(ctx context.Context) Decision {
	sess := g.sessions.Current()
	if sess == nil {
		return deny(LoginPath)
	}
	if g.roleSet(sess).IsAdmin() {
		return allow()
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	entitled := make(chan bool, 1)
	go func() { entitled <- g.entitlements.IsEntitled(ctx) }()

	select {
	case ok := <-entitled:
		if ok {
			return allow()
		}
		return deny(OfferPath)
	case <-ctx.Done():
		return deny(OfferPath)
	}
}

func (g *Guard) roleSet(sess *client.Session) roles.Set {
	if sess.Principal == nil {
		return nil
	}
	return sess.Principal.Roles
}
