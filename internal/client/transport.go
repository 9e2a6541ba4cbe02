// internal/client/transport.go
package client

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
)

// Endpoints that must never carry a bearer token and never trigger a
// refresh: they either establish a session or work without one.
var publicAuthPaths = map[string]bool{
	"/api/v1/auth/login":           true,
	"/api/v1/auth/register":        true,
	"/api/v1/auth/refresh":         true,
	"/api/v1/auth/forgot-password": true,
	"/api/v1/auth/reset-password":  true,
}

func isPublicAuthPath(path string) bool {
	return publicAuthPaths[strings.TrimSuffix(path, "/")]
}

// retryMarkerKey marks a request that already went through the single
// refresh-and-resend cycle. It rides in the request context, not in a
// header, so the bookkeeping never leaks to the backend.
type retryMarkerKey struct{}

func markRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, retryMarkerKey{}, true)
}

func wasRetried(ctx context.Context) bool {
	retried, _ := ctx.Value(retryMarkerKey{}).(bool)
	return retried
}

// Transport attaches the session's bearer token to outbound requests and, on
// a 401 for a token-bearing request, performs exactly one silent refresh
// before resending. A second 401 for the same logical request forces logout
// instead of looping.
type Transport struct {
	base  http.RoundTripper
	store *Store

	// refresh exchanges a refresh token for a new session. Set by the
	// owning Client after construction.
	refresh func(ctx context.Context, refreshToken string) (*Session, error)

	// onForcedLogout runs after the session is cleared on unrecoverable
	// auth failure. Optional.
	onForcedLogout func()

	// refreshMu keeps concurrent 401s from stampeding the refresh
	// endpoint; the loser of the race reuses the winner's new session.
	refreshMu sync.Mutex
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	sess := t.store.Current()
	attach := sess != nil && !isPublicAuthPath(req.URL.Path)
	if attach {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil || resp.StatusCode != http.StatusUnauthorized || !attach {
		return resp, err
	}

	if wasRetried(req.Context()) {
		// Refresh already happened for this request and the new token
		// still came back 401. Give up.
		t.forceLogout()
		return resp, nil
	}

	if _, rerr := t.refreshSession(req.Context(), sess); rerr != nil {
		t.forceLogout()
		return resp, nil
	}

	resp.Body.Close()

	retry := req.Clone(markRetried(req.Context()))
	if req.GetBody != nil {
		body, berr := req.GetBody()
		if berr != nil {
			return nil, berr
		}
		retry.Body = body
	}
	return t.RoundTrip(retry)
}

// refreshSession performs the one refresh attempt. If another goroutine got
// there first the swapped session is reused without a second network call.
func (t *Transport) refreshSession(ctx context.Context, stale *Session) (*Session, error) {
	t.refreshMu.Lock()
	defer t.refreshMu.Unlock()

	if cur := t.store.Current(); cur != nil && cur.Token != stale.Token {
		return cur, nil
	}

	if stale.RefreshToken == "" {
		return nil, errors.New("no refresh token available")
	}
	if t.refresh == nil {
		return nil, errors.New("refresh not configured")
	}

	fresh, err := t.refresh(ctx, stale.RefreshToken)
	if err != nil {
		return nil, err
	}
	if err := t.store.Set(*fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

func (t *Transport) forceLogout() {
	_ = t.store.Clear()
	if t.onForcedLogout != nil {
		t.onForcedLogout()
	}
}
