// internal/client/transport_test.go
package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend is a minimal API: /auth/me accepts exactly one access token,
// /auth/refresh rotates to it.
type fakeBackend struct {
	acceptToken  string
	refreshCalls int
	lastAuth     string
}

func (b *fakeBackend) handler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		b.refreshCalls++
		assert.Empty(t, r.Header.Get("Authorization"), "refresh must not carry a bearer token")

		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.RefreshToken != "refresh-token" {
			writeEnvelope(w, http.StatusUnauthorized, false, nil)
			return
		}

		writeEnvelope(w, http.StatusOK, true, map[string]interface{}{
			"token":        b.acceptToken,
			"refreshToken": "refresh-token-2",
			"user":         map[string]interface{}{"id": 1, "email": "u@example.com", "roles": []string{"ROLE_USER"}},
		})
	})

	mux.HandleFunc("GET /api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		b.lastAuth = r.Header.Get("Authorization")
		if b.lastAuth != "Bearer "+b.acceptToken {
			writeEnvelope(w, http.StatusUnauthorized, false, nil)
			return
		}
		writeEnvelope(w, http.StatusOK, true, map[string]interface{}{
			"id": 1, "email": "u@example.com", "roles": []string{"ROLE_USER"},
		})
	})

	return mux
}

func writeEnvelope(w http.ResponseWriter, status int, success bool, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": success,
		"message": http.StatusText(status),
		"data":    data,
	})
}

func newTestClient(t *testing.T, backend http.Handler) (*Client, *Store) {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	store, err := NewStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)
	return New(srv.URL, store), store
}

func seedSession(t *testing.T, store *Store, token string) {
	t.Helper()
	sess := testSession()
	sess.Token = token
	require.NoError(t, store.Set(sess))
}

func TestAttachesBearerToken(t *testing.T) {
	backend := &fakeBackend{acceptToken: "access-token"}
	c, store := newTestClient(t, backend.handler(t))
	seedSession(t, store, "access-token")

	_, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer access-token", backend.lastAuth)
	assert.Zero(t, backend.refreshCalls)
}

func TestExpiredTokenRefreshedOnceAndRetried(t *testing.T) {
	backend := &fakeBackend{acceptToken: "fresh-token"}
	c, store := newTestClient(t, backend.handler(t))
	seedSession(t, store, "stale-token")

	p, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u@example.com", p.Email)
	assert.Equal(t, 1, backend.refreshCalls)

	// Session was swapped atomically to the rotated pair.
	sess := store.Current()
	require.NotNil(t, sess)
	assert.Equal(t, "fresh-token", sess.Token)
	assert.Equal(t, "refresh-token-2", sess.RefreshToken)
}

func TestSecondUnauthorizedForcesLogoutNotSecondRefresh(t *testing.T) {
	// The backend rejects every access token, including the refreshed one.
	backend := &fakeBackend{acceptToken: "never-issued"}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		backend.refreshCalls++
		writeEnvelope(w, http.StatusOK, true, map[string]interface{}{
			"token":        "still-rejected",
			"refreshToken": "refresh-token-2",
			"user":         map[string]interface{}{"id": 1, "email": "u@example.com", "roles": []string{"ROLE_USER"}},
		})
	})
	mux.HandleFunc("GET /api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, false, nil)
	})

	c, store := newTestClient(t, mux)
	seedSession(t, store, "stale-token")

	var loggedOut bool
	c.OnForcedLogout(func() { loggedOut = true })

	_, err := c.Me(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	assert.Equal(t, 1, backend.refreshCalls, "exactly one refresh per logical request")
	assert.True(t, loggedOut)
	assert.Nil(t, store.Current())
}

func TestRefreshFailureForcesLogout(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, false, nil)
	})
	mux.HandleFunc("GET /api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, false, nil)
	})

	c, store := newTestClient(t, mux)
	seedSession(t, store, "stale-token")

	var loggedOut bool
	c.OnForcedLogout(func() { loggedOut = true })

	_, err := c.Me(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.True(t, loggedOut)
	assert.Nil(t, store.Current())
}

func TestPublicAuthPathsSkipTokenAndRetry(t *testing.T) {
	var sawAuth []string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		sawAuth = append(sawAuth, r.Header.Get("Authorization"))
		writeEnvelope(w, http.StatusUnauthorized, false, nil)
	})

	c, store := newTestClient(t, mux)
	seedSession(t, store, "access-token")

	_, err := c.Login(context.Background(), "u@example.com", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)

	// One attempt, no bearer attached, no refresh loop.
	require.Len(t, sawAuth, 1)
	assert.Empty(t, sawAuth[0])
}
