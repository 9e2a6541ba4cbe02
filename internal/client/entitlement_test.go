// internal/client/entitlement_test.go
package client

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"leadscout-service/internal/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subscriptionsBackend(calls *int64, subs []map[string]interface{}, status int) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/subscriptions", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(calls, 1)
		if status >= 400 {
			writeEnvelope(w, status, false, nil)
			return
		}
		writeEnvelope(w, http.StatusOK, true, subs)
	})
	return mux
}

func TestEntitledWithValidSubscription(t *testing.T) {
	var calls int64
	c, store := newTestClient(t, subscriptionsBackend(&calls, []map[string]interface{}{
		{"id": 1, "active": true},
	}, 0))
	seedSession(t, store, "access-token")

	r := NewEntitlementResolver(c)
	assert.True(t, r.IsEntitled(context.Background()))
}

func TestExpiredSubscriptionNotEntitled(t *testing.T) {
	var calls int64
	past := time.Now().Add(-time.Hour).Format(time.RFC3339)
	c, store := newTestClient(t, subscriptionsBackend(&calls, []map[string]interface{}{
		{"id": 1, "active": true, "endDate": past},
		{"id": 2, "active": false},
	}, 0))
	seedSession(t, store, "access-token")

	r := NewEntitlementResolver(c)
	assert.False(t, r.IsEntitled(context.Background()))
}

func TestNoSessionSkipsNetworkCall(t *testing.T) {
	var calls int64
	c, _ := newTestClient(t, subscriptionsBackend(&calls, nil, 0))

	r := NewEntitlementResolver(c)
	assert.False(t, r.IsEntitled(context.Background()))
	assert.Zero(t, atomic.LoadInt64(&calls))
}

func TestBackendErrorFailsClosed(t *testing.T) {
	var calls int64
	c, store := newTestClient(t, subscriptionsBackend(&calls, nil, http.StatusInternalServerError))
	seedSession(t, store, "access-token")

	r := NewEntitlementResolver(c)
	assert.False(t, r.IsEntitled(context.Background()))
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
}

// Observers re-run the resolver on every subscription-changed notification
// and converge on the backend's new answer.
func TestChangeNotificationConvergence(t *testing.T) {
	var calls int64
	entitled := false

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/subscriptions", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		if entitled {
			writeEnvelope(w, http.StatusOK, true, []map[string]interface{}{{"id": 1, "active": true}})
			return
		}
		writeEnvelope(w, http.StatusOK, true, []map[string]interface{}{})
	})

	c, store := newTestClient(t, mux)
	seedSession(t, store, "access-token")
	resolver := NewEntitlementResolver(c)

	var observed bool
	unsubscribe := c.Notifier().Subscribe(func(evt events.Event) {
		if evt.Type == events.TypeSubscriptionChanged {
			observed = resolver.IsEntitled(context.Background())
		}
	})
	defer unsubscribe()

	require.False(t, resolver.IsEntitled(context.Background()))

	entitled = true
	c.Notifier().PublishSubscriptionChanged(1)
	assert.True(t, observed)
}
