// internal/client/entitlement.go
package client

import (
	"context"
	"time"

	"leadscout-service/internal/domain/subscription"
)

// EntitlementResolver answers "does the current principal hold a valid
// subscription". It is idempotent and side-effect free; callers re-invoke it
// after login, logout and subscription-changed notifications rather than the
// resolver pushing updates.
type EntitlementResolver struct {
	api *Client
	now func() time.Time
}

func NewEntitlementResolver(api *Client) *EntitlementResolver {
	return &EntitlementResolver{api: api, now: time.Now}
}

// IsEntitled fetches the principal's entitlement records and reduces them
// with the shared validity rule. No principal means false without a network
// call. Any transport or server error fails closed: uncertainty never grants
// premium access.
func (r *EntitlementResolver) IsEntitled(ctx context.Context) bool {
	if r.api.Store().Current() == nil {
		return false
	}

	subs, err := r.api.Subscriptions(ctx)
	if err != nil {
		return false
	}

	now := r.now()
	for _, si := range subs {
		s := subscription.Subscription{Active: si.Active, EndDate: si.EndDate}
		if s.ValidAt(now) {
			return true
		}
	}
	return false
}
