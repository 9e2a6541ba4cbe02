// internal/domain/subscription/entity.go
package subscription

import (
	"database/sql"
	"time"
)

type BillingPeriod string

const (
	PeriodMonthly   BillingPeriod = "monthly"
	PeriodQuarterly BillingPeriod = "quarterly"
	PeriodYearly    BillingPeriod = "yearly"
	PeriodLifetime  BillingPeriod = "lifetime"
)

// Plan is a purchasable subscription tier.
type Plan struct {
	ID          int64          `json:"id"`
	Code        string         `json:"code"`
	Name        string         `json:"name"`
	Description sql.NullString `json:"description,omitempty"`
	Price       float64        `json:"price"`
	Currency    string         `json:"currency"`
	Period      BillingPeriod  `json:"period"`
	MaxScrapes  sql.NullInt32  `json:"maxScrapes,omitempty"`
	Active      bool           `json:"active"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// Duration returns how long one billing period runs, or false for
// lifetime plans that never expire.
func (p *Plan) Duration() (time.Duration, bool) {
	switch p.Period {
	case PeriodMonthly:
		return 30 * 24 * time.Hour, true
	case PeriodQuarterly:
		return 90 * 24 * time.Hour, true
	case PeriodYearly:
		return 365 * 24 * time.Hour, true
	default:
		return 0, false
	}
}

// Subscription is an entitlement record owned by a user. The JSON field
// names are the wire contract consumed by the front-end clients.
type Subscription struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"userId"`
	PlanID    int64      `json:"planId"`
	Plan      *Plan      `json:"subscriptionType,omitempty"`
	Active    bool       `json:"active"`
	StartDate time.Time  `json:"startDate"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// ValidAt reports whether the subscription entitles its owner at the given
// instant: the active flag is set and either no end date exists or the end
// date has not passed. This rule is the single source of truth for
// entitlement; every caller evaluates it fresh rather than caching.
func (s *Subscription) ValidAt(now time.Time) bool {
	if !s.Active {
		return false
	}
	if s.EndDate == nil {
		return true
	}
	return !s.EndDate.Before(now)
}

// AnyValidAt reports whether any subscription in the list is valid at now.
func AnyValidAt(subs []*Subscription, now time.Time) bool {
	for _, s := range subs {
		if s.ValidAt(now) {
			return true
		}
	}
	return false
}
