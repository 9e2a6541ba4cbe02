package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSubscription_ValidAt(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(90 * 24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	tests := []struct {
		name string
		sub  Subscription
		want bool
	}{
		{"active without end date", Subscription{Active: true}, true},
		{"active with future end date", Subscription{Active: true, EndDate: &future}, true},
		{"active but expired", Subscription{Active: true, EndDate: &past}, false},
		{"inactive without end date", Subscription{Active: false}, false},
		{"inactive with future end date", Subscription{Active: false, EndDate: &future}, false},
		{"end date exactly now", Subscription{Active: true, EndDate: &now}, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.sub.ValidAt(now))
		})
	}
}

func TestAnyValidAt(t *testing.T) {
	t.Parallel()

	now := time.Now()
	past := now.Add(-time.Hour)

	assert.False(t, AnyValidAt(nil, now))
	assert.False(t, AnyValidAt([]*Subscription{
		{Active: false},
		{Active: true, EndDate: &past},
	}, now))
	assert.True(t, AnyValidAt([]*Subscription{
		{Active: false},
		{Active: true},
	}, now))
}

func TestPlan_Duration(t *testing.T) {
	t.Parallel()

	m := Plan{Period: PeriodMonthly}
	d, ok := m.Duration()
	assert.True(t, ok)
	assert.Equal(t, 30*24*time.Hour, d)

	l := Plan{Period: PeriodLifetime}
	_, ok = l.Duration()
	assert.False(t, ok)
}
