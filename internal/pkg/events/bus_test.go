package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishReachesAllSubscribers(t *testing.T) {
	t.Parallel()
	bus := NewBus()

	var first, second []Event
	bus.Subscribe(func(evt Event) { first = append(first, evt) })
	bus.Subscribe(func(evt Event) { second = append(second, evt) })

	bus.PublishSubscriptionChanged(9)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, TypeSubscriptionChanged, first[0].Type)
	assert.Equal(t, int64(9), first[0].UserID)
}

func TestBus_Unsubscribe(t *testing.T) {
	t.Parallel()
	bus := NewBus()

	var got []Event
	unsubscribe := bus.Subscribe(func(evt Event) { got = append(got, evt) })

	bus.PublishSubscriptionChanged(1)
	unsubscribe()
	bus.PublishSubscriptionChanged(2)

	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].UserID)
}

// Observers that re-check entitlement on the subscription-changed event must
// all converge on the new value after a single publish.
func TestBus_ObserverConvergence(t *testing.T) {
	t.Parallel()
	bus := NewBus()

	entitled := false
	resolve := func() bool { return entitled }

	type observer struct{ entitled bool }
	observers := []*observer{{}, {}, {}}
	for _, o := range observers {
		o := o
		bus.Subscribe(func(Event) { o.entitled = resolve() })
	}

	// Payment completes: backend state flips, then the event fires.
	entitled = true
	bus.PublishSubscriptionChanged(5)
	for i, o := range observers {
		assert.True(t, o.entitled, "observer %d did not re-resolve", i)
	}

	entitled = false
	bus.PublishSubscriptionChanged(5)
	for i, o := range observers {
		assert.False(t, o.entitled, "observer %d kept stale state", i)
	}
}
