// internal/pkg/events/redis.go
package events

import (
	"context"
	"encoding/json"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Channel is the Redis pub/sub channel used to fan events out across
// API instances.
const Channel = "leadscout:events"

// Bridge mirrors bus events onto Redis pub/sub and replays events published
// by other instances back onto the local bus, so a payment completed on one
// node invalidates entitlement views served by another.
type Bridge struct {
	id     string
	bus    *Bus
	client *redis.Client
	logger *zap.Logger
}

func NewBridge(bus *Bus, client *redis.Client, logger *zap.Logger) *Bridge {
	return &Bridge{
		id:     ulid.Make().String(),
		bus:    bus,
		client: client,
		logger: logger,
	}
}

type wireEvent struct {
	Origin string `json:"origin"`
	Event  Event  `json:"event"`
}

// Run subscribes to the Redis channel and republishes remote events locally
// until ctx is cancelled. It also forwards locally published events to Redis.
func (b *Bridge) Run(ctx context.Context) {
	local := make(chan Event, 64)
	unsubscribe := b.bus.Subscribe(func(evt Event) {
		// Events replayed from other instances carry a marker so they are
		// not echoed back out.
		if evt.Data != nil && evt.Data["remote"] == true {
			return
		}
		select {
		case local <- evt:
		default:
			b.logger.Warn("event bridge buffer full, dropping event", zap.String("type", evt.Type))
		}
	})
	defer unsubscribe()

	sub := b.client.Subscribe(ctx, Channel)
	defer sub.Close()
	remote := sub.Channel()

	for {
		select {
		case <-ctx.Done():
			return

		case evt := <-local:
			payload, err := json.Marshal(wireEvent{Origin: b.id, Event: evt})
			if err != nil {
				b.logger.Error("failed to marshal event", zap.Error(err))
				continue
			}
			if err := b.client.Publish(ctx, Channel, payload).Err(); err != nil {
				b.logger.Warn("failed to publish event to redis", zap.Error(err))
			}

		case msg, ok := <-remote:
			if !ok {
				return
			}
			var we wireEvent
			if err := json.Unmarshal([]byte(msg.Payload), &we); err != nil {
				b.logger.Warn("discarding malformed event payload", zap.Error(err))
				continue
			}
			// Redis echoes our own publishes back; skip them.
			if we.Origin == b.id {
				continue
			}
			evt := we.Event
			if evt.Data == nil {
				evt.Data = map[string]interface{}{}
			}
			evt.Data["remote"] = true
			b.bus.Publish(evt)
		}
	}
}
