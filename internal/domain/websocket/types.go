// internal/domain/websocket/types.go
package websocket

import (
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
)

// EventType represents different real-time event types
type EventType string

const (
	// Connection events
	EventTypePing         EventType = "ping"
	EventTypePong         EventType = "pong"
	EventTypeConnected    EventType = "connected"
	EventTypeDisconnected EventType = "disconnected"
	EventTypeError        EventType = "error"

	// Entitlement events
	EventTypeSubscriptionChanged EventType = "subscription:changed"

	// Scraping events
	EventTypeScrapeProgress EventType = "scrape:progress"

	// Session events
	EventTypeForceLogout EventType = "session:force_logout"

	// Channel management
	EventTypeSubscribe   EventType = "subscribe"
	EventTypeUnsubscribe EventType = "unsubscribe"
)

// WSMessage is the universal message format
type WSMessage struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	ID        string      `json:"id,omitempty"`
}

// NewMessage builds a WSMessage with a fresh ID and timestamp.
func NewMessage(eventType EventType, data interface{}) *WSMessage {
	return &WSMessage{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
		ID:        ulid.Make().String(),
	}
}

// ToJSON serializes the message for the wire.
func (m *WSMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage decodes a client frame.
func ParseMessage(data []byte) (*WSMessage, error) {
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Subscription channels that clients can subscribe to
type ChannelType string

const (
	ChannelSubscriptions ChannelType = "subscriptions"
	ChannelScrapes       ChannelType = "scrapes"
	ChannelSystem        ChannelType = "system"
)

// SubscribeRequest sent by a client to subscribe to specific channels
type SubscribeRequest struct {
	Channels []ChannelType `json:"channels"`
}

// UnsubscribeRequest sent by a client to leave channels
type UnsubscribeRequest struct {
	Channels []ChannelType `json:"channels"`
}

// ErrorData for error events
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SubscriptionChangedData tells observers to re-run their entitlement check.
type SubscriptionChangedData struct {
	UserID int64 `json:"user_id"`
}

// ScrapeProgressData reports scraping job progress.
type ScrapeProgressData struct {
	JobID        int64  `json:"job_id"`
	Reference    string `json:"reference"`
	Status       string `json:"status"`
	ProfileCount int    `json:"profile_count"`
}

// SessionEventData for session events
type SessionEventData struct {
	SessionID string `json:"session_id,omitempty"`
	Reason    string `json:"reason"`
	Message   string `json:"message"`
}
