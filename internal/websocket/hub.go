// internal/websocket/hub.go
package websocket

import (
	"context"
	"sync"

	wstypes "leadscout-service/internal/domain/websocket"
	"leadscout-service/internal/pkg/jwt"
	"leadscout-service/internal/pkg/session"

	"go.uber.org/zap"
)

type Hub struct {
	// Registered clients by user ID
	clients map[int64]map[*Client]bool
	mu      sync.RWMutex

	Register   chan *Client
	unregister chan *Client

	broadcast chan *BroadcastMessage

	jwtVerifier    *jwt.Verifier
	sessionManager *session.Manager
	logger         *zap.Logger
}

type BroadcastMessage struct {
	// UserIDs nil means broadcast to everyone
	UserIDs []int64
	Channel wstypes.ChannelType
	Message *wstypes.WSMessage
}

func NewHub(jwtVerifier *jwt.Verifier, sessionManager *session.Manager, logger *zap.Logger) *Hub {
	return &Hub{
		clients:        make(map[int64]map[*Client]bool),
		Register:       make(chan *Client),
		unregister:     make(chan *Client),
		broadcast:      make(chan *BroadcastMessage, 256),
		jwtVerifier:    jwtVerifier,
		sessionManager: sessionManager,
		logger:         logger,
	}
}

// AuthenticateClient validates the access token handed over on upgrade.
func (h *Hub) AuthenticateClient(ctx context.Context, token string) (*ClientAuth, error) {
	claims, err := h.jwtVerifier.VerifyAccessToken(token)
	if err != nil {
		return nil, err
	}

	blacklisted, err := h.sessionManager.IsTokenBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if blacklisted {
		return nil, ErrTokenBlacklisted
	}

	return &ClientAuth{
		UserID: claims.UserID,
		JTI:    claims.ID,
		Email:  claims.Email,
		Roles:  claims.RoleSet(),
	}, nil
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.BroadcastMessage(msg)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.userID] == nil {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true

	h.logger.Info("websocket client connected",
		zap.Int64("user_id", client.userID),
		zap.Int("total", h.totalClients()))

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeConnected, map[string]interface{}{
		"user_id": client.userID,
		"roles":   client.roles.Strings(),
	}))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.userID]; ok {
		if _, exists := clients[client]; exists {
			delete(clients, client)
			client.Close()

			if len(clients) == 0 {
				delete(h.clients, client.userID)
			}

			h.logger.Info("websocket client disconnected",
				zap.Int64("user_id", client.userID),
				zap.Int("total", h.totalClients()))
		}
	}
}

func (h *Hub) BroadcastMessage(msg *BroadcastMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	deliver := func(clients map[*Client]bool) {
		for client := range clients {
			if client.IsSubscribed(msg.Channel) {
				client.SendMessage(msg.Message)
			}
		}
	}

	if msg.UserIDs == nil {
		for _, clients := range h.clients {
			deliver(clients)
		}
		return
	}

	for _, userID := range msg.UserIDs {
		if clients, ok := h.clients[userID]; ok {
			deliver(clients)
		}
	}
}

// BroadcastSubscriptionChanged pushes the entitlement-changed signal to a
// user's live connections so they re-resolve instead of waiting to poll.
func (h *Hub) BroadcastSubscriptionChanged(userID int64) {
	msg := wstypes.NewMessage(wstypes.EventTypeSubscriptionChanged,
		wstypes.SubscriptionChangedData{UserID: userID})
	h.broadcast <- &BroadcastMessage{
		UserIDs: []int64{userID},
		Channel: wstypes.ChannelSubscriptions,
		Message: msg,
	}
}

// BroadcastScrapeProgress pushes job progress to the owning user.
func (h *Hub) BroadcastScrapeProgress(userID int64, data wstypes.ScrapeProgressData) {
	msg := wstypes.NewMessage(wstypes.EventTypeScrapeProgress, data)
	h.broadcast <- &BroadcastMessage{
		UserIDs: []int64{userID},
		Channel: wstypes.ChannelScrapes,
		Message: msg,
	}
}

// ForceLogout tells a user's connections their session is gone.
func (h *Hub) ForceLogout(userID int64, reason string) {
	msg := wstypes.NewMessage(wstypes.EventTypeForceLogout, wstypes.SessionEventData{
		Reason:  reason,
		Message: "You have been logged out",
	})
	h.broadcast <- &BroadcastMessage{
		UserIDs: []int64{userID},
		Channel: wstypes.ChannelSystem,
		Message: msg,
	}
}

// DisconnectUser forcefully closes all connections of a user.
func (h *Hub) DisconnectUser(userID int64, reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[userID]; ok {
		disconnectMsg := wstypes.NewMessage(wstypes.EventTypeDisconnected, map[string]interface{}{
			"reason": reason,
		})

		for client := range clients {
			client.SendMessage(disconnectMsg)
			client.Close()
		}

		delete(h.clients, userID)
		h.logger.Info("disconnected all clients",
			zap.Int64("user_id", userID), zap.String("reason", reason))
	}
}

func (h *Hub) ConnectedClients(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalClients()
}

func (h *Hub) totalClients() int {
	total := 0
	for _, clients := range h.clients {
		total += len(clients)
	}
	return total
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			client.Close()
		}
	}
}
