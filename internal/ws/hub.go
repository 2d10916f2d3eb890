package ws

import (
	"encoding/json"
	"sync"

	"aura_avatar/internal/domain"
	"aura_avatar/internal/logger"
)

// Event is a live-feed frame pushed to every connected client.
type Event struct {
	Type     string         `json:"type"`
	Avatar   *domain.Avatar `json:"avatar,omitempty"`
	AvatarID string         `json:"avatar_id,omitempty"`
	Count    int64          `json:"count,omitempty"`
}

const (
	EventAvatarCreated = "avatar_created"
	EventAvatarLiked   = "avatar_liked"
	EventAvatarShared  = "avatar_shared"
)

// Hub fans feed events out to all connected clients. Slow clients are
// dropped rather than allowed to stall the broadcast.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// PublishAvatar broadcasts a newly created public avatar to the live feed.
func (h *Hub) PublishAvatar(a *domain.Avatar) {
	if !a.Public {
		return
	}
	msg, err := json.Marshal(Event{Type: EventAvatarCreated, Avatar: a})
	if err != nil {
		logger.Error("encode feed event", "error", err)
		return
	}
	h.broadcast(msg)
}

// PublishLike broadcasts the new like count for an avatar.
func (h *Hub) PublishLike(avatarID string, likes int64) {
	h.publishEngagement(EventAvatarLiked, avatarID, likes)
}

// PublishShare broadcasts the new share count for an avatar.
func (h *Hub) PublishShare(avatarID string, shares int64) {
	h.publishEngagement(EventAvatarShared, avatarID, shares)
}

func (h *Hub) publishEngagement(eventType, avatarID string, count int64) {
	msg, err := json.Marshal(Event{Type: eventType, AvatarID: avatarID, Count: count})
	if err != nil {
		logger.Error("encode feed event", "error", err)
		return
	}
	h.broadcast(msg)
}

func (h *Hub) broadcast(msg []byte) {
	h.mu.RLock()
	stalled := make([]*Client, 0)
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			stalled = append(stalled, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stalled {
		logger.Warn("dropping stalled feed client")
		h.unregister(c)
	}
}

// ClientCount reports connected clients; used by the health endpoint.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
