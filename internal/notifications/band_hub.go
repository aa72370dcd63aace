package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gofiber/websocket/v2"

	"github.com/SCGamer30/jam-match-sub001/internal/middleware"
)

// BandHub manages websocket connections for band chat rooms. It is
// band-centric: a client joins the rooms of the bands it belongs to and
// receives every event published to those rooms.
type BandHub struct {
	mu sync.RWMutex

	// bandID -> set of userIDs present in the room
	bands map[uint]map[uint]struct{}

	// userID -> set of bandIDs the user has joined
	userBands map[uint]map[uint]struct{}

	// userID -> set of active clients (multi-device support)
	userConns map[uint]map[*Client]bool
}

// Name returns a human-readable identifier for this hub.
func (h *BandHub) Name() string { return "band hub" }

// Event is the wire format for everything the hub pushes to clients.
type Event struct {
	Type     string      `json:"type"` // "message", "typing", "band_formed", "user_status"
	BandID   uint        `json:"band_id,omitempty"`
	UserID   uint        `json:"user_id,omitempty"`
	Username string      `json:"username,omitempty"`
	Payload  interface{} `json:"payload"`
}

// NewBandHub creates an empty BandHub.
func NewBandHub() *BandHub {
	return &BandHub{
		bands:     make(map[uint]map[uint]struct{}),
		userBands: make(map[uint]map[uint]struct{}),
		userConns: make(map[uint]map[*Client]bool),
	}
}

// Register attaches a user's websocket connection to the hub.
func (h *BandHub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()

	if h.userConns[userID] == nil {
		h.userConns[userID] = make(map[*Client]bool)
	}
	if len(h.userConns[userID]) >= maxConnsPerUser {
		h.mu.Unlock()
		return nil, fmt.Errorf("user connection limit reached")
	}

	client := NewClient(h, conn, userID)
	h.userConns[userID][client] = true
	h.mu.Unlock()

	middleware.ActiveWebSockets.Inc()
	middleware.Logger.Info("band hub client registered", slog.Uint64("user_id", uint64(userID)))
	return client, nil
}

// UnregisterClient removes a connection; when it was the user's last one,
// the user leaves all rooms.
func (h *BandHub) UnregisterClient(client *Client) {
	h.mu.Lock()

	clients, ok := h.userConns[client.UserID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, present := clients[client]; !present {
		h.mu.Unlock()
		return
	}
	delete(clients, client)
	middleware.ActiveWebSockets.Dec()

	if len(clients) > 0 {
		h.mu.Unlock()
		return
	}
	delete(h.userConns, client.UserID)

	for bandID := range h.userBands[client.UserID] {
		if members, ok := h.bands[bandID]; ok {
			delete(members, client.UserID)
			if len(members) == 0 {
				delete(h.bands, bandID)
			}
		}
	}
	delete(h.userBands, client.UserID)

	h.mu.Unlock()
	middleware.Logger.Info("band hub client unregistered", slog.Uint64("user_id", uint64(client.UserID)))
}

// JoinBand subscribes a connected user to a band's room.
func (h *BandHub) JoinBand(userID, bandID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.userConns[userID]; !ok {
		return
	}

	if h.bands[bandID] == nil {
		h.bands[bandID] = make(map[uint]struct{})
	}
	h.bands[bandID][userID] = struct{}{}

	if h.userBands[userID] == nil {
		h.userBands[userID] = make(map[uint]struct{})
	}
	h.userBands[userID][bandID] = struct{}{}
}

// LeaveBand unsubscribes a user from a band's room.
func (h *BandHub) LeaveBand(userID, bandID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.bands[bandID]; ok {
		delete(members, userID)
		if len(members) == 0 {
			delete(h.bands, bandID)
		}
	}
	if bands, ok := h.userBands[userID]; ok {
		delete(bands, bandID)
	}
}

// IsUserOnline reports whether the user has at least one open connection.
func (h *BandHub) IsUserOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.userConns[userID]
	return ok && len(clients) > 0
}

// ActiveUsers returns the user IDs currently present in a band's room.
func (h *BandHub) ActiveUsers(bandID uint) []uint {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members, ok := h.bands[bandID]
	if !ok {
		return []uint{}
	}
	out := make([]uint, 0, len(members))
	for id := range members {
		out = append(out, id)
	}
	return out
}

// BroadcastToBand sends an event to every client present in the band's room.
func (h *BandHub) BroadcastToBand(bandID uint, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members, ok := h.bands[bandID]
	if !ok {
		return
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		middleware.Logger.Error("failed to marshal hub event", slog.String("error", err.Error()))
		return
	}

	for userID := range members {
		if clients, ok := h.userConns[userID]; ok {
			for client := range clients {
				client.TrySend(eventJSON)
			}
		}
	}
}

// StartWiring connects the hub to Redis pub/sub so events published by any
// API instance reach this instance's clients.
func (h *BandHub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartChatSubscriber(ctx, func(channel, payload string) {
		var bandID uint
		var eventType string

		if _, err := fmt.Sscanf(channel, "chat:band:%d", &bandID); err == nil {
			eventType = "message"
		} else if _, err := fmt.Sscanf(channel, "typing:band:%d", &bandID); err == nil {
			eventType = "typing"
		} else if _, err := fmt.Sscanf(channel, "bands:formed:%d", &bandID); err == nil {
			eventType = "band_formed"
		} else {
			middleware.Logger.Warn("unrecognized pub/sub channel", slog.String("channel", channel))
			return
		}

		var event Event
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			middleware.Logger.Warn("failed to parse pub/sub payload",
				slog.String("channel", channel), slog.String("error", err.Error()))
			return
		}
		if event.Type == "" {
			event.Type = eventType
		}
		event.BandID = bandID

		h.BroadcastToBand(bandID, event)
	})
}

// Shutdown closes every websocket connection and clears hub state.
func (h *BandHub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, clients := range h.userConns {
		for client := range clients {
			if client.Conn == nil {
				continue
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage,
				[]byte(`{"type":"server_shutdown","payload":{"message":"Server is shutting down"}}`)); err != nil {
				middleware.Logger.Warn("failed to write shutdown message",
					slog.Uint64("user_id", uint64(userID)), slog.String("error", err.Error()))
			}
			if err := client.Conn.Close(); err != nil {
				middleware.Logger.Warn("failed to close websocket",
					slog.Uint64("user_id", uint64(userID)), slog.String("error", err.Error()))
			}
		}
	}

	h.bands = make(map[uint]map[uint]struct{})
	h.userBands = make(map[uint]map[uint]struct{})
	h.userConns = make(map[uint]map[*Client]bool)

	return nil
}
