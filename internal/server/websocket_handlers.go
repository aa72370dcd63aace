package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/SCGamer30/jam-match-sub001/internal/middleware"
	"github.com/SCGamer30/jam-match-sub001/internal/models"
	"github.com/SCGamer30/jam-match-sub001/internal/notifications"
)

// WebSocketChatHandler handles WebSocket connections for real-time band chat.
func (s *Server) WebSocketChatHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		ctx := context.Background()

		userIDVal := conn.Locals("userID")
		if userIDVal == nil {
			log.Printf("WebSocket: unauthenticated connection attempt")
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}
		userID := userIDVal.(uint)

		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			log.Printf("WebSocket: failed to get user %d: %v", userID, err)
			_ = conn.Close()
			return
		}
		username := user.Username

		if s.bandHub == nil {
			_ = conn.Close()
			return
		}

		client, err := s.bandHub.Register(userID, conn)
		if err != nil {
			log.Printf("WebSocket: failed to register user %d: %v", userID, err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		client.IncomingHandler = func(c *notifications.Client, message []byte) {
			var incomingMsg map[string]interface{}
			if err := json.Unmarshal(message, &incomingMsg); err != nil {
				log.Printf("WebSocket: invalid message format from user %d", userID)
				return
			}

			msgType, ok := incomingMsg["type"].(string)
			if !ok {
				return
			}

			switch msgType {
			case "join":
				if bandIDFloat, ok := incomingMsg["band_id"].(float64); ok {
					bandID := uint(bandIDFloat)
					// Verify band membership before joining the room
					if s.isBandMember(ctx, userID, bandID) {
						s.bandHub.JoinBand(userID, bandID)

						response := notifications.Event{
							Type:    "joined",
							BandID:  bandID,
							Payload: map[string]interface{}{"band_id": bandID},
						}
						if responseJSON, mErr := json.Marshal(response); mErr == nil {
							c.TrySend(responseJSON)
						}
					}
				}

			case "leave":
				if bandIDFloat, ok := incomingMsg["band_id"].(float64); ok {
					s.bandHub.LeaveBand(userID, uint(bandIDFloat))
				}

			case "typing":
				if bandIDFloat, ok := incomingMsg["band_id"].(float64); ok {
					bandID := uint(bandIDFloat)
					isTyping, _ := incomingMsg["is_typing"].(bool)

					if s.notifier != nil && s.isBandMember(ctx, userID, bandID) {
						// Rate limit typing indicators to curb spam
						id := fmt.Sprintf("user:%d", userID)
						allowed, _ := middleware.CheckRateLimit(ctx, s.redis, "typing", id, 10, 10*time.Second)
						if !allowed {
							return
						}
						if perr := s.notifier.PublishTyping(ctx, bandID, userID, username, isTyping); perr != nil {
							log.Printf("publish typing indicator error: %v", perr)
						}
					}
				}

			case "message":
				// Send a message (alternative to the HTTP endpoint)
				if bandIDFloat, ok := incomingMsg["band_id"].(float64); ok {
					bandID := uint(bandIDFloat)
					content, _ := incomingMsg["content"].(string)
					if content == "" {
						return
					}

					// Rate limit the same as HTTP (15 per minute)
					id := fmt.Sprintf("user:%d", userID)
					allowed, _ := middleware.CheckRateLimit(ctx, s.redis, "send_chat", id, 15, time.Minute)
					if !allowed {
						response := notifications.Event{
							Type: "error",
							Payload: map[string]string{
								"message": "Rate limit exceeded. Please wait a moment.",
							},
						}
						if respJSON, mErr := json.Marshal(response); mErr == nil {
							c.TrySend(respJSON)
						}
						return
					}

					msg, sendErr := s.chatService.Send(ctx, userID, bandID, content)
					if sendErr != nil {
						log.Printf("WebSocket: failed to send message: %v", sendErr)
						return
					}
					msg.User = user

					if s.notifier != nil {
						event := notifications.Event{
							Type:     "message",
							BandID:   bandID,
							UserID:   userID,
							Username: username,
							Payload:  msg,
						}
						if eventJSON, mErr := json.Marshal(event); mErr == nil {
							if perr := s.notifier.PublishBandMessage(ctx, bandID, string(eventJSON)); perr != nil {
								log.Printf("publish chat message error: %v", perr)
							}
						}
					}
				}
			}
		}

		// Send welcome message
		welcomeMsg := notifications.Event{
			Type:    "connected",
			Payload: map[string]interface{}{"user_id": userID, "username": username},
		}
		if welcomeJSON, mErr := json.Marshal(welcomeMsg); mErr == nil {
			client.TrySend(welcomeJSON)
		}

		// Auto-join the rooms of every band the user belongs to
		if bands, bErr := s.bandRepo.GetForUser(ctx, userID); bErr == nil {
			for i := range bands {
				s.bandHub.JoinBand(userID, bands[i].ID)
			}
		}

		go client.WritePump()
		client.ReadPump()
	})
}

// isBandMember reports whether the user occupies a slot in the band.
func (s *Server) isBandMember(ctx context.Context, userID, bandID uint) bool {
	var band models.Band
	if err := s.db.WithContext(ctx).
		Select("id", "drummer_id", "guitarist_id", "bassist_id", "singer_id").
		First(&band, bandID).Error; err != nil {
		return false
	}
	return band.HasMember(userID)
}
