// Package notifications provides real-time delivery of band chat events.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/redis/go-redis/v9"

	"github.com/SCGamer30/jam-match-sub001/internal/middleware"
)

// Notifier publishes band chat events into Redis channels so every API
// instance can fan them out to its own websocket clients.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a Notifier using the provided Redis client. A nil
// client turns every publish into a no-op, which keeps single-instance
// deployments without Redis working.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// BandChannel is the Redis channel carrying a band's chat messages.
func BandChannel(bandID uint) string {
	return fmt.Sprintf("chat:band:%d", bandID)
}

// PublishBandMessage publishes a chat message payload to a band's channel.
func (n *Notifier) PublishBandMessage(ctx context.Context, bandID uint, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, BandChannel(bandID), payload).Err()
}

// PublishTyping publishes a typing indicator to a band's typing channel.
func (n *Notifier) PublishTyping(ctx context.Context, bandID, userID uint, username string, isTyping bool) error {
	if n.rdb == nil {
		return nil
	}
	payload := map[string]interface{}{
		"user_id":       userID,
		"username":      username,
		"is_typing":     isTyping,
		"expires_in_ms": 5000,
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	channel := fmt.Sprintf("typing:band:%d", bandID)
	return n.rdb.Publish(ctx, channel, string(payloadJSON)).Err()
}

// PublishBandFormed announces a newly formed band to its members' channels.
func (n *Notifier) PublishBandFormed(ctx context.Context, bandID uint, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, fmt.Sprintf("bands:formed:%d", bandID), payload).Err()
}

// StartChatSubscriber subscribes to all band chat and typing channels and
// calls onMessage for each incoming message.
func (n *Notifier) StartChatSubscriber(ctx context.Context, onMessage func(channel, payload string)) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "chat:band:*", "typing:band:*", "bands:formed:*")
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in chat subscriber",
								slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
