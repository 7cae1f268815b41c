package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	wsPkg "github.com/krishanu7/battleship-engine/pkg/websocket"
	"github.com/redis/go-redis/v9"
)

// NotificationWorker relays match events from redis to the spectators of
// each match.
type NotificationWorker struct {
	RedisClient redis.UniversalClient
	Hub         *wsPkg.Hub
	channel     string
}

func NewNotificationWorker(rdb redis.UniversalClient, hub *wsPkg.Hub, channel string) *NotificationWorker {
	return &NotificationWorker{
		RedisClient: rdb,
		Hub:         hub,
		channel:     channel,
	}
}

// Run blocks until ctx is done or the subscription closes.
func (w *NotificationWorker) Run(ctx context.Context) error {
	log.Println("Notification worker starting...")
	pubsub := w.RedisClient.Subscribe(ctx, w.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", w.channel, err)
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			w.dispatch(msg.Payload)
		}
	}
}

func (w *NotificationWorker) dispatch(payload string) int {
	var event struct {
		Type    string `json:"type"`
		MatchID string `json:"matchId"`
	}
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		log.Printf("Failed to unmarshal notification: %v", err)
		return 0
	}
	if event.MatchID == "" {
		log.Printf("Dropping %s notification without a match", event.Type)
		return 0
	}
	return w.Hub.Broadcast(event.MatchID, []byte(payload))
}
