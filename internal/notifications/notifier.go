// Package notifications provides real-time chat message delivery over
// websockets, fanned out through Redis pub/sub so that every server
// instance sees every room event.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"
	"strconv"

	"foodloop/internal/observability"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Event is the envelope published to a chat room channel. The ID lets
// clients that are both the REST caller and a room subscriber dedupe
// their own messages.
type Event struct {
	ID     string      `json:"id"`
	Type   string      `json:"type"`
	ChatID uint        `json:"chat_id"`
	Data   interface{} `json:"data,omitempty"`
}

// Event types carried over the wire.
const (
	EventMessage = "message"
	EventJoined  = "joined"
	EventLeft    = "left"
	EventRead    = "read"
)

// NewEvent builds an Event with a fresh unique ID.
func NewEvent(eventType string, chatID uint, data interface{}) Event {
	return Event{
		ID:     uuid.NewString(),
		Type:   eventType,
		ChatID: chatID,
		Data:   data,
	}
}

// Broadcaster publishes room events. Services depend on this interface
// so persistence never waits on, or fails because of, delivery.
type Broadcaster interface {
	PublishRoom(ctx context.Context, chatID uint, event Event) error
}

// Notifier publishes chat events into Redis channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishRoom sends an event to a chat room channel. A nil Redis client
// is a no-op so the API keeps working without a broker.
func (n *Notifier) PublishRoom(ctx context.Context, chatID uint, event Event) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		observability.FanoutPublishes.WithLabelValues("error").Inc()
		return fmt.Errorf("marshal room event: %w", err)
	}
	if err := n.rdb.Publish(ctx, RoomChannel(chatID), string(payload)).Err(); err != nil {
		observability.FanoutPublishes.WithLabelValues("error").Inc()
		return err
	}
	observability.FanoutPublishes.WithLabelValues("ok").Inc()
	return nil
}

// StartRoomSubscriber subscribes to pattern `chat:room:*` and calls onMessage
// for each incoming message. onMessage receives channel and payload.
func (n *Notifier) StartRoomSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "chat:room:*")
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
							log.Printf("PANIC in RoomSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// RoomChannel derives the Redis channel name for a chat room.
func RoomChannel(chatID uint) string {
	return "chat:room:" + strconv.FormatUint(uint64(chatID), 10)
}
