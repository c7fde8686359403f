package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"foodloop/internal/middleware"
	"foodloop/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// wsIncoming is the shape of client->server frames on the chat socket.
type wsIncoming struct {
	Type    string `json:"type"`
	ChatID  uint   `json:"chat_id"`
	Content string `json:"content"`
}

// WebSocketChatHandler handles WebSocket connections for real-time chat
func (s *Server) WebSocketChatHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		ctx := context.Background()

		// Get userID from context locals (set by AuthRequired middleware)
		userIDVal := conn.Locals("userID")
		if userIDVal == nil {
			log.Printf("WebSocket Chat: Unauthenticated connection attempt")
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}
		userID := userIDVal.(uint)

		if s.chatHub == nil {
			_ = conn.Close()
			return
		}

		client, err := s.chatHub.Register(userID, conn)
		if err != nil {
			log.Printf("WebSocket Chat: Failed to register user %d: %v", userID, err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		client.IncomingHandler = func(c *notifications.Client, raw []byte) {
			var msg wsIncoming
			if err := json.Unmarshal(raw, &msg); err != nil {
				log.Printf("WebSocket: Invalid message format from user %d", userID)
				return
			}

			switch msg.Type {
			case "join":
				if msg.ChatID == 0 {
					return
				}
				// Verify the user is a participant before joining the room
				if _, err := s.chatService.GetChatForUser(ctx, msg.ChatID, userID); err != nil {
					return
				}
				s.chatHub.JoinRoom(msg.ChatID, c)

				ack := notifications.NewEvent(notifications.EventJoined, msg.ChatID, fiber.Map{"chat_id": msg.ChatID})
				if ackJSON, err := json.Marshal(ack); err == nil {
					c.TrySend(ackJSON)
				}

			case "leave":
				if msg.ChatID == 0 {
					return
				}
				s.chatHub.LeaveRoom(msg.ChatID, c)

			case "message":
				// Send a message (alternative to the HTTP endpoint). Same
				// rate limit as HTTP (15 per minute).
				if msg.ChatID == 0 || msg.Content == "" {
					return
				}
				id := fmt.Sprintf("user:%d", userID)
				allowed, _ := middleware.CheckRateLimit(ctx, s.redis, "send_chat", id, 15, time.Minute)
				if !allowed {
					errEvent := notifications.NewEvent("error", msg.ChatID, fiber.Map{
						"message": "Rate limit exceeded. Please wait a moment.",
					})
					if errJSON, err := json.Marshal(errEvent); err == nil {
						c.TrySend(errJSON)
					}
					return
				}

				if _, err := s.chatService.SendMessage(ctx, msg.ChatID, userID, msg.Content); err != nil {
					log.Printf("WebSocket: Failed to send message for user %d: %v", userID, err)
				}

			case "read":
				if msg.ChatID == 0 {
					return
				}
				if _, err := s.chatService.MarkAsRead(ctx, msg.ChatID, userID); err != nil {
					log.Printf("WebSocket: Failed to mark chat %d read for user %d: %v", msg.ChatID, userID, err)
				}
			}
		}

		// Send welcome message
		welcome := notifications.NewEvent("connected", 0, fiber.Map{"user_id": userID})
		if welcomeJSON, err := json.Marshal(welcome); err == nil {
			client.TrySend(welcomeJSON)
		}

		// Start write pump in a goroutine
		go client.WritePump()

		// Read pump runs in the main handler goroutine (blocking)
		client.ReadPump()
	})
}
