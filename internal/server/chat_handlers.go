package server

import (
	"time"

	"foodloop/internal/models"
	"foodloop/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// OpenChat opens (or returns) the chat between the caller and another
// user, optionally scoped to a food post (protected)
func (s *Server) OpenChat(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := currentUserID(c)

	var req service.OpenChatInput
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	chat, err := s.chatService.Open(ctx, userID, req)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return models.RespondWithData(c, fiber.StatusCreated, chat)
}

// GetChats lists the caller's chats by recent activity (protected)
func (s *Server) GetChats(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := currentUserID(c)

	chats, err := s.chatService.ListChats(ctx, userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return models.RespondWithList(c, len(chats), chats)
}

// GetChat returns a single chat (participants only)
func (s *Server) GetChat(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := currentUserID(c)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	chat, err := s.chatService.GetChatForUser(ctx, id, userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return models.RespondWithData(c, fiber.StatusOK, chat)
}

// GetChatMessages lists a chat's messages, oldest first (participants only)
func (s *Server) GetChatMessages(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := currentUserID(c)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	p := parsePagination(c, 50)
	messages, err := s.chatService.ListMessages(ctx, id, userID, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return models.RespondWithList(c, len(messages), messages)
}

// SendChatMessage persists a message and fans it out to the room (participants only)
func (s *Server) SendChatMessage(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := currentUserID(c)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	message, err := s.chatService.SendMessage(ctx, id, userID, req.Content)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return models.RespondWithData(c, fiber.StatusCreated, message)
}

// MarkChatRead marks the counterpart's messages as read (participants only)
func (s *Server) MarkChatRead(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := currentUserID(c)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	updated, err := s.chatService.MarkAsRead(ctx, id, userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return models.RespondWithData(c, fiber.StatusOK, fiber.Map{"updated": updated})
}

// IssueWSTicket issues a short-lived single-use ticket for the WebSocket
// endpoint, since browsers cannot set the Authorization header on
// upgrade requests (protected)
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	userID := currentUserID(c)

	if s.redis == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewInternalError(fiber.ErrServiceUnavailable))
	}

	ticket := uuid.NewString()
	key := "ws_ticket:" + ticket
	if err := s.redis.Set(c.Context(), key, userID, 30*time.Second).Err(); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}

	return models.RespondWithData(c, fiber.StatusCreated, fiber.Map{
		"ticket":     ticket,
		"expires_in": 30,
	})
}
