package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/SCGamer30/jam-match-sub001/internal/models"
	"github.com/SCGamer30/jam-match-sub001/internal/notifications"
)

// GetMessages handles GET /api/chat/:bandId/messages
func (s *Server) GetMessages(c *fiber.Ctx) error {
	bandID, err := s.parseID(c, "bandId", "band ID")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 50)

	messages, total, err := s.chatService.Messages(c.Context(), currentUserID(c), bandID, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"messages": messages,
		"total":    total,
		"limit":    p.Limit,
		"offset":   p.Offset,
	})
}

// SendMessage handles POST /api/chat/:bandId/messages
func (s *Server) SendMessage(c *fiber.Ctx) error {
	bandID, err := s.parseID(c, "bandId", "band ID")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	userID := currentUserID(c)
	msg, err := s.chatService.Send(c.Context(), userID, bandID, req.Content)
	if err != nil {
		return respondServiceError(c, err)
	}

	// Fan out to websocket clients through Redis pub/sub.
	if s.notifier != nil {
		event := notifications.Event{
			Type:    "message",
			BandID:  bandID,
			UserID:  userID,
			Payload: msg,
		}
		if payload, mErr := marshalEvent(event); mErr == nil {
			_ = s.notifier.PublishBandMessage(c.Context(), bandID, payload)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": msg})
}
