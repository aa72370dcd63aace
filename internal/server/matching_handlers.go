package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/SCGamer30/jam-match-sub001/internal/models"
	"github.com/SCGamer30/jam-match-sub001/internal/notifications"
)

// CalculateMatches handles POST /api/matching/calculate
func (s *Server) CalculateMatches(c *fiber.Ctx) error {
	userID := currentUserID(c)

	scores, band, err := s.matchingService.CalculateForUser(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	resp := fiber.Map{
		"scores": scores,
		"count":  len(scores),
	}
	if band != nil {
		resp["band"] = band
		s.announceBand(c, band)
	}
	return c.JSON(resp)
}

// AIAnalysis handles POST /api/matching/ai-analysis
func (s *Server) AIAnalysis(c *fiber.Ctx) error {
	var req struct {
		UserID uint `json:"user_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.UserID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("user_id is required"))
	}

	score, err := s.matchingService.AIAnalysis(c.Context(), currentUserID(c), req.UserID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"score": score})
}

// announceBand pushes a band_formed event to the new members' websockets.
func (s *Server) announceBand(c *fiber.Ctx, band *models.Band) {
	if s.notifier == nil {
		return
	}
	event := notifications.Event{
		Type:   "band_formed",
		BandID: band.ID,
		Payload: fiber.Map{
			"band_id":   band.ID,
			"band_name": band.Name,
			"avg_score": band.AvgScore,
		},
	}
	payload, err := marshalEvent(event)
	if err != nil {
		return
	}
	_ = s.notifier.PublishBandFormed(c.Context(), band.ID, payload)
}
