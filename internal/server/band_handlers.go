package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetBands handles GET /api/bands
func (s *Server) GetBands(c *fiber.Ctx) error {
	bands, err := s.bandService.BandsForUser(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"bands": bands,
		"count": len(bands),
	})
}

// GetBand handles GET /api/bands/:id
func (s *Server) GetBand(c *fiber.Ctx) error {
	bandID, err := s.parseID(c, "id", "band ID")
	if err != nil {
		return nil
	}

	band, err := s.bandService.GetBand(c.Context(), currentUserID(c), bandID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"band": band})
}

// GetBandMembers handles GET /api/bands/:id/members
func (s *Server) GetBandMembers(c *fiber.Ctx) error {
	bandID, err := s.parseID(c, "id", "band ID")
	if err != nil {
		return nil
	}

	members, err := s.bandService.Members(c.Context(), currentUserID(c), bandID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"members": members,
		"count":   len(members),
	})
}
