package gameimport

import (
	"farmsim-backend/internal/auth"
	"farmsim-backend/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

// POST /api/farms/:farmId/import
func ImportHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body Payload
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		res, err := s.Import(c.UserContext(), auth.UserID(c), auth.FarmID(c), body)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "Import completed", "results": res})
	}
}

// GET /api/farms/:farmId/import/status
func StatusHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st, err := s.Status(c.UserContext(), auth.FarmID(c))
		if err != nil {
			return err
		}
		return c.JSON(st)
	}
}
