package animal

import (
	"farmsim-backend/internal/auth"
	"farmsim-backend/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

// GET /api/farms/:farmId/animals
func ListHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		animals, err := s.List(c.UserContext(), auth.FarmID(c))
		if err != nil {
			return err
		}
		return c.JSON(animals)
	}
}

// POST /api/farms/:farmId/animals
func CreateHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		row, err := s.Create(c.UserContext(), auth.UserID(c), auth.FarmID(c), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(row)
	}
}

// PATCH /api/farms/:farmId/animals/:id
func UpdateHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body UpdateRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		row, err := s.Update(c.UserContext(), auth.UserID(c), auth.FarmID(c), id, body)
		if err != nil {
			return err
		}
		return c.JSON(row)
	}
}

// DELETE /api/farms/:farmId/animals/:id
func DeleteHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		if err := s.Delete(c.UserContext(), auth.UserID(c), auth.FarmID(c), id); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "message": "Animal deleted successfully"})
	}
}
