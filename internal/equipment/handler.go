package equipment

import (
	"farmsim-backend/internal/auth"
	"farmsim-backend/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

// GET /api/farms/:farmId/equipment
func ListHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := s.List(c.UserContext(), auth.FarmID(c))
		if err != nil {
			return err
		}
		return c.JSON(rows)
	}
}

// GET /api/farms/:farmId/equipment/brands
func BrandsHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		brands, err := s.Brands(c.UserContext(), auth.FarmID(c))
		if err != nil {
			return err
		}
		return c.JSON(brands)
	}
}

// POST /api/farms/:farmId/equipment
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

// PATCH /api/equipment/:id
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
		row, err := s.Update(c.UserContext(), auth.UserID(c), id, body)
		if err != nil {
			return err
		}
		return c.JSON(row)
	}
}

// POST /api/equipment/:id/sell
func SellHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body SellRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		row, err := s.Sell(c.UserContext(), auth.UserID(c), id, body)
		if err != nil {
			return err
		}
		return c.JSON(row)
	}
}
