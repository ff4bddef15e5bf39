package field

import (
	"farmsim-backend/internal/auth"
	"farmsim-backend/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

// GET /api/farms/:farmId/fields
func ListHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fields, err := s.List(c.UserContext(), auth.FarmID(c))
		if err != nil {
			return err
		}
		return c.JSON(fields)
	}
}

// POST /api/farms/:farmId/fields
func CreateHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		field, err := s.Create(c.UserContext(), auth.UserID(c), auth.FarmID(c), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(field)
	}
}

// PATCH /api/farms/:farmId/fields/bulk
func BulkUpdateHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body BulkRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		result, err := s.Bulk(c.UserContext(), auth.UserID(c), auth.FarmID(c), body)
		if err != nil {
			return err
		}
		return c.JSON(result)
	}
}

// PATCH /api/fields/:id
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
		field, err := s.Update(c.UserContext(), auth.UserID(c), id, body)
		if err != nil {
			return err
		}
		return c.JSON(field)
	}
}

// GET /api/fields/:id/history?limit=50
func HistoryHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		rows, err := s.History(c.UserContext(), auth.UserID(c), id, c.QueryInt("limit", DefaultHistoryLimit))
		if err != nil {
			return err
		}
		return c.JSON(rows)
	}
}

// GET /api/fields/:id/recommendations
func RecommendationsHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		recs, err := s.Recommendations(c.UserContext(), auth.UserID(c), id)
		if err != nil {
			return err
		}
		return c.JSON(recs)
	}
}

// PATCH /api/fields/:id/production
func UpdateProductionHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body ProductionRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		field, err := s.UpdateProduction(c.UserContext(), auth.UserID(c), id, body)
		if err != nil {
			return err
		}
		return c.JSON(field)
	}
}
