package activity

import (
	"farmsim-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
)

// GET /api/farms/:farmId/activity?limit=50&offset=0&entity_type=field
func ListHandler(l *Log) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := l.List(c.UserContext(), auth.FarmID(c), ListOptions{
			EntityType: c.Query("entity_type"),
			Limit:      c.QueryInt("limit", DefaultLimit),
			Offset:     c.QueryInt("offset", 0),
		})
		if err != nil {
			return err
		}
		return c.JSON(rows)
	}
}
