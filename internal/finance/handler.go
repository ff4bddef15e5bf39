package finance

import (
	"fmt"

	"farmsim-backend/internal/auth"
	"farmsim-backend/internal/calendar"
	"farmsim-backend/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

// GET /api/farms/:farmId/finances
func ListHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ledger, err := s.List(c.UserContext(), auth.FarmID(c))
		if err != nil {
			return err
		}
		return c.JSON(ledger)
	}
}

// POST /api/farms/:farmId/finances
func CreateHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		entry, err := s.Create(c.UserContext(), auth.UserID(c), auth.FarmID(c), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(entry)
	}
}

// GET /api/farms/:farmId/finances/summary?year=1
// Without a year the farm's current game year is used.
func SummaryHandler(s *Service, cal *calendar.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		farmID := auth.FarmID(c)
		year := c.QueryInt("year", 0)
		if year == 0 {
			today, err := cal.Current(c.UserContext(), farmID)
			if err != nil {
				return err
			}
			year = today.Year
		}

		summary, err := s.MonthlySummary(c.UserContext(), farmID, year)
		if err != nil {
			return err
		}
		return c.JSON(summary)
	}
}

// GET /api/farms/:farmId/finances/export
func ExportHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		farmID := auth.FarmID(c)
		buf, err := s.ExportXLSX(c.UserContext(), farmID)
		if err != nil {
			return err
		}

		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="farm-%d-ledger.xlsx"`, farmID))
		return c.Send(buf.Bytes())
	}
}
