package dashboard

import (
	"farmsim-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
)

// GET /api/farms/:farmId/dashboard
func OverviewHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		out, err := s.Overview(c.UserContext(), auth.FarmID(c))
		if err != nil {
			return err
		}
		return c.JSON(out)
	}
}

// GET /api/farms/:farmId/dashboard/finance-chart?period=monthly&count=12
func FinanceChartHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		chart, err := s.FinanceChart(c.UserContext(), auth.FarmID(c), c.Query("period", PeriodMonthly), c.QueryInt("count", 0))
		if err != nil {
			return err
		}
		return c.JSON(chart)
	}
}
