package farm

import (
	"farmsim-backend/internal/auth"
	"farmsim-backend/internal/calendar"
	"farmsim-backend/internal/httpx"
	"farmsim-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type JoinRequest struct {
	JoinCode string `json:"join_code"`
}

type RoleRequest struct {
	Role models.FarmRole `json:"role"`
}

// GET /api/farms
func ListHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		farms, err := s.List(c.UserContext(), auth.UserID(c))
		if err != nil {
			return err
		}
		return c.JSON(farms)
	}
}

// POST /api/farms
func CreateHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		farm, err := s.Create(c.UserContext(), auth.UserID(c), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(farm)
	}
}

// GET /api/farms/:farmId
func GetHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		farm, err := s.Get(c.UserContext(), auth.FarmID(c))
		if err != nil {
			return err
		}
		return c.JSON(WithRole{Farm: *farm, UserRole: auth.FarmRole(c)})
	}
}

// GET /api/farms/:farmId/role
func RoleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"role": auth.FarmRole(c)})
	}
}

// PATCH /api/farms/:farmId
func UpdateHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		farm, err := s.Update(c.UserContext(), auth.FarmID(c), body)
		if err != nil {
			return err
		}
		return c.JSON(farm)
	}
}

// DELETE /api/farms/:farmId
func DeleteHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := s.Delete(c.UserContext(), auth.FarmID(c)); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "Farm deleted successfully"})
	}
}

// POST /api/farms/join
func JoinByCodeHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body JoinRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		farm, err := s.Join(c.UserContext(), auth.UserID(c), nil, body.JoinCode)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "Successfully joined farm", "farm": farm})
	}
}

// POST /api/farms/:farmId/join
//
// Runs before membership is checked, so the farm id comes from the path.
func JoinFarmHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		farmID, err := httpx.ParamID(c, "farmId")
		if err != nil {
			return err
		}
		var body JoinRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		if _, err := s.Join(c.UserContext(), auth.UserID(c), &farmID, body.JoinCode); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "Successfully joined farm"})
	}
}

// POST /api/farms/:farmId/codes
func CreateCodeHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		code, err := s.CreateJoinCode(c.UserContext(), auth.FarmID(c))
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"code": code.Code, "expires_at": code.ExpiresAt})
	}
}

// GET /api/farms/:farmId/codes
func ListCodesHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		codes, err := s.JoinCodes(c.UserContext(), auth.FarmID(c))
		if err != nil {
			return err
		}
		return c.JSON(codes)
	}
}

// GET /api/farms/:farmId/members
func MembersHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if auth.FarmRole(c) == models.FarmRoleViewer {
			return fiber.NewError(fiber.StatusForbidden, "Viewers cannot see member list")
		}
		members, err := s.Members(c.UserContext(), auth.FarmID(c))
		if err != nil {
			return err
		}
		return c.JSON(members)
	}
}

// PATCH /api/farms/:farmId/members/:memberId
func ChangeRoleHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		memberID, err := httpx.ParamID(c, "memberId")
		if err != nil {
			return err
		}
		var body RoleRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		if err := s.ChangeRole(c.UserContext(), auth.UserID(c), auth.FarmID(c), memberID, body.Role); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "Member role updated successfully"})
	}
}

// DELETE /api/farms/:farmId/members/:memberId
func RemoveMemberHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		memberID, err := httpx.ParamID(c, "memberId")
		if err != nil {
			return err
		}
		if err := s.RemoveMember(c.UserContext(), auth.UserID(c), auth.FarmID(c), memberID); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "Member removed successfully"})
	}
}

// POST /api/farms/:farmId/date/advance
// POST /api/farms/:farmId/date/retreat
func StepDateHandler(s *Service, move DateMove) fiber.Handler {
	return func(c *fiber.Ctx) error {
		farm, err := s.MoveDate(c.UserContext(), auth.UserID(c), auth.FarmID(c), move, calendar.GameDate{})
		if err != nil {
			return err
		}
		return c.JSON(farm)
	}
}

// PUT /api/farms/:farmId/date
func JumpDateHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body calendar.GameDate
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		farm, err := s.MoveDate(c.UserContext(), auth.UserID(c), auth.FarmID(c), MoveJump, body)
		if err != nil {
			return err
		}
		return c.JSON(farm)
	}
}
