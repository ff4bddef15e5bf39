package auth

import (
	"errors"

	"farmsim-backend/internal/config"
	"farmsim-backend/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	Token  string `json:"token"`
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// POST /api/auth/register
func RegisterHandler(cfg *config.Config, accounts *Accounts) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}

		user, err := accounts.Register(c.UserContext(), body.Name, body.Email, body.Password)
		if err != nil {
			return err
		}

		token, err := GenerateToken(cfg.JWTSecret, user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to create token")
		}

		return c.Status(fiber.StatusCreated).JSON(TokenResponse{
			Token:  token,
			UserID: user.ID,
			Name:   user.Name,
			Email:  user.Email,
		})
	}
}

// POST /api/auth/login
func LoginHandler(cfg *config.Config, accounts *Accounts) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}

		user, err := accounts.Authenticate(c.UserContext(), body.Email, body.Password)
		if errors.Is(err, ErrInvalidCredentials) {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid credentials")
		}
		if err != nil {
			return err
		}

		token, err := GenerateToken(cfg.JWTSecret, user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to create token")
		}

		return c.JSON(TokenResponse{
			Token:  token,
			UserID: user.ID,
			Name:   user.Name,
			Email:  user.Email,
		})
	}
}

// GET /api/auth/me
func MeHandler(accounts *Accounts) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := accounts.Get(c.UserContext(), UserID(c))
		if err != nil {
			return err
		}
		return c.JSON(user)
	}
}

// DELETE /api/auth/account
func DeleteAccountHandler(accounts *Accounts) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := accounts.Delete(c.UserContext(), UserID(c)); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "Account deleted successfully"})
	}
}
