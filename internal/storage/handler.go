package storage

import (
	"fmt"
	"net/url"

	"farmsim-backend/internal/activity"
	"farmsim-backend/internal/apperr"
	"farmsim-backend/internal/auth"
	"farmsim-backend/internal/httpx"
	"farmsim-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type SellBody struct {
	QuantityToSell float64          `json:"quantity_to_sell" validate:"gt=0"`
	SalePrice      *decimal.Decimal `json:"sale_price"`
	BaleSize       *int             `json:"bale_size"`
	BaleShape      *string          `json:"bale_shape"`
}

type SellResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Storage View            `json:"storage"`
	Finance *models.Finance `json:"finance,omitempty"`
}

func cropParam(c *fiber.Ctx) (string, error) {
	crop, err := url.PathUnescape(c.Params("cropName"))
	if err != nil || crop == "" {
		return "", apperr.Validation("Invalid crop name")
	}
	return crop, nil
}

// GET /api/farms/:farmId/storage
func ListHandler(l *Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		views, err := l.List(c.UserContext(), auth.FarmID(c))
		if err != nil {
			return err
		}
		return c.JSON(views)
	}
}

// GET /api/farms/:farmId/storage/:cropName
func GetHandler(l *Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		crop, err := cropParam(c)
		if err != nil {
			return err
		}
		row, err := l.Get(c.UserContext(), auth.FarmID(c), crop)
		if err != nil {
			return err
		}
		return c.JSON(ViewOf(row))
	}
}

// POST /api/farms/:farmId/storage
func AddHandler(l *Ledger, act *activity.Log) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body AddRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		row, err := l.Add(c.UserContext(), auth.FarmID(c), body)
		if err != nil {
			return err
		}

		act.Record(c.UserContext(), activity.Entry{
			FarmID:      row.FarmID,
			UserID:      auth.UserID(c),
			EntityType:  "storage",
			EntityID:    &row.ID,
			Action:      models.ActivityCreate,
			Description: fmt.Sprintf("Added %s to storage", row.CropName),
		})
		return c.Status(fiber.StatusCreated).JSON(ViewOf(row))
	}
}

// PATCH /api/farms/:farmId/storage/:cropName
func SellHandler(l *Ledger, act *activity.Log) fiber.Handler {
	return func(c *fiber.Ctx) error {
		crop, err := cropParam(c)
		if err != nil {
			return err
		}
		var body SellBody
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}

		req := SaleRequest{Quantity: body.QuantityToSell, Bucket: BucketFrom(body.BaleSize, body.BaleShape)}
		if body.SalePrice != nil {
			req.UnitPrice = *body.SalePrice
		}

		res, err := l.Sell(c.UserContext(), auth.UserID(c), auth.FarmID(c), crop, req)
		if err != nil {
			return err
		}

		act.Record(c.UserContext(), activity.Entry{
			FarmID:      res.Storage.FarmID,
			UserID:      auth.UserID(c),
			EntityType:  "storage",
			EntityID:    &res.Storage.ID,
			Action:      models.ActivitySell,
			Description: fmt.Sprintf("%s of %s", res.Message, crop),
		})
		return c.JSON(SellResponse{
			Success: true,
			Message: res.Message,
			Storage: ViewOf(res.Storage),
			Finance: res.Finance,
		})
	}
}

// DELETE /api/farms/:farmId/storage/:cropName
func DeleteHandler(l *Ledger, act *activity.Log) fiber.Handler {
	return func(c *fiber.Ctx) error {
		crop, err := cropParam(c)
		if err != nil {
			return err
		}
		farmID := auth.FarmID(c)
		if err := l.Delete(c.UserContext(), farmID, crop); err != nil {
			return err
		}

		act.Record(c.UserContext(), activity.Entry{
			FarmID:      farmID,
			UserID:      auth.UserID(c),
			EntityType:  "storage",
			Action:      models.ActivityDelete,
			Description: "Deleted storage for " + crop,
		})
		return c.JSON(fiber.Map{"success": true, "message": "Deleted storage for " + crop})
	}
}
