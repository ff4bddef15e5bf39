package storage

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"farmsim-backend/internal/activity"
	"farmsim-backend/internal/auth"
	"farmsim-backend/internal/httpx"
	"farmsim-backend/internal/logging"
	"farmsim-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStorageApp(f fixture) *fiber.App {
	act := activity.NewLog(f.db, logging.Discard())
	app := fiber.New(fiber.Config{ErrorHandler: httpx.ErrorHandler(logging.Discard())})
	g := app.Group("/farms/:farmId", func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, f.owner.ID)
		c.Locals(auth.CtxFarmIDKey, f.farm.ID)
		c.Locals(auth.CtxFarmRoleKey, models.FarmRoleOwner)
		return c.Next()
	})
	g.Get("/storage", ListHandler(f.ledger))
	g.Get("/storage/:cropName", GetHandler(f.ledger))
	g.Post("/storage", AddHandler(f.ledger, act))
	g.Patch("/storage/:cropName", SellHandler(f.ledger, act))
	g.Delete("/storage/:cropName", DeleteHandler(f.ledger, act))
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestStorageHandlers(t *testing.T) {
	f := setup(t)
	app := newStorageApp(f)
	_, err := f.ledger.PostHarvest(context.Background(), Harvest{FarmID: f.farm.ID, CropName: "Sugar Beet", Yield: 900})
	require.NoError(t, err)

	status, body := do(t, app, fiber.MethodPost, "/farms/1/storage",
		`{"crop_name":"Hay","actual_yield":12,"bale_size":240,"bale_shape":"square","storage_location":"Barn"}`)
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "bales", body["storage_unit"])

	status, body = do(t, app, fiber.MethodPatch, "/farms/1/storage/Sugar%20Beet",
		`{"quantity_to_sell":400,"sale_price":"0.5"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Sold 400", body["message"])
	storage := body["storage"].(map[string]any)
	assert.Equal(t, 500.0, storage["quantity_stored"])

	status, body = do(t, app, fiber.MethodPatch, "/farms/1/storage/Sugar%20Beet", `{"quantity_to_sell":501}`)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, 500.0, body["available"])
	assert.Equal(t, 501.0, body["requested"])

	status, _ = do(t, app, fiber.MethodPatch, "/farms/1/storage/Sugar%20Beet", `{"quantity_to_sell":0}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = do(t, app, fiber.MethodGet, "/farms/1/storage/Sugar%20Beet", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 500.0, body["quantity_stored"])

	status, _ = do(t, app, fiber.MethodGet, "/farms/1/storage/Oat", "")
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body = do(t, app, fiber.MethodDelete, "/farms/1/storage/Hay", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Deleted storage for Hay", body["message"])

	status, _ = do(t, app, fiber.MethodDelete, "/farms/1/storage/Hay", "")
	assert.Equal(t, fiber.StatusNotFound, status)

	var logged int64
	f.db.Model(&models.ActivityLog{}).Where("farm_id = ?", f.farm.ID).Count(&logged)
	assert.Equal(t, int64(3), logged)
}
