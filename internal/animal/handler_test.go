package animal

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"farmsim-backend/internal/activity"
	"farmsim-backend/internal/auth"
	"farmsim-backend/internal/httpx"
	"farmsim-backend/internal/logging"
	"farmsim-backend/internal/models"
	"farmsim-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
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

func TestAnimalHandlers(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner")
	farm := testutil.CreateFarm(t, db, owner)
	other := testutil.CreateFarm(t, db, testutil.CreateUser(t, db, "other"))

	svc := NewService(db, activity.NewLog(db, logging.Discard()))
	app := fiber.New(fiber.Config{ErrorHandler: httpx.ErrorHandler(logging.Discard())})
	g := app.Group("/farms/:farmId", func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "farmId")
		if err != nil {
			return err
		}
		c.Locals(auth.CtxUserIDKey, owner.ID)
		c.Locals(auth.CtxFarmIDKey, id)
		c.Locals(auth.CtxFarmRoleKey, models.FarmRoleOwner)
		return c.Next()
	})
	g.Get("/animals", ListHandler(svc))
	g.Post("/animals", CreateHandler(svc))
	g.Patch("/animals/:id", UpdateHandler(svc))
	g.Delete("/animals/:id", DeleteHandler(svc))

	base := fmt.Sprintf("/farms/%d/animals", farm.ID)

	status, body := call(t, app, fiber.MethodPost, base, `{"type":"Cows","count":12}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Type, count, feed per day, and productivity are required", body["error"])

	status, body = call(t, app, fiber.MethodPost, base, `{"type":"Sheep","count":30,"feed_per_day":60,"productivity":85}`)
	require.Equal(t, fiber.StatusCreated, status)
	sheepID := uint(body["id"].(float64))

	status, _ = call(t, app, fiber.MethodPost, base, `{"type":"Cows","count":12,"feed_per_day":480,"productivity":92,"notes":"dairy"}`)
	require.Equal(t, fiber.StatusCreated, status)

	req := httptest.NewRequest(fiber.MethodGet, base, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	var listed []models.Animal
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	resp.Body.Close()
	require.Len(t, listed, 2)
	assert.Equal(t, "Cows", listed[0].Type)

	sheep := fmt.Sprintf("%s/%d", base, sheepID)
	status, _ = call(t, app, fiber.MethodPatch, sheep, `{}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = call(t, app, fiber.MethodPatch, sheep, `{"count":-1}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = call(t, app, fiber.MethodPatch, sheep, `{"count":42,"notes":null}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 42.0, body["count"])
	assert.Equal(t, 60.0, body["feed_per_day"])

	status, _ = call(t, app, fiber.MethodDelete, fmt.Sprintf("/farms/%d/animals/%d", other.ID, sheepID), "")
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body = call(t, app, fiber.MethodDelete, sheep, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Animal deleted successfully", body["message"])

	status, _ = call(t, app, fiber.MethodDelete, sheep, "")
	assert.Equal(t, fiber.StatusNotFound, status)

	var logged int64
	db.Model(&models.ActivityLog{}).Where("farm_id = ? AND entity_type = ?", farm.ID, "animal").Count(&logged)
	assert.Equal(t, int64(4), logged)
}
