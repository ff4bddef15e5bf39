package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"farmsim-backend/internal/apperr"
	"farmsim-backend/internal/logging"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createThing struct {
	Name string `json:"name" validate:"required"`
	Kind string `json:"kind" validate:"required,oneof=a b"`
}

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logging.Discard())})
	app.Post("/things", func(c *fiber.Ctx) error {
		var body createThing
		if err := ParseBody(c, &body); err != nil {
			return err
		}
		return c.JSON(body)
	})
	app.Get("/things/:id", func(c *fiber.Ctx) error {
		id, err := ParamID(c, "id")
		if err != nil {
			return err
		}
		switch id {
		case 1:
			return apperr.InsufficientStock("not enough", 1, 2)
		case 2:
			return apperr.Internal(errors.New("db down"), "Failed to fetch thing")
		case 3:
			return errors.New("raw")
		}
		return apperr.NotFound("Thing not found")
	})
	return app
}

func decode(t *testing.T, r io.Reader) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(r).Decode(&out))
	return out
}

func TestParseBodyValidation(t *testing.T) {
	app := newApp()

	req := httptest.NewRequest("POST", "/things", strings.NewReader(`{"kind":"c"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body := decode(t, resp.Body)
	assert.Equal(t, "kind must be one of: a b; name is required", body["error"])
	assert.Equal(t, string(apperr.KindValidation), body["kind"])
}

func TestErrorHandler(t *testing.T) {
	app := newApp()

	cases := []struct {
		path   string
		status int
		msg    string
	}{
		{"/things/abc", fiber.StatusBadRequest, "Invalid id"},
		{"/things/1", fiber.StatusConflict, "not enough"},
		{"/things/2", fiber.StatusInternalServerError, "Failed to fetch thing"},
		{"/things/3", fiber.StatusInternalServerError, "Unexpected server error"},
		{"/things/4", fiber.StatusNotFound, "Thing not found"},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tc.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
			body := decode(t, resp.Body)
			assert.Equal(t, tc.msg, body["error"])
			if tc.path == "/things/1" {
				assert.Equal(t, 1.0, body["available"])
				assert.Equal(t, 2.0, body["requested"])
			}
		})
	}
}
