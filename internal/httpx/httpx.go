// Package httpx holds the request/response plumbing shared by the feature
// handlers: body parsing with validation, path ids and the error renderer.
package httpx

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"farmsim-backend/internal/apperr"
	"farmsim-backend/internal/logging"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ParseBody decodes the JSON body into dst and runs its validate tags.
func ParseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperr.Validation("Invalid request body")
	}
	return Validate(dst)
}

func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation("Invalid request body")
	}
	return apperr.Validation("%s", describe(verrs))
}

func describe(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		}
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

// ParamID reads a positive integer path parameter.
func ParamID(c *fiber.Ctx, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || v == 0 {
		return 0, apperr.Validation("Invalid %s", name)
	}
	return uint(v), nil
}

// ErrorHandler renders every error as {"error": msg}. Application errors
// also carry their kind; internal errors are logged with their cause and
// surfaced with the generic message only.
func ErrorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}

		var ae *apperr.Error
		if errors.As(err, &ae) {
			body := fiber.Map{"error": ae.Message, "kind": ae.Kind}
			switch ae.Kind {
			case apperr.KindInsufficientStock:
				body["available"] = ae.Available
				body["requested"] = ae.Requested
			case apperr.KindInternal:
				logging.LogError(log, "http", c.Route().Path, c.Method()+" "+c.Path(), nil, err)
			}
			return c.Status(apperr.Status(ae.Kind)).JSON(body)
		}

		logging.LogError(log, "http", c.Route().Path, c.Method()+" "+c.Path(), nil, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unexpected server error",
			"kind":  apperr.KindInternal,
		})
	}
}
