package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"woodcraft/internal/repositories"
	"woodcraft/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// requestError is a malformed or invalid request body.
type requestError struct {
	message string
	cause   error
	fields  map[string]string
}

func (e *requestError) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

// ErrorHandler is the application-wide fiber error handler. Every failure is
// answered with a status code and a human-readable message.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}
	return writeError(c, err, "Resource not found")
}

// writeError converts a service error into a response. notFound is the
// message used for a missing entity.
func writeError(c *fiber.Ctx, err error, notFound string) error {
	var re *requestError
	switch {
	case errors.As(err, &re):
		body := fiber.Map{"message": re.message}
		if re.cause != nil {
			body["error"] = re.cause.Error()
		}
		if len(re.fields) > 0 {
			body["errors"] = re.fields
		}
		return c.Status(fiber.StatusBadRequest).JSON(body)
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": notFound})
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrInsufficientStock):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, services.ErrEmailTaken), errors.Is(err, repositories.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "User already exists"})
	case errors.Is(err, services.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid email or password"})
	case errors.Is(err, services.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not authorized"})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Not authorized to access this resource"})
	}

	slog.Error("request failed", "method", c.Method(), "path", c.Path(), "err", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Internal server error",
		"error":   err.Error(),
	})
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bind parses the request body into out and validates it when v is set.
func bind(c *fiber.Ctx, v *validator.Validate, out any) error {
	if err := c.BodyParser(out); err != nil {
		return &requestError{message: "Invalid request body", cause: err}
	}
	if v == nil {
		return nil
	}
	if err := v.Struct(out); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return err
		}
		fields := make(map[string]string, len(validationErrors))
		for _, e := range validationErrors {
			fields[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return &requestError{message: "Validation failed", fields: fields}
	}
	return nil
}
