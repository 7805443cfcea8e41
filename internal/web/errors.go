package web

import (
	"errors"
	"strings"

	"factory-admin/internal/config"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler answers API paths with {"error": msg} and everything else
// with the error page.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		msg := "Unexpected server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			msg = fe.Message
		} else {
			logger.Error("Unexpected error",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		if isAPI(c) {
			return c.Status(code).JSON(fiber.Map{"error": msg})
		}
		rerr := c.Status(code).Render("pages/error", fiber.Map{
			"Title":   "Error",
			"Code":    code,
			"Message": msg,
		}, "layouts/base")
		if rerr != nil {
			logger.Error("Error page failed", zap.Error(rerr))
			return c.Status(code).SendString(msg)
		}
		return nil
	}
}

// NotFound is the catch-all route.
func NotFound() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Page not found")
	}
}

// Setup replaces every page with the configuration guidance screen and
// every API call with a 503. The server runs like this when the store
// connection is not configured.
func Setup(app fiber.Router, cfg *config.Config, cause error) {
	app.Use(func(c *fiber.Ctx) error {
		if isAPI(c) {
			return fiber.NewError(fiber.StatusServiceUnavailable, cause.Error())
		}
		return c.Status(fiber.StatusServiceUnavailable).Render("pages/setup", fiber.Map{
			"Title":     "Configuration required",
			"Cause":     cause.Error(),
			"StoreHost": cfg.StoreHost(),
		}, "layouts/base")
	})
}

func isAPI(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/api/") || c.Path() == "/api"
}
