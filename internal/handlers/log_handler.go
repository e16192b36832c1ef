package handlers

import (
	"woodcraft/internal/middleware"
	"woodcraft/internal/services"

	"github.com/gofiber/fiber/v2"
)

// LogHandler exposes the activity log to administrators.
type LogHandler struct {
	activity *services.ActivityService
}

// NewLogHandler creates a new LogHandler.
func NewLogHandler(activity *services.ActivityService) *LogHandler {
	return &LogHandler{activity: activity}
}

// RegisterRoutes registers the log routes behind auth and the admin check.
func (h *LogHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	router.Get("/logs", auth, middleware.AdminOnly(), h.HandleGetLogs)
}

// HandleGetLogs returns all activity entries, newest first.
func (h *LogHandler) HandleGetLogs(c *fiber.Ctx) error {
	logs, err := h.activity.ListLogs(c.UserContext())
	if err != nil {
		return writeError(c, err, "Logs not found")
	}
	return c.JSON(logs)
}
