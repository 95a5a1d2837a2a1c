package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	env         string
	probe       func() error
}

// NewHealthHandler returns a new handler instance. probe reports whether
// the chat platform connection is usable; nil means always ready.
func NewHealthHandler(serviceName, env string, probe func() error) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, env: env, probe: probe}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"env":     h.env,
	})
}

// Ready reports readiness by checking the chat platform connection.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	if h.probe != nil {
		if err := h.probe(); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    "DEPENDENCY_UNAVAILABLE",
					"message": "chat platform unavailable",
					"details": fiber.Map{"platform": err.Error()},
				},
			})
		}
	}
	return c.JSON(fiber.Map{"status": "ready"})
}
