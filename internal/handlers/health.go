package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/haribookstore/internal/database"
)

// HealthHandler reports liveness and database state.
type HealthHandler struct {
	db *gorm.DB
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Root answers the bare service URL.
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.SendString("HariBookStore API is running")
}

// Check pings the database.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	state := "connected"
	if err := database.Ping(c.UserContext(), h.db); err != nil {
		state = "disconnected"
	}

	return c.JSON(fiber.Map{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"database":  state,
	})
}
