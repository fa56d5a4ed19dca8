package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/haribookstore/internal/services"
)

// BookHandler serves the catalog.
type BookHandler struct {
	catalog *services.CatalogService
}

// NewBookHandler constructs a BookHandler.
func NewBookHandler(catalog *services.CatalogService) *BookHandler {
	return &BookHandler{catalog: catalog}
}

// List returns the catalog, optionally narrowed by ?category=.
func (h *BookHandler) List(c *fiber.Ctx) error {
	books, err := h.catalog.List(c.UserContext(), c.Query("category"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "books": books})
}
