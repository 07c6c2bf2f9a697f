package handlers

import (
	"io/fs"
	"path"
	"strings"

	"github.com/clouide/clouide/internal/assets"
	"github.com/clouide/clouide/internal/models"
	"github.com/gofiber/fiber/v2"
)

// StaticHandler serves the built frontend with single-page-app fallback
type StaticHandler struct {
	dir string
}

// NewStaticHandler serves the frontend found in dir
func NewStaticHandler(dir string) *StaticHandler {
	return &StaticHandler{dir: dir}
}

// Serve returns the requested asset, index.html for unknown paths, or a
// JSON notice when the frontend has not been built
func (h *StaticHandler) Serve(c *fiber.Ctx) error {
	frontend := assets.Frontend(h.dir)
	if frontend == nil {
		return c.JSON(models.StatusResponse{Status: "error", Message: "Frontend not built"})
	}

	name := strings.TrimPrefix(path.Clean("/"+c.Path()), "/")
	if name == "" {
		name = "index.html"
	}

	if data, err := fs.ReadFile(frontend, name); err == nil {
		c.Type(strings.TrimPrefix(path.Ext(name), "."))
		return c.Send(data)
	}

	data, err := fs.ReadFile(frontend, "index.html")
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("Asset not found")
	}
	c.Type("html")
	return c.Send(data)
}
