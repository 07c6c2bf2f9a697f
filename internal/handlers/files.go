package handlers

import (
	"github.com/clouide/clouide/internal/middleware"
	"github.com/clouide/clouide/internal/models"
	"github.com/clouide/clouide/internal/services"
	"github.com/gofiber/fiber/v2"
)

// FilesHandler handles workspace file endpoints. Every path is relative to
// the session's workspace and may not leave it.
type FilesHandler struct {
	workspaces *services.WorkspaceService
}

// NewFilesHandler creates a new files handler
func NewFilesHandler(workspaces *services.WorkspaceService) *FilesHandler {
	return &FilesHandler{workspaces: workspaces}
}

// List returns every visible file in the workspace
// @Summary List files
// @Description Lists workspace files, skipping dotfiles and dependency or build directories
// @Tags files
// @Produce json
// @Param X-Session-Id header string true "Session ID"
// @Success 200 {object} models.FilesResponse
// @Router /files [get]
func (h *FilesHandler) List(c *fiber.Ctx) error {
	files, err := h.workspaces.Files(middleware.SessionID(c))
	if err != nil {
		return respondError(c, err)
	}
	list, err := files.List()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.FilesResponse{Files: list})
}

// Read returns a file's content
// @Summary Read file
// @Tags files
// @Accept json
// @Produce json
// @Param X-Session-Id header string true "Session ID"
// @Param request body models.FileReadRequest true "File"
// @Success 200 {object} models.ContentResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /read [post]
func (h *FilesHandler) Read(c *fiber.Ctx) error {
	var req models.FileReadRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	files, err := h.workspaces.Files(middleware.SessionID(c))
	if err != nil {
		return respondError(c, err)
	}
	content, err := files.Read(req.FilePath)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.ContentResponse{Content: content})
}

// Write creates or overwrites a file
// @Summary Write file
// @Tags files
// @Accept json
// @Produce json
// @Param X-Session-Id header string true "Session ID"
// @Param request body models.FileWriteRequest true "File"
// @Success 200 {object} models.StatusResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /write [post]
func (h *FilesHandler) Write(c *fiber.Ctx) error {
	var req models.FileWriteRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	files, err := h.workspaces.Files(middleware.SessionID(c))
	if err != nil {
		return respondError(c, err)
	}
	if err := files.Write(req.FilePath, req.Content); err != nil {
		return respondError(c, err)
	}
	return success(c, "")
}

// Delete removes a file or directory
// @Summary Delete file or directory
// @Tags files
// @Accept json
// @Produce json
// @Param X-Session-Id header string true "Session ID"
// @Param request body models.FileDeleteRequest true "File"
// @Success 200 {object} models.StatusResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /delete [post]
func (h *FilesHandler) Delete(c *fiber.Ctx) error {
	var req models.FileDeleteRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	files, err := h.workspaces.Files(middleware.SessionID(c))
	if err != nil {
		return respondError(c, err)
	}
	if err := files.Delete(req.FilePath); err != nil {
		return respondError(c, err)
	}
	return success(c, "")
}

// Rename moves a file or directory
// @Summary Rename file or directory
// @Tags files
// @Accept json
// @Produce json
// @Param X-Session-Id header string true "Session ID"
// @Param request body models.FileRenameRequest true "Paths"
// @Success 200 {object} models.StatusResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /rename [post]
func (h *FilesHandler) Rename(c *fiber.Ctx) error {
	var req models.FileRenameRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	files, err := h.workspaces.Files(middleware.SessionID(c))
	if err != nil {
		return respondError(c, err)
	}
	if err := files.Rename(req.OldPath, req.NewPath); err != nil {
		return respondError(c, err)
	}
	return success(c, "")
}
