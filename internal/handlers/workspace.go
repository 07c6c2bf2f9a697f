package handlers

import (
	"bufio"
	"fmt"

	"github.com/clouide/clouide/internal/logger"
	"github.com/clouide/clouide/internal/middleware"
	"github.com/clouide/clouide/internal/models"
	"github.com/clouide/clouide/internal/services"
	"github.com/clouide/clouide/internal/workspace"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// WorkspaceHandler handles workspace lifecycle, credential and process endpoints
type WorkspaceHandler struct {
	workspaces *services.WorkspaceService
	exec       *services.ExecService
}

// NewWorkspaceHandler creates a new workspace handler
func NewWorkspaceHandler(workspaces *services.WorkspaceService, exec *services.ExecService) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaces: workspaces,
		exec:       exec,
	}
}

// Health reports service liveness
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Router /health [get]
func (h *WorkspaceHandler) Health(c *fiber.Ctx) error {
	return c.JSON(models.HealthResponse{Status: "ok", Service: ServiceName})
}

// Login stores git credentials for the session
// @Summary Store credentials
// @Description Saves the username and token used for clone and push, outside the workspace
// @Tags auth
// @Accept json
// @Produce json
// @Param X-Session-Id header string true "Session ID"
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} models.StatusResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /login [post]
func (h *WorkspaceHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if err := h.workspaces.Login(middleware.SessionID(c), req); err != nil {
		return respondError(c, err)
	}
	return success(c, "Credentials saved for this session")
}

// Logout removes the session's credentials
// @Summary Remove credentials
// @Tags auth
// @Produce json
// @Param X-Session-Id header string true "Session ID"
// @Success 200 {object} models.StatusResponse
// @Router /logout [post]
func (h *WorkspaceHandler) Logout(c *fiber.Ctx) error {
	if err := h.workspaces.Logout(middleware.SessionID(c)); err != nil {
		return respondError(c, err)
	}
	return success(c, "Logged out")
}

// Init replaces the workspace with a new repository
// @Summary Initialize workspace
// @Description Kills the session's terminals, wipes the workspace and creates an empty repository with a README
// @Tags workspace
// @Accept json
// @Produce json
// @Param X-Session-Id header string true "Session ID"
// @Param request body models.InitRequest false "Project"
// @Success 200 {object} models.StatusResponse
// @Router /init [post]
func (h *WorkspaceHandler) Init(c *fiber.Ctx) error {
	var req models.InitRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	name, err := h.workspaces.Init(middleware.SessionID(c), req.ProjectName)
	if err != nil {
		return respondError(c, err)
	}
	return success(c, fmt.Sprintf("Workspace '%s' initialized", name))
}

// Clone replaces the workspace with a clone of a remote repository
// @Summary Clone repository
// @Description Kills the session's terminals, wipes the workspace and clones the URL, using stored credentials when present
// @Tags workspace
// @Accept json
// @Produce json
// @Param X-Session-Id header string true "Session ID"
// @Param request body models.CloneRequest true "Repository"
// @Success 200 {object} models.StatusResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /clone [post]
func (h *WorkspaceHandler) Clone(c *fiber.Ctx) error {
	var req models.CloneRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	if err := h.workspaces.Clone(c.UserContext(), middleware.SessionID(c), req.URL); err != nil {
		return respondError(c, err)
	}
	return success(c, "Repository cloned")
}

// Push commits everything and pushes to origin
// @Summary Commit and push
// @Tags workspace
// @Accept json
// @Produce json
// @Param X-Session-Id header string true "Session ID"
// @Param request body models.PushRequest true "Commit"
// @Success 200 {object} models.StatusResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /push [post]
func (h *WorkspaceHandler) Push(c *fiber.Ctx) error {
	var req models.PushRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	result, err := h.workspaces.Push(c.UserContext(), middleware.SessionID(c), req.CommitMessage)
	if err != nil {
		return respondError(c, err)
	}
	return success(c, result.Message)
}

// RunCommand runs one non-interactive command in the workspace
// @Summary Run command
// @Tags terminal
// @Accept json
// @Produce json
// @Param X-Session-Id header string true "Session ID"
// @Param request body models.CommandRequest true "Command"
// @Success 200 {object} models.CommandResponse
// @Router /terminal [post]
func (h *WorkspaceHandler) RunCommand(c *fiber.Ctx) error {
	var req models.CommandRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	resp, err := h.exec.Run(c.UserContext(), middleware.SessionID(c), req.Command)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// ListTerminals lists the session's tracked processes
// @Summary List terminal processes
// @Tags terminal
// @Produce json
// @Param X-Session-Id header string true "Session ID"
// @Success 200 {object} models.TerminalsResponse
// @Router /terminals [get]
func (h *WorkspaceHandler) ListTerminals(c *fiber.Ctx) error {
	pids, err := h.workspaces.Terminals(middleware.SessionID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.TerminalsResponse{PIDs: pids})
}

// KillTerminals kills every process of the session
// @Summary Kill terminals
// @Tags terminal
// @Produce json
// @Param X-Session-Id header string true "Session ID"
// @Success 200 {object} models.KillResponse
// @Router /terminals/kill [post]
func (h *WorkspaceHandler) KillTerminals(c *fiber.Ctx) error {
	killed, err := h.workspaces.KillTerminals(middleware.SessionID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.KillResponse{Status: "success", Killed: killed})
}

// Download streams the workspace as a zip archive
// @Summary Download workspace
// @Tags workspace
// @Produce application/zip
// @Param X-Session-Id header string false "Session ID"
// @Param session_id query string false "Session ID when the header cannot be set"
// @Success 200 {file} file
// @Failure 404 {object} models.ErrorResponse
// @Router /download [get]
func (h *WorkspaceHandler) Download(c *fiber.Ctx) error {
	sessionID := middleware.SessionID(c)
	files, err := h.workspaces.Files(sessionID)
	if err != nil {
		return respondError(c, err)
	}
	if !h.workspaces.Resolver().Exists(sessionID) {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Detail: "Workspace not found"})
	}

	c.Set(fiber.HeaderContentType, "application/zip")
	c.Attachment("workspace.zip")
	c.Context().SetBodyStreamWriter(archiveStream(files))
	return nil
}

// archiveStream zips the workspace straight into the response body
func archiveStream(files *workspace.Files) fasthttp.StreamWriter {
	return func(w *bufio.Writer) {
		if err := files.Archive(w); err != nil {
			logger.Errorf("❌ Failed to stream workspace archive: %v", err)
		}
		_ = w.Flush()
	}
}
