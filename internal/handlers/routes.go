package handlers

import (
	"context"

	_ "github.com/clouide/clouide/docs" // registers the swagger spec
	"github.com/clouide/clouide/internal/middleware"
	"github.com/clouide/clouide/internal/services"
	"github.com/clouide/clouide/internal/terminal"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
)

// ServiceName is reported by the health endpoint
const ServiceName = "Clouide Multi-Tenant"

// Dependencies are the services the HTTP layer is built on
type Dependencies struct {
	Workspaces  *services.WorkspaceService
	Exec        *services.ExecService
	Terminals   *terminal.Manager
	FrontendDir string

	// Context bounds the lifetime of terminal sessions
	Context context.Context
	// AccessLog enables per-request logging
	AccessLog bool
}

// NewApp builds the fiber application with every route registered
func NewApp(deps Dependencies) *fiber.App {
	if deps.Context == nil {
		deps.Context = context.Background()
	}

	app := fiber.New(fiber.Config{
		AppName:               ServiceName,
		DisableStartupMessage: true,
		BodyLimit:             32 * 1024 * 1024,
	})

	app.Use(recover.New())
	if deps.AccessLog {
		app.Use(SamplingLogger())
	}

	RegisterRoutes(app, deps)
	return app
}

// RegisterRoutes mounts the API, the terminal socket, the API docs and the frontend
func RegisterRoutes(app *fiber.App, deps Dependencies) {
	workspaceHandler := NewWorkspaceHandler(deps.Workspaces, deps.Exec)
	filesHandler := NewFilesHandler(deps.Workspaces)
	terminalHandler := NewTerminalHandler(deps.Context, deps.Terminals)
	staticHandler := NewStaticHandler(deps.FrontendDir)

	session := middleware.RequireSession()

	app.Get("/health", workspaceHandler.Health)
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Post("/login", session, workspaceHandler.Login)
	app.Post("/logout", session, workspaceHandler.Logout)
	app.Post("/init", session, workspaceHandler.Init)
	app.Post("/clone", session, workspaceHandler.Clone)
	app.Post("/push", session, workspaceHandler.Push)

	app.Get("/files", session, filesHandler.List)
	app.Post("/read", session, filesHandler.Read)
	app.Post("/write", session, filesHandler.Write)
	app.Post("/delete", session, filesHandler.Delete)
	app.Post("/rename", session, filesHandler.Rename)

	app.Post("/terminal", session, workspaceHandler.RunCommand)
	app.Get("/terminals", session, workspaceHandler.ListTerminals)
	app.Post("/terminals/kill", session, workspaceHandler.KillTerminals)
	app.Get("/terminal/ws/:session_id", terminalHandler.HandleWebSocket)

	app.Get("/download", middleware.RequireSession(middleware.SessionConfig{AllowQuery: true}), workspaceHandler.Download)

	app.Get("/*", staticHandler.Serve)
}
