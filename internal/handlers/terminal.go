package handlers

import (
	"context"

	"github.com/clouide/clouide/internal/terminal"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// TerminalHandler upgrades terminal requests and hands the channel to the manager
type TerminalHandler struct {
	manager *terminal.Manager
	ctx     context.Context
}

// NewTerminalHandler creates a new terminal handler. Terminals are closed
// when ctx is cancelled.
func NewTerminalHandler(ctx context.Context, manager *terminal.Manager) *TerminalHandler {
	return &TerminalHandler{manager: manager, ctx: ctx}
}

// HandleWebSocket bridges a websocket to a shell in the session's workspace
// @Summary Interactive terminal
// @Description Text frames carry keystrokes, "__ping__" keep-alives or {"type":"resize","rows":R,"cols":C}; the server sends shell output
// @Tags terminal
// @Param session_id path string true "Session ID"
// @Success 101 {string} string "Switching Protocols"
// @Router /terminal/ws/{session_id} [get]
func (h *TerminalHandler) HandleWebSocket(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.manager.Serve(h.ctx, conn, conn.Params("session_id"))
	})(c)
}
