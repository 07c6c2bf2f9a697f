package middleware

import (
	"strings"

	"github.com/clouide/clouide/internal/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

const (
	// SessionHeader carries the caller's session id on every scoped request
	SessionHeader = "X-Session-Id"

	sessionLocal = "session_id"
)

// SessionConfig configures RequireSession
type SessionConfig struct {
	// AllowQuery also accepts ?session_id= when the header is absent. Browser
	// downloads cannot set headers.
	AllowQuery bool
}

// RequireSession extracts the session id and stores it for SessionID. A
// request without one is rejected with 400 before reaching the handler.
func RequireSession(config ...SessionConfig) fiber.Handler {
	cfg := SessionConfig{}
	if len(config) > 0 {
		cfg = config[0]
	}

	return func(c *fiber.Ctx) error {
		sessionID := strings.TrimSpace(c.Get(SessionHeader))
		if sessionID == "" && cfg.AllowQuery {
			sessionID = strings.TrimSpace(c.Query("session_id"))
		}
		if sessionID == "" {
			logger.Debugf("Rejected %s %s without session id", c.Method(), c.Path())
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"detail": "Session ID required",
			})
		}

		c.Locals(sessionLocal, utils.CopyString(sessionID))
		return c.Next()
	}
}

// SessionID returns the session id stored by RequireSession
func SessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(sessionLocal).(string)
	return id
}
