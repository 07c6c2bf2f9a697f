package recovery

import (
	"runtime/debug"

	"github.com/clouide/clouide/internal/logger"
)

// SafeGo runs fn in a goroutine with panic recovery so a single session's
// failure never takes the server down.
func SafeGo(name string, fn func()) {
	go func() {
		defer Recover(name)
		fn()
	}()
}

// SafeGoWithCleanup is SafeGo with a cleanup that runs whether fn returns or panics
func SafeGoWithCleanup(name string, fn func(), cleanup func()) {
	go func() {
		defer func() {
			if cleanup != nil {
				cleanup()
			}
		}()
		defer Recover(name)
		fn()
	}()
}

// Recover logs a recovered panic. It must be deferred directly.
func Recover(name string) {
	if r := recover(); r != nil {
		logger.Logger.Error().
			Str("goroutine", name).
			Interface("panic", r).
			Str("stack", string(debug.Stack())).
			Msg("🚨 PANIC recovered")
	}
}
