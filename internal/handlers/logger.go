package handlers

import (
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/mattn/go-isatty"
)

// sampleEvery is how many /health requests are folded into one log line
const sampleEvery = 10

const accessLogFormat = "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:session_id} | ${error}\n"

// SamplingLogger logs every request to stderr except health probes, which are
// logged once per sampleEvery calls. Terminal upgrades are logged by the
// terminal manager instead.
func SamplingLogger() fiber.Handler {
	return samplingLogger(os.Stderr, isatty.IsTerminal(os.Stderr.Fd()) && os.Getenv("NO_COLOR") == "")
}

func samplingLogger(out io.Writer, colors bool) fiber.Handler {
	var health atomic.Uint64

	return logger.New(logger.Config{
		Format:        accessLogFormat,
		TimeFormat:    "15:04:05",
		Output:        out,
		DisableColors: !colors,
		Next: func(c *fiber.Ctx) bool {
			return skipAccessLog(c.Path(), &health)
		},
	})
}

func skipAccessLog(path string, health *atomic.Uint64) bool {
	switch {
	case strings.HasPrefix(path, "/terminal/ws/"):
		return true
	case path == "/health":
		return health.Add(1)%sampleEvery != 0
	default:
		return false
	}
}
