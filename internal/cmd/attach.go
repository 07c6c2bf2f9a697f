package cmd

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/clouide/clouide/internal/models"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	pingFrame    = "__ping__"
	pingInterval = 30 * time.Second
)

var attachCmd = &cobra.Command{
	Use:   "attach <session-id>",
	Short: "🖥️  Open a workspace terminal in this shell",
	Long: `# 🖥️  Attach

**Open an interactive terminal** in a session's workspace from your local shell.

The local terminal is switched to raw mode and window size changes are
forwarded to the remote shell. The session ends when the remote shell exits
or leaves its workspace.`,
	Args: cobra.ExactArgs(1),
	RunE: runAttach,
}

var serverURL string

func init() {
	rootCmd.AddCommand(attachCmd)
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "http://localhost:8000", "Clouide server URL")
}

// terminalURL maps the server's HTTP URL to the terminal socket for sessionID
func terminalURL(server, sessionID string) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("invalid server URL %q: %w", server, err)
	}

	switch u.Scheme {
	case "http", "ws", "":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported server scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("server URL %q has no host", server)
	}

	prefix := strings.TrimSuffix(u.EscapedPath(), "/") + "/terminal/ws/"
	u.Path = strings.TrimSuffix(u.Path, "/") + "/terminal/ws/" + sessionID
	u.RawPath = prefix + url.PathEscape(sessionID)
	return u.String(), nil
}

// resizeFrame builds the control frame announcing a new window size
func resizeFrame(cols, rows int) []byte {
	data, _ := json.Marshal(models.ResizeMessage{Type: "resize", Rows: rows, Cols: cols})
	return data
}

// wsWriter serializes writes; gorilla connections allow one writer at a time
type wsWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsWriter) send(data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteMessage(websocket.TextMessage, data)
}

func runAttach(cmd *cobra.Command, args []string) error {
	target, err := terminalURL(serverURL, args[0])
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.Dial(target, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", target, err)
	}
	defer conn.Close()

	writer := &wsWriter{conn: conn}
	stdin := int(os.Stdin.Fd())

	if term.IsTerminal(stdin) {
		oldState, err := term.MakeRaw(stdin)
		if err != nil {
			return fmt.Errorf("failed to set raw mode: %w", err)
		}
		defer func() { _ = term.Restore(stdin, oldState) }()

		if cols, rows, err := term.GetSize(stdin); err == nil {
			_ = writer.send(resizeFrame(cols, rows))
		}
	}

	done := make(chan struct{})

	// remote output -> stdout
	go func() {
		defer close(done)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			_, _ = os.Stdout.Write(data)
		}
	}()

	// stdin -> remote input
	go func() {
		buf := make([]byte, 1024)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				return
			}
			if n > 0 {
				if err := writer.send(buf[:n]); err != nil {
					return
				}
			}
		}
	}()

	winch := make(chan os.Signal, 1)
	signal.Notify(winch, syscall.SIGWINCH)
	defer signal.Stop(winch)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			fmt.Fprint(os.Stderr, "\r\n🔌 Terminal closed\r\n")
			return nil
		case <-winch:
			if cols, rows, err := term.GetSize(stdin); err == nil {
				_ = writer.send(resizeFrame(cols, rows))
			}
		case <-ticker.C:
			if err := writer.send([]byte(pingFrame)); err != nil {
				return nil
			}
		}
	}
}
