package terminal

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/clouide/clouide/internal/logger"
	"github.com/clouide/clouide/internal/services"
	"github.com/clouide/clouide/internal/workspace"
	"github.com/google/uuid"
)

const (
	defaultRows      = 24
	defaultCols      = 80
	defaultChunkSize = 4096
	maxDimension     = 4096
)

// Tracker records which shell processes belong to which workspace session.
// *services.ProcessRegistry satisfies it.
type Tracker interface {
	Register(sessionID string, pid int)
	Unregister(sessionID string, pid int) bool
}

// Locker serializes shell spawns against workspace replacement for a session.
// *services.WorkspaceService satisfies it.
type Locker interface {
	LockSession(name string) (unlock func())
}

// Options configures spawned terminals
type Options struct {
	Shell         string
	JailInterval  time.Duration
	ReadChunkSize int
	Rows          uint16
	Cols          uint16

	// Locks is held from the workspace check until the shell is registered
	Locks Locker
}

// Manager accepts terminal channels and runs one shell per channel
type Manager struct {
	resolver *workspace.Resolver
	opts     Options
	tracker  Tracker

	// overridable in tests
	cwdOf func(pid int) (string, error)
	kill  func(pid int) error

	mu   sync.Mutex
	live map[string]*Session
}

// NewManager creates a terminal manager for workspaces under resolver
func NewManager(resolver *workspace.Resolver, tracker Tracker, opts Options) *Manager {
	if opts.Shell == "" {
		opts.Shell = "/bin/sh"
	}
	if opts.ReadChunkSize <= 0 {
		opts.ReadChunkSize = defaultChunkSize
	}
	if opts.Rows == 0 {
		opts.Rows = defaultRows
	}
	if opts.Cols == 0 {
		opts.Cols = defaultCols
	}

	return &Manager{
		resolver: resolver,
		opts:     opts,
		tracker:  tracker,
		cwdOf:    procCwd,
		kill: func(pid int) error {
			return services.KillProcessGroup(pid, syscall.SIGKILL)
		},
		live: make(map[string]*Session),
	}
}

// Serve bridges conn to a new shell in the session's workspace and blocks
// until the terminal is closed. The channel is always closed on return.
func (m *Manager) Serve(ctx context.Context, conn Conn, sessionID string) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		conn:      conn,
		resolver:  m.resolver,
		opts:      m.opts,
		tracker:   m.tracker,
		cwdOf:     m.cwdOf,
		kill:      m.kill,
	}
	s.log = logger.ForSession(sessionID).With().Str("terminal", s.ID).Logger()
	s.state.Store(int32(StateConnecting))

	m.mu.Lock()
	m.live[s.ID] = s
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.live, s.ID)
		m.mu.Unlock()
	}()

	s.log.Info().Msg("📡 Terminal connected")
	s.run(ctx)
	return s
}

// Active returns the number of open terminals
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

// Shutdown closes every open terminal
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.live))
	for _, s := range m.live {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	if len(sessions) > 0 {
		logger.Infof("🛑 Closed %d terminal(s)", len(sessions))
	}
}

// shellEnv builds the shell environment with HOME remapped to the workspace
func shellEnv(base []string, root, sessionID string) []string {
	env := make([]string, 0, len(base)+5)
	for _, kv := range base {
		name, _, _ := strings.Cut(kv, "=")
		switch name {
		case "HOME", "PWD", "OLDPWD", "TERM", "COLORTERM", "CLOUIDE_SESSION":
			continue
		}
		env = append(env, kv)
	}
	return append(env,
		"HOME="+root,
		"PWD="+root,
		"TERM=xterm-256color",
		"COLORTERM=truecolor",
		"CLOUIDE_SESSION="+sessionID,
	)
}

// procCwd reads a process's working directory from procfs
func procCwd(pid int) (string, error) {
	return os.Readlink(fmt.Sprintf("/proc/%d/cwd", pid))
}
