package terminal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/clouide/clouide/internal/recovery"
	"github.com/clouide/clouide/internal/workspace"
	"github.com/creack/pty"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"
)

const (
	msgInvalidSession   = "Invalid session id.\r\n"
	msgWorkspaceMissing = "Workspace not found. Initialize or clone a repository first.\r\n"
	msgSpawnFailed      = "Failed to start shell: %v\r\n"
	msgJailViolation    = "\r\n[security] shell left the workspace (%s); terminating session\r\n"

	// outputDrainGrace bounds how long a terminating session waits for
	// buffered shell output to be relayed before the channel closes
	outputDrainGrace = 500 * time.Millisecond
	// exitGrace bounds how long cleanup waits for a killed shell to be reaped
	// and for the activities to return once their descriptors are closed
	exitGrace = 3 * time.Second
)

// errChannelReleased is returned by send once the channel has been closed
var errChannelReleased = errors.New("terminal channel released")

// Conn is the duplex channel a terminal is bridged to. *websocket.Conn from
// gofiber satisfies it.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// State is a terminal session lifecycle state
type State int32

const (
	StateConnecting State = iota
	StateSpawning
	StateBridging
	StateTerminating
	StateFaulted
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateSpawning:
		return "spawning"
	case StateBridging:
		return "bridging"
	case StateTerminating:
		return "terminating"
	case StateFaulted:
		return "faulted"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// EndReason records why a bridged session stopped
type EndReason int

const (
	EndNone EndReason = iota
	EndProcessExited
	EndChannelClosed
	EndJailViolation
	EndCancelled
	EndFault
)

func (r EndReason) String() string {
	switch r {
	case EndProcessExited:
		return "process exited"
	case EndChannelClosed:
		return "channel closed"
	case EndJailViolation:
		return "jail violation"
	case EndCancelled:
		return "cancelled"
	case EndFault:
		return "fault"
	default:
		return "none"
	}
}

// Session is one duplex channel bridged to one shell
type Session struct {
	ID        string
	SessionID string
	Root      string

	// key is the canonical session name processes are registered under
	key string

	conn     Conn
	resolver *workspace.Resolver
	opts     Options
	tracker  Tracker
	cwdOf    func(pid int) (string, error)
	kill     func(pid int) error
	log      zerolog.Logger

	state  atomic.Int32
	reason atomic.Int32

	// writeMu guards writes to conn; released is set under it when the
	// channel is closed and conn must not be touched again
	writeMu  sync.Mutex
	released bool

	activities sync.WaitGroup

	jailRoot string
	ptmx     *os.File
	cmd      *exec.Cmd
	pid      int
	exited   chan struct{}

	cancelMu sync.Mutex
	cancel   context.CancelFunc

	closeOnce   sync.Once
	cleanupOnce sync.Once
}

// State returns the current lifecycle state
func (s *Session) State() State {
	return State(s.state.Load())
}

// Reason returns why the session ended, EndNone while it is live
func (s *Session) Reason() EndReason {
	return EndReason(s.reason.Load())
}

// PID returns the shell's process id, 0 before spawn
func (s *Session) PID() int {
	return s.pid
}

func (s *Session) setState(state State) {
	old := State(s.state.Swap(int32(state)))
	if old != state {
		s.log.Debug().Str("from", old.String()).Str("to", state.String()).Msg("terminal state")
	}
}

// run drives the session from Connecting to Closed
func (s *Session) run(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	s.cancelMu.Lock()
	s.cancel = cancel
	s.cancelMu.Unlock()

	root, err := s.resolver.Resolve(s.SessionID)
	if err != nil {
		s.fault(msgInvalidSession, err)
		return
	}
	s.Root = root
	s.key = filepath.Base(filepath.Dir(root))

	// workspace replacement holds the same lock across kill and wipe, so a
	// shell is either killed by it or spawned into the new workspace
	unlock := s.lockWorkspace()
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		unlock()
		s.fault(msgWorkspaceMissing, workspace.ErrNotFound)
		return
	}

	s.setState(StateSpawning)
	err = s.spawn()
	unlock()
	if err != nil {
		s.fault(fmt.Sprintf(msgSpawnFailed, err), err)
		return
	}

	defer s.cleanup()

	s.setState(StateBridging)
	reason := s.bridge(ctx)
	s.reason.Store(int32(reason))
	s.log.Info().Str("reason", reason.String()).Int("pid", s.pid).Msg("🛑 Terminal session ending")
}

// fault reports a diagnostic to the client and closes the channel
func (s *Session) fault(message string, err error) {
	s.setState(StateFaulted)
	s.reason.Store(int32(EndFault))
	s.log.Warn().Err(err).Msg("⚠️  Terminal session faulted")
	_ = s.send(message)
	s.closeChannel()
	s.setState(StateClosed)
}

// spawn starts the shell on a new PTY in its own session and registers it
func (s *Session) spawn() error {
	jailRoot, err := filepath.EvalSymlinks(s.Root)
	if err != nil {
		return err
	}
	s.jailRoot = jailRoot

	cmd := exec.Command(s.opts.Shell, "-i")
	cmd.Dir = s.Root
	cmd.Env = shellEnv(os.Environ(), s.Root, s.SessionID)

	ptmx, err := pty.StartWithAttrs(cmd,
		&pty.Winsize{Rows: s.opts.Rows, Cols: s.opts.Cols},
		&syscall.SysProcAttr{Setsid: true, Setctty: true},
	)
	if err != nil {
		return err
	}

	s.cmd = cmd
	s.ptmx = ptmx
	s.pid = cmd.Process.Pid
	s.exited = make(chan struct{})
	s.tracker.Register(s.key, s.pid)

	pid, key := s.pid, s.key
	recovery.SafeGo("terminal-wait", func() {
		defer close(s.exited)
		err := cmd.Wait()
		// the pid may be reused from here on
		s.tracker.Unregister(key, pid)
		s.log.Debug().Err(err).Int("pid", pid).Msg("shell exited")
	})

	s.log.Info().Int("pid", s.pid).Str("shell", s.opts.Shell).Str("root", s.Root).Msg("🐚 Started shell")
	return nil
}

// bridge runs the relays and the jail enforcer until the first of them
// finishes, then stops the rest
func (s *Session) bridge(parent context.Context) EndReason {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	results := make(chan EndReason, 4)
	outputDone := make(chan struct{})

	s.goActivity("output", results, func() EndReason {
		defer close(outputDone)
		return s.relayOutput(ctx)
	})
	s.goActivity("input", results, func() EndReason {
		return s.relayInput(ctx)
	})
	s.goActivity("jail", results, func() EndReason {
		return s.enforceJail(ctx)
	})
	s.goActivity("exit", results, func() EndReason {
		select {
		case <-s.exited:
			return EndProcessExited
		case <-ctx.Done():
			return EndNone
		}
	})

	reason := EndNone
	for reason == EndNone {
		select {
		case reason = <-results:
		case <-parent.Done():
			reason = EndCancelled
		}
	}

	cancel()
	s.setState(StateTerminating)
	s.killShell()

	select {
	case <-outputDone:
	case <-time.After(outputDrainGrace):
	}
	return reason
}

func (s *Session) goActivity(name string, results chan<- EndReason, fn func() EndReason) {
	reason := EndFault
	s.activities.Add(1)
	recovery.SafeGoWithCleanup("terminal-"+name, func() {
		reason = fn()
	}, func() {
		results <- reason
		s.activities.Done()
	})
}

// lockWorkspace takes the session's workspace lock when one is configured
func (s *Session) lockWorkspace() func() {
	if s.opts.Locks == nil {
		return func() {}
	}
	return s.opts.Locks.LockSession(s.key)
}

// relayOutput copies shell output to the channel as UTF-8 text. It keeps
// draining after cancellation; send refuses once the channel is released.
func (s *Session) relayOutput(ctx context.Context) EndReason {
	var chunker utf8Chunker
	buf := make([]byte, s.opts.ReadChunkSize)

	for {
		n, err := s.ptmx.Read(buf)
		if n > 0 {
			if text := chunker.Decode(buf[:n]); text != "" {
				if werr := s.send(text); werr != nil {
					return EndChannelClosed
				}
			}
		}
		if err != nil {
			if tail := chunker.Flush(); tail != "" {
				_ = s.send(tail)
			}
			if ctx.Err() != nil {
				return EndCancelled
			}
			return EndProcessExited
		}
	}
}

// relayInput forwards client frames to the shell. Pings are dropped and
// resize directives change the PTY window size.
func (s *Session) relayInput(ctx context.Context) EndReason {
	for {
		if ctx.Err() != nil {
			return EndCancelled
		}
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return EndCancelled
			}
			return EndChannelClosed
		}
		if ctx.Err() != nil {
			return EndCancelled
		}

		frame := ParseFrame(data)
		switch frame.Kind {
		case FramePing:
			continue
		case FrameResize:
			if err := s.resize(frame.Rows, frame.Cols); err != nil {
				s.log.Debug().Err(err).Msg("resize ignored")
			}
		default:
			if _, err := s.ptmx.Write(frame.Data); err != nil {
				if ctx.Err() != nil {
					return EndCancelled
				}
				return EndProcessExited
			}
		}
	}
}

// resize applies a window size; non-positive dimensions are ignored
func (s *Session) resize(rows, cols int) error {
	if rows <= 0 || cols <= 0 {
		return fmt.Errorf("invalid size %dx%d", rows, cols)
	}
	if rows > maxDimension || cols > maxDimension {
		return fmt.Errorf("size %dx%d too large", rows, cols)
	}
	return pty.Setsize(s.ptmx, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
}

// enforceJail polls the shell's working directory and ends the session when
// it leaves the workspace. Failing to read the directory only stops polling.
func (s *Session) enforceJail(ctx context.Context) EndReason {
	if s.opts.JailInterval <= 0 {
		return EndNone
	}

	ticker := time.NewTicker(s.opts.JailInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return EndNone
		case <-s.exited:
			return EndNone
		case <-ticker.C:
		}

		cwd, err := s.cwdOf(s.pid)
		if err != nil {
			s.log.Debug().Err(err).Int("pid", s.pid).Msg("jail check stopped")
			return EndNone
		}
		if workspace.Within(s.jailRoot, cwd) {
			continue
		}

		s.log.Warn().Str("cwd", cwd).Int("pid", s.pid).Msg("🚨 Shell left the workspace")
		_ = s.send(fmt.Sprintf(msgJailViolation, cwd))
		return EndJailViolation
	}
}

// Close ends a live session from outside. It is safe to call at any time.
func (s *Session) Close() {
	s.cancelMu.Lock()
	cancel := s.cancel
	s.cancelMu.Unlock()

	if cancel != nil {
		cancel()
		return
	}
	s.closeChannel()
}

// cleanup releases everything the session acquired; it runs exactly once
func (s *Session) cleanup() {
	s.cleanupOnce.Do(func() {
		if s.pid > 0 {
			s.tracker.Unregister(s.key, s.pid)
		}
		s.killShell()

		if s.exited != nil {
			select {
			case <-s.exited:
			case <-time.After(exitGrace):
				s.log.Warn().Int("pid", s.pid).Msg("⚠️  Shell was not reaped in time")
			}
		}

		if s.ptmx != nil {
			_ = s.ptmx.Close()
		}
		s.closeChannel()

		// the channel may be reused by the server once run returns
		if !waitGroup(&s.activities, exitGrace) {
			s.log.Warn().Int("pid", s.pid).Msg("⚠️  Terminal activities still running after close")
		}
		s.setState(StateClosed)
	})
}

// killShell signals the shell's process group unless it has already exited
func (s *Session) killShell() {
	if s.pid <= 0 || s.exited == nil {
		return
	}
	select {
	case <-s.exited:
		return
	default:
	}
	if err := s.kill(s.pid); err != nil && !errors.Is(err, syscall.ESRCH) {
		s.log.Warn().Err(err).Int("pid", s.pid).Msg("⚠️  Failed to kill shell")
	}
}

func (s *Session) send(text string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.released {
		return errChannelReleased
	}
	return s.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

func (s *Session) closeChannel() {
	s.closeOnce.Do(func() {
		s.writeMu.Lock()
		_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.released = true
		s.writeMu.Unlock()
		_ = s.conn.Close()
	})
}

// waitGroup waits for wg up to timeout and reports whether it finished
func waitGroup(wg *sync.WaitGroup, timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
