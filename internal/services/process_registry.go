package services

import (
	"errors"
	"sort"
	"sync"
	"syscall"

	"github.com/clouide/clouide/internal/logger"
)

// Signaler delivers sig to pid. It returns syscall.ESRCH when the process is gone.
type Signaler func(pid int, sig syscall.Signal) error

// KillProcessGroup signals the process group led by pid, falling back to the
// pid alone when it does not lead a group.
func KillProcessGroup(pid int, sig syscall.Signal) error {
	if pid <= 0 {
		return syscall.ESRCH
	}
	if err := syscall.Kill(-pid, sig); err == nil {
		return nil
	}
	return syscall.Kill(pid, sig)
}

// ProcessRegistry tracks which OS processes belong to which session so that
// workspace-destroying operations can kill every shell first. One mutex
// guards the whole table; a pid belongs to at most one session.
type ProcessRegistry struct {
	mu       sync.Mutex
	sessions map[string]map[int]struct{}
	owners   map[int]string
	signal   Signaler
}

// RegistryOption configures a ProcessRegistry
type RegistryOption func(*ProcessRegistry)

// WithSignaler replaces the function used to deliver signals
func WithSignaler(s Signaler) RegistryOption {
	return func(r *ProcessRegistry) {
		r.signal = s
	}
}

// NewProcessRegistry creates an empty registry
func NewProcessRegistry(opts ...RegistryOption) *ProcessRegistry {
	r := &ProcessRegistry{
		sessions: make(map[string]map[int]struct{}),
		owners:   make(map[int]string),
		signal:   KillProcessGroup,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register records pid under sessionID. Registering again is a no-op; a pid
// recorded under another session moves to this one.
func (r *ProcessRegistry) Register(sessionID string, pid int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if owner, ok := r.owners[pid]; ok {
		if owner == sessionID {
			return
		}
		r.removeLocked(owner, pid)
	}

	set, ok := r.sessions[sessionID]
	if !ok {
		set = make(map[int]struct{})
		r.sessions[sessionID] = set
	}
	set[pid] = struct{}{}
	r.owners[pid] = sessionID
}

// Unregister removes pid from sessionID. It reports whether anything was
// removed; removing an absent pid is not an error.
func (r *ProcessRegistry) Unregister(sessionID string, pid int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if owner, ok := r.owners[pid]; !ok || owner != sessionID {
		return false
	}
	r.removeLocked(sessionID, pid)
	return true
}

func (r *ProcessRegistry) removeLocked(sessionID string, pid int) {
	delete(r.owners, pid)
	if set, ok := r.sessions[sessionID]; ok {
		delete(set, pid)
		if len(set) == 0 {
			delete(r.sessions, sessionID)
		}
	}
}

// KillAll sends SIGKILL to every pid tracked for sessionID and clears the set.
// Pids that already exited are skipped. The set is detached under the lock
// before any signal is sent, so a concurrent Register either lands before
// (and is killed) or after (and is untouched by this call).
func (r *ProcessRegistry) KillAll(sessionID string) int {
	r.mu.Lock()
	set := r.sessions[sessionID]
	delete(r.sessions, sessionID)
	pids := make([]int, 0, len(set))
	for pid := range set {
		delete(r.owners, pid)
		pids = append(pids, pid)
	}
	r.mu.Unlock()

	sort.Ints(pids)

	killed := 0
	for _, pid := range pids {
		if err := r.signal(pid, syscall.SIGKILL); err != nil {
			if !errors.Is(err, syscall.ESRCH) {
				logger.Warnf("⚠️ Failed to kill pid %d for session %s: %v", pid, sessionID, err)
			}
			continue
		}
		killed++
	}

	if len(pids) > 0 {
		logger.Infof("🛑 Killed %d/%d process(es) for session %s", killed, len(pids), sessionID)
	}
	return killed
}

// PIDs returns the tracked pids for sessionID in ascending order
func (r *ProcessRegistry) PIDs(sessionID string) []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	pids := make([]int, 0, len(r.sessions[sessionID]))
	for pid := range r.sessions[sessionID] {
		pids = append(pids, pid)
	}
	sort.Ints(pids)
	return pids
}

// Contains reports whether pid is tracked under sessionID
func (r *ProcessRegistry) Contains(sessionID string, pid int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.owners[pid] == sessionID && sessionID != ""
}

// Sessions returns the ids of sessions with at least one tracked process
func (r *ProcessRegistry) Sessions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the total number of tracked processes
func (r *ProcessRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.owners)
}

// Prune drops entries whose process no longer exists and returns how many
// were dropped. Normal exits unregister themselves; this catches the rest.
func (r *ProcessRegistry) Prune() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	pruned := 0
	for pid, sessionID := range r.owners {
		if err := r.signal(pid, 0); errors.Is(err, syscall.ESRCH) {
			r.removeLocked(sessionID, pid)
			pruned++
		}
	}
	if pruned > 0 {
		logger.Debugf("🧹 Pruned %d stale process entries", pruned)
	}
	return pruned
}
