package workspace

import (
	"fmt"
	"sync"

	"github.com/clouide/clouide/internal/logger"
	"github.com/fsnotify/fsnotify"
)

// Killer terminates every process tracked for a session
type Killer interface {
	KillAll(sessionID string) int
}

// Reaper watches the base directory and kills a session's shells when its
// session directory disappears behind the server's back (an operator running
// rm -rf, a cleanup cron). Removals done through the API already kill first.
type Reaper struct {
	resolver *Resolver
	killer   Killer
	watcher  *fsnotify.Watcher

	mu      sync.Mutex
	running bool
	done    chan struct{}
}

// NewReaper creates a reaper for resolver's base directory
func NewReaper(resolver *Resolver, killer Killer) *Reaper {
	return &Reaper{
		resolver: resolver,
		killer:   killer,
	}
}

// Start begins watching. It is a no-op when already running.
func (r *Reaper) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	if err := watcher.Add(r.resolver.BaseDir()); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", r.resolver.BaseDir(), err)
	}

	r.watcher = watcher
	r.running = true
	r.done = make(chan struct{})

	go r.loop(watcher, r.done)

	logger.Infof("👀 Watching %s for removed sessions", r.resolver.BaseDir())
	return nil
}

// Stop closes the watcher and waits for the event loop to exit
func (r *Reaper) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	watcher, done := r.watcher, r.done
	r.mu.Unlock()

	_ = watcher.Close()
	<-done
}

func (r *Reaper) loop(watcher *fsnotify.Watcher, done chan struct{}) {
	defer close(done)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			r.handle(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warnf("⚠️ Session watcher error: %v", err)
		}
	}
}

func (r *Reaper) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	sessionID, ok := r.resolver.SessionFromDir(event.Name)
	if !ok {
		return
	}

	if killed := r.killer.KillAll(sessionID); killed > 0 {
		logger.Infof("🧹 Session directory for %s removed, killed %d orphaned process(es)", sessionID, killed)
	}
}
