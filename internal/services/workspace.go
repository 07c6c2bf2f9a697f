package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/clouide/clouide/internal/git"
	"github.com/clouide/clouide/internal/logger"
	"github.com/clouide/clouide/internal/models"
	"github.com/clouide/clouide/internal/workspace"
)

// ErrInvalidRequest is returned when a request body is missing required fields
var ErrInvalidRequest = errors.New("invalid request")

// WorkspaceService owns the lifecycle of session workspaces: creating them
// from scratch or from a remote, pushing them back, and the credentials used
// to do so. Every operation that destroys a workspace kills the session's
// processes first.
type WorkspaceService struct {
	resolver *workspace.Resolver
	registry *ProcessRegistry
	creds    *CredentialStore
	git      *git.Client

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewWorkspaceService wires the workspace lifecycle to its collaborators
func NewWorkspaceService(resolver *workspace.Resolver, registry *ProcessRegistry, creds *CredentialStore, gitClient *git.Client) *WorkspaceService {
	return &WorkspaceService{
		resolver: resolver,
		registry: registry,
		creds:    creds,
		git:      gitClient,
		locks:    make(map[string]*sync.Mutex),
	}
}

// Resolver returns the resolver the service was built with
func (s *WorkspaceService) Resolver() *workspace.Resolver {
	return s.resolver
}

// LockSession takes the lock workspace-replacing operations hold for the
// canonical session name. Terminals take it while spawning a shell.
func (s *WorkspaceService) LockSession(name string) (unlock func()) {
	return s.lock(name)
}

// lock serializes workspace-replacing operations per session
func (s *WorkspaceService) lock(name string) func() {
	s.mu.Lock()
	l, ok := s.locks[name]
	if !ok {
		l = &sync.Mutex{}
		s.locks[name] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Files returns the file operations for a session's workspace
func (s *WorkspaceService) Files(sessionID string) (*workspace.Files, error) {
	root, err := s.resolver.Resolve(sessionID)
	if err != nil {
		return nil, err
	}
	return workspace.NewFiles(root), nil
}

// Login stores credentials for the session
func (s *WorkspaceService) Login(sessionID string, req models.LoginRequest) error {
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Token) == "" {
		return fmt.Errorf("%w: username and token are required", ErrInvalidRequest)
	}
	if err := s.creds.Save(sessionID, models.Credentials{Username: req.Username, Token: req.Token}); err != nil {
		return err
	}
	logger.Infof("🔑 Saved credentials for session %s (%s)", sessionID, req.Username)
	return nil
}

// Logout removes the session's credentials; it succeeds when none are stored
func (s *WorkspaceService) Logout(sessionID string) error {
	if err := s.creds.Delete(sessionID); err != nil {
		return err
	}
	logger.Infof("🔒 Removed credentials for session %s", sessionID)
	return nil
}

// Init replaces the workspace with a fresh repository and returns the
// project name used
func (s *WorkspaceService) Init(sessionID, projectName string) (string, error) {
	name, root, err := s.target(sessionID)
	if err != nil {
		return "", err
	}
	if projectName == "" {
		projectName = git.DefaultProjectName
	}

	unlock := s.lock(name)
	defer unlock()

	if err := s.wipe(name, root); err != nil {
		return "", err
	}
	if err := s.git.Init(root, projectName); err != nil {
		return "", err
	}

	logger.Infof("✨ Initialized workspace %q for session %s", projectName, name)
	return projectName, nil
}

// Clone replaces the workspace with a clone of rawURL, using the session's
// credentials when it has any
func (s *WorkspaceService) Clone(ctx context.Context, sessionID, rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return fmt.Errorf("%w: url is required", ErrInvalidRequest)
	}

	name, root, err := s.target(sessionID)
	if err != nil {
		return err
	}

	creds, err := s.creds.Load(name)
	if err != nil && !errors.Is(err, ErrNoCredentials) {
		return err
	}

	unlock := s.lock(name)
	defer unlock()

	if err := s.wipe(name, root); err != nil {
		return err
	}
	return s.git.Clone(ctx, strings.TrimSpace(rawURL), root, creds)
}

// Push commits the whole workspace and pushes it to origin
func (s *WorkspaceService) Push(ctx context.Context, sessionID, message string) (*git.PushResult, error) {
	name, root, err := s.target(sessionID)
	if err != nil {
		return nil, err
	}

	creds, err := s.creds.Load(name)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("%w: workspace", workspace.ErrNotFound)
	}

	unlock := s.lock(name)
	defer unlock()

	return s.git.CommitAndPush(ctx, root, creds, message)
}

// KillTerminals kills every tracked process of the session
func (s *WorkspaceService) KillTerminals(sessionID string) (int, error) {
	name, err := s.resolver.Name(sessionID)
	if err != nil {
		return 0, err
	}
	return s.registry.KillAll(name), nil
}

// Terminals lists the tracked processes of the session
func (s *WorkspaceService) Terminals(sessionID string) ([]int, error) {
	name, err := s.resolver.Name(sessionID)
	if err != nil {
		return nil, err
	}
	pids := s.registry.PIDs(name)
	if pids == nil {
		pids = []int{}
	}
	return pids, nil
}

func (s *WorkspaceService) target(sessionID string) (name, root string, err error) {
	name, err = s.resolver.Name(sessionID)
	if err != nil {
		return "", "", err
	}
	root, err = s.resolver.Resolve(name)
	if err != nil {
		return "", "", err
	}
	return name, root, nil
}

// wipe kills the session's processes, then removes the workspace
func (s *WorkspaceService) wipe(name, root string) error {
	if killed := s.registry.KillAll(name); killed > 0 {
		logger.Infof("🔪 Killed %d process(es) of session %s before replacing its workspace", killed, name)
	}
	if err := os.RemoveAll(root); err != nil {
		return fmt.Errorf("failed to remove workspace: %w", err)
	}
	return nil
}
