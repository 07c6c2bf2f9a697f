package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrInvalidSession is returned for empty, short or traversal-shaped session ids
	ErrInvalidSession = errors.New("invalid session id")
	// ErrAccessDenied is returned when a path resolves outside the workspace root
	ErrAccessDenied = errors.New("access denied")
	// ErrNotFound is returned when a file or workspace does not exist
	ErrNotFound = errors.New("not found")
)

const (
	repoDirName    = "repo"
	configFileName = "config.json"
)

// Resolver maps session ids to directories under a base directory.
// It only does path arithmetic; nothing is created or checked on disk.
type Resolver struct {
	baseDir   string
	minLength int
}

// NewResolver creates a resolver rooted at baseDir
func NewResolver(baseDir string, minLength int) *Resolver {
	return &Resolver{
		baseDir:   filepath.Clean(baseDir),
		minLength: minLength,
	}
}

// BaseDir returns the directory holding all sessions
func (r *Resolver) BaseDir() string {
	return r.baseDir
}

// SessionDir returns <base>/<session>, the directory holding both the
// workspace and the credential record.
func (r *Resolver) SessionDir(sessionID string) (string, error) {
	if sessionID == "" || len(sessionID) < r.minLength {
		return "", fmt.Errorf("%w: %q", ErrInvalidSession, sessionID)
	}

	// Only the final component counts, so "../../etc" becomes "etc"
	name := filepath.Base(filepath.Clean("/" + sessionID))
	if name == "/" || name == "." || name == ".." || len(name) < r.minLength {
		return "", fmt.Errorf("%w: %q", ErrInvalidSession, sessionID)
	}

	dir := filepath.Join(r.baseDir, name)
	if !Within(r.baseDir, dir) || dir == r.baseDir {
		return "", fmt.Errorf("%w: %q", ErrInvalidSession, sessionID)
	}
	return dir, nil
}

// Name returns the canonical session name for sessionID. Processes and
// credentials are keyed by it so equivalent ids share one record.
func (r *Resolver) Name(sessionID string) (string, error) {
	dir, err := r.SessionDir(sessionID)
	if err != nil {
		return "", err
	}
	return filepath.Base(dir), nil
}

// Resolve returns the workspace root <base>/<session>/repo
func (r *Resolver) Resolve(sessionID string) (string, error) {
	dir, err := r.SessionDir(sessionID)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, repoDirName), nil
}

// ConfigPath returns <base>/<session>/config.json
func (r *Resolver) ConfigPath(sessionID string) (string, error) {
	dir, err := r.SessionDir(sessionID)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// SessionFromDir is the inverse of SessionDir for a direct child of the base directory
func (r *Resolver) SessionFromDir(dir string) (string, bool) {
	dir = filepath.Clean(dir)
	if filepath.Dir(dir) != r.baseDir {
		return "", false
	}
	name := filepath.Base(dir)
	if len(name) < r.minLength {
		return "", false
	}
	return name, true
}

// Exists reports whether the workspace for sessionID has been created
func (r *Resolver) Exists(sessionID string) bool {
	root, err := r.Resolve(sessionID)
	if err != nil {
		return false
	}
	info, err := os.Stat(root)
	return err == nil && info.IsDir()
}

// Within reports whether path is root or a descendant of root
func Within(root, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// Join resolves a client supplied relative path against root, rejecting escapes
func Join(root, rel string) (string, error) {
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: %s", ErrAccessDenied, rel)
	}
	full := filepath.Join(root, rel)
	if !Within(root, full) {
		return "", fmt.Errorf("%w: %s", ErrAccessDenied, rel)
	}
	return full, nil
}
