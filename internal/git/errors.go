package git

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
)

var (
	// ErrAuthFailed means the remote rejected or required credentials
	ErrAuthFailed = errors.New("authentication failed")
	// ErrRepoNotFound means the remote repository does not exist or is hidden
	ErrRepoNotFound = errors.New("repository not found")
	// ErrUpstream is the generic git/network failure
	ErrUpstream = errors.New("git operation failed")
)

// UpstreamError is a classified git failure whose message has been
// sanitized of credentials. It unwraps to its classification only, never
// to the raw cause.
type UpstreamError struct {
	Op   string
	Kind error
	Msg  string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Op, e.Msg)
}

func (e *UpstreamError) Unwrap() error {
	return e.Kind
}

// classify wraps err into an UpstreamError with secrets removed
func classify(op string, err error, secrets ...string) error {
	if err == nil {
		return nil
	}

	kind := ErrUpstream
	msg := Sanitize(err.Error(), secrets...)

	switch {
	case errors.Is(err, transport.ErrAuthenticationRequired),
		errors.Is(err, transport.ErrAuthorizationFailed),
		errors.Is(err, transport.ErrInvalidAuthMethod):
		kind = ErrAuthFailed
		msg = "authentication failed, check your username and token"
	case errors.Is(err, transport.ErrRepositoryNotFound):
		kind = ErrRepoNotFound
		msg = "repository not found"
	default:
		lower := strings.ToLower(msg)
		if strings.Contains(lower, "authentication") || strings.Contains(lower, "401") || strings.Contains(lower, "403 forbidden") {
			kind = ErrAuthFailed
		} else if strings.Contains(lower, "repository not found") || strings.Contains(lower, "404") {
			kind = ErrRepoNotFound
		}
	}

	return &UpstreamError{Op: op, Kind: kind, Msg: msg}
}
