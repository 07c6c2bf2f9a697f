package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/clouide/clouide/internal/logger"
	"github.com/clouide/clouide/internal/models"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	// DefaultProjectName is used by Init when no name is given
	DefaultProjectName = "my-project"
	// NoChangesMessage is reported by CommitAndPush for a clean tree
	NoChangesMessage = "No changes to push"

	defaultRemote = "origin"
)

// PushResult describes the outcome of CommitAndPush
type PushResult struct {
	Pushed  bool   `json:"pushed"`
	Commit  string `json:"commit,omitempty"`
	Message string `json:"message"`
}

// Client performs repository operations with go-git
type Client struct {
	now func() time.Time
}

// NewClient creates a git client
func NewClient() *Client {
	return &Client{now: time.Now}
}

// Init creates an empty repository at dir with a README. dir must not exist
// or be empty.
func (c *Client) Init(dir, projectName string) error {
	if projectName == "" {
		projectName = DefaultProjectName
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}
	if _, err := gogit.PlainInit(dir, false); err != nil {
		return classify("init", err)
	}

	readme := fmt.Sprintf("# %s\n\nInitialized by Clouide.", projectName)
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte(readme), 0644); err != nil {
		return fmt.Errorf("failed to write README.md: %w", err)
	}

	logger.Debugf("📦 Initialized repository %q in %s", projectName, dir)
	return nil
}

// Clone clones rawURL into dest. Credentials, when given, are only present
// in origin's URL for the duration of the transfer; origin is reset to the
// credential-free URL before returning, including on failure. A failed
// clone leaves no directory behind.
func (c *Client) Clone(ctx context.Context, rawURL, dest string, creds *models.Credentials) (err error) {
	if rawURL == "" {
		return &UpstreamError{Op: "clone", Kind: ErrUpstream, Msg: "repository url is required"}
	}

	cleanURL := CleanURL(rawURL)
	cloneURL := AuthURL(cleanURL, creds)
	secrets := secretsOf(creds)

	if creds != nil {
		logger.Infof("📥 Cloning %s with credentials for %s", cleanURL, creds.Username)
	} else {
		logger.Infof("📥 Cloning public repository %s", cleanURL)
	}

	repo, cloneErr := gogit.PlainCloneContext(ctx, dest, false, &gogit.CloneOptions{
		URL: cloneURL,
	})
	if cloneErr != nil {
		_ = os.RemoveAll(dest)
		return classify("clone", cloneErr, secrets...)
	}

	defer func() {
		if restoreErr := setRemoteURL(repo, defaultRemote, cleanURL); restoreErr != nil {
			logger.Errorf("❌ Failed to reset origin URL in %s: %v", dest, restoreErr)
			if err == nil {
				err = fmt.Errorf("failed to reset origin URL: %w", restoreErr)
			}
		}
	}()

	return nil
}

// CommitAndPush stages everything in dir, commits as the credential owner
// and pushes to origin. The authenticated URL is swapped into origin only
// around the push and the original URL is always restored.
func (c *Client) CommitAndPush(ctx context.Context, dir string, creds *models.Credentials, message string) (*PushResult, error) {
	if creds == nil {
		return nil, fmt.Errorf("credentials are required to push")
	}
	secrets := secretsOf(creds)

	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return nil, classify("open", err, secrets...)
	}

	if err := setIdentity(repo, creds.Username); err != nil {
		return nil, err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, classify("worktree", err, secrets...)
	}
	if err := wt.AddWithOptions(&gogit.AddOptions{All: true}); err != nil {
		return nil, classify("add", err, secrets...)
	}

	status, err := wt.Status()
	if err != nil {
		return nil, classify("status", err, secrets...)
	}
	if status.IsClean() {
		return &PushResult{Pushed: false, Message: NoChangesMessage}, nil
	}

	if message == "" {
		message = "Update from Clouide"
	}
	hash, err := wt.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  creds.Username,
			Email: noreplyEmail(creds.Username),
			When:  c.now(),
		},
	})
	if err != nil {
		return nil, classify("commit", err, secrets...)
	}

	if err := c.pushWithAuth(ctx, repo, creds, secrets); err != nil {
		return nil, err
	}

	logger.Infof("🚀 Pushed %s from %s", hash.String()[:7], dir)
	return &PushResult{Pushed: true, Commit: hash.String(), Message: "Pushed successfully!"}, nil
}

// pushWithAuth swaps origin to the authenticated URL, pushes, and restores
// the original URL in a deferred step that runs on every path.
func (c *Client) pushWithAuth(ctx context.Context, repo *gogit.Repository, creds *models.Credentials, secrets []string) (err error) {
	originalURL, err := remoteURL(repo, defaultRemote)
	if err != nil {
		return classify("push", err, secrets...)
	}

	if authURL := AuthURL(originalURL, creds); authURL != originalURL {
		if err := setRemoteURL(repo, defaultRemote, authURL); err != nil {
			return classify("push", err, secrets...)
		}
		defer func() {
			if restoreErr := setRemoteURL(repo, defaultRemote, originalURL); restoreErr != nil {
				logger.Errorf("❌ Failed to restore origin URL: %v", restoreErr)
				if err == nil {
					err = fmt.Errorf("failed to restore origin URL: %w", restoreErr)
				}
			}
		}()
	}

	pushErr := repo.PushContext(ctx, &gogit.PushOptions{RemoteName: defaultRemote})
	if pushErr != nil && !errors.Is(pushErr, gogit.NoErrAlreadyUpToDate) {
		return classify("push", pushErr, secrets...)
	}
	return nil
}

// RemoteURL returns origin's first URL for the repository at dir
func (c *Client) RemoteURL(dir string) (string, error) {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return "", err
	}
	return remoteURL(repo, defaultRemote)
}

func remoteURL(repo *gogit.Repository, name string) (string, error) {
	remote, err := repo.Remote(name)
	if err != nil {
		return "", fmt.Errorf("failed to get remote %s: %w", name, err)
	}
	if len(remote.Config().URLs) == 0 {
		return "", fmt.Errorf("no URLs configured for %s remote", name)
	}
	return remote.Config().URLs[0], nil
}

func setRemoteURL(repo *gogit.Repository, name, rawURL string) error {
	cfg, err := repo.Config()
	if err != nil {
		return err
	}
	remote, ok := cfg.Remotes[name]
	if !ok {
		cfg.Remotes[name] = &config.RemoteConfig{
			Name:  name,
			URLs:  []string{rawURL},
			Fetch: []config.RefSpec{config.RefSpec(fmt.Sprintf(config.DefaultFetchRefSpec, name))},
		}
	} else {
		remote.URLs = []string{rawURL}
	}
	return repo.Storer.SetConfig(cfg)
}

func setIdentity(repo *gogit.Repository, username string) error {
	cfg, err := repo.Config()
	if err != nil {
		return fmt.Errorf("failed to read repository config: %w", err)
	}
	cfg.User.Name = username
	cfg.User.Email = noreplyEmail(username)
	if err := repo.Storer.SetConfig(cfg); err != nil {
		return fmt.Errorf("failed to set commit identity: %w", err)
	}
	return nil
}

func noreplyEmail(username string) string {
	return username + "@users.noreply.github.com"
}

func secretsOf(creds *models.Credentials) []string {
	if creds == nil {
		return nil
	}
	return []string{creds.Token}
}
