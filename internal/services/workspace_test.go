package services

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/clouide/clouide/internal/git"
	"github.com/clouide/clouide/internal/models"
	"github.com/clouide/clouide/internal/workspace"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wsSession = "ws-session"

type workspaceFixture struct {
	svc      *WorkspaceService
	resolver *workspace.Resolver
	registry *ProcessRegistry
	root     string
}

func newWorkspaceFixture(t *testing.T) *workspaceFixture {
	t.Helper()
	resolver := workspace.NewResolver(t.TempDir(), 5)
	registry := NewProcessRegistry()
	creds, err := NewCredentialStore(resolver, "")
	require.NoError(t, err)

	root, err := resolver.Resolve(wsSession)
	require.NoError(t, err)

	return &workspaceFixture{
		svc:      NewWorkspaceService(resolver, registry, creds, git.NewClient()),
		resolver: resolver,
		registry: registry,
		root:     root,
	}
}

// seedRemote creates a bare repository holding one commit with hello.txt
func seedRemote(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	client := git.NewClient()

	remote := filepath.Join(t.TempDir(), "remote.git")
	_, err := gogit.PlainInit(remote, true)
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "src")
	require.NoError(t, client.Init(src, "seed"))
	require.NoError(t, os.WriteFile(filepath.Join(src, "hello.txt"), []byte("hello"), 0644))

	repo, err := gogit.PlainOpen(src)
	require.NoError(t, err)
	_, err = repo.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{remote}})
	require.NoError(t, err)

	_, err = client.CommitAndPush(ctx, src, &models.Credentials{Username: "seed", Token: "x"}, "seed")
	require.NoError(t, err)
	return remote
}

// startInWorkspace starts a long-running process inside root and tracks it
func startInWorkspace(t *testing.T, f *workspaceFixture) (*exec.Cmd, <-chan struct{}) {
	t.Helper()
	cmd := exec.Command("sleep", "30")
	cmd.Dir = f.root
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	require.NoError(t, cmd.Start())

	exited := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()
	f.registry.Register(wsSession, cmd.Process.Pid)
	return cmd, exited
}

func TestWorkspaceService_Init(t *testing.T) {
	f := newWorkspaceFixture(t)

	name, err := f.svc.Init(wsSession, "demo")
	require.NoError(t, err)
	assert.Equal(t, "demo", name)
	assert.FileExists(t, filepath.Join(f.root, "README.md"))

	require.NoError(t, os.WriteFile(filepath.Join(f.root, "stale.txt"), []byte("x"), 0644))
	_, exited := startInWorkspace(t, f)

	name, err = f.svc.Init(wsSession, "")
	require.NoError(t, err)
	assert.Equal(t, git.DefaultProjectName, name)
	assert.NoFileExists(t, filepath.Join(f.root, "stale.txt"), "workspace is replaced, not updated")

	select {
	case <-exited:
	case <-time.After(5 * time.Second):
		t.Fatal("init did not kill the session's process")
	}
	assert.Equal(t, 0, f.registry.Count())

	_, err = f.svc.Init("abc", "demo")
	assert.ErrorIs(t, err, workspace.ErrInvalidSession)
}

func TestWorkspaceService_CloneKillsProcessesFirst(t *testing.T) {
	f := newWorkspaceFixture(t)
	remote := seedRemote(t)

	_, err := f.svc.Init(wsSession, "demo")
	require.NoError(t, err)
	_, exited := startInWorkspace(t, f)

	require.NoError(t, f.svc.Clone(context.Background(), wsSession, remote))

	select {
	case <-exited:
	case <-time.After(5 * time.Second):
		t.Fatal("clone did not kill the session's process")
	}

	data, err := os.ReadFile(filepath.Join(f.root, "hello.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, 0, f.registry.Count())
}

func TestWorkspaceService_CloneValidation(t *testing.T) {
	f := newWorkspaceFixture(t)

	err := f.svc.Clone(context.Background(), wsSession, "  ")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	err = f.svc.Clone(context.Background(), "abc", "https://example.com/r.git")
	assert.ErrorIs(t, err, workspace.ErrInvalidSession)
}

func TestWorkspaceService_Push(t *testing.T) {
	ctx := context.Background()
	f := newWorkspaceFixture(t)
	remote := seedRemote(t)
	require.NoError(t, f.svc.Clone(ctx, wsSession, remote))

	_, err := f.svc.Push(ctx, wsSession, "no creds")
	assert.ErrorIs(t, err, ErrNoCredentials)

	require.NoError(t, f.svc.Login(wsSession, models.LoginRequest{Username: "octocat", Token: "ghp_x"}))

	result, err := f.svc.Push(ctx, wsSession, "nothing changed")
	require.NoError(t, err)
	assert.False(t, result.Pushed)
	assert.Equal(t, git.NoChangesMessage, result.Message)

	require.NoError(t, os.WriteFile(filepath.Join(f.root, "new.txt"), []byte("new"), 0644))
	result, err = f.svc.Push(ctx, wsSession, "add new.txt")
	require.NoError(t, err)
	assert.True(t, result.Pushed)

	require.NoError(t, f.svc.Logout(wsSession))
	require.NoError(t, f.svc.Logout(wsSession), "logout without credentials succeeds")
	_, err = f.svc.Push(ctx, wsSession, "again")
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestWorkspaceService_PushMissingWorkspace(t *testing.T) {
	f := newWorkspaceFixture(t)
	require.NoError(t, f.svc.Login(wsSession, models.LoginRequest{Username: "octocat", Token: "ghp_x"}))

	_, err := f.svc.Push(context.Background(), wsSession, "msg")
	assert.ErrorIs(t, err, workspace.ErrNotFound)
}

func TestWorkspaceService_LoginValidation(t *testing.T) {
	f := newWorkspaceFixture(t)
	err := f.svc.Login(wsSession, models.LoginRequest{Username: "octocat"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestWorkspaceService_Terminals(t *testing.T) {
	f := newWorkspaceFixture(t)
	require.NoError(t, os.MkdirAll(f.root, 0755))

	pids, err := f.svc.Terminals(wsSession)
	require.NoError(t, err)
	assert.Empty(t, pids)
	assert.NotNil(t, pids)

	cmd, exited := startInWorkspace(t, f)

	pids, err = f.svc.Terminals(wsSession)
	require.NoError(t, err)
	assert.Equal(t, []int{cmd.Process.Pid}, pids)

	killed, err := f.svc.KillTerminals(wsSession)
	require.NoError(t, err)
	assert.Equal(t, 1, killed)
	<-exited

	killed, err = f.svc.KillTerminals(wsSession)
	require.NoError(t, err)
	assert.Equal(t, 0, killed)
}

func TestWorkspaceService_Files(t *testing.T) {
	f := newWorkspaceFixture(t)
	_, err := f.svc.Init(wsSession, "demo")
	require.NoError(t, err)

	files, err := f.svc.Files(wsSession)
	require.NoError(t, err)
	assert.Equal(t, f.root, files.Root())

	list, err := files.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"README.md"}, list)

	_, err = f.svc.Files("")
	assert.ErrorIs(t, err, workspace.ErrInvalidSession)
}
