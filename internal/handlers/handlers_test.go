package handlers

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/clouide/clouide/internal/git"
	"github.com/clouide/clouide/internal/models"
	"github.com/clouide/clouide/internal/services"
	"github.com/clouide/clouide/internal/terminal"
	"github.com/clouide/clouide/internal/workspace"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSession = "abc123"

type testServer struct {
	app         *fiber.App
	resolver    *workspace.Resolver
	registry    *services.ProcessRegistry
	manager     *terminal.Manager
	frontendDir string
	root        string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	resolver := workspace.NewResolver(t.TempDir(), 5)
	registry := services.NewProcessRegistry()
	creds, err := services.NewCredentialStore(resolver, "")
	require.NoError(t, err)

	workspaces := services.NewWorkspaceService(resolver, registry, creds, git.NewClient())
	manager := terminal.NewManager(resolver, registry, terminal.Options{Shell: "/bin/sh", Locks: workspaces})
	frontendDir := t.TempDir()

	app := NewApp(Dependencies{
		Workspaces:  workspaces,
		Exec:        services.NewExecService(resolver, registry, 0),
		Terminals:   manager,
		FrontendDir: frontendDir,
		Context:     context.Background(),
	})

	root, err := resolver.Resolve(testSession)
	require.NoError(t, err)

	return &testServer{
		app:         app,
		resolver:    resolver,
		registry:    registry,
		manager:     manager,
		frontendDir: frontendDir,
		root:        root,
	}
}

// do sends a request for testSession and decodes a JSON response into out
func (s *testServer) do(t *testing.T, method, path string, body interface{}, out interface{}) int {
	t.Helper()
	return s.doAs(t, testSession, method, path, body, out)
}

func (s *testServer) doAs(t *testing.T, sessionID, method, path string, body interface{}, out interface{}) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionID != "" {
		req.Header.Set("X-Session-Id", sessionID)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, out), string(raw))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	var health models.HealthResponse
	assert.Equal(t, 200, s.doAs(t, "", "GET", "/health", nil, &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, ServiceName, health.Service)
}

func TestSessionValidation(t *testing.T) {
	s := newTestServer(t)

	var errResp models.ErrorResponse
	assert.Equal(t, 400, s.doAs(t, "", "GET", "/files", nil, &errResp))

	assert.Equal(t, 400, s.doAs(t, "abc", "GET", "/files", nil, &errResp))
	assert.Equal(t, "Invalid session id", errResp.Detail)

	assert.Equal(t, 400, s.doAs(t, "abc", "POST", "/init", nil, &errResp))
}

func TestFileEndpoints(t *testing.T) {
	s := newTestServer(t)

	var files models.FilesResponse
	assert.Equal(t, 200, s.do(t, "GET", "/files", nil, &files))
	assert.Empty(t, files.Files, "missing workspace lists as empty")

	var status models.StatusResponse
	assert.Equal(t, 200, s.do(t, "POST", "/write", models.FileWriteRequest{FilePath: "src/main.go", Content: "package main\n"}, &status))
	assert.Equal(t, "success", status.Status)

	var content models.ContentResponse
	assert.Equal(t, 200, s.do(t, "POST", "/read", models.FileReadRequest{FilePath: "src/main.go"}, &content))
	assert.Equal(t, "package main\n", content.Content)

	require.NoError(t, os.WriteFile(filepath.Join(s.root, "logo.bin"), []byte{0xff, 0xfe, 0x00}, 0644))
	assert.Equal(t, 200, s.do(t, "POST", "/read", models.FileReadRequest{FilePath: "logo.bin"}, &content))
	assert.Equal(t, workspace.BinaryPlaceholder, content.Content)

	assert.Equal(t, 200, s.do(t, "POST", "/rename", models.FileRenameRequest{OldPath: "src/main.go", NewPath: "cmd/app/main.go"}, &status))

	assert.Equal(t, 200, s.do(t, "GET", "/files", nil, &files))
	assert.Equal(t, []string{"cmd/app/main.go", "logo.bin"}, files.Files)

	assert.Equal(t, 200, s.do(t, "POST", "/delete", models.FileDeleteRequest{FilePath: "cmd"}, &status))
	assert.Equal(t, 200, s.do(t, "GET", "/files", nil, &files))
	assert.Equal(t, []string{"logo.bin"}, files.Files)

	t.Run("errors", func(t *testing.T) {
		var errResp models.ErrorResponse
		assert.Equal(t, 404, s.do(t, "POST", "/read", models.FileReadRequest{FilePath: "missing.txt"}, &errResp))
		assert.Equal(t, "File not found", errResp.Detail)

		assert.Equal(t, 404, s.do(t, "POST", "/delete", models.FileDeleteRequest{FilePath: "missing.txt"}, &errResp))

		for _, escape := range []string{"../secret.txt", "a/../../x", "/etc/passwd"} {
			assert.Equal(t, 403, s.do(t, "POST", "/read", models.FileReadRequest{FilePath: escape}, &errResp), escape)
			assert.Equal(t, "Access denied", errResp.Detail)
			assert.Equal(t, 403, s.do(t, "POST", "/write", models.FileWriteRequest{FilePath: escape, Content: "x"}, &errResp), escape)
		}
		assert.Equal(t, 403, s.do(t, "POST", "/rename", models.FileRenameRequest{OldPath: "logo.bin", NewPath: "../logo.bin"}, &errResp))

		_, statErr := os.Stat(filepath.Join(filepath.Dir(s.root), "secret.txt"))
		assert.True(t, os.IsNotExist(statErr), "escaping writes never land next to the workspace")
	})
}

func TestInitAndPush(t *testing.T) {
	s := newTestServer(t)

	var status models.StatusResponse
	assert.Equal(t, 200, s.do(t, "POST", "/init", models.InitRequest{ProjectName: "demo"}, &status))
	assert.Equal(t, "Workspace 'demo' initialized", status.Message)

	var content models.ContentResponse
	assert.Equal(t, 200, s.do(t, "POST", "/read", models.FileReadRequest{FilePath: "README.md"}, &content))
	assert.Equal(t, "# demo\n\nInitialized by Clouide.", content.Content)

	assert.Equal(t, 200, s.do(t, "POST", "/init", nil, &status))
	assert.Equal(t, "Workspace 'my-project' initialized", status.Message)

	var errResp models.ErrorResponse
	assert.Equal(t, 401, s.do(t, "POST", "/push", models.PushRequest{CommitMessage: "x"}, &errResp))
	assert.Equal(t, "No credentials found. Please login first.", errResp.Detail)

	assert.Equal(t, 400, s.do(t, "POST", "/login", models.LoginRequest{Username: "octocat"}, &errResp))
	assert.Equal(t, 200, s.do(t, "POST", "/login", models.LoginRequest{Username: "octocat", Token: "ghp_x"}, &status))
	assert.Equal(t, "Credentials saved for this session", status.Message)

	remote := filepath.Join(t.TempDir(), "remote.git")
	_, err := gogit.PlainInit(remote, true)
	require.NoError(t, err)
	repo, err := gogit.PlainOpen(s.root)
	require.NoError(t, err)
	_, err = repo.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{remote}})
	require.NoError(t, err)

	assert.Equal(t, 200, s.do(t, "POST", "/push", models.PushRequest{CommitMessage: "first"}, &status))
	assert.Equal(t, "Pushed successfully!", status.Message)

	assert.Equal(t, 200, s.do(t, "POST", "/push", models.PushRequest{CommitMessage: "again"}, &status))
	assert.Equal(t, "No changes to push", status.Message)

	assert.Equal(t, 200, s.do(t, "POST", "/logout", nil, &status))
	assert.Equal(t, "Logged out", status.Message)
	assert.Equal(t, 200, s.do(t, "POST", "/logout", nil, &status))
}

func TestCloneFailureIsSanitized(t *testing.T) {
	s := newTestServer(t)

	var status models.StatusResponse
	assert.Equal(t, 200, s.do(t, "POST", "/login", models.LoginRequest{Username: "octocat", Token: "ghp_topsecret"}, &status))

	var errResp models.ErrorResponse
	code := s.do(t, "POST", "/clone", models.CloneRequest{URL: "https://127.0.0.1:1/octocat/private.git"}, &errResp)
	assert.Equal(t, 500, code)
	assert.NotEmpty(t, errResp.Detail)
	assert.NotContains(t, errResp.Detail, "ghp_topsecret")

	assert.Equal(t, 400, s.do(t, "POST", "/clone", models.CloneRequest{}, &errResp))
}

func TestRunCommandAndTerminals(t *testing.T) {
	s := newTestServer(t)

	var out models.CommandResponse
	assert.Equal(t, 200, s.do(t, "POST", "/terminal", models.CommandRequest{Command: "echo hi; exit 2"}, &out))
	assert.Equal(t, "hi\n", out.Output)
	assert.Equal(t, 2, out.ReturnCode)

	var terminals models.TerminalsResponse
	assert.Equal(t, 200, s.do(t, "GET", "/terminals", nil, &terminals))
	assert.Empty(t, terminals.PIDs)

	var killed models.KillResponse
	assert.Equal(t, 200, s.do(t, "POST", "/terminals/kill", nil, &killed))
	assert.Equal(t, "success", killed.Status)
	assert.Equal(t, 0, killed.Killed)
}

func TestDownload(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest("GET", "/download?session_id="+testSession, nil)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)

	var status models.StatusResponse
	require.Equal(t, 200, s.do(t, "POST", "/init", models.InitRequest{ProjectName: "demo"}, &status))
	require.Equal(t, 200, s.do(t, "POST", "/write", models.FileWriteRequest{FilePath: ".env", Content: "A=1"}, &status))

	resp, err = s.app.Test(httptest.NewRequest("GET", "/download?session_id="+testSession, nil), -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "application/zip", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "workspace.zip")

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"README.md", ".env"}, names)

	resp, err = s.app.Test(httptest.NewRequest("GET", "/download", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestStaticFrontend(t *testing.T) {
	s := newTestServer(t)

	var status models.StatusResponse
	assert.Equal(t, 200, s.doAs(t, "", "GET", "/", nil, &status))
	assert.Equal(t, "error", status.Status)
	assert.Equal(t, "Frontend not built", status.Message)

	require.NoError(t, os.MkdirAll(filepath.Join(s.frontendDir, "assets"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(s.frontendDir, "index.html"), []byte("<div id=root></div>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(s.frontendDir, "assets", "app.js"), []byte("console.log(1)"), 0644))

	for path, want := range map[string]string{
		"/":                 "<div id=root></div>",
		"/assets/app.js":    "console.log(1)",
		"/editor/some/file": "<div id=root></div>",
		"/../../etc/passwd": "<div id=root></div>",
	} {
		resp, err := s.app.Test(httptest.NewRequest("GET", path, nil), -1)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Equal(t, want, string(body), path)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{workspace.ErrInvalidSession, 400},
		{services.ErrInvalidRequest, 400},
		{services.ErrNoCredentials, 401},
		{fmt.Errorf("wrap: %w", workspace.ErrAccessDenied), 403},
		{workspace.ErrNotFound, 404},
		{git.ErrAuthFailed, 500},
		{&git.UpstreamError{Op: "push", Kind: git.ErrRepoNotFound, Msg: "x"}, 500},
		{errors.New("boom"), 500},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
