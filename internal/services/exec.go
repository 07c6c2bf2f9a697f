package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/clouide/clouide/internal/logger"
	"github.com/clouide/clouide/internal/models"
	"github.com/clouide/clouide/internal/workspace"
)

// ExecService runs one-shot, non-interactive commands in a workspace. Each
// command runs in its own process group and is tracked in the registry for
// as long as it runs.
type ExecService struct {
	resolver *workspace.Resolver
	registry *ProcessRegistry
	timeout  time.Duration
}

// NewExecService creates an ExecService; a zero timeout means none
func NewExecService(resolver *workspace.Resolver, registry *ProcessRegistry, timeout time.Duration) *ExecService {
	return &ExecService{
		resolver: resolver,
		registry: registry,
		timeout:  timeout,
	}
}

// Run executes command with sh -c in the session's workspace, creating the
// workspace if needed. Command failures are reported in the response, not
// as errors; only an invalid session is an error.
func (e *ExecService) Run(ctx context.Context, sessionID, command string) (*models.CommandResponse, error) {
	name, err := e.resolver.Name(sessionID)
	if err != nil {
		return nil, err
	}
	root, err := e.resolver.Resolve(name)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return &models.CommandResponse{Error: err.Error(), ReturnCode: 1}, nil
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", command)
	cmd.Dir = root
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return KillProcessGroup(cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = time.Second

	if err := cmd.Start(); err != nil {
		return &models.CommandResponse{Error: err.Error(), ReturnCode: 1}, nil
	}

	pid := cmd.Process.Pid
	e.registry.Register(name, pid)
	defer e.registry.Unregister(name, pid)

	logger.Debugf("⚙️  Running command for session %s (pid %d): %s", name, pid, command)
	waitErr := cmd.Wait()

	resp := &models.CommandResponse{
		Output: stdout.String(),
		Error:  stderr.String(),
	}

	var exitErr *exec.ExitError
	switch {
	case waitErr == nil:
		resp.ReturnCode = 0
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		resp.ReturnCode = -1
		resp.Error += fmt.Sprintf("command timed out after %s\n", e.timeout)
	case errors.As(waitErr, &exitErr):
		resp.ReturnCode = exitErr.ExitCode()
	default:
		resp.ReturnCode = 1
		resp.Error += waitErr.Error()
	}

	return resp, nil
}
