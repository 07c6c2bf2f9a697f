package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clouide/clouide/internal/config"
	"github.com/clouide/clouide/internal/git"
	"github.com/clouide/clouide/internal/handlers"
	"github.com/clouide/clouide/internal/logger"
	"github.com/clouide/clouide/internal/services"
	"github.com/clouide/clouide/internal/terminal"
	"github.com/clouide/clouide/internal/workspace"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "🚀 Start the IDE backend server",
	Long: `# 🚀 Serve

**Start the HTTP and WebSocket server.**

## ⚙️  Configuration
Settings are layered in this order, later ones winning:
- built-in defaults
- a YAML file given with **--config** or **CLOUIDE_CONFIG**
- **CLOUIDE_*** environment variables (CLOUIDE_BASE_DIR, CLOUIDE_LISTEN, ...)
- command line flags

## 🔒 Workspaces
Each session's workspace lives under the base directory, which is created
with owner-only permissions. Terminals that leave their workspace are closed.`,
	RunE: runServe,
}

var (
	configPath  string
	listenAddr  string
	baseDir     string
	frontendDir string
	devMode     bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	serveCmd.Flags().StringVarP(&listenAddr, "listen", "l", "", "Address to listen on (default :8000)")
	serveCmd.Flags().StringVar(&baseDir, "base-dir", "", "Directory holding every session workspace")
	serveCmd.Flags().StringVar(&frontendDir, "frontend-dir", "", "Directory with the built frontend")
	serveCmd.Flags().BoolVar(&devMode, "dev", false, "Development mode with console logging and access logs")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)

	logger.Configure(logger.GetLogLevelFromEnv(cfg.Dev), cfg.Dev)

	if err := cfg.Prepare(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	resolver := workspace.NewResolver(cfg.BaseDir, cfg.MinSessionIDLength)
	registry := services.NewProcessRegistry()

	creds, err := services.NewCredentialStore(resolver, cfg.CredentialKey)
	if err != nil {
		return err
	}

	workspaces := services.NewWorkspaceService(resolver, registry, creds, git.NewClient())
	manager := terminal.NewManager(resolver, registry, terminal.Options{
		Shell:         cfg.Shell,
		JailInterval:  cfg.JailInterval,
		ReadChunkSize: cfg.ReadChunkSize,
		Locks:         workspaces,
	})

	reaper := workspace.NewReaper(resolver, registry)
	if err := reaper.Start(); err != nil {
		logger.Warnf("⚠️  Workspace removal watcher disabled: %v", err)
	}
	defer reaper.Stop()

	scheduler, err := startPruner(cfg.PruneSchedule, registry)
	if err != nil {
		return err
	}
	defer scheduler.Stop()

	app := handlers.NewApp(handlers.Dependencies{
		Workspaces:  workspaces,
		Exec:        services.NewExecService(resolver, registry, cfg.ExecTimeout),
		Terminals:   manager,
		FrontendDir: cfg.FrontendDir,
		Context:     ctx,
		AccessLog:   cfg.Dev,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Infof("🛑 Received %s, shutting down", sig)
		cancel()
		manager.Shutdown()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Errorf("❌ Server shutdown failed: %v", err)
		}
	}()

	logger.Infof("🚀 Clouide listening on %s (mode: %s, workspaces: %s)", cfg.Listen, cfg.Mode, cfg.BaseDir)
	if err := app.Listen(cfg.Listen); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}

	return nil
}

// applyFlags overrides configuration with flags the user actually set
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("listen") {
		cfg.Listen = listenAddr
	}
	if flags.Changed("base-dir") {
		cfg.BaseDir = baseDir
	}
	if flags.Changed("frontend-dir") {
		cfg.FrontendDir = frontendDir
	}
	if flags.Changed("dev") {
		cfg.Dev = devMode
	}
}

// startPruner periodically drops registry entries whose process already exited
func startPruner(schedule string, registry *services.ProcessRegistry) (*cron.Cron, error) {
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(schedule, func() { registry.Prune() }); err != nil {
		return nil, fmt.Errorf("invalid prune schedule %q: %w", schedule, err)
	}
	scheduler.Start()
	return scheduler, nil
}
