package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// RuntimeMode represents the execution environment
type RuntimeMode string

const (
	// DockerMode indicates running inside a container image with the bundled frontend
	DockerMode RuntimeMode = "docker"
	// NativeMode indicates running on the host system
	NativeMode RuntimeMode = "native"
)

// EnvPrefix is the prefix used for all environment overrides (CLOUIDE_BASE_DIR, ...)
const EnvPrefix = "CLOUIDE"

// Config holds the server configuration. Values are layered: defaults, then an
// optional YAML file, then CLOUIDE_* environment variables, then CLI flags.
type Config struct {
	Mode RuntimeMode `yaml:"-" ignored:"true"`

	BaseDir            string        `yaml:"base_dir" envconfig:"BASE_DIR"`
	Listen             string        `yaml:"listen" envconfig:"LISTEN"`
	Shell              string        `yaml:"shell" envconfig:"TERMINAL_SHELL"`
	MinSessionIDLength int           `yaml:"min_session_id_length" envconfig:"MIN_SESSION_ID_LENGTH"`
	JailInterval       time.Duration `yaml:"jail_interval" envconfig:"JAIL_INTERVAL"`
	ReadChunkSize      int           `yaml:"read_chunk_size" envconfig:"READ_CHUNK_SIZE"`
	FrontendDir        string        `yaml:"frontend_dir" envconfig:"FRONTEND_DIR"`
	CredentialKey      string        `yaml:"credential_key" envconfig:"CREDENTIAL_KEY"`
	ExecTimeout        time.Duration `yaml:"exec_timeout" envconfig:"EXEC_TIMEOUT"`
	PruneSchedule      string        `yaml:"prune_schedule" envconfig:"PRUNE_SCHEDULE"`
	Dev                bool          `yaml:"dev" envconfig:"DEV_MODE"`
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	mode := detectMode()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv("HOME")
		if homeDir == "" {
			homeDir = "."
		}
	}

	cfg := &Config{
		Mode:               mode,
		BaseDir:            filepath.Join(homeDir, "clouide_workspaces"),
		Listen:             ":8000",
		Shell:              defaultShell(),
		MinSessionIDLength: 5,
		JailInterval:       2 * time.Second,
		ReadChunkSize:      4096,
		ExecTimeout:        60 * time.Second,
		PruneSchedule:      "@every 1m",
	}

	switch mode {
	case DockerMode:
		cfg.FrontendDir = "/frontend/dist"
	case NativeMode:
		cfg.FrontendDir = filepath.Join("..", "frontend", "dist")
	}

	return cfg
}

// Load builds the configuration from defaults, the optional YAML file at path
// (ignored when empty) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.BaseDir == "" {
		return fmt.Errorf("base directory must not be empty")
	}
	if c.MinSessionIDLength < 1 {
		return fmt.Errorf("minimum session id length must be positive, got %d", c.MinSessionIDLength)
	}
	if c.JailInterval <= 0 {
		return fmt.Errorf("jail interval must be positive, got %s", c.JailInterval)
	}
	if c.ReadChunkSize <= 0 {
		return fmt.Errorf("read chunk size must be positive, got %d", c.ReadChunkSize)
	}
	if c.Shell == "" {
		return fmt.Errorf("shell must not be empty")
	}
	return nil
}

// Prepare makes BaseDir absolute, creates it and restricts it to the server's own user.
func (c *Config) Prepare() error {
	abs, err := filepath.Abs(c.BaseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base directory: %w", err)
	}
	c.BaseDir = abs

	if err := os.MkdirAll(c.BaseDir, 0700); err != nil {
		return fmt.Errorf("failed to create base directory %s: %w", c.BaseDir, err)
	}
	// MkdirAll leaves an existing directory's mode alone
	if err := os.Chmod(c.BaseDir, 0700); err != nil {
		return fmt.Errorf("failed to restrict base directory %s: %w", c.BaseDir, err)
	}
	return nil
}

// defaultShell prefers bash and falls back to sh on minimal images
func defaultShell() string {
	for _, candidate := range []string{"/bin/bash", "/usr/bin/bash", "/bin/sh"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return "/bin/sh"
}

// detectMode determines if we're running in Docker or natively
func detectMode() RuntimeMode {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return DockerMode
	}

	if data, err := os.ReadFile("/proc/1/cgroup"); err == nil {
		if strings.Contains(string(data), "docker") || strings.Contains(string(data), "containerd") {
			return DockerMode
		}
	}

	if os.Getenv("CLOUIDE_CONTAINER") == "true" {
		return DockerMode
	}

	return NativeMode
}
