package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"basehive"
)

// DefaultDaemonPath is where basehived looks for its config file.
const DefaultDaemonPath = "/etc/basehive/config.yaml"

// Daemon holds the basehived settings: where project data lives, how
// containers are created, and how the HTTP API is served.
type Daemon struct {
	// DataRoot is the directory holding the catalog, the vault, and
	// per-project data directories.
	DataRoot string `yaml:"data-root"`
	// BackupRoot is the directory holding per-project backup archives.
	BackupRoot string `yaml:"backup-root"`

	// BaseDomain is the suffix for per-project domains. The default
	// "localhost" disables HTTPS URL resolution.
	BaseDomain string `yaml:"base-domain"`
	// Image is the database image run for every project.
	Image string `yaml:"image"`
	// Network is the name of the isolated bridge network for managed
	// containers.
	Network string `yaml:"network"`
	// BasePort is the lowest host port handed out to projects.
	BasePort int `yaml:"base-port"`

	// Listen is the HTTP API bind address.
	Listen string `yaml:"listen"`
	// AuthSecret signs and verifies API bearer tokens. Empty disables
	// authentication (local development only).
	AuthSecret string `yaml:"auth-secret"`

	// BootstrapAttempts bounds the in-container admin bootstrap polling
	// loop; BootstrapDelay is the fixed pause between attempts.
	BootstrapAttempts int      `yaml:"bootstrap-attempts"`
	BootstrapDelay    Duration `yaml:"bootstrap-delay"`

	// Defaults are the project config values merged under per-project
	// overrides.
	Defaults basehive.ProjectConfig `yaml:"defaults"`

	LogLevel string `yaml:"log-level"`
}

// DefaultDaemon returns the daemon settings used when no config file or
// field is present.
func DefaultDaemon() Daemon {
	return Daemon{
		DataRoot:          "/var/lib/basehive",
		BackupRoot:        "/var/lib/basehive/backups",
		BaseDomain:        "localhost",
		Image:             "ghcr.io/muchobien/pocketbase:latest",
		Network:           "basehive",
		BasePort:          8090,
		Listen:            "127.0.0.1:8085",
		BootstrapAttempts: 10,
		BootstrapDelay:    Duration(3 * time.Second),
		Defaults: basehive.ProjectConfig{
			MemoryLimit: "256m",
			CPULimit:    "0.5",
		},
		LogLevel: "info",
	}
}

// LoadDaemon reads daemon settings from path, filling unset fields with
// defaults. A missing file yields the defaults (not an error).
func LoadDaemon(path string) (Daemon, error) {
	cfg := DefaultDaemon()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Daemon{}, fmt.Errorf("read daemon config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Daemon{}, fmt.Errorf("parse daemon config: %w", err)
	}
	return cfg, nil
}
