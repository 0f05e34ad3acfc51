// Package config loads vmmv settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/cuemby/vmmv/pkg/catalog"
	"github.com/cuemby/vmmv/pkg/journal"
	"github.com/cuemby/vmmv/pkg/registry"
	"github.com/cuemby/vmmv/pkg/unit"
	"github.com/cuemby/vmmv/pkg/volume"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given
const DefaultPath = "/etc/vmmv/config.yaml"

// DefaultNodeRoot is the cluster filesystem mount of a node
const DefaultNodeRoot = "/etc/pve"

// Config holds every path and tool the migration touches
type Config struct {
	NodeRoot        string          `yaml:"node_root"`
	StorageCatalog  string          `yaml:"storage_catalog"`
	QemuDir         string          `yaml:"qemu_dir"`
	LXCDir          string          `yaml:"lxc_dir"`
	PoolRegistry    string          `yaml:"pool_registry"`
	JobRegistry     string          `yaml:"job_registry"`
	FirewallDir     string          `yaml:"firewall_dir"`
	JournalPath     string          `yaml:"journal_path"`
	MetricsTextfile string          `yaml:"metrics_textfile"`
	Commands        volume.Commands `yaml:"commands"`
	CommandTimeout  time.Duration   `yaml:"command_timeout"`
	VerifyRenames   bool            `yaml:"verify_renames"`
	Log             LogConfig       `yaml:"log"`
}

// LogConfig selects log level and format
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Default returns the settings for a standard node
func Default() *Config {
	return &Config{
		NodeRoot:       DefaultNodeRoot,
		StorageCatalog: catalog.DefaultPath,
		QemuDir:        unit.DefaultQemuDir,
		LXCDir:         unit.DefaultLXCDir,
		PoolRegistry:   registry.DefaultPoolPath,
		JobRegistry:    registry.DefaultJobPath,
		FirewallDir:    unit.DefaultFirewallDir,
		JournalPath:    journal.DefaultPath,
		Commands:       volume.DefaultCommands(),
		VerifyRenames:  true,
		Log:            LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects empty paths and negative timeouts
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"node_root", c.NodeRoot},
		{"storage_catalog", c.StorageCatalog},
		{"qemu_dir", c.QemuDir},
		{"lxc_dir", c.LXCDir},
		{"pool_registry", c.PoolRegistry},
		{"job_registry", c.JobRegistry},
		{"firewall_dir", c.FirewallDir},
		{"journal_path", c.JournalPath},
		{"commands.lvs", c.Commands.LVS},
		{"commands.lvrename", c.Commands.LVRename},
		{"commands.zfs", c.Commands.ZFS},
	}
	for _, f := range required {
		if f.value == "" {
			return fmt.Errorf("config: %s must not be empty", f.name)
		}
	}
	if c.CommandTimeout < 0 {
		return fmt.Errorf("config: command_timeout must not be negative")
	}
	return nil
}
