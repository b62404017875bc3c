package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/opjh/loruntime/internal/installer"
)

type InstallConfig struct {
	Source       string `toml:"source"`
	Marker       string `toml:"marker"`
	BufferSize   int    `toml:"buffer_size"`
	EmptyDirs    string `toml:"empty_dirs"`
	SkipExisting bool   `toml:"skip_existing"`
}

// TreeConfig maps a root in the source bundle to a directory under the runtime root.
type TreeConfig struct {
	Root string `toml:"root"`
	Dest string `toml:"dest"`
}

type BootstrapConfig struct {
	WriteRC        bool `toml:"write_rc"`
	Logo           bool `toml:"logo"`
	NativeProgress bool `toml:"native_progress"`
}

type LogConfig struct {
	Level      string `toml:"level"`
	Timestamps bool   `toml:"timestamps"`
}

type Config struct {
	DataDir       string          `toml:"data_dir"`
	RuntimeDir    string          `toml:"runtime_dir"`
	Install       InstallConfig   `toml:"install"`
	Trees         []TreeConfig    `toml:"trees"`
	RequiredFiles []string        `toml:"required_files"`
	Bootstrap     BootstrapConfig `toml:"bootstrap"`
	Log           LogConfig       `toml:"log"`
}

func Default() Config {
	dataDir := defaultDataDir()
	return Config{
		DataDir:    dataDir,
		RuntimeDir: filepath.Join(dataDir, "lo"),
		Install: InstallConfig{
			Source:     "embedded",
			Marker:     installer.DefaultMarker,
			BufferSize: installer.DefaultBufferSize,
			EmptyDirs:  installer.EmptyDirCreate.String(),
		},
		Trees: []TreeConfig{
			{Root: "program", Dest: "program"},
			{Root: "share", Dest: "share"},
		},
		RequiredFiles: []string{
			"program/fundamentalrc",
			"share/registry/writer.xcd",
		},
		Bootstrap: BootstrapConfig{
			WriteRC:        true,
			Logo:           true,
			NativeProgress: true,
		},
		Log: LogConfig{
			Level:      "info",
			Timestamps: true,
		},
	}
}

// DefaultPath is where the config file lives when no --config is given.
func DefaultPath() string {
	return filepath.Join(Default().DataDir, "config.toml")
}

func LoadOrCreate(path string) (Config, error) {
	config := Default()

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			if err := Save(path, config); err != nil {
				return config, err
			}
			return config, nil
		}

		return config, err
	}

	configData, err := os.ReadFile(path)
	if err != nil {
		return config, err
	}

	// Array tables append to existing slices, so defaults are applied after decoding.
	config.Trees = nil
	config.RequiredFiles = nil
	config.RuntimeDir = ""

	if err := toml.Unmarshal(configData, &config); err != nil {
		return config, fmt.Errorf("parse %s: %w", path, err)
	}

	if len(config.Trees) == 0 {
		config.Trees = Default().Trees
	}
	if config.RequiredFiles == nil {
		config.RequiredFiles = Default().RequiredFiles
	}

	config.DataDir = expandPath(config.DataDir)
	config.RuntimeDir = expandPath(config.RuntimeDir)
	if config.RuntimeDir == "" {
		config.RuntimeDir = filepath.Join(config.DataDir, "lo")
	}
	config.Install.Source = expandPath(strings.TrimSpace(config.Install.Source))

	if err := config.Validate(); err != nil {
		return config, err
	}

	return config, nil
}

func Save(path string, config Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	configData, err := toml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(path, configData, 0o644)
}

func (c Config) Validate() error {
	if c.RuntimeDir == "" {
		return errors.New("runtime_dir is required")
	}

	if c.Install.BufferSize < 0 {
		return fmt.Errorf("buffer_size must not be negative, got %d", c.Install.BufferSize)
	}

	if _, err := installer.ParseEmptyDirPolicy(c.Install.EmptyDirs); err != nil {
		return err
	}

	if strings.ContainsAny(c.Install.Marker, `/\`) {
		return fmt.Errorf("marker must be a file name, got %q", c.Install.Marker)
	}

	if len(c.Trees) == 0 {
		return errors.New("at least one [[trees]] entry is required")
	}

	seen := make(map[string]bool)
	for _, tree := range c.Trees {
		if strings.TrimSpace(tree.Root) == "" {
			return errors.New("tree root is required")
		}
		dest := filepath.Clean(tree.Dest)
		if filepath.IsAbs(dest) || dest == ".." || strings.HasPrefix(dest, ".."+string(filepath.Separator)) {
			return fmt.Errorf("tree dest %q must stay inside runtime_dir", tree.Dest)
		}
		if seen[dest] {
			return fmt.Errorf("tree dest %q listed twice", tree.Dest)
		}
		seen[dest] = true
	}

	return nil
}

func defaultDataDir() string {
	homeDir, _ := os.UserHomeDir()

	if homeDir == "" {
		return ".loruntime"
	}

	return filepath.Join(homeDir, ".loruntime")
}

func expandPath(path string) string {
	if path == "" {
		return ""
	}

	if strings.HasPrefix(path, "~") {
		homeDir, _ := os.UserHomeDir()

		if homeDir != "" {
			trimmed := strings.TrimPrefix(path, "~")
			trimmed = strings.TrimPrefix(trimmed, string(os.PathSeparator))

			return filepath.Join(homeDir, trimmed)
		}
	}

	return path
}
