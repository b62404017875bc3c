package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadOrCreateWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not created: %v", err)
	}

	if len(cfg.Trees) != 2 {
		t.Fatalf("expected 2 default trees, got %d", len(cfg.Trees))
	}

	reloaded, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(reloaded.Trees) != len(cfg.Trees) {
		t.Errorf("trees changed on reload: got %d, want %d", len(reloaded.Trees), len(cfg.Trees))
	}
	if reloaded.Install.BufferSize != cfg.Install.BufferSize {
		t.Errorf("buffer_size = %d, want %d", reloaded.Install.BufferSize, cfg.Install.BufferSize)
	}
}

func TestLoadOrCreateReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `runtime_dir = "` + filepath.ToSlash(filepath.Join(dir, "lo")) + `"
required_files = []

[install]
source = "/srv/bundles/runtime.zip"
marker = ".done"
empty_dirs = "fail"

[[trees]]
root = "program"
dest = "program"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}

	if cfg.Install.Marker != ".done" {
		t.Errorf("marker = %q, want .done", cfg.Install.Marker)
	}
	if cfg.Install.EmptyDirs != "fail" {
		t.Errorf("empty_dirs = %q, want fail", cfg.Install.EmptyDirs)
	}
	if len(cfg.Trees) != 1 || cfg.Trees[0].Root != "program" {
		t.Errorf("unexpected trees: %+v", cfg.Trees)
	}
	if len(cfg.RequiredFiles) != 0 {
		t.Errorf("expected no required files, got %v", cfg.RequiredFiles)
	}
	if cfg.Install.BufferSize != Default().Install.BufferSize {
		t.Errorf("buffer_size default not kept: %d", cfg.Install.BufferSize)
	}
}

func TestLoadOrCreateDerivesRuntimeDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	dataDir := filepath.Join(dir, "data")

	content := "data_dir = \"" + filepath.ToSlash(dataDir) + "\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}

	if want := filepath.Join(dataDir, "lo"); cfg.RuntimeDir != want {
		t.Errorf("runtime_dir = %q, want %q", cfg.RuntimeDir, want)
	}
}

func TestLoadOrCreateRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown empty dir policy",
			content: "[install]\nempty_dirs = \"skip\"\n",
			wantErr: "empty dir policy",
		},
		{
			name:    "marker with separator",
			content: "[install]\nmarker = \"a/b\"\n",
			wantErr: "marker must be a file name",
		},
		{
			name:    "dest escaping runtime dir",
			content: "[[trees]]\nroot = \"program\"\ndest = \"../program\"\n",
			wantErr: "must stay inside runtime_dir",
		},
		{
			name:    "duplicate dest",
			content: "[[trees]]\nroot = \"a\"\ndest = \"x\"\n\n[[trees]]\nroot = \"b\"\ndest = \"x\"\n",
			wantErr: "listed twice",
		},
		{
			name:    "malformed toml",
			content: "[install\n",
			wantErr: "parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}

			_, err := LoadOrCreate(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadLogConfigFromEnv(t *testing.T) {
	t.Setenv("LORUNTIME_LOG_LEVEL", " DEBUG ")
	t.Setenv("LORUNTIME_LOG_TIMESTAMPS", "0")

	cfg := LoadLogConfigFromEnv(Default().Log)
	if cfg.Level != "debug" {
		t.Errorf("level = %q, want debug", cfg.Level)
	}
	if cfg.Timestamps {
		t.Error("timestamps should be disabled")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		t.Skip("no home directory")
	}

	if got := expandPath("~/lo"); got != filepath.Join(home, "lo") {
		t.Errorf("expandPath(~/lo) = %q", got)
	}
	if got := expandPath("/abs/path"); got != "/abs/path" {
		t.Errorf("expandPath(/abs/path) = %q", got)
	}
	if got := expandPath(""); got != "" {
		t.Errorf("expandPath(\"\") = %q", got)
	}
}
