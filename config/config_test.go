package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "comix.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"COMIX_PORT", "COMIX_DIRECTORY", "COMIX_ENV", "COMIX_LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func TestLoadBasics(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[basics]
port = 8080
directory = "/srv/comics"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Basics.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Basics.Port)
	}
	if cfg.Basics.Directory != "/srv/comics" {
		t.Errorf("Directory = %q, want /srv/comics", cfg.Basics.Directory)
	}

	defaults := Default()
	if cfg.Storage.Path != defaults.Storage.Path {
		t.Errorf("Storage.Path = %q, want default %q", cfg.Storage.Path, defaults.Storage.Path)
	}
	if cfg.Template.Path != "template.html" {
		t.Errorf("Template.Path = %q, want template.html", cfg.Template.Path)
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true, want false by default")
	}
}

func TestLoadOptionalSections(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[basics]
port = "9000"
directory = 'C:\Comics\Marvel'

[server]
host = "127.0.0.1"
env = "development"

[storage]
path = "/tmp/comix"
cache_size = 32
extract_workers = 2

[logging]
level = "debug"
file = "comix.log"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Basics.Port != 9000 {
		t.Errorf("Port = %d, want 9000 from a quoted value", cfg.Basics.Port)
	}
	if cfg.Basics.Directory != "C:/Comics/Marvel" {
		t.Errorf("Directory = %q, want backslashes replaced", cfg.Basics.Directory)
	}
	if cfg.Server.Host != "127.0.0.1" || !cfg.IsDevelopment() {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Storage.CacheSize != 32 || cfg.Storage.ExtractWorkers != 2 {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Logging.File != "comix.log" {
		t.Errorf("Logging.File = %q, want comix.log", cfg.Logging.File)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
[basics]
port = 8080
directory = "/srv/comics"
`)
	t.Setenv("COMIX_PORT", "8181")
	t.Setenv("COMIX_DIRECTORY", "/mnt/comics")
	t.Setenv("COMIX_ENV", "development")
	t.Setenv("COMIX_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Basics.Port != 8181 {
		t.Errorf("Port = %d, want 8181", cfg.Basics.Port)
	}
	if cfg.Basics.Directory != "/mnt/comics" {
		t.Errorf("Directory = %q, want /mnt/comics", cfg.Basics.Directory)
	}
	if !cfg.IsDevelopment() {
		t.Error("IsDevelopment() = false, want true")
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name    string
		content string
		wantErr error
		wantMsg string
	}{
		{
			name:    "non-numeric port",
			content: "[basics]\nport = \"eighty\"\ndirectory = \"/srv\"\n",
			wantErr: ErrInvalidPort,
		},
		{
			name:    "float port",
			content: "[basics]\nport = 80.5\ndirectory = \"/srv\"\n",
			wantErr: ErrInvalidPort,
		},
		{
			name:    "missing port",
			content: "[basics]\ndirectory = \"/srv\"\n",
			wantMsg: "basics.port",
		},
		{
			name:    "missing directory",
			content: "[basics]\nport = 8080\n",
			wantMsg: "basics.directory",
		},
		{
			name:    "port out of range",
			content: "[basics]\nport = 70000\ndirectory = \"/srv\"\n",
			wantMsg: "between 1 and 65535",
		},
		{
			name:    "negative cache size",
			content: "[basics]\nport = 8080\ndirectory = \"/srv\"\n[storage]\ncache_size = -1\n",
			wantMsg: "storage.cache_size",
		},
		{
			name:    "malformed toml",
			content: "[basics\nport = 8080\n",
			wantMsg: "parse config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Load() succeeded, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Load() error = %v, want it to mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestLoadInvalidPortEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "[basics]\nport = 8080\ndirectory = \"/srv\"\n")
	t.Setenv("COMIX_PORT", "http")

	if _, err := Load(path); !errors.Is(err, ErrInvalidPort) {
		t.Errorf("Load() error = %v, want ErrInvalidPort", err)
	}
}
