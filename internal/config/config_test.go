package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

// TestDefaults verifies the zero-config behavior
func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.MaxPathBytes != DefaultMaxPathBytes {
		t.Errorf("MaxPathBytes = %d, expected %d", cfg.MaxPathBytes, DefaultMaxPathBytes)
	}
	if cfg.Logging.RotationDays != 30 {
		t.Errorf("RotationDays = %d, expected 30", cfg.Logging.RotationDays)
	}
	if cfg.JournalEnabled() {
		t.Error("Journal should be disabled by default")
	}
	if cfg.TrashDir != "" || cfg.Metrics.TextfilePath != "" || cfg.Logging.File != "" {
		t.Errorf("Optional paths should be empty by default: %+v", cfg)
	}
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
max_path_bytes: 512
protected_paths:
  - /srv/data/
  - /opt/keep
trash_dir: /tmp/trash/../trash
database_path: /var/lib/recycle/journal.db
logging:
  file: /var/log/recycle.log
  rotation_days: 7
  verbose: true
metrics:
  textfile_path: /var/lib/node_exporter/recycle.prom
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.MaxPathBytes != 512 {
		t.Errorf("MaxPathBytes = %d, expected 512", cfg.MaxPathBytes)
	}
	if len(cfg.ProtectedPaths) != 2 || cfg.ProtectedPaths[0] != "/srv/data" {
		t.Errorf("ProtectedPaths not cleaned: %v", cfg.ProtectedPaths)
	}
	if cfg.TrashDir != "/tmp/trash" {
		t.Errorf("TrashDir = %s, expected /tmp/trash", cfg.TrashDir)
	}
	if !cfg.JournalEnabled() {
		t.Error("Journal should be enabled")
	}
	if cfg.Logging.RotationDays != 7 || !cfg.Logging.Verbose {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.Metrics.TextfilePath != "/var/lib/node_exporter/recycle.prom" {
		t.Errorf("TextfilePath = %s", cfg.Metrics.TextfilePath)
	}
}

func TestLoadEmptyFileUsesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.MaxPathBytes != DefaultMaxPathBytes {
		t.Errorf("MaxPathBytes = %d, expected %d", cfg.MaxPathBytes, DefaultMaxPathBytes)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected error
		contains string
	}{
		{"negative max path", "max_path_bytes: -1\n", errNegativeMaxPath, ""},
		{"negative rotation", "logging:\n  rotation_days: -3\n", errNegativeDays, ""},
		{"relative protected path", "protected_paths: [data]\n", errInvalidPath, "protected_paths"},
		{"relative database", "database_path: journal.db\n", errInvalidPath, "database_path"},
		{"relative textfile", "metrics:\n  textfile_path: out.prom\n", errInvalidPath, "metrics.textfile_path"},
		{"unknown key", "max_path: 10\n", nil, "decode yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.expected != nil && !errors.Is(err, tt.expected) {
				t.Errorf("error = %v, expected %v", err, tt.expected)
			}
			if tt.contains != "" && !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error %q should mention %q", err, tt.contains)
			}
		})
	}
}

func TestLoadOptional(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.yaml")

	cfg, err := LoadOptional(missing, false)
	if err != nil {
		t.Fatalf("implicit missing config should fall back to defaults: %v", err)
	}
	if cfg.MaxPathBytes != DefaultMaxPathBytes {
		t.Errorf("MaxPathBytes = %d, expected default", cfg.MaxPathBytes)
	}

	if _, err := LoadOptional(missing, true); err == nil {
		t.Error("explicit missing config should fail")
	}

	cfg, err = LoadOptional("", false)
	if err != nil || cfg == nil {
		t.Errorf("empty path should return defaults, got %v, %v", cfg, err)
	}

	cfg, err = LoadOptional(writeConfig(t, "max_path_bytes: 64\n"), false)
	if err != nil {
		t.Fatalf("LoadOptional failed: %v", err)
	}
	if cfg.MaxPathBytes != 64 {
		t.Errorf("MaxPathBytes = %d, expected 64", cfg.MaxPathBytes)
	}
}
