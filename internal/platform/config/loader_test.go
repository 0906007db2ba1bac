package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoaderDefaultsWhenFileMissing(t *testing.T) {
	loader := NewLoader().
		WithDotEnv(false).
		WithPath(filepath.Join(t.TempDir(), "missing.yaml"))

	result, err := loader.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if result.Path != "" {
		t.Fatalf("expected empty path for defaults, got %q", result.Path)
	}

	cfg := result.Config
	if cfg.Token.BaudRate != 9600 {
		t.Errorf("unexpected default baud rate: %d", cfg.Token.BaudRate)
	}
	if cfg.Biometric.CoeffCount != 20 {
		t.Errorf("unexpected default coeff count: %d", cfg.Biometric.CoeffCount)
	}

	profile := cfg.Profile()
	if profile.MatchThreshold != 115 {
		t.Errorf("expected en profile threshold 115, got %v", profile.MatchThreshold)
	}
}

func TestLoaderFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
selected:
  profile: tr
token:
  port_name: /dev/ttyUSB0
  codes:
    "12345": ayse
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	result, err := NewLoader().WithDotEnv(false).WithPath(path).Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	cfg := result.Config
	if cfg.Token.PortName != "/dev/ttyUSB0" {
		t.Errorf("port override lost: %q", cfg.Token.PortName)
	}
	if cfg.Token.Codes["12345"] != "ayse" {
		t.Errorf("codes not merged: %v", cfg.Token.Codes)
	}
	if got := cfg.Profile().MatchThreshold; got != 110 {
		t.Errorf("expected tr profile threshold 110, got %v", got)
	}
}

func TestLoaderRejectsUnknownProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("selected:\n  profile: de\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := NewLoader().WithDotEnv(false).WithPath(path).Load(); err == nil {
		t.Fatal("expected error for undefined profile")
	}
}

func TestProfilePromptFallback(t *testing.T) {
	p := LocaleProfile{Prompts: map[string]string{"known": "text"}}
	if p.Prompt("known") != "text" {
		t.Error("known prompt not returned")
	}
	if p.Prompt("missing_key") != "missing_key" {
		t.Error("missing prompt should fall back to its key")
	}
}
