package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/liveplace/botctl/internal/config"
)

func TestDefaultConfig(t *testing.T) {
	c := config.DefaultConfig()
	if c.ServiceName != "telegram-bot" {
		t.Fatalf("expected default service name telegram-bot, got %q", c.ServiceName)
	}
	if c.ComposeFile == "" || c.EnvFile == "" {
		t.Fatal("expected default compose and env file paths to be set")
	}
	if c.LogTail != 10 {
		t.Fatalf("expected default log tail of 10, got %d", c.LogTail)
	}
	if c.StepTimeout < time.Minute {
		t.Fatalf("unrealistic step timeout: %v", c.StepTimeout)
	}
}

func TestValidateWarnings(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.TelegramToken = "tok"
	// missing chat id
	if w := cfg.Validate(); len(w) == 0 {
		t.Fatal("expected warning for telegram token without chat id, got none")
	}

	cfg2 := config.DefaultConfig()
	cfg2.TelegramChatID = "42"
	if w := cfg2.Validate(); len(w) == 0 {
		t.Fatal("expected warning for chat id without token, got none")
	}

	cfg3 := config.DefaultConfig()
	cfg3.LogTail = 0
	cfg3.NotificationLevel = "loud"
	w := cfg3.Validate()
	if len(w) != 2 {
		t.Fatalf("expected two warnings, got %v", w)
	}
}

func TestNormalizeClampsBadValues(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LogTail = -3
	cfg.StepTimeout = 0
	cfg.Normalize()
	if cfg.LogTail != 10 {
		t.Fatalf("expected log tail clamped to 10, got %d", cfg.LogTail)
	}
	if cfg.StepTimeout != 10*time.Minute {
		t.Fatalf("expected step timeout clamped to 10m, got %v", cfg.StepTimeout)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "botctl.yaml")
	body := []byte("service_name: liveplace-bot\nlog_tail: 25\nstep_timeout: 3m\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.LoadConfigFromFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFromFile failed: %v", err)
	}
	if cfg.ServiceName != "liveplace-bot" {
		t.Fatalf("expected service name from file, got %q", cfg.ServiceName)
	}
	if cfg.LogTail != 25 {
		t.Fatalf("expected log tail 25, got %d", cfg.LogTail)
	}
	if cfg.StepTimeout != 3*time.Minute {
		t.Fatalf("expected step timeout 3m, got %v", cfg.StepTimeout)
	}
	// fields absent from the file keep their defaults
	if cfg.EnvFile != ".env" {
		t.Fatalf("expected default env file, got %q", cfg.EnvFile)
	}
}

func TestLoadConfigFromFileMissing(t *testing.T) {
	if _, err := config.LoadConfigFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
