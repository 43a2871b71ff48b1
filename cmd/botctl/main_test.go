package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRootCommandHasLifecycleSubcommands(t *testing.T) {
	root := newRootCmd()
	want := map[string]bool{
		"start":   false,
		"stop":    false,
		"restart": false,
		"update":  false,
		"status":  false,
		"logs":    false,
		"version": false,
	}
	for _, c := range root.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out.String(), "botctl") {
		t.Errorf("unexpected version output: %q", out.String())
	}
}

func TestLoadConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "botctl.yaml")
	if err := os.WriteFile(path, []byte("service_name: from-file\nlog_tail: 7\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	// env overrides file
	t.Setenv("BOTCTL_SERVICE_NAME", "from-env")

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.ServiceName != "from-env" {
		t.Fatalf("expected env to override file, got %q", cfg.ServiceName)
	}
	if cfg.LogTail != 7 {
		t.Fatalf("expected file value for log_tail, got %d", cfg.LogTail)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestCheckDockerSocketAccessMissingSocket(t *testing.T) {
	// A missing socket is not an error; docker may be remote via DOCKER_HOST.
	if err := checkDockerSocketAccess(filepath.Join(t.TempDir(), "docker.sock")); err != nil {
		t.Fatalf("expected nil for absent socket, got %v", err)
	}
}
