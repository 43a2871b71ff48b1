package compose

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestCLIRunnerImplementsRunner(t *testing.T) {
	var _ Runner = (*CLIRunner)(nil)
}

func TestCLIRunnerArgumentOrder(t *testing.T) {
	// Substitute echo for the compose binary so the exact argument list the
	// runner builds shows up on stdout.
	var out bytes.Buffer
	r := NewCLIRunner([]string{"echo"}, "docker-compose.yml", ".", &out)

	cases := []struct {
		name string
		call func(context.Context) error
		want string
	}{
		{"up", r.Up, "-f docker-compose.yml up -d"},
		{"down", r.Down, "-f docker-compose.yml down"},
		{"pull", r.Pull, "-f docker-compose.yml pull"},
		{"build no-cache", func(ctx context.Context) error { return r.Build(ctx, true) }, "-f docker-compose.yml build --no-cache"},
		{"build cached", func(ctx context.Context) error { return r.Build(ctx, false) }, "-f docker-compose.yml build"},
	}
	for _, tc := range cases {
		out.Reset()
		if err := tc.call(context.Background()); err != nil {
			t.Fatalf("%s failed: %v", tc.name, err)
		}
		got := strings.TrimSpace(out.String())
		if got != tc.want {
			t.Errorf("%s: expected args %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestCLIRunnerOmitsFileFlagWhenUnset(t *testing.T) {
	var out bytes.Buffer
	r := NewCLIRunner([]string{"echo"}, "", ".", &out)
	if err := r.Down(context.Background()); err != nil {
		t.Fatalf("down failed: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "down" {
		t.Errorf("expected bare down, got %q", got)
	}
}

func TestCLIRunnerSurfacesFailure(t *testing.T) {
	var out bytes.Buffer
	r := NewCLIRunner([]string{"false"}, "", ".", &out)
	err := r.Up(context.Background())
	if err == nil {
		t.Fatal("expected error from failing command")
	}
	if !strings.Contains(err.Error(), "compose up") {
		t.Errorf("expected error to name the operation, got %v", err)
	}
}

func TestCLIRunnerHonorsContextCancellation(t *testing.T) {
	var out bytes.Buffer
	r := NewCLIRunner([]string{"sh", "-c", "sleep 10"}, "", ".", &out)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := r.Down(ctx)
	if err == nil {
		t.Fatal("expected error from canceled command")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline error, got %v", err)
	}
}
