package compose

import (
	"context"
	"fmt"
	"io"
	"os/exec"

	"github.com/liveplace/botctl/internal/logging"
)

// CLIRunner implements Runner by shelling out to the compose CLI.
type CLIRunner struct {
	// command is the compose invocation prefix, e.g. {"docker", "compose"}
	// or {"docker-compose"}. Use DetectCommand() to find one.
	command []string
	// file is the compose file passed via -f; empty means the CLI default.
	file string
	// dir is the working directory compose commands run in.
	dir string
	// out receives the streamed stdout/stderr of each command so the
	// operator sees compose progress as the scripts showed it.
	out io.Writer
}

// NewCLIRunner creates a Runner using the given compose invocation.
func NewCLIRunner(command []string, file, dir string, out io.Writer) *CLIRunner {
	return &CLIRunner{command: command, file: file, dir: dir, out: out}
}

// Up brings the composition up detached.
func (r *CLIRunner) Up(ctx context.Context) error {
	return r.run(ctx, "up", "-d")
}

// Down stops and removes the composition.
func (r *CLIRunner) Down(ctx context.Context) error {
	return r.run(ctx, "down")
}

// Pull fetches the latest declared images.
func (r *CLIRunner) Pull(ctx context.Context) error {
	return r.run(ctx, "pull")
}

// Build rebuilds the declared images.
func (r *CLIRunner) Build(ctx context.Context, noCache bool) error {
	if noCache {
		return r.run(ctx, "build", "--no-cache")
	}
	return r.run(ctx, "build")
}

func (r *CLIRunner) run(ctx context.Context, args ...string) error {
	full := append([]string{}, r.command[1:]...)
	if r.file != "" {
		full = append(full, "-f", r.file)
	}
	full = append(full, args...)

	logging.Get().Debug().Str("bin", r.command[0]).Strs("args", full).Msg("running compose command")

	cmd := exec.CommandContext(ctx, r.command[0], full...)
	cmd.Dir = r.dir
	cmd.Stdout = r.out
	cmd.Stderr = r.out
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("compose %s: %w", args[0], ctx.Err())
		}
		return fmt.Errorf("compose %s: %w", args[0], err)
	}
	return nil
}

// Verify CLIRunner implements Runner
var _ Runner = (*CLIRunner)(nil)
