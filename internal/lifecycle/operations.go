package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/liveplace/botctl/internal/logging"
	"github.com/liveplace/botctl/internal/metrics"
	"github.com/liveplace/botctl/internal/state"
)

// Start brings the service up after its two precondition checks. Both checks
// short-circuit before any mutating command is issued.
func (c *Controller) Start(ctx context.Context) error {
	name := c.cfg.ServiceName

	running, err := c.cli.FindRunning(ctx, name)
	if err != nil {
		return fmt.Errorf("query running containers: %w", err)
	}
	if running != nil {
		metrics.IncStartRefused()
		c.printf("⚠️  %s is already running. Use 'botctl restart' to restart it.\n", name)
		return ErrAlreadyRunning
	}

	envPath := c.envFilePath()
	if _, err := os.Stat(envPath); err != nil {
		if os.IsNotExist(err) {
			metrics.IncStartRefused()
			c.printf("❌ %s not found. Create it from %s before starting.\n", envPath, c.cfg.EnvTemplate)
			return ErrMissingConfig
		}
		return fmt.Errorf("check %s: %w", envPath, err)
	}

	c.printf("🚀 Starting %s...\n", name)
	upCtx, cancel := c.stepContext(ctx)
	defer cancel()
	if err := c.runner.Up(upCtx); err != nil {
		c.recordOutcome(state.OperationRecord{Operation: "start", Outcome: "failure", Error: err.Error(), Timestamp: c.Now()})
		return fmt.Errorf("bring service up: %w", err)
	}

	metrics.IncStart()
	metrics.SetLastOperation(c.Now())
	c.recordOutcome(state.OperationRecord{Operation: "start", Outcome: "success", Timestamp: c.Now()})
	c.printf("✅ %s started.\n", name)
	c.printf("💡 View logs with 'botctl logs', stop with 'botctl stop'.\n")
	return nil
}

// updateStep is one fallible stage of the update pipeline.
type updateStep struct {
	name    string
	message string
	run     func(context.Context) error
}

// Update runs the fixed pipeline {down, pull, build --no-cache, up}. Steps
// execute strictly in order and the pipeline halts on the first failure,
// surfacing which step failed.
func (c *Controller) Update(ctx context.Context) error {
	name := c.cfg.ServiceName
	steps := []updateStep{
		{"down", "⏹  Stopping " + name + "...", c.runner.Down},
		{"pull", "📥 Pulling latest images...", c.runner.Pull},
		{"build", "🔨 Rebuilding image (no cache)...", func(ctx context.Context) error { return c.runner.Build(ctx, true) }},
		{"up", "🚀 Starting " + name + "...", c.runner.Up},
	}

	began := c.Now()
	for _, s := range steps {
		c.printf("%s\n", s.message)
		stepCtx, cancel := c.stepContext(ctx)
		err := s.run(stepCtx)
		cancel()
		if err != nil {
			serr := &StepError{Step: s.name, Err: err}
			logging.Get().Error().Err(err).Str("step", s.name).Msg("update step failed")
			metrics.IncUpdateFailed(s.name)
			c.recordOutcome(state.OperationRecord{Operation: "update", Outcome: "failure", FailedStep: s.name, Error: err.Error(), Timestamp: c.Now()})
			c.printf("❌ Update failed during %q: %v\n", s.name, err)
			c.notifyOutcome(ctx, true, name+" update failed", serr.Error())
			return serr
		}
	}

	metrics.IncUpdate()
	metrics.ObserveUpdateDuration(c.Now().Sub(began).Seconds())
	metrics.SetLastOperation(c.Now())
	c.recordOutcome(state.OperationRecord{Operation: "update", Outcome: "success", Timestamp: c.Now()})
	c.printf("✅ %s updated and restarted.\n", name)
	c.printf("💡 Check it with 'botctl status'.\n")
	c.notifyOutcome(ctx, false, name+" updated", "all update steps completed")
	return nil
}

// CheckUpdate compares the remote registry digest of the configured image
// against what is actually running, without applying anything. The running
// container's image is inspected rather than the local tag: a pulled but not
// yet restarted image must not mask a stale container. When nothing is
// running the local tag is the only thing to compare.
func (c *Controller) CheckUpdate(ctx context.Context) error {
	image := c.cfg.Image
	if image == "" {
		return errors.New("no image configured; set `image` in the config file or BOTCTL_IMAGE")
	}
	if c.Resolver == nil {
		return errors.New("registry checks are not available")
	}

	remoteDigest, err := c.Resolver.RemoteDigest(ctx, image)
	if err != nil {
		return fmt.Errorf("query registry: %w", err)
	}

	running, err := c.cli.FindRunning(ctx, c.cfg.ServiceName)
	if err != nil {
		return fmt.Errorf("query running containers: %w", err)
	}
	ref := image
	if running != nil {
		ref = running.ImageID
	}
	localDigests, err := c.cli.ImageDigests(ctx, ref)
	if err != nil {
		return fmt.Errorf("inspect image %s: %w", ref, err)
	}

	for _, d := range localDigests {
		if strings.HasSuffix(d, "@"+remoteDigest) {
			c.printf("✅ %s is up to date (%s).\n", image, remoteDigest)
			return nil
		}
	}
	if running != nil {
		c.printf("⬆️  Update available for %s: the running container is on an older image (remote digest %s).\n", image, remoteDigest)
	} else {
		c.printf("⬆️  Update available for %s (remote digest %s).\n", image, remoteDigest)
	}
	c.printf("💡 Apply it with 'botctl update'.\n")
	return nil
}

// Status reports whether the service is running and, when it is, its
// health-check state and recent logs. Query order is fixed: list, health,
// logs. A failed runtime query is an error rather than a silent success.
func (c *Controller) Status(ctx context.Context) error {
	metrics.IncStatusCheck()
	name := c.cfg.ServiceName

	running, err := c.cli.FindRunning(ctx, name)
	if err != nil {
		return fmt.Errorf("query running containers: %w", err)
	}
	if running == nil {
		c.printf("⭕ %s is not running. Start it with 'botctl start'.\n", name)
		c.printLastOperation()
		return nil
	}

	c.printf("✅ %s is running (%s).\n", name, running.Status)

	health, err := c.cli.InspectHealth(ctx, running.ID)
	if err != nil {
		return fmt.Errorf("inspect health: %w", err)
	}
	c.printf("🩺 Health: %s\n", health)

	logs, err := c.cli.TailLogs(ctx, running.ID, c.cfg.LogTail)
	if err != nil {
		return fmt.Errorf("tail logs: %w", err)
	}
	c.printf("📋 Last %d log lines:\n", c.cfg.LogTail)
	c.printf("%s", logs)
	if logs != "" && !strings.HasSuffix(logs, "\n") {
		c.printf("\n")
	}

	c.printLastOperation()
	return nil
}

// printLastOperation shows the persisted record of the previous lifecycle
// operation when one exists.
func (c *Controller) printLastOperation() {
	last, err := c.Store.Last()
	if err != nil {
		logging.Get().Warn().Err(err).Msg("failed to read operation record")
		return
	}
	if last == nil {
		return
	}
	if last.Outcome == "success" {
		c.printf("🗒  Last operation: %s succeeded at %s.\n", last.Operation, last.Timestamp.Format("2006-01-02 15:04:05"))
		return
	}
	detail := last.Error
	if last.FailedStep != "" {
		detail = fmt.Sprintf("step %q: %s", last.FailedStep, last.Error)
	}
	c.printf("🗒  Last operation: %s failed at %s (%s).\n", last.Operation, last.Timestamp.Format("2006-01-02 15:04:05"), detail)
}

// Stop brings the composition down.
func (c *Controller) Stop(ctx context.Context) error {
	name := c.cfg.ServiceName
	c.printf("⏹  Stopping %s...\n", name)
	downCtx, cancel := c.stepContext(ctx)
	defer cancel()
	if err := c.runner.Down(downCtx); err != nil {
		c.recordOutcome(state.OperationRecord{Operation: "stop", Outcome: "failure", Error: err.Error(), Timestamp: c.Now()})
		return fmt.Errorf("bring service down: %w", err)
	}
	metrics.SetLastOperation(c.Now())
	c.recordOutcome(state.OperationRecord{Operation: "stop", Outcome: "success", Timestamp: c.Now()})
	c.printf("✅ %s stopped.\n", name)
	return nil
}

// Restart brings the composition down and back up. The env file check still
// applies; the already-running check does not.
func (c *Controller) Restart(ctx context.Context) error {
	name := c.cfg.ServiceName

	envPath := c.envFilePath()
	if _, err := os.Stat(envPath); err != nil {
		if os.IsNotExist(err) {
			c.printf("❌ %s not found. Create it from %s before starting.\n", envPath, c.cfg.EnvTemplate)
			return ErrMissingConfig
		}
		return fmt.Errorf("check %s: %w", envPath, err)
	}

	c.printf("🔄 Restarting %s...\n", name)
	downCtx, cancel := c.stepContext(ctx)
	err := c.runner.Down(downCtx)
	cancel()
	if err != nil {
		c.recordOutcome(state.OperationRecord{Operation: "restart", Outcome: "failure", FailedStep: "down", Error: err.Error(), Timestamp: c.Now()})
		return &StepError{Step: "down", Err: err}
	}
	upCtx, cancel := c.stepContext(ctx)
	err = c.runner.Up(upCtx)
	cancel()
	if err != nil {
		c.recordOutcome(state.OperationRecord{Operation: "restart", Outcome: "failure", FailedStep: "up", Error: err.Error(), Timestamp: c.Now()})
		return &StepError{Step: "up", Err: err}
	}

	metrics.SetLastOperation(c.Now())
	c.recordOutcome(state.OperationRecord{Operation: "restart", Outcome: "success", Timestamp: c.Now()})
	c.printf("✅ %s restarted.\n", name)
	return nil
}

// Logs prints the last n lines of the service container's logs. With follow
// set it keeps streaming until the context is cancelled (Ctrl-C).
func (c *Controller) Logs(ctx context.Context, n int, follow bool) error {
	name := c.cfg.ServiceName
	running, err := c.cli.FindRunning(ctx, name)
	if err != nil {
		return fmt.Errorf("query running containers: %w", err)
	}
	if running == nil {
		c.printf("⭕ %s is not running. Start it with 'botctl start'.\n", name)
		return nil
	}
	if n <= 0 {
		n = c.cfg.LogTail
	}
	if follow {
		return c.cli.StreamLogs(ctx, running.ID, n, c.out)
	}
	logs, err := c.cli.TailLogs(ctx, running.ID, n)
	if err != nil {
		return fmt.Errorf("tail logs: %w", err)
	}
	c.printf("%s", logs)
	if logs != "" && !strings.HasSuffix(logs, "\n") {
		c.printf("\n")
	}
	return nil
}
