// Package lifecycle implements the botctl lifecycle controller: fixed
// sequences of container-runtime commands with precondition checks, reported
// through exit codes and short status lines.
package lifecycle

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/liveplace/botctl/internal/compose"
	"github.com/liveplace/botctl/internal/config"
	"github.com/liveplace/botctl/internal/docker"
	"github.com/liveplace/botctl/internal/logging"
	"github.com/liveplace/botctl/internal/notify"
	"github.com/liveplace/botctl/internal/registry"
	"github.com/liveplace/botctl/internal/state"
)

// DigestResolver resolves the digest a registry currently serves for an
// image reference. Satisfied by registry.Checker; substituted in tests.
type DigestResolver interface {
	RemoteDigest(ctx context.Context, image string) (string, error)
}

// Controller sequences external runtime commands for the bot service. All
// mutation goes through the compose runner; the docker client is used for
// read-only observations only.
type Controller struct {
	cfg    *config.Config
	runner compose.Runner
	cli    docker.Client
	out    io.Writer

	// Store persists the last-operation record shown by status.
	Store *state.Store
	// Resolver backs `update --check`; nil disables the check.
	Resolver DigestResolver
	// Now is an injectable clock for testing.
	Now func() time.Time

	notifier *notify.MultiNotifier
}

// New creates a controller with injected collaborators. Status lines for the
// operator are written to out.
func New(cfg *config.Config, runner compose.Runner, cli docker.Client, out io.Writer) *Controller {
	c := &Controller{
		cfg:      cfg,
		runner:   runner,
		cli:      cli,
		out:      out,
		Store:    state.NewStore(cfg.StateDir),
		Resolver: registry.NewChecker(),
		Now:      time.Now,
	}
	c.initNotifiers()

	for _, w := range cfg.Validate() {
		logging.Get().Warn().Str("warning", w).Msg("config validation")
	}
	cfg.Normalize()

	return c
}

// initNotifiers wires up all notification services configured for the
// deployment.
func (c *Controller) initNotifiers() {
	c.notifier = notify.NewMultiNotifier()
	cfg := c.cfg
	entries := []struct {
		enabled bool
		add     func()
	}{
		{cfg.TelegramToken != "" && cfg.TelegramChatID != "", func() {
			c.notifier.Add(&notify.Telegram{BotToken: cfg.TelegramToken, ChatID: cfg.TelegramChatID})
		}},
		{cfg.SlackWebhook != "", func() { c.notifier.Add(&notify.Slack{WebhookURL: cfg.SlackWebhook}) }},
		{cfg.GenericWebhookURL != "", func() { c.notifier.Add(&notify.Generic{WebhookURL: cfg.GenericWebhookURL}) }},
	}
	for _, e := range entries {
		if e.enabled {
			e.add()
		}
	}
}

// printf writes a user-facing status line.
func (c *Controller) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format, args...)
}

// envFilePath resolves the env marker relative to the project dir.
func (c *Controller) envFilePath() string {
	if filepath.IsAbs(c.cfg.EnvFile) {
		return c.cfg.EnvFile
	}
	return filepath.Join(c.cfg.ProjectDir, c.cfg.EnvFile)
}

// stepContext bounds a single external command with the configured timeout.
func (c *Controller) stepContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.cfg.StepTimeout)
}

// recordOutcome persists the last-operation record; persistence failures are
// logged, never fatal.
func (c *Controller) recordOutcome(r state.OperationRecord) {
	if err := c.Store.Record(r); err != nil {
		logging.Get().Warn().Err(err).Str("operation", r.Operation).Msg("failed to persist operation record")
	}
}

// notifyOutcome sends a notification respecting the configured level, then
// waits briefly for delivery so short-lived CLI runs do not drop sends.
func (c *Controller) notifyOutcome(ctx context.Context, failed bool, title, message string) {
	switch c.cfg.NotificationLevel {
	case "none":
		return
	case "failure":
		if !failed {
			return
		}
	}
	c.notifier.Send(ctx, title, message)
	waitCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := c.notifier.Wait(waitCtx); err != nil {
		logging.Get().Warn().Err(err).Msg("timed out waiting for notifications")
	}
}
