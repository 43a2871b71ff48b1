package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/liveplace/botctl/internal/compose"
	"github.com/liveplace/botctl/internal/config"
	"github.com/liveplace/botctl/internal/docker"
	"github.com/liveplace/botctl/internal/lifecycle"
	"github.com/liveplace/botctl/internal/logging"
	"github.com/liveplace/botctl/internal/metrics"
)

// Build-time variables (set via ldflags)
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves configuration with the usual precedence:
// defaults, then file (if provided), then environment overrides.
func loadConfig(cfgFile string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if cfgFile != "" {
		c, err := config.LoadConfigFromFile(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("failed loading config: %w", err)
		}
		cfg = c
	}
	if err := config.ApplyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("invalid environment configuration: %w", err)
	}
	return cfg, nil
}

// initLogging initializes the log subsystem from env and returns a cleanup func.
func initLogging() (func(), error) {
	logLevel := os.Getenv("BOTCTL_LOG_LEVEL")
	logFile := os.Getenv("BOTCTL_LOG_FILE")
	return logging.Init(logFile, logLevel)
}

// initMetrics starts the optional metrics server.
func initMetrics(cfg *config.Config) {
	if !cfg.MetricsEnabled {
		return
	}
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.PromHandler())
		mux.Handle("/status", metrics.JSONHandler())
		addr := fmt.Sprintf(":%d", cfg.MetricsPort)
		logging.Get().Info().Str("addr", addr).Msg("starting metrics server")
		_ = http.ListenAndServe(addr, mux)
	}()
}

// checkDockerSocketAccess verifies the socket exists and is openable for
// read/write. Returns nil if the socket is absent (docker may be remote via
// DOCKER_HOST), nil if accessible, or an error explaining why it isn't.
func checkDockerSocketAccess(path string) error {
	_, err := os.Stat(path)
	if err == nil {
		f, err := os.OpenFile(path, os.O_RDWR, 0)
		if err != nil {
			return err
		}
		_ = f.Close()
		return nil
	}
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// warnOnSocketProblems logs access problems with the local docker socket, a
// common pitfall when running without the docker group.
func warnOnSocketProblems() {
	if err := checkDockerSocketAccess("/var/run/docker.sock"); err != nil {
		if os.IsPermission(err) {
			logging.Get().Warn().Msg("permission denied accessing /var/run/docker.sock: ensure your user is in the docker group")
		} else {
			logging.Get().Warn().Err(err).Msg("problem accessing /var/run/docker.sock; operations may fail")
		}
	}
}

// buildController wires the lifecycle controller with real collaborators.
func buildController(cfg *config.Config) (*lifecycle.Controller, error) {
	warnOnSocketProblems()

	composeCmd, err := compose.DetectCommand()
	if err != nil {
		return nil, err
	}
	runner := compose.NewCLIRunner(composeCmd, cfg.ComposeFile, cfg.ProjectDir, os.Stdout)

	cli, err := docker.NewClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	initMetrics(cfg)

	return lifecycle.New(cfg, runner, cli, os.Stdout), nil
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
