package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ApplyEnvOverrides reads configuration values from environment variables and
// overrides fields in the provided Config. Returns an error if parsing fails.
//
// Environment variables supported:
// - BOTCTL_SERVICE_NAME (string, e.g. "telegram-bot")
// - BOTCTL_COMPOSE_FILE (string, path to compose file)
// - BOTCTL_PROJECT_DIR (string, directory compose commands run in)
// - BOTCTL_ENV_FILE (string, path to the env marker file)
// - BOTCTL_IMAGE (string, image reference for update --check)
// - BOTCTL_LOG_TAIL (int, trailing log lines shown by status)
// - BOTCTL_STEP_TIMEOUT (duration, e.g. "10m")
// - BOTCTL_NOTIFICATION_LEVEL ("all", "failure", "none")
// - BOTCTL_TELEGRAM_TOKEN / BOTCTL_TELEGRAM_CHAT_ID
// - BOTCTL_SLACK_WEBHOOK / BOTCTL_GENERIC_WEBHOOK_URL
// - BOTCTL_METRICS_ENABLED (bool) / BOTCTL_METRICS_PORT (int)
// - BOTCTL_STATE_DIR (string)
func ApplyEnvOverrides(cfg *Config) error {
	if err := applyServiceEnv(cfg); err != nil {
		return err
	}
	if err := applyNotificationEnv(cfg); err != nil {
		return err
	}
	return applyMetricsEnv(cfg)
}

func applyServiceEnv(cfg *Config) error {
	setStringEnv("BOTCTL_SERVICE_NAME", &cfg.ServiceName)
	setStringEnv("BOTCTL_COMPOSE_FILE", &cfg.ComposeFile)
	setStringEnv("BOTCTL_PROJECT_DIR", &cfg.ProjectDir)
	setStringEnv("BOTCTL_ENV_FILE", &cfg.EnvFile)
	setStringEnv("BOTCTL_ENV_TEMPLATE", &cfg.EnvTemplate)
	setStringEnv("BOTCTL_IMAGE", &cfg.Image)
	setStringEnv("BOTCTL_STATE_DIR", &cfg.StateDir)

	if v := os.Getenv("BOTCTL_LOG_TAIL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid BOTCTL_LOG_TAIL: %w", err)
		}
		cfg.LogTail = n
	}
	if v := os.Getenv("BOTCTL_STEP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid BOTCTL_STEP_TIMEOUT: %w", err)
		}
		cfg.StepTimeout = d
	}
	return nil
}

func applyNotificationEnv(cfg *Config) error {
	setStringEnv("BOTCTL_NOTIFICATION_LEVEL", &cfg.NotificationLevel)
	setStringEnv("BOTCTL_TELEGRAM_TOKEN", &cfg.TelegramToken)
	setStringEnv("BOTCTL_TELEGRAM_CHAT_ID", &cfg.TelegramChatID)
	setStringEnv("BOTCTL_SLACK_WEBHOOK", &cfg.SlackWebhook)
	setStringEnv("BOTCTL_GENERIC_WEBHOOK_URL", &cfg.GenericWebhookURL)
	return nil
}

func applyMetricsEnv(cfg *Config) error {
	if err := setBoolEnv("BOTCTL_METRICS_ENABLED", func(b bool) { cfg.MetricsEnabled = b }); err != nil {
		return err
	}
	if v := os.Getenv("BOTCTL_METRICS_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid BOTCTL_METRICS_PORT: %w", err)
		}
		cfg.MetricsPort = p
	}
	return nil
}

// setStringEnv copies a non-empty environment variable into dst.
func setStringEnv(env string, dst *string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

// setBoolEnv is a small helper to parse boolean environment variables.
func setBoolEnv(env string, setter func(bool)) error {
	if v := os.Getenv(env); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", env, err)
		}
		setter(b)
	}
	return nil
}
