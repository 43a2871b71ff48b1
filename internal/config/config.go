package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration for botctl.
type Config struct {
	// ServiceName is the fixed container name used to find the bot among
	// running containers.
	ServiceName string `json:"service_name" yaml:"service_name"`

	// ComposeFile and ProjectDir locate the compose definition the lifecycle
	// commands operate on.
	ComposeFile string `json:"compose_file" yaml:"compose_file"`
	ProjectDir  string `json:"project_dir" yaml:"project_dir"`

	// EnvFile is the environment configuration marker checked before start.
	// Its contents are opaque to botctl; only existence matters.
	EnvFile string `json:"env_file" yaml:"env_file"`
	// EnvTemplate is mentioned in the advice printed when EnvFile is missing.
	EnvTemplate string `json:"env_template" yaml:"env_template"`

	// Image is the bot's image reference (e.g. "ghcr.io/liveplace/telegram-bot:latest").
	// Only needed for `update --check`, which compares the remote digest
	// against the running container.
	Image string `json:"image" yaml:"image"`

	// LogTail is how many trailing log lines status shows.
	LogTail int `json:"log_tail" yaml:"log_tail"`

	// StepTimeout bounds every external runtime command so a hung docker
	// invocation fails instead of blocking forever. In the config file it is
	// a duration string like "10m"; see UnmarshalYAML.
	StepTimeout time.Duration `json:"step_timeout" yaml:"-"`

	// Notification configuration
	NotificationLevel string `json:"notification_level" yaml:"notification_level"` // "all", "failure", "none"
	TelegramToken     string `json:"telegram_token" yaml:"telegram_token"`
	TelegramChatID    string `json:"telegram_chat_id" yaml:"telegram_chat_id"`
	SlackWebhook      string `json:"slack_webhook" yaml:"slack_webhook"`
	GenericWebhookURL string `json:"generic_webhook_url" yaml:"generic_webhook_url"`

	// Metrics
	MetricsEnabled bool `json:"metrics_enabled" yaml:"metrics_enabled"`
	MetricsPort    int  `json:"metrics_port" yaml:"metrics_port"`

	// StateDir overrides where the last-operation record is written.
	StateDir string `json:"state_dir" yaml:"state_dir"`
}

// DefaultConfig returns a sane default configuration matching the original
// deployment layout (compose file and .env in the working directory).
func DefaultConfig() *Config {
	return &Config{
		ServiceName: "telegram-bot",
		ComposeFile: "docker-compose.yml",
		ProjectDir:  ".",
		EnvFile:     ".env",
		EnvTemplate: ".env.example",
		LogTail:     10,
		StepTimeout: 10 * time.Minute,

		NotificationLevel: "all",

		MetricsEnabled: false,
		MetricsPort:    9091,
	}
}

// Validate returns a list of non-fatal configuration warnings.
func (c *Config) Validate() []string {
	var warnings []string
	checks := []struct {
		cond bool
		msg  string
	}{
		{c.TelegramToken != "" && c.TelegramChatID == "", "telegram token provided but chat id is missing"},
		{c.TelegramChatID != "" && c.TelegramToken == "", "telegram chat id provided but token is missing"},
		{c.LogTail <= 0, "log_tail must be positive; falling back to 10"},
		{c.StepTimeout <= 0, "step_timeout must be positive; falling back to 10m"},
	}
	for _, ch := range checks {
		if ch.cond {
			warnings = append(warnings, ch.msg)
		}
	}
	switch c.NotificationLevel {
	case "all", "failure", "none":
	default:
		warnings = append(warnings, fmt.Sprintf("unknown notification_level %q (expected all, failure, or none)", c.NotificationLevel))
	}
	return warnings
}

// Normalize clamps invalid values flagged by Validate back to usable defaults.
func (c *Config) Normalize() {
	if c.LogTail <= 0 {
		c.LogTail = 10
	}
	if c.StepTimeout <= 0 {
		c.StepTimeout = 10 * time.Minute
	}
}

// UnmarshalYAML decodes the config, accepting step_timeout as a duration
// string ("3m", "1h") since YAML has no native duration scalar.
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	type plain Config
	if err := node.Decode((*plain)(c)); err != nil {
		return err
	}
	var aux struct {
		StepTimeout string `yaml:"step_timeout"`
	}
	if err := node.Decode(&aux); err != nil {
		return err
	}
	if aux.StepTimeout != "" {
		d, err := time.ParseDuration(aux.StepTimeout)
		if err != nil {
			return fmt.Errorf("invalid step_timeout %q: %w", aux.StepTimeout, err)
		}
		c.StepTimeout = d
	}
	return nil
}

// LoadConfigFromFile loads config from a YAML/JSON file on top of defaults.
func LoadConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
