package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type Config struct {
	Bot      BotConfig      `json:"bot"`
	Schedule ScheduleConfig `json:"schedule"`
}

type BotConfig struct {
	WebhookURL string `json:"webhookUrl"`
	Secret     string `json:"secret,omitempty"`
	AppID      string `json:"appId,omitempty"`
	AppSecret  string `json:"appSecret,omitempty"`
}

type ScheduleConfig struct {
	StorePath string `json:"storePath,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Schedule: ScheduleConfig{
			StorePath: filepath.Join(ConfigDir(), "jobs.json"),
		},
	}
}

func ConfigDir() string {
	home := os.Getenv("HOME")
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	return filepath.Join(home, ".larkbot")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if url := os.Getenv("LARKBOT_WEBHOOK_URL"); url != "" {
		cfg.Bot.WebhookURL = url
	}
	if secret := os.Getenv("LARKBOT_SECRET"); secret != "" {
		cfg.Bot.Secret = secret
	}
	if appID := os.Getenv("LARKBOT_APP_ID"); appID != "" {
		cfg.Bot.AppID = appID
	}
	if appSecret := os.Getenv("LARKBOT_APP_SECRET"); appSecret != "" {
		cfg.Bot.AppSecret = appSecret
	}
	if path := os.Getenv("LARKBOT_JOB_STORE"); path != "" {
		cfg.Schedule.StorePath = path
	}

	if cfg.Schedule.StorePath == "" {
		cfg.Schedule.StorePath = DefaultConfig().Schedule.StorePath
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate enforces the credential pairing rule: appId and appSecret are
// either both present or both absent.
func (c *Config) Validate() error {
	if (c.Bot.AppID == "") != (c.Bot.AppSecret == "") {
		return fmt.Errorf("appId and appSecret must be set together")
	}
	return nil
}

func SaveConfig(cfg *Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(ConfigPath(), data, 0644)
}
