package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setTestHome(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv("LARKBOT_WEBHOOK_URL", "")
	t.Setenv("LARKBOT_SECRET", "")
	t.Setenv("LARKBOT_APP_ID", "")
	t.Setenv("LARKBOT_APP_SECRET", "")
	t.Setenv("LARKBOT_JOB_STORE", "")
	return tmpDir
}

func TestDefaultConfig(t *testing.T) {
	setTestHome(t)
	cfg := DefaultConfig()
	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}
	if cfg.Schedule.StorePath == "" {
		t.Error("job store path should not be empty")
	}
	if !strings.HasSuffix(cfg.Schedule.StorePath, "jobs.json") {
		t.Errorf("store path = %q, want .../jobs.json", cfg.Schedule.StorePath)
	}
}

func TestLoadConfig_NoFile(t *testing.T) {
	setTestHome(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Bot.WebhookURL != "" {
		t.Errorf("webhook url = %q, want empty", cfg.Bot.WebhookURL)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	tmpDir := setTestHome(t)

	cfgDir := filepath.Join(tmpDir, ".larkbot")
	os.MkdirAll(cfgDir, 0755)

	testCfg := map[string]any{
		"bot": map[string]any{
			"webhookUrl": "https://open.feishu.cn/open-apis/bot/v2/hook/xxx",
			"secret":     "signing-secret",
			"appId":      "cli_app",
			"appSecret":  "shhh",
		},
	}
	data, _ := json.MarshalIndent(testCfg, "", "  ")
	os.WriteFile(filepath.Join(cfgDir, "config.json"), data, 0644)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Bot.WebhookURL != "https://open.feishu.cn/open-apis/bot/v2/hook/xxx" {
		t.Errorf("webhook url = %q", cfg.Bot.WebhookURL)
	}
	if cfg.Bot.Secret != "signing-secret" {
		t.Errorf("secret = %q, want signing-secret", cfg.Bot.Secret)
	}
	if cfg.Bot.AppID != "cli_app" || cfg.Bot.AppSecret != "shhh" {
		t.Errorf("credentials = %q/%q", cfg.Bot.AppID, cfg.Bot.AppSecret)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	setTestHome(t)

	t.Setenv("LARKBOT_WEBHOOK_URL", "https://example.com/hook")
	t.Setenv("LARKBOT_SECRET", "env-secret")
	t.Setenv("LARKBOT_APP_ID", "cli_env")
	t.Setenv("LARKBOT_APP_SECRET", "env-shhh")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Bot.WebhookURL != "https://example.com/hook" {
		t.Errorf("webhook url = %q", cfg.Bot.WebhookURL)
	}
	if cfg.Bot.Secret != "env-secret" {
		t.Errorf("secret = %q", cfg.Bot.Secret)
	}
	if cfg.Bot.AppID != "cli_env" || cfg.Bot.AppSecret != "env-shhh" {
		t.Errorf("credentials = %q/%q", cfg.Bot.AppID, cfg.Bot.AppSecret)
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	tmpDir := setTestHome(t)

	cfgDir := filepath.Join(tmpDir, ".larkbot")
	os.MkdirAll(cfgDir, 0755)
	os.WriteFile(filepath.Join(cfgDir, "config.json"),
		[]byte(`{"bot":{"webhookUrl":"https://from-file.example.com"}}`), 0644)

	t.Setenv("LARKBOT_WEBHOOK_URL", "https://from-env.example.com")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Bot.WebhookURL != "https://from-env.example.com" {
		t.Errorf("webhook url = %q, env should win", cfg.Bot.WebhookURL)
	}
}

func TestLoadConfig_CredentialPairValidation(t *testing.T) {
	setTestHome(t)
	t.Setenv("LARKBOT_APP_ID", "cli_only_id")

	_, err := LoadConfig()
	if err == nil {
		t.Error("expected error for appId without appSecret")
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{Bot: BotConfig{AppSecret: "orphan"}}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for appSecret without appId")
	}

	cfg = &Config{Bot: BotConfig{AppID: "a", AppSecret: "b"}}
	if err := cfg.Validate(); err != nil {
		t.Errorf("both set should validate: %v", err)
	}

	cfg = &Config{}
	if err := cfg.Validate(); err != nil {
		t.Errorf("neither set should validate: %v", err)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	setTestHome(t)

	cfg := DefaultConfig()
	cfg.Bot.WebhookURL = "https://example.com/hook"
	cfg.Bot.Secret = "s"

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig error: %v", err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if loaded.Bot.WebhookURL != cfg.Bot.WebhookURL {
		t.Errorf("webhook url = %q, want %q", loaded.Bot.WebhookURL, cfg.Bot.WebhookURL)
	}
	if loaded.Bot.Secret != "s" {
		t.Errorf("secret = %q, want s", loaded.Bot.Secret)
	}
}
