package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "server:\n  port: \"9000\"\n"))
	if err != nil {
		t.Fatalf("LoadConfig失败: %v", err)
	}

	if cfg.Server.Port != "9000" {
		t.Errorf("Port = %q", cfg.Server.Port)
	}
	if cfg.Cache.TTLSeconds != 600 {
		t.Errorf("TTLSeconds = %d, 期望默认 600", cfg.Cache.TTLSeconds)
	}
	if cfg.Cache.ErrorTTLSeconds != 120 {
		t.Errorf("ErrorTTLSeconds = %d, 期望 ttl/5 = 120", cfg.Cache.ErrorTTLSeconds)
	}
	if cfg.Browser.MaxSessions != 2 {
		t.Errorf("MaxSessions = %d", cfg.Browser.MaxSessions)
	}
	if cfg.TokCount.BaseURL == "" {
		t.Error("TokCount.BaseURL应有默认值")
	}
	if cfg.Telegram.Timezone != "America/Sao_Paulo" {
		t.Errorf("Timezone = %q", cfg.Telegram.Timezone)
	}
}

func TestErrorTTLClamp(t *testing.T) {
	// TTL很小时失败缓存下限30秒会被TTL封顶
	cfg, err := LoadConfig(writeConfig(t, "cache:\n  ttlSeconds: 20\n"))
	if err != nil {
		t.Fatalf("LoadConfig失败: %v", err)
	}
	if cfg.Cache.ErrorTTLSeconds != 20 {
		t.Errorf("ErrorTTLSeconds = %d, 不应超过TTL", cfg.Cache.ErrorTTLSeconds)
	}

	// 显式配置超过TTL时同样封顶
	cfg, err = LoadConfig(writeConfig(t, "cache:\n  ttlSeconds: 60\n  errorTtlSeconds: 300\n"))
	if err != nil {
		t.Fatalf("LoadConfig失败: %v", err)
	}
	if cfg.Cache.ErrorTTLSeconds != 60 {
		t.Errorf("ErrorTTLSeconds = %d, 不应超过TTL", cfg.Cache.ErrorTTLSeconds)
	}
}

func TestBroadcastInterval(t *testing.T) {
	cfg := &Config{}
	cfg.Cache.TTLSeconds = 600
	if got := cfg.BroadcastInterval(); got != 600 {
		t.Errorf("BroadcastInterval = %d, 未配置时应跟随TTL", got)
	}

	cfg.Scheduler.BroadcastIntervalSeconds = 900
	if got := cfg.BroadcastInterval(); got != 900 {
		t.Errorf("BroadcastInterval = %d", got)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "env-token")
	t.Setenv("STATS_CHAT_ID", "-100999")
	t.Setenv("PORT", "7777")

	cfg, err := LoadConfig(writeConfig(t, "telegram:\n  token: file-token\n"))
	if err != nil {
		t.Fatalf("LoadConfig失败: %v", err)
	}
	if cfg.Telegram.Token != "env-token" {
		t.Errorf("Token = %q, 环境变量应覆盖文件", cfg.Telegram.Token)
	}
	if cfg.Telegram.StatsChatID != -100999 {
		t.Errorf("StatsChatID = %d", cfg.Telegram.StatsChatID)
	}
	if cfg.Server.Port != "7777" {
		t.Errorf("Port = %q", cfg.Server.Port)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("配置文件不存在时应返回错误")
	}
}
