package telegram

import (
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"statsbot/internal/config"
)

func TestParseConfigArg(t *testing.T) {
	key, value, err := parseConfigArg("tiktok_username=@tester")
	if err != nil {
		t.Fatalf("parseConfigArg失败: %v", err)
	}
	if key != config.ProfileTikTokUsername || value != "@tester" {
		t.Errorf("key=%q value=%q", key, value)
	}

	// 值里允许出现等号（URL查询串等）
	key, value, err = parseConfigArg("youtube_channel_url=https://youtube.com/watch?v=x")
	if err != nil {
		t.Fatalf("parseConfigArg失败: %v", err)
	}
	if value != "https://youtube.com/watch?v=x" {
		t.Errorf("value = %q", value)
	}

	for _, bad := range []string{"", "tiktok_username", "=value", "unknown_key=v"} {
		if _, _, err := parseConfigArg(bad); err == nil {
			t.Errorf("parseConfigArg(%q) 应返回错误", bad)
		}
	}
}

func TestAuthorized(t *testing.T) {
	open := &Bot{authorizedUserID: 0}
	if !open.authorized(&tgbotapi.User{ID: 42}) {
		t.Error("未配置授权用户时应放行所有人")
	}

	gated := &Bot{authorizedUserID: 7}
	if !gated.authorized(&tgbotapi.User{ID: 7}) {
		t.Error("授权用户应放行")
	}
	if gated.authorized(&tgbotapi.User{ID: 8}) {
		t.Error("非授权用户应拒绝")
	}
	if gated.authorized(nil) {
		t.Error("匿名消息应拒绝")
	}
}

func TestConfigListText(t *testing.T) {
	text := configListText(map[string]string{
		config.ProfileTikTokUsername: "@tester",
	})
	if !strings.Contains(text, "tiktok_username: @tester") {
		t.Errorf("缺少已配置项:\n%s", text)
	}
	if !strings.Contains(text, "youtube_channel_url: (não configurado)") {
		t.Errorf("缺少未配置占位:\n%s", text)
	}
}
