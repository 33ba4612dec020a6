package config

import (
	"os"
	"path/filepath"
	"testing"

	"statsbot/internal/domain/entities"
)

func TestProfileStoreMissingFile(t *testing.T) {
	store, err := NewProfileStore(filepath.Join(t.TempDir(), "profiles.yaml"))
	if err != nil {
		t.Fatalf("文件不存在时NewProfileStore不应失败: %v", err)
	}
	if got := store.Get(ProfileTikTokUsername); got != "" {
		t.Errorf("Get = %q, 期望空", got)
	}
	if platforms := store.ConfiguredPlatforms(); len(platforms) != 0 {
		t.Errorf("ConfiguredPlatforms = %v", platforms)
	}
}

func TestProfileStoreUpdatePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	store, err := NewProfileStore(path)
	if err != nil {
		t.Fatalf("NewProfileStore失败: %v", err)
	}

	if err := store.Update(ProfileTikTokUsername, "@tester"); err != nil {
		t.Fatalf("Update失败: %v", err)
	}
	if got := store.GetByPlatform(entities.PlatformTikTok); got != "@tester" {
		t.Errorf("GetByPlatform = %q", got)
	}

	// 重新加载验证写回
	reloaded, err := NewProfileStore(path)
	if err != nil {
		t.Fatalf("重新加载失败: %v", err)
	}
	if got := reloaded.Get(ProfileTikTokUsername); got != "@tester" {
		t.Errorf("重新加载后 Get = %q", got)
	}
}

func TestProfileStoreUpdateUnknownKey(t *testing.T) {
	store, err := NewProfileStore(filepath.Join(t.TempDir(), "profiles.yaml"))
	if err != nil {
		t.Fatalf("NewProfileStore失败: %v", err)
	}
	if err := store.Update("bogus", "v"); err == nil {
		t.Fatal("未知键应返回错误")
	}
}

func TestConfiguredPlatformsOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	content := "tiktok_username: '@a'\nyoutube_channel_url: https://youtube.com/@b\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("写入文件失败: %v", err)
	}

	store, err := NewProfileStore(path)
	if err != nil {
		t.Fatalf("NewProfileStore失败: %v", err)
	}

	platforms := store.ConfiguredPlatforms()
	if len(platforms) != 2 {
		t.Fatalf("平台数 = %d", len(platforms))
	}
	if platforms[0] != entities.PlatformYouTubeChannel || platforms[1] != entities.PlatformTikTok {
		t.Errorf("平台顺序 = %v, 应按报告展示顺序", platforms)
	}
}

func TestPlatformKeyMappings(t *testing.T) {
	for key := range ProfileKeys {
		platform, ok := PlatformForProfileKey(key)
		if !ok {
			t.Errorf("键 %s 缺少平台映射", key)
			continue
		}
		back, ok := ProfileKeyForPlatform(platform)
		if !ok || back != key {
			t.Errorf("平台 %s 反向映射 = %q, 期望 %q", platform, back, key)
		}
	}
}
