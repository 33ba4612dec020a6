package config

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"statsbot/internal/domain/entities"
)

// 账号配置键常量
const (
	ProfileYouTubeChannelURL = "youtube_channel_url"
	ProfileYouTubeShortsURL  = "youtube_shorts_url"
	ProfileTikTokUsername    = "tiktok_username"
	ProfileKwaiUsername      = "kwai_username"
	ProfileFacebookReelsURL  = "facebook_reels_url"
	ProfileFacebookPageURL   = "facebook_page_url"
)

// ProfileKeys 账号配置键及其说明，/config 命令会展示这份列表
var ProfileKeys = map[string]string{
	ProfileYouTubeChannelURL: "YouTube主频道的URL或频道ID",
	ProfileYouTubeShortsURL:  "YouTube Shorts频道的URL或频道ID",
	ProfileTikTokUsername:    "TikTok用户名（不带@）",
	ProfileKwaiUsername:      "Kwai用户名（不带@）",
	ProfileFacebookReelsURL:  "Facebook Reels主页URL",
	ProfileFacebookPageURL:   "Facebook公共主页URL",
}

// profilePlatforms 账号配置键到平台的映射
var profilePlatforms = map[string]entities.Platform{
	ProfileYouTubeChannelURL: entities.PlatformYouTubeChannel,
	ProfileYouTubeShortsURL:  entities.PlatformYouTubeShorts,
	ProfileTikTokUsername:    entities.PlatformTikTok,
	ProfileKwaiUsername:      entities.PlatformKwai,
	ProfileFacebookReelsURL:  entities.PlatformFacebookReels,
	ProfileFacebookPageURL:   entities.PlatformFacebookPage,
}

// platformProfiles 平台到账号配置键的反向映射
var platformProfiles = func() map[entities.Platform]string {
	m := make(map[entities.Platform]string, len(profilePlatforms))
	for key, platform := range profilePlatforms {
		m[platform] = key
	}
	return m
}()

// PlatformForProfileKey 根据账号配置键查找对应平台
func PlatformForProfileKey(key string) (entities.Platform, bool) {
	platform, ok := profilePlatforms[key]
	return platform, ok
}

// ProfileKeyForPlatform 根据平台查找账号配置键
func ProfileKeyForPlatform(platform entities.Platform) (string, bool) {
	key, ok := platformProfiles[platform]
	return key, ok
}

// ProfileStore 被监控账号的存储，支持运行期修改并写回文件
type ProfileStore struct {
	mu     sync.RWMutex
	path   string
	values map[string]string
}

// NewProfileStore 从文件加载账号配置；文件不存在时以空配置启动
func NewProfileStore(path string) (*ProfileStore, error) {
	store := &ProfileStore{
		path:   path,
		values: make(map[string]string),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, fmt.Errorf("读取账号配置文件失败: %w", err)
	}

	if err := yaml.Unmarshal(data, &store.values); err != nil {
		return nil, fmt.Errorf("解析账号配置文件失败: %w", err)
	}

	return store, nil
}

// Get 获取某个账号配置值，未配置时返回空字符串
func (s *ProfileStore) Get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key]
}

// GetByPlatform 获取某个平台的账号配置值
func (s *ProfileStore) GetByPlatform(platform entities.Platform) string {
	key, ok := platformProfiles[platform]
	if !ok {
		return ""
	}
	return s.Get(key)
}

// Update 更新某个账号配置并持久化到文件
func (s *ProfileStore) Update(key, value string) error {
	if _, ok := ProfileKeys[key]; !ok {
		return fmt.Errorf("未知的账号配置键: %s", key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return s.write()
}

// ConfiguredPlatforms 列出已配置账号的平台，按报告顺序排列
func (s *ProfileStore) ConfiguredPlatforms() []entities.Platform {
	s.mu.RLock()
	defer s.mu.RUnlock()

	platforms := make([]entities.Platform, 0, len(entities.AllPlatforms))
	for _, platform := range entities.AllPlatforms {
		key := platformProfiles[platform]
		if s.values[key] != "" {
			platforms = append(platforms, platform)
		}
	}
	return platforms
}

// Snapshot 返回当前全部账号配置的副本
func (s *ProfileStore) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make(map[string]string, len(s.values))
	for k, v := range s.values {
		snapshot[k] = v
	}
	return snapshot
}

// write 将账号配置写回文件，调用方需持有写锁
func (s *ProfileStore) write() error {
	data, err := yaml.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("序列化账号配置失败: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("写入账号配置文件失败: %w", err)
	}
	return nil
}
