package services

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"statsbot/internal/adapters"
	"statsbot/internal/collector"
	"statsbot/internal/config"
	"statsbot/internal/domain/entities"
	"statsbot/internal/logger"
)

// stubStrategy 固定结果的测试策略
type stubStrategy struct {
	platform entities.Platform
	err      error
	calls    atomic.Int64
}

func (s *stubStrategy) Name() string {
	return "stub-" + string(s.platform)
}

func (s *stubStrategy) Fetch(ctx context.Context, profile string) (*entities.MetricRecord, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	record := entities.NewOKRecord(s.platform, profile)
	record.Followers = entities.Int64Ptr(1000)
	return record, nil
}

func newTestProfiles(t *testing.T) *config.ProfileStore {
	t.Helper()
	store, err := config.NewProfileStore(filepath.Join(t.TempDir(), "profiles.yaml"))
	if err != nil {
		t.Fatalf("创建账号配置失败: %v", err)
	}
	return store
}

func newTestService(t *testing.T, strategies map[entities.Platform]*stubStrategy) (*StatsService, *config.ProfileStore) {
	t.Helper()
	profiles := newTestProfiles(t)

	chains := make([]*collector.Chain, 0, len(strategies))
	for platform, strategy := range strategies {
		chains = append(chains, collector.NewChain(platform, []adapters.Strategy{strategy}, logger.Discard()))
	}
	c := collector.NewCollector(chains, profiles, logger.Discard(), collector.Options{TTL: time.Minute})
	return NewStatsService(c, profiles, logger.Discard()), profiles
}

func TestBuildReportMixedOutcomes(t *testing.T) {
	strategies := map[entities.Platform]*stubStrategy{
		entities.PlatformYouTubeChannel: {platform: entities.PlatformYouTubeChannel},
		entities.PlatformTikTok:         {platform: entities.PlatformTikTok, err: adapters.NewBlockedError("cloudflare")},
		entities.PlatformKwai:           {platform: entities.PlatformKwai},
	}
	service, profiles := newTestService(t, strategies)

	mustUpdate(t, profiles, config.ProfileYouTubeChannelURL, "https://www.youtube.com/@tester")
	mustUpdate(t, profiles, config.ProfileTikTokUsername, "@tester")
	mustUpdate(t, profiles, config.ProfileKwaiUsername, "@tester")

	report, err := service.BuildReport(context.Background())
	if err != nil {
		t.Fatalf("BuildReport失败: %v", err)
	}
	if len(report.Records) != 3 {
		t.Fatalf("记录数 = %d, 期望 3", len(report.Records))
	}
	if report.OKCount() != 2 {
		t.Errorf("OKCount = %d, 期望 2", report.OKCount())
	}

	blocked := report.Record(entities.PlatformTikTok)
	if blocked == nil || blocked.Status != entities.StatusTemporaryBlock {
		t.Errorf("TikTok记录 = %+v, 期望 temporarily_blocked", blocked)
	}
	if blocked != nil && blocked.HasMetrics() {
		t.Error("封禁记录不应携带数值")
	}
}

func TestBuildReportUnconfiguredPlatform(t *testing.T) {
	strategies := map[entities.Platform]*stubStrategy{
		entities.PlatformTikTok: {platform: entities.PlatformTikTok},
	}
	service, _ := newTestService(t, strategies)

	report, err := service.BuildReport(context.Background())
	if err != nil {
		t.Fatalf("BuildReport失败: %v", err)
	}
	record := report.Record(entities.PlatformTikTok)
	if record == nil || record.Status != entities.StatusNotConfigured {
		t.Fatalf("未配置平台的记录 = %+v", record)
	}
}

func TestReconfigureInvalidatesCache(t *testing.T) {
	strategy := &stubStrategy{platform: entities.PlatformTikTok}
	service, profiles := newTestService(t, map[entities.Platform]*stubStrategy{
		entities.PlatformTikTok: strategy,
	})
	mustUpdate(t, profiles, config.ProfileTikTokUsername, "@old")

	if _, err := service.BuildReport(context.Background()); err != nil {
		t.Fatalf("BuildReport失败: %v", err)
	}
	if err := service.Reconfigure(config.ProfileTikTokUsername, "@new"); err != nil {
		t.Fatalf("Reconfigure失败: %v", err)
	}
	if _, err := service.BuildReport(context.Background()); err != nil {
		t.Fatalf("BuildReport失败: %v", err)
	}

	if got := strategy.calls.Load(); got != 2 {
		t.Errorf("配置变更后应重新采集, 实际 %d 次", got)
	}
}

func TestReconfigureUnknownKey(t *testing.T) {
	service, _ := newTestService(t, map[entities.Platform]*stubStrategy{})
	if err := service.Reconfigure("bogus_key", "value"); err == nil {
		t.Fatal("未知配置键应返回错误")
	}
}

func TestRefreshPlatformUnknown(t *testing.T) {
	service, _ := newTestService(t, map[entities.Platform]*stubStrategy{})
	if _, err := service.RefreshPlatform(context.Background(), entities.Platform("myspace")); err == nil {
		t.Fatal("未知平台应返回错误")
	}
}

func mustUpdate(t *testing.T, profiles *config.ProfileStore, key, value string) {
	t.Helper()
	if err := profiles.Update(key, value); err != nil {
		t.Fatalf("更新账号配置 %s 失败: %v", key, err)
	}
}
