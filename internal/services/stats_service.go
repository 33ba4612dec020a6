package services

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"statsbot/internal/collector"
	"statsbot/internal/config"
	"statsbot/internal/domain/entities"
	"statsbot/internal/logger"
)

// StatsService 统计报告服务，负责组装完整报告和账号配置的运行期修改
type StatsService struct {
	collector *collector.Collector
	profiles  *config.ProfileStore
	logger    logger.Logger
}

// NewStatsService 创建统计报告服务
func NewStatsService(c *collector.Collector, profiles *config.ProfileStore, log logger.Logger) *StatsService {
	return &StatsService{
		collector: c,
		profiles:  profiles,
		logger:    log,
	}
}

// BuildReport 并发采集全部已注册平台并组装成一份报告。
// 单个平台失败不影响报告生成，失败以记录状态形式保留在报告里。
func (s *StatsService) BuildReport(ctx context.Context) (*entities.StatsReport, error) {
	platforms := s.collector.Platforms()
	records := make([]*entities.MetricRecord, len(platforms))

	g, gctx := errgroup.WithContext(ctx)
	for i, platform := range platforms {
		i, platform := i, platform
		g.Go(func() error {
			record, err := s.collector.Fetch(gctx, platform)
			if err != nil {
				// 只有调用方上下文结束才会走到这里
				record = entities.NewFailedRecord(platform, entities.StatusError, err.Error())
			}
			records[i] = record
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "组装统计报告失败")
	}

	report := entities.NewStatsReport(records)
	s.logger.InfoContext(ctx, "统计报告已生成: %s, 成功平台 %d/%d",
		report.ID, report.OKCount(), len(records))
	return report, nil
}

// RefreshPlatform 强制刷新一个平台：清缓存后重新采集
func (s *StatsService) RefreshPlatform(ctx context.Context, platform entities.Platform) (*entities.MetricRecord, error) {
	if !platform.Valid() {
		return nil, errors.Errorf("未知平台: %s", platform)
	}
	s.collector.Invalidate(platform)
	record, err := s.collector.Fetch(ctx, platform)
	if err != nil {
		return nil, errors.Wrap(err, "刷新平台数据失败")
	}
	return record, nil
}

// Reconfigure 运行期修改账号配置并使对应平台的缓存失效
func (s *StatsService) Reconfigure(key, value string) error {
	if err := s.profiles.Update(key, value); err != nil {
		return errors.Wrap(err, "更新账号配置失败")
	}
	if platform, ok := config.PlatformForProfileKey(key); ok {
		s.collector.Invalidate(platform)
	}
	s.logger.Info("账号配置已更新: %s", key)
	return nil
}

// Profiles 获取当前账号配置的快照
func (s *StatsService) Profiles() map[string]string {
	return s.profiles.Snapshot()
}

// Platforms 获取报告覆盖的平台列表
func (s *StatsService) Platforms() []entities.Platform {
	return s.collector.Platforms()
}
