package collector

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"statsbot/internal/adapters"
	"statsbot/internal/domain/entities"
	"statsbot/internal/logger"
)

// Chain 单个平台的采集回退链。策略按成本从低到高排列，
// 任意一个成功即短路返回，全部失败时按最后一次失败定性。
type Chain struct {
	platform   entities.Platform
	strategies []adapters.Strategy
	logger     logger.Logger
}

// NewChain 创建平台采集回退链
func NewChain(platform entities.Platform, strategies []adapters.Strategy, log logger.Logger) *Chain {
	return &Chain{
		platform:   platform,
		strategies: strategies,
		logger:     log,
	}
}

// Platform 获取回退链所属平台
func (c *Chain) Platform() entities.Platform {
	return c.platform
}

// Collect 依次尝试全部策略采集指标。该方法永远返回一条记录而不是error：
// 失败被折叠进记录的status和detail字段，便于上层统一缓存和展示。
func (c *Chain) Collect(ctx context.Context, profile string) *entities.MetricRecord {
	if len(c.strategies) == 0 {
		return entities.NewFailedRecord(c.platform, entities.StatusError, "没有可用的采集策略")
	}

	var lastErr error
	for _, strategy := range c.strategies {
		record, err := c.tryStrategy(ctx, strategy, profile)
		if err == nil {
			c.logger.InfoContext(ctx, "平台 %s 采集成功, 策略: %s", c.platform, strategy.Name())
			return record
		}

		var cfgErr *adapters.ConfigError
		if errors.As(err, &cfgErr) {
			// 配置错误换策略也无济于事，直接定性返回
			return entities.NewFailedRecord(c.platform, entities.StatusNotConfigured, cfgErr.Reason)
		}

		c.logger.WarnContext(ctx, "平台 %s 策略 %s 失败: %v", c.platform, strategy.Name(), err)
		lastErr = err

		if ctx.Err() != nil {
			lastErr = ctx.Err()
			break
		}
	}

	var blocked *adapters.BlockedError
	if errors.As(lastErr, &blocked) {
		return entities.NewFailedRecord(c.platform, entities.StatusTemporaryBlock, blocked.Reason)
	}
	return entities.NewFailedRecord(c.platform, entities.StatusError, lastErr.Error())
}

// tryStrategy 执行单个策略并吸收panic，单个策略崩溃不能中断整条回退链
func (c *Chain) tryStrategy(ctx context.Context, strategy adapters.Strategy, profile string) (record *entities.MetricRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("平台 %s 策略 %s panic: %v\n%s", c.platform, strategy.Name(), r, debug.Stack())
			record = nil
			err = fmt.Errorf("策略 %s 内部异常: %v", strategy.Name(), r)
		}
	}()

	record, err = strategy.Fetch(ctx, profile)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("策略 %s 返回了空记录", strategy.Name())
	}
	return record, nil
}
