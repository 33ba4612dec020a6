package collector

import (
	"context"
	"sync"
	"time"

	"statsbot/internal/cache"
	"statsbot/internal/domain/entities"
	"statsbot/internal/logger"
)

// ProfileSource 按平台提供账号标识，空字符串表示未配置
type ProfileSource interface {
	GetByPlatform(platform entities.Platform) string
}

// flight 一次正在进行的采集，done关闭后record才可读
type flight struct {
	done   chan struct{}
	record *entities.MetricRecord
}

// Collector 带TTL缓存和单飞合并的采集协调器。
// 同一平台的并发请求只触发一次真实采集，其余请求等待并共享结果。
type Collector struct {
	mu       sync.Mutex
	cache    *cache.Cache
	inflight map[entities.Platform]*flight

	chains   map[entities.Platform]*Chain
	profiles ProfileSource
	logger   logger.Logger

	ttl      time.Duration // 成功结果缓存时长
	errorTTL time.Duration // 失败结果缓存时长，短于ttl便于尽快重试
	timeout  time.Duration // 单次采集的后台超时
}

// Options 采集协调器配置
type Options struct {
	TTL      time.Duration
	ErrorTTL time.Duration
	Timeout  time.Duration
}

// NewCollector 创建采集协调器
func NewCollector(chains []*Chain, profiles ProfileSource, log logger.Logger, opts Options) *Collector {
	byPlatform := make(map[entities.Platform]*Chain, len(chains))
	for _, chain := range chains {
		byPlatform[chain.Platform()] = chain
	}

	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Minute
	}
	if opts.ErrorTTL <= 0 || opts.ErrorTTL > opts.TTL {
		opts.ErrorTTL = opts.TTL / 5
		if opts.ErrorTTL < 30*time.Second {
			opts.ErrorTTL = 30 * time.Second
		}
		if opts.ErrorTTL > opts.TTL {
			opts.ErrorTTL = opts.TTL
		}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 3 * time.Minute
	}

	return &Collector{
		cache:    cache.New(),
		inflight: make(map[entities.Platform]*flight),
		chains:   byPlatform,
		profiles: profiles,
		logger:   log,
		ttl:      opts.TTL,
		errorTTL: opts.ErrorTTL,
		timeout:  opts.Timeout,
	}
}

// Fetch 获取一个平台的指标。命中新鲜缓存直接返回；
// 已有同平台采集在进行时等待它完成；否则发起一次新采集。
// 调用方超时只影响等待，后台采集继续进行并写入缓存。
func (c *Collector) Fetch(ctx context.Context, platform entities.Platform) (*entities.MetricRecord, error) {
	c.mu.Lock()

	if entry, ok := c.cache.Get(platform); ok && entry.IsFresh(time.Now()) {
		c.mu.Unlock()
		return entry.Record, nil
	}

	if f, ok := c.inflight[platform]; ok {
		c.mu.Unlock()
		return c.wait(ctx, f)
	}

	f := &flight{done: make(chan struct{})}
	c.inflight[platform] = f
	c.mu.Unlock()

	// 采集跑在脱离调用方的上下文里，调用方取消不中断采集
	go c.run(platform, f)

	return c.wait(ctx, f)
}

// FetchCached 只读缓存，不触发采集，过期记录也返回以便降级展示
func (c *Collector) FetchCached(platform entities.Platform) (*entities.MetricRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.cache.Get(platform)
	if !ok {
		return nil, false
	}
	return entry.Record, true
}

// Invalidate 清除一个平台的缓存，下次Fetch会触发新采集
func (c *Collector) Invalidate(platform entities.Platform) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Invalidate(platform)
}

// Platforms 获取已注册回退链的平台列表，按报告展示顺序排列
func (c *Collector) Platforms() []entities.Platform {
	result := make([]entities.Platform, 0, len(c.chains))
	for _, platform := range entities.AllPlatforms {
		if _, ok := c.chains[platform]; ok {
			result = append(result, platform)
		}
	}
	return result
}

// wait 等待一次采集完成或调用方上下文结束
func (c *Collector) wait(ctx context.Context, f *flight) (*entities.MetricRecord, error) {
	select {
	case <-f.done:
		return f.record, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// run 执行真实采集并发布结果
func (c *Collector) run(platform entities.Platform, f *flight) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	ctx = logger.WithTraceID(ctx, logger.GenerateTraceID())

	record := c.collect(ctx, platform)

	ttl := c.ttl
	if record.Status != entities.StatusOK {
		ttl = c.errorTTL
	}

	c.mu.Lock()
	c.cache.Put(platform, record, ttl)
	delete(c.inflight, platform)
	c.mu.Unlock()

	f.record = record
	close(f.done)
}

// collect 解析账号配置并走回退链
func (c *Collector) collect(ctx context.Context, platform entities.Platform) *entities.MetricRecord {
	profile := c.profiles.GetByPlatform(platform)
	if profile == "" {
		return entities.NewFailedRecord(platform, entities.StatusNotConfigured, "账号未配置")
	}

	chain, ok := c.chains[platform]
	if !ok {
		return entities.NewFailedRecord(platform, entities.StatusError, "平台没有注册采集链")
	}

	return chain.Collect(ctx, profile)
}
