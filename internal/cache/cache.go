package cache

import (
	"sync"
	"time"

	"statsbot/internal/domain/entities"
)

// Entry 缓存条目
type Entry struct {
	Record    *entities.MetricRecord
	ExpiresAt time.Time
}

// IsFresh 检查条目在给定时间点是否仍然新鲜
func (e *Entry) IsFresh(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}

// Cache 按平台键存储指标记录的TTL缓存。
// 只负责存取，过期条目保留为最后已知数据，不会主动触发采集。
type Cache struct {
	mu      sync.RWMutex
	entries map[entities.Platform]*Entry
}

// New 创建缓存
func New() *Cache {
	return &Cache{
		entries: make(map[entities.Platform]*Entry),
	}
}

// Get 非阻塞读取，过期条目也会返回，由调用方判断新鲜度
func (c *Cache) Get(key entities.Platform) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	return entry, ok
}

// GetFresh 读取并校验新鲜度，过期或不存在时返回false
func (c *Cache) GetFresh(key entities.Platform) (*entities.MetricRecord, bool) {
	entry, ok := c.Get(key)
	if !ok || !entry.IsFresh(time.Now()) {
		return nil, false
	}
	return entry.Record, true
}

// Put 写入新条目，覆盖同键的旧条目
func (c *Cache) Put(key entities.Platform, record *entities.MetricRecord, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &Entry{
		Record:    record,
		ExpiresAt: record.FetchedAt.Add(ttl),
	}
}

// Invalidate 删除某个键的条目，下次读取强制未命中
func (c *Cache) Invalidate(key entities.Platform) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len 返回当前条目数量
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
