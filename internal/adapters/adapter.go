package adapters

import (
	"context"
	"fmt"

	"statsbot/internal/domain/entities"
)

// Strategy 单一采集手段的抽象。每个平台可以注册多个按成本排序的策略，
// 由回退链依次尝试。策略必须是无状态的，可被并发复用。
type Strategy interface {
	// Name 获取策略名称，用于日志和失败诊断
	Name() string

	// Fetch 按账号标识采集指标。成功时返回status为ok的记录；
	// 失败时返回error，封禁类失败用BlockedError标识
	Fetch(ctx context.Context, profile string) (*entities.MetricRecord, error)
}

// BlockedError 平台主动拦截自动化访问时的错误（验证码、Cloudflare挑战等）
type BlockedError struct {
	Reason string
}

// Error 实现error接口
func (e *BlockedError) Error() string {
	return fmt.Sprintf("访问被平台拦截: %s", e.Reason)
}

// NewBlockedError 创建封禁错误
func NewBlockedError(format string, args ...interface{}) *BlockedError {
	return &BlockedError{Reason: fmt.Sprintf(format, args...)}
}

// ConfigError 账号配置缺失或无效时的错误，不会触发重试
type ConfigError struct {
	Reason string
}

// Error 实现error接口
func (e *ConfigError) Error() string {
	return fmt.Sprintf("账号配置无效: %s", e.Reason)
}

// NewConfigError 创建配置错误
func NewConfigError(format string, args ...interface{}) *ConfigError {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}
