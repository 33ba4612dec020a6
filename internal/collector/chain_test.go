package collector

import (
	"context"
	"errors"
	"testing"

	"statsbot/internal/adapters"
	"statsbot/internal/domain/entities"
	"statsbot/internal/logger"
)

// fakeStrategy 可编排结果的测试策略
type fakeStrategy struct {
	name   string
	record *entities.MetricRecord
	err    error
	panics bool
	calls  int
}

func (s *fakeStrategy) Name() string {
	return s.name
}

func (s *fakeStrategy) Fetch(ctx context.Context, profile string) (*entities.MetricRecord, error) {
	s.calls++
	if s.panics {
		panic("boom")
	}
	return s.record, s.err
}

func okRecord(platform entities.Platform) *entities.MetricRecord {
	r := entities.NewOKRecord(platform, "@tester")
	r.Followers = entities.Int64Ptr(100)
	return r
}

func TestChainShortCircuit(t *testing.T) {
	first := &fakeStrategy{name: "cheap", record: okRecord(entities.PlatformTikTok)}
	second := &fakeStrategy{name: "expensive", record: okRecord(entities.PlatformTikTok)}
	chain := NewChain(entities.PlatformTikTok, []adapters.Strategy{first, second}, logger.Discard())

	record := chain.Collect(context.Background(), "@tester")
	if record.Status != entities.StatusOK {
		t.Fatalf("Status = %q", record.Status)
	}
	if second.calls != 0 {
		t.Error("第一个策略成功后不应再调用后续策略")
	}
}

func TestChainFallback(t *testing.T) {
	first := &fakeStrategy{name: "cheap", err: errors.New("parse failed")}
	second := &fakeStrategy{name: "expensive", record: okRecord(entities.PlatformKwai)}
	chain := NewChain(entities.PlatformKwai, []adapters.Strategy{first, second}, logger.Discard())

	record := chain.Collect(context.Background(), "@tester")
	if record.Status != entities.StatusOK {
		t.Fatalf("Status = %q, 期望回退到第二个策略成功", record.Status)
	}
	if first.calls != 1 || second.calls != 1 {
		t.Errorf("调用次数 first=%d second=%d", first.calls, second.calls)
	}
}

func TestChainBlockedThenSuccess(t *testing.T) {
	first := &fakeStrategy{name: "cheap", err: adapters.NewBlockedError("cloudflare")}
	record := okRecord(entities.PlatformTikTok)
	record.Followers = entities.Int64Ptr(12000)
	record.Likes = entities.Int64Ptr(340)
	second := &fakeStrategy{name: "browser", record: record}
	chain := NewChain(entities.PlatformTikTok, []adapters.Strategy{first, second}, logger.Discard())

	got := chain.Collect(context.Background(), "@tester")
	if got.Status != entities.StatusOK {
		t.Fatalf("Status = %q, 封禁后应回退到浏览器策略", got.Status)
	}
	if got.Followers == nil || *got.Followers != 12000 || got.Likes == nil || *got.Likes != 340 {
		t.Errorf("记录 = %+v, 应来自第二个策略", got)
	}
}

func TestChainLastFailureBlocked(t *testing.T) {
	first := &fakeStrategy{name: "cheap", err: errors.New("parse failed")}
	second := &fakeStrategy{name: "expensive", err: adapters.NewBlockedError("cloudflare challenge")}
	chain := NewChain(entities.PlatformTikTok, []adapters.Strategy{first, second}, logger.Discard())

	record := chain.Collect(context.Background(), "@tester")
	if record.Status != entities.StatusTemporaryBlock {
		t.Fatalf("Status = %q, 期望 temporarily_blocked", record.Status)
	}
	if record.Detail == "" {
		t.Error("失败记录应携带诊断信息")
	}
	if record.HasMetrics() {
		t.Error("失败记录不应携带数值字段")
	}
}

func TestChainLastFailureError(t *testing.T) {
	first := &fakeStrategy{name: "cheap", err: adapters.NewBlockedError("captcha")}
	second := &fakeStrategy{name: "expensive", err: errors.New("timeout")}
	chain := NewChain(entities.PlatformTikTok, []adapters.Strategy{first, second}, logger.Discard())

	record := chain.Collect(context.Background(), "@tester")
	if record.Status != entities.StatusError {
		t.Fatalf("Status = %q, 最后一次是普通失败时应定性为error", record.Status)
	}
}

func TestChainConfigErrorShortCircuits(t *testing.T) {
	first := &fakeStrategy{name: "cheap", err: adapters.NewConfigError("用户名为空")}
	second := &fakeStrategy{name: "expensive", record: okRecord(entities.PlatformTikTok)}
	chain := NewChain(entities.PlatformTikTok, []adapters.Strategy{first, second}, logger.Discard())

	record := chain.Collect(context.Background(), "")
	if record.Status != entities.StatusNotConfigured {
		t.Fatalf("Status = %q, 期望 not_configured", record.Status)
	}
	if second.calls != 0 {
		t.Error("配置错误不应触发后续策略")
	}
}

func TestChainRecoversPanic(t *testing.T) {
	first := &fakeStrategy{name: "cheap", panics: true}
	second := &fakeStrategy{name: "expensive", record: okRecord(entities.PlatformTikTok)}
	chain := NewChain(entities.PlatformTikTok, []adapters.Strategy{first, second}, logger.Discard())

	record := chain.Collect(context.Background(), "@tester")
	if record.Status != entities.StatusOK {
		t.Fatalf("Status = %q, 策略panic后应继续回退", record.Status)
	}
}

func TestChainEmpty(t *testing.T) {
	chain := NewChain(entities.PlatformTikTok, nil, logger.Discard())
	record := chain.Collect(context.Background(), "@tester")
	if record.Status != entities.StatusError {
		t.Fatalf("Status = %q", record.Status)
	}
}
