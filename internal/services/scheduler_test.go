package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"statsbot/internal/domain/entities"
	"statsbot/internal/logger"
)

// fakePublisher 记录发布次数，可配置前几次失败
type fakePublisher struct {
	calls    atomic.Int64
	failures int64
}

func (p *fakePublisher) PublishReport(ctx context.Context, report *entities.StatsReport, nextRun time.Time) error {
	n := p.calls.Add(1)
	if n <= p.failures {
		return errors.New("telegram api unavailable")
	}
	return nil
}

type fakeRepo struct {
	calls atomic.Int64
	err   error
}

func (r *fakeRepo) SaveReport(ctx context.Context, report *entities.StatsReport) error {
	r.calls.Add(1)
	return r.err
}

func TestSchedulerBroadcastsImmediately(t *testing.T) {
	service, _ := newTestService(t, map[entities.Platform]*stubStrategy{
		entities.PlatformTikTok: {platform: entities.PlatformTikTok},
	})
	publisher := &fakePublisher{}

	scheduler := NewBroadcastScheduler(service, publisher, nil, nil, logger.Discard(), time.Hour)
	scheduler.Start()
	defer scheduler.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for publisher.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if publisher.calls.Load() != 1 {
		t.Fatalf("启动后应立即广播一次, 实际 %d 次", publisher.calls.Load())
	}
}

func TestSchedulerSurvivesPublishFailure(t *testing.T) {
	service, _ := newTestService(t, map[entities.Platform]*stubStrategy{
		entities.PlatformTikTok: {platform: entities.PlatformTikTok},
	})
	publisher := &fakePublisher{failures: 1}

	scheduler := NewBroadcastScheduler(service, publisher, nil, nil, logger.Discard(), 30*time.Millisecond)
	scheduler.Start()
	defer scheduler.Stop()

	// 首次发布失败后下一个周期仍然触发
	deadline := time.Now().Add(2 * time.Second)
	for publisher.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if publisher.calls.Load() < 2 {
		t.Fatalf("发布失败后调度器应继续运行, 实际 %d 次", publisher.calls.Load())
	}
}

func TestSchedulerSavesSnapshot(t *testing.T) {
	service, _ := newTestService(t, map[entities.Platform]*stubStrategy{
		entities.PlatformTikTok: {platform: entities.PlatformTikTok},
	})
	publisher := &fakePublisher{}
	repo := &fakeRepo{err: errors.New("db down")}

	scheduler := NewBroadcastScheduler(service, publisher, repo, nil, logger.Discard(), time.Hour)
	scheduler.Start()

	deadline := time.Now().Add(2 * time.Second)
	for repo.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	scheduler.Stop()

	// 持久化失败不影响广播本身
	if repo.calls.Load() == 0 {
		t.Fatal("应尝试保存报告历史")
	}
	if publisher.calls.Load() != 1 {
		t.Errorf("广播次数 = %d", publisher.calls.Load())
	}
}

func TestSchedulerStops(t *testing.T) {
	service, _ := newTestService(t, map[entities.Platform]*stubStrategy{
		entities.PlatformTikTok: {platform: entities.PlatformTikTok},
	})
	publisher := &fakePublisher{}

	scheduler := NewBroadcastScheduler(service, publisher, nil, nil, logger.Discard(), 20*time.Millisecond)
	scheduler.Start()
	time.Sleep(50 * time.Millisecond)
	scheduler.Stop()

	after := publisher.calls.Load()
	time.Sleep(60 * time.Millisecond)
	if publisher.calls.Load() != after {
		t.Error("Stop之后不应再有广播")
	}
}
