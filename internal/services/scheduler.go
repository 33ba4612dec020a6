package services

import (
	"context"
	"sync"
	"time"

	"statsbot/internal/domain/entities"
	"statsbot/internal/logger"
)

// Publisher 报告发布出口，当前实现是Telegram群聊
type Publisher interface {
	PublishReport(ctx context.Context, report *entities.StatsReport, nextRun time.Time) error
}

// SnapshotRepo 报告历史持久化接口，可选
type SnapshotRepo interface {
	SaveReport(ctx context.Context, report *entities.StatsReport) error
}

// EventSink 报告事件外发接口，可选
type EventSink interface {
	ReportGenerated(ctx context.Context, report *entities.StatsReport) error
}

// BroadcastScheduler 固定周期生成并广播统计报告的调度器。
// 晚到的tick会被time.Ticker吸收，不会出现补偿性的连续广播。
type BroadcastScheduler struct {
	service   *StatsService
	publisher Publisher
	repo      SnapshotRepo
	events    EventSink
	logger    logger.Logger
	interval  time.Duration
	stop      chan struct{}
	wg        sync.WaitGroup
}

// NewBroadcastScheduler 创建广播调度器，repo和events允许为nil
func NewBroadcastScheduler(
	service *StatsService,
	publisher Publisher,
	repo SnapshotRepo,
	events EventSink,
	log logger.Logger,
	interval time.Duration,
) *BroadcastScheduler {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &BroadcastScheduler{
		service:   service,
		publisher: publisher,
		repo:      repo,
		events:    events,
		logger:    log,
		interval:  interval,
		stop:      make(chan struct{}),
	}
}

// Start 启动调度器，立即广播一次后按固定周期执行
func (s *BroadcastScheduler) Start() {
	s.wg.Add(1)
	go s.loop()
	s.logger.Info("广播调度器已启动, 周期: %v", s.interval)
}

// Stop 停止调度器并等待当前广播完成
func (s *BroadcastScheduler) Stop() {
	close(s.stop)
	s.wg.Wait()
	s.logger.Info("广播调度器已停止")
}

func (s *BroadcastScheduler) loop() {
	defer s.wg.Done()

	s.broadcast()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.broadcast()
		case <-s.stop:
			return
		}
	}
}

// broadcast 生成一份报告并推送到所有出口。任何一步失败只记日志，
// 不中断调度器，下一个周期照常触发。
func (s *BroadcastScheduler) broadcast() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()
	ctx = logger.WithTraceID(ctx, logger.GenerateTraceID())

	report, err := s.service.BuildReport(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "生成统计报告失败: %v", err)
		return
	}

	nextRun := time.Now().Add(s.interval)
	if err := s.publisher.PublishReport(ctx, report, nextRun); err != nil {
		s.logger.ErrorContext(ctx, "广播统计报告失败: %v", err)
	}

	if s.repo != nil {
		if err := s.repo.SaveReport(ctx, report); err != nil {
			s.logger.ErrorContext(ctx, "保存报告历史失败: %v", err)
		}
	}
	if s.events != nil {
		if err := s.events.ReportGenerated(ctx, report); err != nil {
			s.logger.ErrorContext(ctx, "发送报告事件失败: %v", err)
		}
	}
}
