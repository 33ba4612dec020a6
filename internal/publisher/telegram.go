package publisher

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"statsbot/internal/domain/entities"
	"statsbot/internal/logger"
)

// messageSender 发送消息的最小接口，便于测试替换真实Bot API
type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramPublisher 把统计报告发布到Telegram群聊
type TelegramPublisher struct {
	sender   messageSender
	chatID   int64
	location *time.Location
	logger   logger.Logger
}

// NewTelegramPublisher 创建Telegram报告发布器
func NewTelegramPublisher(bot *tgbotapi.BotAPI, chatID int64, loc *time.Location, log logger.Logger) *TelegramPublisher {
	return &TelegramPublisher{
		sender:   bot,
		chatID:   chatID,
		location: loc,
		logger:   log,
	}
}

// PublishReport 渲染报告并发送到目标群聊
func (p *TelegramPublisher) PublishReport(ctx context.Context, report *entities.StatsReport, nextRun time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(p.chatID, FormatReport(report, nextRun, p.location))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := p.sender.Send(msg); err != nil {
		return errors.Wrap(err, "发送Telegram消息失败")
	}

	p.logger.InfoContext(ctx, "统计报告已发送到群聊 %d", p.chatID)
	return nil
}
