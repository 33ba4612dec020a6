package telegram

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"statsbot/internal/config"
	"statsbot/internal/logger"
	"statsbot/internal/publisher"
	"statsbot/internal/services"
)

// Bot Telegram命令前端，供授权用户按需查询报告和修改账号配置
type Bot struct {
	api      *tgbotapi.BotAPI
	service  *services.StatsService
	logger   logger.Logger
	location *time.Location

	authorizedUserID int64 // 0 表示不限制
	interval         time.Duration

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewBot 创建命令前端
func NewBot(api *tgbotapi.BotAPI, service *services.StatsService, authorizedUserID int64,
	interval time.Duration, loc *time.Location, log logger.Logger) *Bot {
	return &Bot{
		api:              api,
		service:          service,
		logger:           log,
		location:         loc,
		authorizedUserID: authorizedUserID,
		interval:         interval,
		stop:             make(chan struct{}),
	}
}

// Start 启动命令循环
func (b *Bot) Start() {
	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = 30
	updates := b.api.GetUpdatesChan(updateCfg)

	b.wg.Add(1)
	go b.loop(updates)
	b.logger.Info("Telegram命令前端已启动: @%s", b.api.Self.UserName)
}

// Stop 停止命令循环
func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()
	close(b.stop)
	b.wg.Wait()
}

func (b *Bot) loop(updates tgbotapi.UpdatesChannel) {
	defer b.wg.Done()

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(update)
		case <-b.stop:
			return
		}
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	if update.Message == nil || !update.Message.IsCommand() {
		return
	}
	msg := update.Message

	if !b.authorized(msg.From) {
		b.reply(msg.Chat.ID, "Você não está autorizado a usar este bot.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()
	ctx = logger.WithTraceID(ctx, logger.GenerateTraceID())

	switch msg.Command() {
	case "start", "help":
		b.reply(msg.Chat.ID, helpText())
	case "stats":
		b.handleStats(ctx, msg.Chat.ID)
	case "config":
		b.handleConfig(msg.Chat.ID, msg.CommandArguments())
	default:
		b.reply(msg.Chat.ID, "Comando desconhecido. Use /help.")
	}
}

// authorized 检查发送者是否允许使用机器人
func (b *Bot) authorized(user *tgbotapi.User) bool {
	if b.authorizedUserID == 0 {
		return true
	}
	return user != nil && user.ID == b.authorizedUserID
}

// handleStats 按需生成并回复完整报告
func (b *Bot) handleStats(ctx context.Context, chatID int64) {
	report, err := b.service.BuildReport(ctx)
	if err != nil {
		b.logger.ErrorContext(ctx, "按需生成报告失败: %v", err)
		b.reply(chatID, "Falha ao gerar o relatório. Tente novamente.")
		return
	}

	text := publisher.FormatReport(report, time.Now().Add(b.interval), b.location)
	reply := tgbotapi.NewMessage(chatID, text)
	reply.ParseMode = tgbotapi.ModeHTML
	reply.DisableWebPagePreview = true
	if _, err := b.api.Send(reply); err != nil {
		b.logger.ErrorContext(ctx, "发送报告回复失败: %v", err)
	}
}

// handleConfig 处理配置查询和修改：/config 列出、/config chave=valor 修改
func (b *Bot) handleConfig(chatID int64, args string) {
	args = strings.TrimSpace(args)
	if args == "" {
		b.reply(chatID, configListText(b.service.Profiles()))
		return
	}

	key, value, err := parseConfigArg(args)
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}

	if err := b.service.Reconfigure(key, value); err != nil {
		b.logger.Error("通过命令修改配置失败: %v", err)
		b.reply(chatID, fmt.Sprintf("Falha ao atualizar %s.", key))
		return
	}
	b.reply(chatID, fmt.Sprintf("✅ %s atualizado. O próximo relatório usará o novo valor.", key))
}

// parseConfigArg 解析 chave=valor 形式的配置参数
func parseConfigArg(args string) (string, string, error) {
	key, value, found := strings.Cut(args, "=")
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if !found || key == "" || value == "" {
		return "", "", fmt.Errorf("Formato inválido. Use: /config chave=valor")
	}
	if _, ok := config.PlatformForProfileKey(key); !ok {
		return "", "", fmt.Errorf("Chave desconhecida: %s. Use /config para ver as chaves.", key)
	}
	return key, value, nil
}

// configListText 渲染当前配置和可用键列表
func configListText(profiles map[string]string) string {
	keys := make([]string, 0, len(config.ProfileKeys))
	for key := range config.ProfileKeys {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("⚙️ Configuração atual:\n")
	for _, key := range keys {
		value := profiles[key]
		if value == "" {
			value = "(não configurado)"
		}
		b.WriteString(fmt.Sprintf("• %s: %s\n", key, value))
	}
	b.WriteString("\nPara alterar: /config chave=valor")
	return b.String()
}

func helpText() string {
	return strings.Join([]string{
		"📊 Bot de estatísticas",
		"",
		"/stats — gerar o relatório agora",
		"/config — ver a configuração das contas",
		"/config chave=valor — alterar uma conta monitorada",
	}, "\n")
}

// reply 发送纯文本回复
func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("发送Telegram回复失败: %v", err)
	}
}
