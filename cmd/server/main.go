package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"statsbot/internal/adapters"
	"statsbot/internal/adapters/browser"
	"statsbot/internal/adapters/facebook"
	"statsbot/internal/adapters/kwai"
	"statsbot/internal/adapters/tiktok"
	"statsbot/internal/adapters/youtube"
	"statsbot/internal/api"
	"statsbot/internal/api/handlers"
	"statsbot/internal/collector"
	"statsbot/internal/config"
	"statsbot/internal/domain/entities"
	"statsbot/internal/domain/repositories"
	"statsbot/internal/events"
	"statsbot/internal/logger"
	"statsbot/internal/publisher"
	"statsbot/internal/services"
	"statsbot/internal/storage"
	"statsbot/internal/ui/telegram"
)

func main() {
	// 本地开发时从.env加载环境变量，文件不存在则忽略
	_ = godotenv.Load()

	// 加载配置
	cfg, err := config.LoadConfig(config.GetConfigPath())
	if err != nil {
		panic("加载配置失败: " + err.Error())
	}

	// 初始化日志
	log, err := logger.NewLogger(logger.Config{
		Level:         cfg.Log.Level,
		ServiceName:   "statsbot",
		JSONFormat:    cfg.Log.JSONFormat,
		ConsoleOutput: true,
		FilePath:      cfg.Log.FilePath,
	})
	if err != nil {
		panic("初始化日志失败: " + err.Error())
	}
	log.Info("statsbot启动中...")

	// 账号配置
	profiles, err := config.NewProfileStore(cfg.Profiles.Path)
	if err != nil {
		log.Fatal("加载账号配置失败: %v", err)
	}

	// 报告时区
	location, err := time.LoadLocation(cfg.Telegram.Timezone)
	if err != nil {
		log.Warn("加载时区 %s 失败，使用UTC: %v", cfg.Telegram.Timezone, err)
		location = time.UTC
	}

	// 采集基础设施
	detector := adapters.NewBlockDetector(cfg.BlockDetect.Indicators)
	renderer := browser.NewSessionPool(cfg.Browser)
	chains := buildChains(cfg, detector, renderer, log)

	coordinator := collector.NewCollector(chains, profiles, log, collector.Options{
		TTL:      time.Duration(cfg.Cache.TTLSeconds) * time.Second,
		ErrorTTL: time.Duration(cfg.Cache.ErrorTTLSeconds) * time.Second,
	})

	statsService := services.NewStatsService(coordinator, profiles, log)

	// 可选：报告历史持久化
	var snapshotRepo *repositories.ReportRepository
	if cfg.Database.Enabled {
		db, err := storage.NewDBConnection(cfg.Database)
		if err != nil {
			log.Fatal("连接数据库失败: %v", err)
		}
		defer db.Close()

		if err := storage.EnsureSchema(db); err != nil {
			log.Fatal("初始化数据库表结构失败: %v", err)
		}
		snapshotRepo = repositories.NewReportRepository(db)
		log.Info("报告历史持久化已启用")
	}

	// 可选：Kafka快照事件
	var eventSink services.EventSink
	if cfg.Kafka.Enabled {
		producer, err := events.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Fatal("初始化Kafka生产者失败: %v", err)
		}
		defer producer.Close()
		eventSink = producer
		log.Info("Kafka快照事件已启用")
	}

	// Telegram
	var bot *tgbotapi.BotAPI
	if cfg.Telegram.Token != "" {
		bot, err = tgbotapi.NewBotAPI(cfg.Telegram.Token)
		if err != nil {
			log.Fatal("初始化Telegram Bot失败: %v", err)
		}
		log.Info("Telegram Bot已连接: @%s", bot.Self.UserName)
	}

	interval := time.Duration(cfg.BroadcastInterval()) * time.Second

	// 广播调度器
	var scheduler *services.BroadcastScheduler
	if cfg.Scheduler.Enabled && bot != nil && cfg.Telegram.StatsChatID != 0 {
		pub := publisher.NewTelegramPublisher(bot, cfg.Telegram.StatsChatID, location, log)

		var repo services.SnapshotRepo
		if snapshotRepo != nil {
			repo = snapshotRepo
		}
		scheduler = services.NewBroadcastScheduler(statsService, pub, repo, eventSink, log, interval)
		scheduler.Start()
		defer scheduler.Stop()
	} else {
		log.Warn("广播调度器未启用")
	}

	// 命令前端
	if cfg.Telegram.EnableCommands && bot != nil {
		front := telegram.NewBot(bot, statsService, cfg.Telegram.AuthorizedUserID, interval, location, log)
		front.Start()
		defer front.Stop()
	}

	// HTTP API
	var history handlers.HistoryRepo
	if snapshotRepo != nil {
		history = snapshotRepo
	}
	router := api.NewRouter(cfg, statsService, history)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
	}

	// 在goroutine中启动服务器，以便不阻塞信号处理
	go func() {
		log.Info("HTTP服务已启动，端口: %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("监听错误: %v", err)
		}
	}()

	// 等待中断信号优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("正在关闭statsbot...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("服务器关闭错误: %v", err)
	}

	log.Info("statsbot已关闭")
}

// buildChains 按平台组装采集回退链，策略按成本从低到高排列
func buildChains(cfg *config.Config, detector *adapters.BlockDetector,
	renderer browser.Renderer, log logger.Logger) []*collector.Chain {
	ua := cfg.Browser.UserAgent
	resolver := youtube.NewChannelResolver("")

	return []*collector.Chain{
		collector.NewChain(entities.PlatformYouTubeChannel, []adapters.Strategy{
			youtube.NewAboutPageStrategy(entities.PlatformYouTubeChannel, resolver, detector, ua),
			youtube.NewBrowserStrategy(entities.PlatformYouTubeChannel, resolver, renderer, detector),
		}, log),
		collector.NewChain(entities.PlatformYouTubeShorts, []adapters.Strategy{
			youtube.NewAboutPageStrategy(entities.PlatformYouTubeShorts, resolver, detector, ua),
			youtube.NewBrowserStrategy(entities.PlatformYouTubeShorts, resolver, renderer, detector),
		}, log),
		collector.NewChain(entities.PlatformTikTok, []adapters.Strategy{
			tiktok.NewTokCountStrategy(cfg.TokCount, detector),
			tiktok.NewProfilePageStrategy(detector, ua),
			tiktok.NewBrowserStrategy(renderer, detector),
		}, log),
		collector.NewChain(entities.PlatformKwai, []adapters.Strategy{
			kwai.NewWebProfileStrategy(detector, ua),
			kwai.NewBrowserStrategy(renderer, detector),
		}, log),
		collector.NewChain(entities.PlatformFacebookReels, []adapters.Strategy{
			facebook.NewPageStrategy(entities.PlatformFacebookReels, detector, ua),
			facebook.NewBrowserStrategy(entities.PlatformFacebookReels, renderer, detector),
		}, log),
		collector.NewChain(entities.PlatformFacebookPage, []adapters.Strategy{
			facebook.NewPageStrategy(entities.PlatformFacebookPage, detector, ua),
			facebook.NewBrowserStrategy(entities.PlatformFacebookPage, renderer, detector),
		}, log),
	}
}
