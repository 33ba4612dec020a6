package api

import (
	"github.com/gin-gonic/gin"

	"statsbot/internal/api/handlers"
	"statsbot/internal/api/middleware"
	"statsbot/internal/config"
	"statsbot/internal/services"
)

// NewRouter 创建API路由
func NewRouter(cfg *config.Config, statsService *services.StatsService, history handlers.HistoryRepo) *gin.Engine {
	router := gin.Default()

	// 添加中间件
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())

	// 健康检查路由
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// 初始化处理程序
	statsHandler := handlers.NewStatsHandler(statsService, history)
	configHandler := handlers.NewConfigHandler(statsService)
	exportHandler := handlers.NewExportHandler(history)

	// API路由组 - 受保护路由
	protectedAPI := router.Group("/api/v1")
	protectedAPI.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	{
		// 统计相关路由
		stats := protectedAPI.Group("/stats")
		{
			// 当前完整报告
			stats.GET("", statsHandler.GetStats)

			// 最近一份已保存的报告
			stats.GET("/latest", statsHandler.GetLatestReport)

			// 强制刷新单个平台
			stats.POST("/refresh/:platform", statsHandler.RefreshPlatform)

			// 平台历史快照
			stats.GET("/history/:platform", statsHandler.GetHistory)

			// 导出平台历史为CSV
			stats.GET("/export/:platform", exportHandler.ExportHistory)
		}

		// 账号配置路由，修改仅限管理员
		profiles := protectedAPI.Group("/config/profiles")
		{
			profiles.GET("", configHandler.GetProfiles)
			profiles.PUT("/:key", middleware.RoleMiddleware(middleware.RoleAdmin), configHandler.UpdateProfile)
		}
	}

	return router
}
