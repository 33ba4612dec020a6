package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"statsbot/internal/domain/entities"
	"statsbot/internal/services"
)

// HistoryRepo 历史快照查询接口，可选能力
type HistoryRepo interface {
	GetLatestReport(ctx context.Context) (*entities.StatsReport, error)
	GetPlatformHistory(ctx context.Context, platform entities.Platform, since time.Time, limit int) ([]*entities.MetricRecord, error)
}

// StatsHandler 处理统计数据相关的API请求
type StatsHandler struct {
	statsService *services.StatsService
	history      HistoryRepo
}

// NewStatsHandler 创建一个新的统计数据处理器，history允许为nil
func NewStatsHandler(statsService *services.StatsService, history HistoryRepo) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
		history:      history,
	}
}

// GetStats 获取当前完整统计报告
// GET /api/v1/stats
func (h *StatsHandler) GetStats(c *gin.Context) {
	report, err := h.statsService.BuildReport(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// RefreshPlatform 强制刷新一个平台的统计数据
// POST /api/v1/stats/refresh/:platform
func (h *StatsHandler) RefreshPlatform(c *gin.Context) {
	platform := entities.Platform(c.Param("platform"))
	if !platform.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未知平台: " + c.Param("platform")})
		return
	}

	record, err := h.statsService.RefreshPlatform(c.Request.Context(), platform)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, record)
}

// GetHistory 获取一个平台的历史快照
// GET /api/v1/stats/history/:platform?hours=24&limit=100
func (h *StatsHandler) GetHistory(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "历史存储未启用"})
		return
	}

	platform := entities.Platform(c.Param("platform"))
	if !platform.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未知平台: " + c.Param("platform")})
		return
	}

	hours, err := strconv.Atoi(c.DefaultQuery("hours", "24"))
	if err != nil || hours <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hours参数无效"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit参数无效"})
		return
	}

	since := time.Now().Add(-time.Duration(hours) * time.Hour)
	records, err := h.history.GetPlatformHistory(c.Request.Context(), platform, since, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"platform": platform,
		"since":    since,
		"records":  records,
	})
}

// GetLatestReport 获取最近一份已保存的报告
// GET /api/v1/stats/latest
func (h *StatsHandler) GetLatestReport(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "历史存储未启用"})
		return
	}

	report, err := h.history.GetLatestReport(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "还没有保存过报告"})
		return
	}

	c.JSON(http.StatusOK, report)
}
