package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"statsbot/internal/domain/entities"
)

// ExportHandler 数据导出处理器
type ExportHandler struct {
	history HistoryRepo
}

// NewExportHandler 创建新的数据导出处理器
func NewExportHandler(history HistoryRepo) *ExportHandler {
	return &ExportHandler{
		history: history,
	}
}

// ExportHistory 导出一个平台的历史快照为CSV
// GET /api/v1/stats/export/:platform?days=30
func (h *ExportHandler) ExportHistory(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "历史存储未启用"})
		return
	}

	platform := entities.Platform(c.Param("platform"))
	if !platform.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未知平台: " + c.Param("platform")})
		return
	}

	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days参数无效"})
		return
	}

	since := time.Now().AddDate(0, 0, -days)
	records, err := h.history.GetPlatformHistory(c.Request.Context(), platform, since, 500)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	filename := fmt.Sprintf("%s_history_%s.csv", platform, time.Now().Format("20060102"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename="+filename)

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	if err := writer.Write([]string{"fetched_at", "status", "identifier", "followers", "total_views", "likes", "videos", "detail"}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "写入CSV失败"})
		return
	}

	for _, record := range records {
		row := []string{
			record.FetchedAt.Format(time.RFC3339),
			string(record.Status),
			record.Identifier,
			formatCell(record.Followers),
			formatCell(record.TotalViews),
			formatCell(record.Likes),
			formatCell(record.Videos),
			record.Detail,
		}
		if err := writer.Write(row); err != nil {
			return
		}
	}
}

// formatCell 数值缺失时输出空单元格
func formatCell(value *int64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatInt(*value, 10)
}
