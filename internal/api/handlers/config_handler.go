package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"statsbot/internal/config"
	"statsbot/internal/services"
)

// ConfigHandler 处理账号配置相关的API请求
type ConfigHandler struct {
	statsService *services.StatsService
}

// NewConfigHandler 创建账号配置处理器
func NewConfigHandler(statsService *services.StatsService) *ConfigHandler {
	return &ConfigHandler{
		statsService: statsService,
	}
}

// GetProfiles 获取当前账号配置
// GET /api/v1/config/profiles
func (h *ConfigHandler) GetProfiles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"profiles": h.statsService.Profiles(),
		"keys":     config.ProfileKeys,
	})
}

// updateProfileRequest 配置更新请求体
type updateProfileRequest struct {
	Value string `json:"value" binding:"required"`
}

// UpdateProfile 更新一个账号配置项并使对应平台缓存失效
// PUT /api/v1/config/profiles/:key
func (h *ConfigHandler) UpdateProfile(c *gin.Context) {
	key := c.Param("key")
	if _, ok := config.PlatformForProfileKey(key); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未知配置键: " + key})
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求体无效: " + err.Error()})
		return
	}

	if err := h.statsService.Reconfigure(key, req.Value); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"key":   key,
		"value": req.Value,
	})
}
