package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	videosvc "lychee/internal/service/video"
)

// Version 服务版本号
const Version = "2.0.0"

// HealthHandler 健康检查处理器
type HealthHandler struct {
	videoService videosvc.VideoService
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(videoService videosvc.VideoService) *HealthHandler {
	return &HealthHandler{
		videoService: videoService,
	}
}

// Health 健康检查
// 带上后端可用情况和运行中的任务数，方便探活时顺带巡检
func (h *HealthHandler) Health(c *gin.Context) {
	backends := h.videoService.AvailableBackends()

	c.JSON(http.StatusOK, gin.H{
		"status":             "healthy",
		"timestamp":          time.Now().Format(time.RFC3339),
		"version":            Version,
		"backends_available": len(backends),
		"backends":           backends,
		"active_jobs":        h.videoService.ActiveJobs(),
	})
}

// Ready 就绪检查
func (h *HealthHandler) Ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}
