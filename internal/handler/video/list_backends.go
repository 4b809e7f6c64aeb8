package video

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// backendDescriptions 各后端的说明文案
var backendDescriptions = map[string]string{
	"auto":       "Automatic selection with fallback logic",
	"pollo":      "Pollo.ai Veo 3 - High quality, cinematic videos",
	"imagineart": "ImagineArt - Fast generation, multiple styles",
	"ark":        "Volcengine Ark Seedance - Doubao text-to-video generation",
}

// ListBackendsResponseData 后端列表响应数据
type ListBackendsResponseData struct {
	AvailableBackends []string          `json:"available_backends"` // 可用后端
	Default           string            `json:"default"`            // 默认后端
	Descriptions      map[string]string `json:"descriptions"`       // 各后端说明
}

// ListBackends 列出可用的视频生成后端
// @Summary      列出视频生成后端
// @Description  返回配置了凭证的后端列表（都未配置时返回全部后端，此时生成走模拟适配器）
// @Tags         视频生成
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "成功响应"  "{\"code\": 0, \"message\": \"success\", \"data\": {\"available_backends\": [\"pollo\"], \"default\": \"auto\"}}"
// @Router       /api/v1/videos/backends [get]
func (h *Handler) ListBackends(c *gin.Context) {
	// 调用Service层
	available := h.videoService.AvailableBackends()

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": ListBackendsResponseData{
			AvailableBackends: available,
			Default:           "auto",
			Descriptions:      backendDescriptions,
		},
	})
}
