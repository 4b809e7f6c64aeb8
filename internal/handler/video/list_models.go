package video

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lychee/internal/pkg/backend"
)

// ListModelsResponseData 模型列表响应数据
type ListModelsResponseData struct {
	Models        map[string][]backend.ModelInfo `json:"models"`         // 按后端分组的模型
	TotalBackends int                            `json:"total_backends"` // 后端数量
	Backends      []string                       `json:"backends"`       // 后端名称列表
}

// ListModels 列出各后端的可用模型
// @Summary      列出各后端的可用模型
// @Description  汇总所有后端的模型目录（结果有缓存，更新有几分钟延迟）
// @Tags         视频生成
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "成功响应"  "{\"code\": 0, \"message\": \"success\", \"data\": {\"models\": {...}, \"total_backends\": 3}}"
// @Failure      500  {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/videos/models [get]
func (h *Handler) ListModels(c *gin.Context) {
	ctx := c.Request.Context()

	// 调用Service层
	models, err := h.videoService.Models(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    50001,
			Message: "Failed to fetch models",
			Detail:  err.Error(),
		})
		return
	}

	backends := make([]string, 0, len(models))
	for name := range models {
		backends = append(backends, name)
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": ListModelsResponseData{
			Models:        models,
			TotalBackends: len(models),
			Backends:      backends,
		},
	})
}
