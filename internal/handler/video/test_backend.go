package video

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"lychee/internal/model/video"
)

// defaultTestPrompt 冒烟测试的默认提示词
const defaultTestPrompt = "A beautiful sunset over the ocean"

// TestBackendRequest 后端冒烟测试请求
type TestBackendRequest struct {
	Backend string `uri:"backend" binding:"required"` // 后端名称（必填）
}

// TestBackend 对单个后端做一次冒烟测试
// @Summary      测试视频生成后端
// @Description  用单片段提示词对指定后端做一次真实生成，验证凭证和连通性，不创建任务。prompt 可通过 query 参数覆盖。
// @Tags         视频生成
// @Accept       json
// @Produce      json
// @Param        backend  path      string  true   "后端名称（auto/pollo/imagineart/ark）"
// @Param        prompt   query     string  false  "测试提示词"
// @Success      200      {object}  map[string]interface{}  "成功响应"  "{\"code\": 0, \"message\": \"success\", \"data\": {\"backend\": \"pollo\", \"success\": true}}"
// @Failure      400      {object}  ErrorResponse  "后端名称无效"
// @Router       /api/v1/videos/backends/{backend}/test [post]
func (h *Handler) TestBackend(c *gin.Context) {
	var req TestBackendRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid backend",
			Detail:  err.Error(),
		})
		return
	}

	backend := video.VideoBackend(req.Backend)
	if !backend.Valid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40002,
			Message: fmt.Sprintf("invalid backend: %s", req.Backend),
		})
		return
	}

	prompt := c.DefaultQuery("prompt", defaultTestPrompt)

	ctx := c.Request.Context()

	// 调用Service层
	result := h.videoService.TestBackend(ctx, backend, prompt)

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    result,
	})
}
