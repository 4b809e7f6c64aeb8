package video

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"lychee/internal/model/video"
	"lychee/internal/store"
)

// GenerateResponseData 提交视频生成任务响应数据
type GenerateResponseData struct {
	JobID         string `json:"job_id"`         // 任务ID
	Status        string `json:"status"`         // 提交状态，固定为 started
	Message       string `json:"message"`        // 提示信息
	EstimatedTime string `json:"estimated_time"` // 预计耗时
}

// Generate 提交视频生成任务
// @Summary      提交视频生成任务
// @Description  根据提示词异步生成一条带解说的视频，立即返回任务ID。通过任务查询接口跟踪进度。
// @Tags         视频生成
// @Accept       json
// @Produce      json
// @Param        request  body      video.GenerateVideoRequest  true  "生成请求"
// @Success      200      {object}  map[string]interface{}  "成功响应"  "{\"code\": 0, \"message\": \"视频生成任务已提交\", \"data\": {\"job_id\": \"...\", \"status\": \"started\"}}"
// @Failure      400      {object}  ErrorResponse  "请求参数错误"
// @Failure      500      {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/videos/generate [post]
func (h *Handler) Generate(c *gin.Context) {
	// 先铺默认选项再绑定：未出现在请求体里的字段保持默认值，
	// 显式传入的 false/0 正常覆盖
	req := video.GenerateVideoRequest{Options: video.DefaultGenerationOptions()}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	ctx := c.Request.Context()

	// 调用Service层
	jobID, err := h.videoService.SubmitJob(ctx, &req)
	if err != nil {
		code := http.StatusBadRequest
		errorCode := 40002

		if errors.Is(err, store.ErrJobExists) {
			code = http.StatusInternalServerError
			errorCode = 50001
		}

		c.JSON(code, ErrorResponse{
			Code:    errorCode,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "视频生成任务已提交",
		"data": GenerateResponseData{
			JobID:         jobID,
			Status:        "started",
			Message:       fmt.Sprintf("Video generation started with %s backend", req.Backend),
			EstimatedTime: "2-5 minutes",
		},
	})
}
