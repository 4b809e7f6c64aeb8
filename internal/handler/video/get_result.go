package video

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	videosvc "lychee/internal/service/video"
	"lychee/internal/store"
)

// GetResultRequest 查询任务结果请求
type GetResultRequest struct {
	JobID string `uri:"job_id" binding:"required"` // 任务ID（必填）
}

// GetResult 查询任务结果
// @Summary      查询任务结果
// @Description  任务完成后返回成片地址、缩略图、时长等信息；未完成时返回 400 和当前状态
// @Tags         视频生成
// @Accept       json
// @Produce      json
// @Param        job_id  path      string  true  "任务ID"
// @Success      200     {object}  map[string]interface{}  "成功响应"  "{\"code\": 0, \"message\": \"success\", \"data\": {\"job_id\": \"...\", \"video_url\": \"...\"}}"
// @Failure      400     {object}  ErrorResponse  "任务尚未完成"
// @Failure      404     {object}  ErrorResponse  "任务或结果不存在"
// @Router       /api/v1/videos/jobs/{job_id}/result [get]
func (h *Handler) GetResult(c *gin.Context) {
	var req GetResultRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid job_id",
			Detail:  err.Error(),
		})
		return
	}

	// 调用Service层
	result, err := h.videoService.JobResult(req.JobID)
	if err != nil {
		// 未完成时带上当前状态，方便客户端直接展示
		if errors.Is(err, videosvc.ErrJobNotCompleted) {
			message := err.Error()
			if progress, pErr := h.videoService.JobProgress(req.JobID); pErr == nil {
				message = fmt.Sprintf("Job not completed. Current status: %s", progress.Status)
			}
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Code:    40003,
				Message: message,
			})
			return
		}

		code := http.StatusInternalServerError
		errorCode := 50001

		switch {
		case errors.Is(err, store.ErrJobNotFound):
			code = http.StatusNotFound
			errorCode = 40401
		case errors.Is(err, videosvc.ErrResultNotFound):
			code = http.StatusNotFound
			errorCode = 40402
		}

		c.JSON(code, ErrorResponse{
			Code:    errorCode,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    toVideoResultInfo(result),
	})
}
