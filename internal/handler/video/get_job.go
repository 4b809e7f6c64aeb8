package video

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lychee/internal/store"
)

// GetJobRequest 查询任务进度请求
type GetJobRequest struct {
	JobID string `uri:"job_id" binding:"required"` // 任务ID（必填）
}

// GetJob 查询任务进度
// @Summary      查询任务进度
// @Description  根据任务ID查询视频生成任务的状态、进度百分比和当前步骤
// @Tags         视频生成
// @Accept       json
// @Produce      json
// @Param        job_id  path      string  true  "任务ID"
// @Success      200     {object}  map[string]interface{}  "成功响应"  "{\"code\": 0, \"message\": \"success\", \"data\": {\"job_id\": \"...\", \"status\": \"pending\", \"progress\": 0}}"
// @Failure      400     {object}  ErrorResponse  "请求参数错误"
// @Failure      404     {object}  ErrorResponse  "任务不存在"
// @Router       /api/v1/videos/jobs/{job_id} [get]
func (h *Handler) GetJob(c *gin.Context) {
	var req GetJobRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid job_id",
			Detail:  err.Error(),
		})
		return
	}

	// 调用Service层
	progress, err := h.videoService.JobProgress(req.JobID)
	if err != nil {
		code := http.StatusInternalServerError
		errorCode := 50001

		if errors.Is(err, store.ErrJobNotFound) {
			code = http.StatusNotFound
			errorCode = 40401
		}

		c.JSON(code, ErrorResponse{
			Code:    errorCode,
			Message: err.Error(),
		})
		return
	}

	// 进度里带上请求指定的后端，方便客户端展示
	backend, _ := h.videoService.JobBackend(req.JobID)

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    toJobStatusInfo(progress, backend.String()),
	})
}
