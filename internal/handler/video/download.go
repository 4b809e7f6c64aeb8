package video

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	videosvc "lychee/internal/service/video"
	"lychee/internal/store"
)

// DownloadRequest 下载成片请求
type DownloadRequest struct {
	JobID string `uri:"job_id" binding:"required"` // 任务ID（必填）
}

// Download 下载成片
// @Summary      下载成片
// @Description  下载已完成任务的成片文件。成片不在本地（已发布到远端存储且取流失败）时返回 {"video_url": "..."}，客户端自行跳转。
// @Tags         视频生成
// @Accept       json
// @Produce      application/octet-stream
// @Param        job_id  path      string  true  "任务ID"
// @Success      200     {file}    binary  "文件流"
// @Failure      400     {object}  ErrorResponse  "请求参数错误"
// @Failure      404     {object}  ErrorResponse  "任务不存在或成片未就绪"
// @Failure      500     {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/videos/download/{job_id} [get]
func (h *Handler) Download(c *gin.Context) {
	var req DownloadRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid job_id",
			Detail:  err.Error(),
		})
		return
	}

	ctx := c.Request.Context()

	// 调用Service层
	download, err := h.videoService.DownloadVideo(ctx, req.JobID)
	if err != nil {
		code := http.StatusInternalServerError
		errorCode := 50001
		message := err.Error()

		switch {
		case errors.Is(err, store.ErrJobNotFound):
			code = http.StatusNotFound
			errorCode = 40401
		case errors.Is(err, videosvc.ErrJobNotCompleted), errors.Is(err, videosvc.ErrResultNotFound):
			code = http.StatusNotFound
			errorCode = 40402
			message = "Video not ready"
		}

		c.JSON(code, ErrorResponse{
			Code:    errorCode,
			Message: message,
		})
		return
	}

	// 成片不在本地时返回远端地址，客户端自行跳转
	if download.Reader == nil {
		c.JSON(http.StatusOK, gin.H{
			"video_url": download.RemoteURL,
		})
		return
	}
	defer download.Reader.Close()

	// 设置响应头
	c.Header("Content-Type", "video/mp4")
	c.Header("Content-Disposition", `attachment; filename="`+download.Filename+`"`)
	if download.Size > 0 {
		c.Header("Content-Length", fmt.Sprintf("%d", download.Size))
	}

	// 流式传输文件
	if _, err := io.Copy(c.Writer, download.Reader); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    50002,
			Message: "Failed to stream file",
			Detail:  err.Error(),
		})
		return
	}
}
