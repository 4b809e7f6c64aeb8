package video

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListJobsResponseData 任务列表响应数据
type ListJobsResponseData struct {
	Jobs  []JobStatusInfo `json:"jobs"`  // 任务进度列表
	Total int             `json:"total"` // 任务总数
}

// ListJobs 列出所有任务
// @Summary      列出所有任务
// @Description  返回进程内所有视频生成任务的进度投影（服务重启后清空）
// @Tags         视频生成
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "成功响应"  "{\"code\": 0, \"message\": \"success\", \"data\": {\"jobs\": [...], \"total\": 1}}"
// @Router       /api/v1/videos/jobs [get]
func (h *Handler) ListJobs(c *gin.Context) {
	// 调用Service层
	progressList := h.videoService.ListJobs()

	jobs := make([]JobStatusInfo, 0, len(progressList))
	for i := range progressList {
		jobs = append(jobs, toJobStatusInfo(&progressList[i], ""))
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": ListJobsResponseData{
			Jobs:  jobs,
			Total: len(jobs),
		},
	})
}
