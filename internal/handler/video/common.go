package video

import (
	"time"

	"lychee/internal/model/video"
	httputil "lychee/internal/pkg/http"
)

// ErrorResponse 错误响应类型别名（使用共用的 http.ErrorResponse）
type ErrorResponse = httputil.ErrorResponse

// JobStatusInfo 任务进度信息（用于响应）
type JobStatusInfo struct {
	JobID        string `json:"job_id"`                  // 任务ID
	Status       string `json:"status"`                  // 任务状态
	Progress     int    `json:"progress"`                // 进度百分比，0-100
	CurrentStep  string `json:"current_step"`            // 当前步骤描述
	ErrorMessage string `json:"error_message,omitempty"` // 失败时的错误信息
	CreatedAt    string `json:"created_at"`              // 创建时间
	UpdatedAt    string `json:"updated_at"`              // 更新时间
	Backend      string `json:"backend,omitempty"`       // 请求指定的后端
}

// toJobStatusInfo 将 JobProgress 转换为 JobStatusInfo
func toJobStatusInfo(progress *video.JobProgress, backend string) JobStatusInfo {
	return JobStatusInfo{
		JobID:        progress.JobID,
		Status:       progress.Status.String(),
		Progress:     progress.Progress,
		CurrentStep:  progress.CurrentStep,
		ErrorMessage: progress.ErrorMessage,
		CreatedAt:    progress.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    progress.UpdatedAt.Format(time.RFC3339),
		Backend:      backend,
	}
}

// VideoResultInfo 成片结果信息（用于响应）
type VideoResultInfo struct {
	JobID        string         `json:"job_id"`                  // 任务ID
	VideoURL     string         `json:"video_url"`               // 成片地址
	ThumbnailURL string         `json:"thumbnail_url,omitempty"` // 封面缩略图地址
	Duration     float64        `json:"duration"`                // 成片时长（秒）
	FileSize     int64          `json:"file_size,omitempty"`     // 文件大小（字节）
	CreatedAt    string         `json:"created_at"`              // 生成时间
	BackendUsed  string         `json:"backend_used,omitempty"`  // 实际使用的后端
	Metadata     map[string]any `json:"metadata"`                // 附加元数据
}

// toVideoResultInfo 将 VideoResult 转换为 VideoResultInfo
func toVideoResultInfo(result *video.VideoResult) VideoResultInfo {
	return VideoResultInfo{
		JobID:        result.JobID,
		VideoURL:     result.VideoURL,
		ThumbnailURL: result.ThumbnailURL,
		Duration:     result.Duration,
		FileSize:     result.FileSize,
		CreatedAt:    result.CreatedAt.Format(time.RFC3339),
		BackendUsed:  result.BackendUsed,
		Metadata:     result.Metadata,
	}
}
