package video

import "time"

// JobProgress 任务进度（对外可见的状态投影）
type JobProgress struct {
	JobID               string     `json:"job_id"`                         // 任务ID
	Status              JobStatus  `json:"status"`                         // 当前状态
	Progress            int        `json:"progress"`                       // 进度百分比 0-100
	CurrentStep         string     `json:"current_step"`                   // 当前步骤描述
	EstimatedCompletion *time.Time `json:"estimated_completion,omitempty"` // 预计完成时间（可选）
	ErrorMessage        string     `json:"error_message,omitempty"`        // 失败时的错误信息
	CreatedAt           time.Time  `json:"created_at"`                     // 创建时间
	UpdatedAt           time.Time  `json:"updated_at"`                     // 最近更新时间
}

// VideoResult 最终生成结果
type VideoResult struct {
	JobID        string         `json:"job_id"`                  // 任务ID
	VideoURL     string         `json:"video_url"`               // 成片地址
	ThumbnailURL string         `json:"thumbnail_url,omitempty"` // 封面缩略图地址（可选）
	Duration     float64        `json:"duration"`                // 成片时长（秒）
	FileSize     int64          `json:"file_size,omitempty"`     // 文件大小（字节，可选）
	Metadata     map[string]any `json:"metadata"`                // 附加元数据
	CreatedAt    time.Time      `json:"created_at"`              // 生成时间
	BackendUsed  string         `json:"backend_used,omitempty"`  // 使用的视频后端
}

// Job 一次端到端的生成任务。记录由 store 独占持有，
// 各阶段只拿到自己需要的数据，不持有 Job 引用
type Job struct {
	ID       string               `json:"job_id"`           // 任务ID（提交时生成，全局唯一）
	Request  GenerateVideoRequest `json:"request"`          // 原始请求（不可变）
	Progress JobProgress          `json:"progress"`         // 可变进度
	Result   *VideoResult         `json:"result,omitempty"` // 完成后的结果
}

// NewJob 创建处于 pending 状态的新任务
func NewJob(id string, req GenerateVideoRequest) *Job {
	now := time.Now()
	return &Job{
		ID:      id,
		Request: req,
		Progress: JobProgress{
			JobID:       id,
			Status:      JobStatusPending,
			Progress:    0,
			CurrentStep: "Initializing video generation",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
}
