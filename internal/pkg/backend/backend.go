// Package backend 实现视频生成后端的统一抽象：
// 各后端以 Adapter 接口接入，Selector 负责解析请求指定的后端
// 并实现 auto 模式的降级策略。
package backend

import (
	"context"
	"time"

	"lychee/internal/model/video"
)

// Adapter 视频生成后端适配器
// GenerateSegments 为每条画面描述生成一个视频片段，数量与顺序
// 与输入一致，起始时间从 0 逐段累计；任何传输或远端错误都包装为
// 单个返回错误，不返回残缺的片段列表。
// CheckStatus / ListModels 仅用于状态查询，尽力而为：失败时记录
// 警告并返回空值，不向调用方传播错误。
type Adapter interface {
	// Name 后端标识（与 video.VideoBackend 的取值一致）
	Name() string

	// GenerateSegments 为有序画面描述生成等量有序的视频片段
	GenerateSegments(ctx context.Context, sceneDescriptions []string, style video.VideoStyle,
		durationPerSegment int, opts video.GenerationOptions) ([]video.VideoSegment, error)

	// CheckStatus 查询远端任务状态（尽力而为，不报错）
	CheckStatus(ctx context.Context, taskID string) TaskStatus

	// ListModels 列出后端可用模型（尽力而为，不报错）
	ListModels(ctx context.Context) []ModelInfo
}

// TaskStatus 远端生成任务的状态记录
type TaskStatus struct {
	TaskID   string `json:"task_id"`             // 任务ID
	Status   string `json:"status"`              // 状态（pending/processing/completed/failed/unknown）
	Progress int    `json:"progress"`            // 进度百分比
	VideoURL string `json:"video_url,omitempty"` // 完成后的视频地址
}

// ModelInfo 模型描述
type ModelInfo struct {
	ID          string `json:"id"`                    // 模型ID
	Name        string `json:"name"`                  // 模型名称
	Description string `json:"description,omitempty"` // 说明
	Backend     string `json:"backend"`               // 所属后端
}

// PollPolicy 远端任务轮询策略：固定间隔、固定最大次数，超限判定超时
type PollPolicy struct {
	Interval    time.Duration
	MaxAttempts int
}

// DefaultPollPolicy 默认轮询策略
func DefaultPollPolicy() PollPolicy {
	return PollPolicy{
		Interval:    5 * time.Second,
		MaxAttempts: 60,
	}
}

// StylePrompt 返回风格对应的提示词前缀
func StylePrompt(style video.VideoStyle) string {
	switch style {
	case video.VideoStyleDocumentary:
		return "Documentary style, natural lighting, realistic, handheld camera"
	case video.VideoStyleAnimated:
		return "Animated style, colorful, smooth animation, artistic"
	case video.VideoStyleRealistic:
		return "Realistic, natural, everyday scene, authentic"
	case video.VideoStyleArtistic:
		return "Artistic, creative, stylized, visually striking"
	default:
		return "Cinematic shot, professional lighting, high quality, smooth camera movement"
	}
}
