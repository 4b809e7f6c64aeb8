package backend

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"lychee/internal/model/video"
)

// MockAdapter 未配置 API Key 时的模拟适配器
// 返回固定格式的视频地址，方便本地联调整条流水线
type MockAdapter struct {
	name   string
	host   string
	models []ModelInfo
}

// NewMockAdapter 按后端类型创建对应的模拟适配器
func NewMockAdapter(backend video.VideoBackend) *MockAdapter {
	m := &MockAdapter{name: backend.String()}

	switch backend {
	case video.VideoBackendImagineArt:
		m.host = "mock-imagineart-storage.com"
		m.models = []ModelInfo{
			{ID: "text-to-video-v2", Name: "Text to Video v2", Description: "Latest text-to-video model", Backend: m.name},
			{ID: "image-to-video-v1", Name: "Image to Video v1", Description: "Image-to-video generation", Backend: m.name},
			{ID: "text-to-video-v1", Name: "Text to Video v1", Description: "Previous generation model", Backend: m.name},
		}
	case video.VideoBackendArk:
		m.host = "mock-ark-storage.com"
		m.models = []ModelInfo{
			{ID: "doubao-seedance-1-0-pro-250528", Name: "Doubao Seedance Pro", Description: "Volcengine Ark video generation model", Backend: m.name},
		}
	default:
		m.host = "mock-video-storage.com"
		m.models = []ModelInfo{
			{ID: "veo-3", Name: "Veo 3", Description: "Latest video generation model", Backend: m.name},
			{ID: "veo-2", Name: "Veo 2", Description: "Previous generation model", Backend: m.name},
		}
	}

	return m
}

// Name 后端标识
func (m *MockAdapter) Name() string {
	return m.name
}

// GenerateSegments 为每条画面描述生成一个模拟片段
func (m *MockAdapter) GenerateSegments(_ context.Context, sceneDescriptions []string, style video.VideoStyle,
	durationPerSegment int, _ video.GenerationOptions) ([]video.VideoSegment, error) {

	log.Info().Str("backend", m.name).Int("segments", len(sceneDescriptions)).Msg("using mock video generation")

	segments := make([]video.VideoSegment, 0, len(sceneDescriptions))
	current := 0.0

	for i, description := range sceneDescriptions {
		segments = append(segments, video.VideoSegment{
			VideoURL:         m.segmentURL(i, style),
			SceneDescription: description,
			StartTime:        current,
			EndTime:          current + float64(durationPerSegment),
			Duration:         float64(durationPerSegment),
			BackendUsed:      m.name,
		})
		current += float64(durationPerSegment)
	}

	return segments, nil
}

func (m *MockAdapter) segmentURL(i int, style video.VideoStyle) string {
	if m.name == video.VideoBackendImagineArt.String() {
		return fmt.Sprintf("https://%s/segment_%d_%s.mp4", m.host, i, style)
	}
	return fmt.Sprintf("https://%s/video_segment_%d.mp4", m.host, i)
}

// CheckStatus 模拟任务始终完成
func (m *MockAdapter) CheckStatus(_ context.Context, taskID string) TaskStatus {
	return TaskStatus{
		TaskID:   taskID,
		Status:   "completed",
		Progress: 100,
		VideoURL: fmt.Sprintf("https://%s/%s.mp4", m.host, taskID),
	}
}

// ListModels 返回固定的模型列表
func (m *MockAdapter) ListModels(_ context.Context) []ModelInfo {
	return m.models
}
