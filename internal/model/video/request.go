package video

import "fmt"

// 请求字段边界
const (
	MinDuration = 10  // 最短总时长（秒）
	MaxDuration = 120 // 最长总时长（秒）

	MinSegmentLength = 3  // 单片段最短时长（秒）
	MaxSegmentLength = 10 // 单片段最长时长（秒）

	MinStyleStrength = 0.1 // 风格强度下限
	MaxStyleStrength = 2.0 // 风格强度上限
)

// GenerationOptions 视频生成选项（各后端通用）
type GenerationOptions struct {
	Resolution    VideoResolution `json:"resolution"`     // 分辨率，默认 1080p
	Length        int             `json:"length"`         // 单片段时长（秒），3-10
	GenerateAudio bool            `json:"generateAudio"`  // 后端是否同时生成环境音
	Quality       string          `json:"quality"`        // 质量档位
	StyleStrength float64         `json:"style_strength"` // 风格强度，0.1-2.0
}

// DefaultGenerationOptions 返回默认生成选项
func DefaultGenerationOptions() GenerationOptions {
	return GenerationOptions{
		Resolution:    Resolution1080p,
		Length:        7,
		GenerateAudio: true,
		Quality:       "high",
		StyleStrength: 1.0,
	}
}

// GenerateVideoRequest 视频生成请求（提交后不可变）
type GenerateVideoRequest struct {
	Prompt     string            `json:"prompt" binding:"required"` // 用户提示词
	Style      VideoStyle        `json:"style"`                     // 画面风格，默认 cinematic
	VoiceStyle VoiceStyle        `json:"voice_style"`               // 配音风格，默认 narrative
	Duration   int               `json:"duration"`                  // 总时长（秒），10-120，默认 30
	Language   string            `json:"language"`                  // 配音语言，默认 en
	Backend    VideoBackend      `json:"backend"`                   // 生成后端，默认 auto
	Options    GenerationOptions `json:"video_options"`             // 生成选项
}

// ApplyDefaults 填充零值字段的默认值
func (r *GenerateVideoRequest) ApplyDefaults() {
	if r.Style == "" {
		r.Style = VideoStyleCinematic
	}
	if r.VoiceStyle == "" {
		r.VoiceStyle = VoiceStyleNarrative
	}
	if r.Duration == 0 {
		r.Duration = 30
	}
	if r.Language == "" {
		r.Language = "en"
	}
	if r.Backend == "" {
		r.Backend = VideoBackendAuto
	}
	if r.Options.Resolution == "" {
		r.Options.Resolution = Resolution1080p
	}
	if r.Options.Length == 0 {
		r.Options.Length = 7
	}
	if r.Options.Quality == "" {
		r.Options.Quality = "high"
	}
	if r.Options.StyleStrength == 0 {
		r.Options.StyleStrength = 1.0
	}
}

// Validate 校验请求参数（先 ApplyDefaults 再调用）
func (r *GenerateVideoRequest) Validate() error {
	if r.Prompt == "" {
		return fmt.Errorf("prompt is required")
	}
	if !r.Style.Valid() {
		return fmt.Errorf("invalid style: %s", r.Style)
	}
	if !r.VoiceStyle.Valid() {
		return fmt.Errorf("invalid voice_style: %s", r.VoiceStyle)
	}
	if r.Duration < MinDuration || r.Duration > MaxDuration {
		return fmt.Errorf("duration must be between %d and %d seconds, got %d", MinDuration, MaxDuration, r.Duration)
	}
	if !r.Backend.Valid() {
		return fmt.Errorf("invalid backend: %s", r.Backend)
	}
	if !r.Options.Resolution.Valid() {
		return fmt.Errorf("invalid resolution: %s", r.Options.Resolution)
	}
	if r.Options.Length < MinSegmentLength || r.Options.Length > MaxSegmentLength {
		return fmt.Errorf("segment length must be between %d and %d seconds, got %d", MinSegmentLength, MaxSegmentLength, r.Options.Length)
	}
	if r.Options.StyleStrength < MinStyleStrength || r.Options.StyleStrength > MaxStyleStrength {
		return fmt.Errorf("style_strength must be between %.1f and %.1f, got %.1f", MinStyleStrength, MaxStyleStrength, r.Options.StyleStrength)
	}
	return nil
}
