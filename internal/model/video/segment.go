package video

// VoiceSegment 配音片段（与脚本片段一一对应，顺序一致）
// start_time 为累计值：segment[i].start = segments[0..i-1] 的时长之和
type VoiceSegment struct {
	AudioURL  string  `json:"audio_url"`  // 音频地址（本地路径或 URL）
	Text      string  `json:"text"`       // 对应旁白文本
	StartTime float64 `json:"start_time"` // 起始时间（秒，累计）
	EndTime   float64 `json:"end_time"`   // 结束时间（秒）
	Duration  float64 `json:"duration"`   // 时长（秒）
}

// VideoSegment 视频片段（与脚本片段一一对应，顺序一致）
type VideoSegment struct {
	VideoURL         string  `json:"video_url"`              // 视频地址（本地路径或 URL）
	SceneDescription string  `json:"scene_description"`      // 画面描述
	StartTime        float64 `json:"start_time"`             // 起始时间（秒，累计）
	EndTime          float64 `json:"end_time"`               // 结束时间（秒）
	Duration         float64 `json:"duration"`               // 时长（秒）
	BackendUsed      string  `json:"backend_used,omitempty"` // 生成该片段的后端标识
}
