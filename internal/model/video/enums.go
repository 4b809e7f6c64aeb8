package video

// JobStatus 任务状态（生成流水线的阶段状态机）
// 成功路径: pending → script_generating → voice_generating → video_generating → editing → uploading → completed
// failed 为终态，任意非终态都可能进入
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"           // 待处理
	JobStatusScriptGen JobStatus = "script_generating" // 脚本生成中
	JobStatusVoiceGen  JobStatus = "voice_generating"  // 配音生成中
	JobStatusVideoGen  JobStatus = "video_generating"  // 视频片段生成中
	JobStatusEditing   JobStatus = "editing"           // 合成剪辑中
	JobStatusUploading JobStatus = "uploading"         // 上传发布中
	JobStatusCompleted JobStatus = "completed"         // 已完成
	JobStatusFailed    JobStatus = "failed"            // 失败
)

// String 返回状态的字符串表示
func (s JobStatus) String() string {
	return string(s)
}

// Terminal 是否为终态（completed / failed 之后不再变更）
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// VideoStyle 视频画面风格
type VideoStyle string

const (
	VideoStyleCinematic   VideoStyle = "cinematic"   // 电影感
	VideoStyleDocumentary VideoStyle = "documentary" // 纪录片
	VideoStyleAnimated    VideoStyle = "animated"    // 动画
	VideoStyleRealistic   VideoStyle = "realistic"   // 写实
	VideoStyleArtistic    VideoStyle = "artistic"    // 艺术化
)

// String 返回风格的字符串表示
func (s VideoStyle) String() string {
	return string(s)
}

// Valid 是否为已知风格
func (s VideoStyle) Valid() bool {
	switch s {
	case VideoStyleCinematic, VideoStyleDocumentary, VideoStyleAnimated, VideoStyleRealistic, VideoStyleArtistic:
		return true
	}
	return false
}

// VoiceStyle 旁白配音风格
type VoiceStyle string

const (
	VoiceStyleNarrative      VoiceStyle = "narrative"      // 叙事
	VoiceStyleConversational VoiceStyle = "conversational" // 对话
	VoiceStyleProfessional   VoiceStyle = "professional"   // 专业播报
	VoiceStyleCasual         VoiceStyle = "casual"         // 轻松随意
	VoiceStyleDramatic       VoiceStyle = "dramatic"       // 戏剧化
)

// String 返回配音风格的字符串表示
func (s VoiceStyle) String() string {
	return string(s)
}

// Valid 是否为已知配音风格
func (s VoiceStyle) Valid() bool {
	switch s {
	case VoiceStyleNarrative, VoiceStyleConversational, VoiceStyleProfessional, VoiceStyleCasual, VoiceStyleDramatic:
		return true
	}
	return false
}

// VideoBackend 视频生成后端（封闭枚举，selector 边界一次性解析，pipeline 内不做字符串分发）
type VideoBackend string

const (
	VideoBackendPollo      VideoBackend = "pollo"      // Pollo (Veo3)
	VideoBackendImagineArt VideoBackend = "imagineart" // ImagineArt
	VideoBackendArk        VideoBackend = "ark"        // 火山方舟内容生成
	VideoBackendAuto       VideoBackend = "auto"       // 自动选择（按偏好顺序依次降级）
)

// String 返回后端的字符串表示
func (b VideoBackend) String() string {
	return string(b)
}

// Valid 是否为已知后端选项
func (b VideoBackend) Valid() bool {
	switch b {
	case VideoBackendPollo, VideoBackendImagineArt, VideoBackendArk, VideoBackendAuto:
		return true
	}
	return false
}

// Explicit 是否为显式指定的具体后端（非 auto）
func (b VideoBackend) Explicit() bool {
	return b.Valid() && b != VideoBackendAuto
}

// BackendFallback 降级兜底结果的后端标签（所有后端均失败时使用）
const BackendFallback = "fallback"

// VideoResolution 视频分辨率
type VideoResolution string

const (
	Resolution720p  VideoResolution = "720p"  // 1280x720
	Resolution1080p VideoResolution = "1080p" // 1920x1080
	Resolution4K    VideoResolution = "4k"    // 3840x2160
)

// String 返回分辨率的字符串表示
func (r VideoResolution) String() string {
	return string(r)
}

// Valid 是否为已知分辨率
func (r VideoResolution) Valid() bool {
	switch r {
	case Resolution720p, Resolution1080p, Resolution4K:
		return true
	}
	return false
}

// Size 返回分辨率对应的像素宽高
func (r VideoResolution) Size() (width, height int) {
	switch r {
	case Resolution720p:
		return 1280, 720
	case Resolution4K:
		return 3840, 2160
	default:
		return 1920, 1080
	}
}
