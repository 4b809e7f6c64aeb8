package video

import (
	"fmt"
	"strings"
)

// 本包统一定义各数据类型的兜底构造。外部依赖失败时，
// 各阶段用这里的确定性占位结果代替，保证下游永远拿到
// 非空且时间轴完整的数据。

// FallbackScriptSegments 兜底脚本的固定片段数
const FallbackScriptSegments = 3

// SpeechWordsPerMinute 旁白语速估算基准（词/分钟），用于配音时长兜底估算
const SpeechWordsPerMinute = 150.0

// WordCounter 文本词数统计函数（nil 时按空白切分）
type WordCounter func(text string) int

// FallbackScript 生成确定性兜底脚本：固定 3 个片段均分总时长
func FallbackScript(prompt string, duration int) *Script {
	per := float64(duration) / float64(FallbackScriptSegments)

	segments := make([]ScriptSegment, 0, FallbackScriptSegments)
	for i := 0; i < FallbackScriptSegments; i++ {
		segments = append(segments, ScriptSegment{
			Text:             fmt.Sprintf("Segment %d about %s.", i+1, prompt),
			StartTime:        float64(i) * per,
			EndTime:          float64(i+1) * per,
			SceneDescription: fmt.Sprintf("Scene %d", i+1),
		})
	}

	return &Script{
		Title:         fmt.Sprintf("Story about %s", prompt),
		Segments:      segments,
		TotalDuration: float64(duration),
		Summary:       fmt.Sprintf("A narrative about %s", prompt),
	}
}

// FallbackVoiceSegments 由脚本推导兜底配音片段：
// 时长按语速估算（约 150 词/分钟），起始时间逐段累计
func FallbackVoiceSegments(script *Script, countWords WordCounter) []VoiceSegment {
	if countWords == nil {
		countWords = func(text string) int { return len(strings.Fields(text)) }
	}

	segments := make([]VoiceSegment, 0, len(script.Segments))
	current := 0.0
	for i, seg := range script.Segments {
		duration := float64(countWords(seg.Text)) / SpeechWordsPerMinute * 60
		segments = append(segments, VoiceSegment{
			AudioURL:  fmt.Sprintf("fallback_audio_%d.mp3", i),
			Text:      seg.Text,
			StartTime: current,
			EndTime:   current + duration,
			Duration:  duration,
		})
		current += duration
	}
	return segments
}

// FallbackVideoSegments 由脚本推导兜底视频片段：
// 时长直接取脚本片段时长，后端标记为 fallback
func FallbackVideoSegments(script *Script) []VideoSegment {
	segments := make([]VideoSegment, 0, len(script.Segments))
	current := 0.0
	for i, seg := range script.Segments {
		duration := seg.Duration()
		segments = append(segments, VideoSegment{
			VideoURL:         fmt.Sprintf("fallback_video_%d.mp4", i),
			SceneDescription: seg.SceneDescription,
			StartTime:        current,
			EndTime:          current + duration,
			Duration:         duration,
			BackendUsed:      BackendFallback,
		})
		current += duration
	}
	return segments
}
