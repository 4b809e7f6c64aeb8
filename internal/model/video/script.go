package video

import "fmt"

// ScriptSegment 脚本片段（一段旁白文本 + 对应画面描述与时间区间）
type ScriptSegment struct {
	Text             string  `json:"text"`                        // 旁白文本
	StartTime        float64 `json:"start_time"`                  // 起始时间（秒）
	EndTime          float64 `json:"end_time"`                    // 结束时间（秒）
	SceneDescription string  `json:"scene_description,omitempty"` // 画面描述（可选）
}

// Duration 片段时长（秒）
func (s ScriptSegment) Duration() float64 {
	return s.EndTime - s.StartTime
}

// Script 生成的视频脚本（每个任务生成一次，之后不可变）
type Script struct {
	Title         string          `json:"title"`          // 标题
	Segments      []ScriptSegment `json:"segments"`       // 有序片段列表
	TotalDuration float64         `json:"total_duration"` // 总时长（秒）
	Summary       string          `json:"summary"`        // 摘要
}

// Normalize 将脚本时间轴规整到恰好覆盖 totalDuration 秒：
//   - 片段数为 0 时返回错误（调用方应改用 FallbackScript）
//   - 片段时间不合法（非递增、总跨度 <= 0）时按片段数均分
//   - 否则按比例缩放，保持各片段相对长度
//   - 空的画面描述补为 "Scene showing: {文本前50字符}..."
func (s *Script) Normalize(totalDuration float64) error {
	if len(s.Segments) == 0 {
		return fmt.Errorf("script has no segments")
	}
	if totalDuration <= 0 {
		return fmt.Errorf("invalid total duration: %f", totalDuration)
	}

	span := s.Segments[len(s.Segments)-1].EndTime
	valid := span > 0
	for i := range s.Segments {
		if s.Segments[i].EndTime <= s.Segments[i].StartTime {
			valid = false
			break
		}
		if i > 0 && s.Segments[i].StartTime < s.Segments[i-1].EndTime {
			valid = false
			break
		}
	}

	if !valid {
		// 时间轴不可用，均分
		per := totalDuration / float64(len(s.Segments))
		for i := range s.Segments {
			s.Segments[i].StartTime = float64(i) * per
			s.Segments[i].EndTime = float64(i+1) * per
		}
	} else if span != totalDuration {
		scale := totalDuration / span
		for i := range s.Segments {
			s.Segments[i].StartTime *= scale
			s.Segments[i].EndTime *= scale
		}
	}

	for i := range s.Segments {
		if s.Segments[i].SceneDescription == "" {
			s.Segments[i].SceneDescription = DefaultSceneDescription(s.Segments[i].Text)
		}
	}

	s.TotalDuration = totalDuration
	return nil
}

// SceneDescriptions 按顺序收集各片段的画面描述
func (s *Script) SceneDescriptions() []string {
	descs := make([]string, 0, len(s.Segments))
	for _, seg := range s.Segments {
		descs = append(descs, seg.SceneDescription)
	}
	return descs
}

// DefaultSceneDescription 根据旁白文本生成默认画面描述
func DefaultSceneDescription(text string) string {
	runes := []rune(text)
	if len(runes) > 50 {
		runes = runes[:50]
	}
	return fmt.Sprintf("Scene showing: %s...", string(runes))
}
