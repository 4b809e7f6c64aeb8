package video

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"lychee/internal/model/video"
)

// GenerateScript 根据提示词生成视频脚本
// 任何失败（LLM 未配置、调用失败、JSON 解析失败、片段为空）都降级为
// 兜底脚本，本阶段不会让任务失败
func (s *videoService) GenerateScript(ctx context.Context, prompt string, style video.VideoStyle,
	voiceStyle video.VoiceStyle, duration int) *video.Script {

	if s.llm == nil {
		log.Warn().Msg("LLM not configured, using fallback script")
		return video.FallbackScript(prompt, duration)
	}

	systemPrompt := buildScriptSystemPrompt(style, voiceStyle, duration)

	content, err := s.llm.Generate(ctx, systemPrompt, prompt)
	if err != nil {
		log.Warn().Err(err).Msg("script generation failed, using fallback script")
		return video.FallbackScript(prompt, duration)
	}

	script, err := parseScriptJSON(content)
	if err != nil {
		log.Warn().Err(err).Msg("script parsing failed, using fallback script")
		return video.FallbackScript(prompt, duration)
	}

	if script.Title == "" {
		script.Title = fmt.Sprintf("Story about %s", prompt)
	}
	if script.Summary == "" {
		script.Summary = fmt.Sprintf("A narrative about %s", prompt)
	}

	if err := script.Normalize(float64(duration)); err != nil {
		log.Warn().Err(err).Msg("script normalization failed, using fallback script")
		return video.FallbackScript(prompt, duration)
	}

	log.Info().
		Str("title", script.Title).
		Int("segments", len(script.Segments)).
		Float64("total_duration", script.TotalDuration).
		Msg("脚本生成成功")

	return script
}

// buildScriptSystemPrompt 构建脚本生成的系统提示词
// 要求模型输出严格 JSON，便于直接反序列化
func buildScriptSystemPrompt(style video.VideoStyle, voiceStyle video.VoiceStyle, duration int) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Create a %d-second video script in %s style with %s narration.\n\n", duration, style, voiceStyle))
	b.WriteString("Return ONLY a JSON object in exactly this shape, with no markdown fences and no commentary:\n")
	b.WriteString(`{
  "title": "short video title",
  "summary": "one-sentence summary",
  "segments": [
    {
      "text": "narration text for this segment",
      "start_time": 0,
      "end_time": 10,
      "scene_description": "what the camera shows during this segment"
    }
  ]
}`)
	b.WriteString("\n\nRequirements:\n")
	b.WriteString("1. Use 3 to 5 segments\n")
	b.WriteString(fmt.Sprintf("2. Segment times are in seconds and must cover 0 to %d with no gaps or overlaps\n", duration))
	b.WriteString("3. Every segment needs a concrete visual scene_description\n")
	b.WriteString("4. The narration must read naturally when spoken aloud\n")

	return b.String()
}

// parseScriptJSON 解析 LLM 返回的脚本 JSON
func parseScriptJSON(content string) (*video.Script, error) {
	cleaned := cleanJSONContent(content)

	var script video.Script
	if err := json.Unmarshal([]byte(cleaned), &script); err != nil {
		return nil, fmt.Errorf("parse script JSON: %w", err)
	}
	if len(script.Segments) == 0 {
		return nil, fmt.Errorf("script has no segments")
	}
	return &script, nil
}

// markdownFencePattern 匹配 ```json ... ``` 代码块
var markdownFencePattern = regexp.MustCompile(`(?s)^\s*` + "```" + `(?:json)?\s*\n(.*?)\n\s*` + "```" + `\s*$`)

// cleanJSONContent 清理 LLM 返回的 JSON 内容
// 移除 markdown 代码块标记和首尾杂质
func cleanJSONContent(content string) string {
	content = strings.TrimSpace(content)

	if matches := markdownFencePattern.FindStringSubmatch(content); len(matches) > 1 {
		content = matches[1]
	}

	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	return strings.TrimSpace(content)
}
