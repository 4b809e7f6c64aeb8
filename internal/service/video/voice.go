package video

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"lychee/internal/model/video"
)

// GenerateVoice 为脚本各片段生成配音
// TTS 未配置时返回 mock 片段；合成失败时整体降级为兜底片段，
// 时间轴按实际（或估算）音频时长逐段累计
func (s *videoService) GenerateVoice(ctx context.Context, script *video.Script,
	voiceStyle video.VoiceStyle, language, workDir string) []video.VoiceSegment {

	if s.tts == nil {
		log.Warn().Msg("TTS not configured, using mock voice segments")
		return s.mockVoiceSegments(script)
	}

	segments := make([]video.VoiceSegment, 0, len(script.Segments))
	current := 0.0

	for i, seg := range script.Segments {
		audio, err := s.tts.Synthesize(ctx, seg.Text, voiceStyle)
		if err != nil {
			log.Warn().Err(err).Int("segment", i).
				Msg("voice synthesis failed, using fallback voice segments")
			return video.FallbackVoiceSegments(script, s.counter.Count)
		}

		audioPath := filepath.Join(workDir, fmt.Sprintf("voice_segment_%d.mp3", i))
		if err := os.WriteFile(audioPath, audio, 0o644); err != nil {
			log.Warn().Err(err).Int("segment", i).
				Msg("write voice segment failed, using fallback voice segments")
			return video.FallbackVoiceSegments(script, s.counter.Count)
		}

		duration := s.audioDuration(ctx, audioPath, seg.Text)
		segments = append(segments, video.VoiceSegment{
			AudioURL:  audioPath,
			Text:      seg.Text,
			StartTime: current,
			EndTime:   current + duration,
			Duration:  duration,
		})
		current += duration
	}

	log.Info().
		Int("segments", len(segments)).
		Float64("total_duration", current).
		Str("voice_style", string(voiceStyle)).
		Str("language", language).
		Msg("配音生成成功")

	return segments
}

// mockVoiceSegments 生成 mock 配音片段，时长按语速估算
func (s *videoService) mockVoiceSegments(script *video.Script) []video.VoiceSegment {
	segments := make([]video.VoiceSegment, 0, len(script.Segments))
	current := 0.0
	for i, seg := range script.Segments {
		duration := float64(s.counter.Count(seg.Text)) / video.SpeechWordsPerMinute * 60
		segments = append(segments, video.VoiceSegment{
			AudioURL:  fmt.Sprintf("mock_audio_segment_%d.mp3", i),
			Text:      seg.Text,
			StartTime: current,
			EndTime:   current + duration,
			Duration:  duration,
		})
		current += duration
	}
	return segments
}

// audioDuration 获取音频实际时长，探测失败时按语速估算
func (s *videoService) audioDuration(ctx context.Context, audioPath, text string) float64 {
	if s.ffmpeg.Available() {
		if d, err := s.ffmpeg.GetMediaDuration(ctx, audioPath); err == nil && d > 0 {
			return d
		}
	}
	return float64(s.counter.Count(text)) / video.SpeechWordsPerMinute * 60
}
