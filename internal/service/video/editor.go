package video

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"lychee/internal/model/video"
)

// assemblyFPS 成片统一帧率
const assemblyFPS = 30

// mediaClient 拉取远端音视频片段的 HTTP 客户端
var mediaClient = &http.Client{Timeout: 5 * time.Minute}

// MergeSegments 将视频片段和配音片段合成为最终成片
// mock/兜底片段没有真实文件，用本地合成的占位素材代替，保证流水线
// 在没有任何真实后端的环境里也能端到端跑通；合成类错误直接上抛
func (s *videoService) MergeSegments(ctx context.Context, jobID string,
	videoSegments []video.VideoSegment, voiceSegments []video.VoiceSegment,
	opts video.GenerationOptions, workDir string) (*video.VideoResult, error) {

	if len(videoSegments) == 0 {
		return nil, fmt.Errorf("no video segments to merge")
	}

	totalDuration := 0.0
	for _, seg := range videoSegments {
		totalDuration += seg.Duration
	}
	backendUsed := videoSegments[0].BackendUsed

	if !s.ffmpeg.Available() {
		log.Warn().Str("job_id", jobID).Msg("FFmpeg not available, producing stub output")
		return s.stubResult(jobID, workDir, totalDuration, backendUsed)
	}

	width, height := opts.Resolution.Size()

	// 1. 逐段落盘并标准化，占位片段合成色块
	videoPaths := make([]string, 0, len(videoSegments))
	for i, seg := range videoSegments {
		standardized := filepath.Join(workDir, fmt.Sprintf("segment_%d.mp4", i))

		if placeholderMedia(seg.VideoURL) {
			if err := s.ffmpeg.SynthesizeColorClip(ctx, standardized, seg.Duration, width, height, assemblyFPS); err != nil {
				return nil, fmt.Errorf("synthesize placeholder segment %d: %w", i, err)
			}
		} else {
			raw := filepath.Join(workDir, fmt.Sprintf("segment_%d_raw.mp4", i))
			if err := fetchMedia(ctx, seg.VideoURL, raw); err != nil {
				return nil, fmt.Errorf("fetch video segment %d: %w", i, err)
			}
			if err := s.ffmpeg.StandardizeVideo(ctx, raw, standardized, width, height, assemblyFPS); err != nil {
				return nil, fmt.Errorf("standardize video segment %d: %w", i, err)
			}
		}
		videoPaths = append(videoPaths, standardized)
	}

	// 2. 拼接视频轨
	mergedVideo := filepath.Join(workDir, "merged_video.mp4")
	if err := s.ffmpeg.ConcatVideos(ctx, videoPaths, mergedVideo); err != nil {
		return nil, fmt.Errorf("concat video segments: %w", err)
	}

	videoDuration := totalDuration
	if d, err := s.ffmpeg.GetMediaDuration(ctx, mergedVideo); err == nil && d > 0 {
		videoDuration = d
	}

	// 3. 拼接解说音轨，配音不可用时铺静音
	narration, err := s.buildNarrationTrack(ctx, voiceSegments, videoDuration, workDir)
	if err != nil {
		return nil, fmt.Errorf("build narration track: %w", err)
	}

	// 4. 背景音乐（可选）
	if track := s.cfg.Pipeline.BackgroundTrack; track != "" {
		if _, err := os.Stat(track); err == nil {
			mixed := filepath.Join(workDir, "narration_mixed.m4a")
			if err := s.ffmpeg.MixAudio(ctx, narration, track, videoDuration, mixed); err != nil {
				return nil, fmt.Errorf("mix background music: %w", err)
			}
			narration = mixed
		} else {
			log.Warn().Str("track", track).Msg("background track not found, skipping")
		}
	}

	// 5. 封装成片
	finalPath := filepath.Join(workDir, "final_video.mp4")
	if err := s.ffmpeg.Mux(ctx, mergedVideo, narration, finalPath); err != nil {
		return nil, fmt.Errorf("mux final video: %w", err)
	}

	// 6. 封面帧，失败不阻断
	thumbPath := filepath.Join(workDir, "final_thumb.jpg")
	if err := s.ffmpeg.CreateThumbnail(ctx, finalPath, thumbPath, 1.0); err != nil {
		log.Warn().Err(err).Str("job_id", jobID).Msg("create thumbnail failed")
		thumbPath = ""
	}

	duration := videoDuration
	if d, err := s.ffmpeg.GetMediaDuration(ctx, finalPath); err == nil && d > 0 {
		duration = d
	}

	var fileSize int64
	if info, err := os.Stat(finalPath); err == nil {
		fileSize = info.Size()
	}

	log.Info().
		Str("job_id", jobID).
		Str("output", finalPath).
		Float64("duration", duration).
		Int64("file_size", fileSize).
		Msg("视频合成成功")

	return &video.VideoResult{
		JobID:        jobID,
		VideoURL:     finalPath,
		ThumbnailURL: thumbPath,
		Duration:     duration,
		FileSize:     fileSize,
		CreatedAt:    time.Now(),
		BackendUsed:  backendUsed,
	}, nil
}

// buildNarrationTrack 逐段落盘配音并拼接为一条音轨
// 占位配音合成等长静音；没有任何配音片段时铺一条整长静音
func (s *videoService) buildNarrationTrack(ctx context.Context,
	voiceSegments []video.VoiceSegment, videoDuration float64, workDir string) (string, error) {

	narration := filepath.Join(workDir, "narration.m4a")

	hasReal := false
	for _, seg := range voiceSegments {
		if !placeholderMedia(seg.AudioURL) {
			hasReal = true
			break
		}
	}
	if len(voiceSegments) == 0 || !hasReal {
		if err := s.ffmpeg.SynthesizeSilence(ctx, narration, videoDuration); err != nil {
			return "", err
		}
		return narration, nil
	}

	audioPaths := make([]string, 0, len(voiceSegments))
	for i, seg := range voiceSegments {
		if placeholderMedia(seg.AudioURL) {
			silence := filepath.Join(workDir, fmt.Sprintf("narration_%d.m4a", i))
			dur := seg.Duration
			if dur <= 0 {
				dur = 1
			}
			if err := s.ffmpeg.SynthesizeSilence(ctx, silence, dur); err != nil {
				return "", err
			}
			audioPaths = append(audioPaths, silence)
			continue
		}

		local := filepath.Join(workDir, fmt.Sprintf("narration_%d.mp3", i))
		if err := fetchMedia(ctx, seg.AudioURL, local); err != nil {
			return "", fmt.Errorf("fetch voice segment %d: %w", i, err)
		}
		audioPaths = append(audioPaths, local)
	}

	if err := s.ffmpeg.ConcatAudio(ctx, audioPaths, narration); err != nil {
		return "", err
	}
	return narration, nil
}

// stubResult FFmpeg 不可用时的占位成片，保证开发环境流水线可用
func (s *videoService) stubResult(jobID, workDir string, duration float64, backendUsed string) (*video.VideoResult, error) {
	finalPath := filepath.Join(workDir, "final_video.mp4")
	content := []byte("stub video content\n")
	if err := os.WriteFile(finalPath, content, 0o644); err != nil {
		return nil, fmt.Errorf("write stub video: %w", err)
	}

	return &video.VideoResult{
		JobID:       jobID,
		VideoURL:    finalPath,
		Duration:    duration,
		FileSize:    int64(len(content)),
		CreatedAt:   time.Now(),
		BackendUsed: backendUsed,
	}, nil
}

// placeholderMedia 判断片段地址是否为占位地址（没有真实文件可取）
// mock 后端的地址统一落在 mock-*.com 域名，兜底地址是不存在的相对路径
func placeholderMedia(mediaURL string) bool {
	if strings.HasPrefix(mediaURL, "http://") || strings.HasPrefix(mediaURL, "https://") {
		u, err := url.Parse(mediaURL)
		if err != nil {
			return true
		}
		return strings.HasPrefix(u.Host, "mock-")
	}

	_, err := os.Stat(mediaURL)
	return err != nil
}

// fetchMedia 将片段素材落盘：远端地址下载，本地路径直接拷贝
func fetchMedia(ctx context.Context, mediaURL, destPath string) error {
	if !strings.HasPrefix(mediaURL, "http://") && !strings.HasPrefix(mediaURL, "https://") {
		return copyFile(mediaURL, destPath)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := mediaClient.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", mediaURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: unexpected status %d", mediaURL, resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("write %s: %w", destPath, err)
	}
	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy to %s: %w", dest, err)
	}
	return nil
}
