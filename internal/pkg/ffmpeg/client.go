package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Client FFmpeg 客户端
// 用于封装 FFmpeg 命令调用
type Client struct {
	ffmpegPath  string // FFmpeg 可执行文件路径（默认: ffmpeg）
	ffprobePath string // FFprobe 可执行文件路径（默认: ffprobe）
}

// NewClient 创建 FFmpeg 客户端
func NewClient() *Client {
	ffmpegPath := os.Getenv("FFMPEG_PATH")
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}

	ffprobePath := os.Getenv("FFPROBE_PATH")
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}

	return &Client{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
	}
}

// Available FFmpeg 是否可用
func (c *Client) Available() bool {
	return exec.Command(c.ffmpegPath, "-version").Run() == nil
}

// VideoInfo 视频信息
type VideoInfo struct {
	Width    int     // 宽度
	Height   int     // 高度
	FPS      float64 // 帧率
	Duration float64 // 时长（秒）
}

// probeOutput ffprobe JSON 输出
type probeOutput struct {
	Streams []struct {
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// GetVideoInfo 获取视频信息
func (c *Client) GetVideoInfo(ctx context.Context, videoPath string) (*VideoInfo, error) {
	cmd := exec.CommandContext(ctx, c.ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate",
		"-show_entries", "format=duration",
		"-of", "json",
		videoPath,
	)

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probe probeOutput
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	info := &VideoInfo{}
	if probe.Format.Duration != "" {
		if parsed, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
			info.Duration = parsed
		}
	}
	if len(probe.Streams) > 0 {
		info.Width = probe.Streams[0].Width
		info.Height = probe.Streams[0].Height

		// r_frame_rate 格式: "30000/1001"
		if parts := strings.SplitN(probe.Streams[0].RFrameRate, "/", 2); len(parts) == 2 {
			num, errN := strconv.ParseFloat(parts[0], 64)
			den, errD := strconv.ParseFloat(parts[1], 64)
			if errN == nil && errD == nil && den > 0 {
				info.FPS = num / den
			}
		}
	}

	return info, nil
}

// GetMediaDuration 获取音视频文件时长（秒）
func (c *Client) GetMediaDuration(ctx context.Context, mediaPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, c.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		mediaPath,
	)

	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probe probeOutput
	if err := json.Unmarshal(output, &probe); err != nil {
		return 0, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if probe.Format.Duration == "" {
		return 0, fmt.Errorf("duration not found in ffprobe output")
	}

	duration, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}
	return duration, nil
}

// SynthesizeColorClip 合成纯色占位视频片段
// 模拟后端和降级片段没有真实视频文件，用色块保证流水线能走完
func (c *Client) SynthesizeColorClip(ctx context.Context, outputPath string, duration float64, width, height, fps int) error {
	args := []string{
		"-y",
		"-f", "lavfi",
		"-i", fmt.Sprintf("color=c=0x1a1a2e:s=%dx%d:d=%.2f:r=%d", width, height, duration, fps),
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg synthesize clip failed: %w", err)
	}

	log.Debug().
		Str("output", outputPath).
		Float64("duration", duration).
		Msg("占位视频片段合成成功")

	return nil
}

// SynthesizeSilence 合成静音音频片段
func (c *Client) SynthesizeSilence(ctx context.Context, outputPath string, duration float64) error {
	args := []string{
		"-y",
		"-f", "lavfi",
		"-i", "anullsrc=r=44100:cl=stereo",
		"-t", fmt.Sprintf("%.2f", duration),
		"-c:a", "aac",
		"-b:a", "160k",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg synthesize silence failed: %w", err)
	}

	return nil
}

// StandardizeVideo 标准化视频（分辨率、帧率），保证片段能无损拼接
func (c *Client) StandardizeVideo(ctx context.Context, inputPath, outputPath string, width, height int, fps int) error {
	// scale 放大裁剪到目标分辨率，居中
	vf := fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d:(in_w-%d)/2:(in_h-%d)/2,setsar=1",
		width, height, width, height, width, height)

	args := []string{
		"-y",
		"-i", inputPath,
		"-map", "0:v:0",
		"-vf", vf,
		"-r", fmt.Sprintf("%d", fps),
		"-c:v", "libx264",
		"-crf", "20",
		"-preset", "medium",
		"-pix_fmt", "yuv420p",
		"-an", // 解说音轨单独处理，丢弃片段自带音频
		"-movflags", "+faststart",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg standardize failed: %w", err)
	}

	log.Info().
		Str("input", inputPath).
		Str("output", outputPath).
		Int("width", width).
		Int("height", height).
		Int("fps", fps).
		Msg("视频标准化成功")

	return nil
}

// ConcatVideos 合并多个视频文件
// 使用 concat demuxer（需要创建 concat list 文件）
// 输入片段必须已经标准化为相同编码参数
func (c *Client) ConcatVideos(ctx context.Context, videoPaths []string, outputPath string) error {
	if len(videoPaths) == 0 {
		return fmt.Errorf("no videos to concat")
	}

	concatListFile, err := c.writeConcatList(filepath.Dir(outputPath), videoPaths)
	if err != nil {
		return err
	}
	defer os.Remove(concatListFile)

	// ffmpeg -f concat -safe 0 -i concat_list.txt -c copy output.mp4
	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", concatListFile,
		"-c", "copy", // 使用 copy 避免重新编码
		outputPath,
	}

	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg concat failed: %w", err)
	}

	log.Info().
		Int("count", len(videoPaths)).
		Str("output", outputPath).
		Msg("视频合并成功")

	return nil
}

// ConcatAudio 合并多个音频文件为一条解说音轨
// 输入可能混杂不同来源的 MP3，统一重编码为 AAC
func (c *Client) ConcatAudio(ctx context.Context, audioPaths []string, outputPath string) error {
	if len(audioPaths) == 0 {
		return fmt.Errorf("no audio files to concat")
	}

	concatListFile, err := c.writeConcatList(filepath.Dir(outputPath), audioPaths)
	if err != nil {
		return err
	}
	defer os.Remove(concatListFile)

	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", concatListFile,
		"-c:a", "aac",
		"-b:a", "160k",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg audio concat failed: %w", err)
	}

	log.Info().
		Int("count", len(audioPaths)).
		Str("output", outputPath).
		Msg("音频合并成功")

	return nil
}

// MixAudio 混合解说和背景音乐
// 背景音乐循环补齐到解说长度并衰减音量，解说保持原音量
func (c *Client) MixAudio(ctx context.Context, narrationPath, musicPath string, duration float64, outputPath string) error {
	filterComplex := fmt.Sprintf(
		"[1:a]aloop=loop=-1:size=2e+09,atrim=0:%.2f,volume=0.3[bg];[0:a][bg]amix=inputs=2:duration=first:dropout_transition=0[out]",
		duration)

	args := []string{
		"-y",
		"-i", narrationPath,
		"-i", musicPath,
		"-filter_complex", filterComplex,
		"-map", "[out]",
		"-c:a", "aac",
		"-b:a", "160k",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg mix audio failed: %w", err)
	}

	log.Info().
		Str("narration", narrationPath).
		Str("music", musicPath).
		Str("output", outputPath).
		Msg("音频混合成功")

	return nil
}

// Mux 将音轨封装进视频
func (c *Client) Mux(ctx context.Context, videoPath, audioPath, outputPath string) error {
	args := []string{
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "160k",
		"-movflags", "+faststart",
		"-shortest",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg mux failed: %w", err)
	}

	log.Info().
		Str("video", videoPath).
		Str("audio", audioPath).
		Str("output", outputPath).
		Msg("音视频封装成功")

	return nil
}

// CreateThumbnail 从视频截取封面帧
func (c *Client) CreateThumbnail(ctx context.Context, videoPath, outputPath string, timePosition float64) error {
	args := []string{
		"-y",
		"-i", videoPath,
		"-ss", fmt.Sprintf("%.2f", timePosition),
		"-vframes", "1",
		"-q:v", "2",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg thumbnail failed: %w", err)
	}

	return nil
}

// writeConcatList 创建 concat demuxer 的清单文件
func (c *Client) writeConcatList(dir string, paths []string) (string, error) {
	concatListFile := filepath.Join(dir, fmt.Sprintf("concat_list_%d.txt", time.Now().UnixNano()))

	file, err := os.Create(concatListFile)
	if err != nil {
		return "", fmt.Errorf("create concat list file: %w", err)
	}
	defer file.Close()

	for _, p := range paths {
		absPath, err := filepath.Abs(p)
		if err != nil {
			return "", fmt.Errorf("get absolute path: %w", err)
		}
		fmt.Fprintf(file, "file '%s'\n", absPath)
	}

	return concatListFile, nil
}
