package video

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"lychee/internal/model/video"
	"lychee/internal/pkg/id"
)

// SubmitJob 登记任务并启动后台流水线，提交方不阻塞
func (s *videoService) SubmitJob(ctx context.Context, req *video.GenerateVideoRequest) (string, error) {
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return "", err
	}

	jobID := id.New()
	if err := s.store.Create(video.NewJob(jobID, *req)); err != nil {
		return "", err
	}

	log.Info().
		Str("job_id", jobID).
		Str("backend", string(req.Backend)).
		Str("style", string(req.Style)).
		Int("duration", req.Duration).
		Msg("视频生成任务已提交")

	go s.runJob(jobID, *req)

	return jobID, nil
}

// runJob 顺序执行五个阶段，每个阶段前推进一次进度
// 并发任务数由信号量约束，超限的任务排队等待
func (s *videoService) runJob(jobID string, req video.GenerateVideoRequest) {
	select {
	case s.sem <- struct{}{}:
		defer func() { <-s.sem }()
	case <-s.baseCtx.Done():
		s.failJob(jobID, s.baseCtx.Err())
		return
	}

	ctx, cancel := context.WithTimeout(s.baseCtx, s.cfg.Pipeline.JobTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("job_id", jobID).Interface("panic", r).Msg("job panicked")
			s.failJob(jobID, fmt.Errorf("internal error: %v", r))
		}
	}()

	workDir := filepath.Join(s.cfg.Pipeline.WorkDir, jobID)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		s.failJob(jobID, fmt.Errorf("create work dir: %w", err))
		return
	}
	if !s.cfg.Pipeline.KeepWorkDir {
		defer s.cleanupWorkDir(jobID, workDir)
	}

	// 1. 脚本
	s.advance(jobID, video.JobStatusScriptGen, 10, "Generating script from prompt")
	script := s.GenerateScript(ctx, req.Prompt, req.Style, req.VoiceStyle, req.Duration)

	// 2. 配音
	s.advance(jobID, video.JobStatusVoiceGen, 30, "Generating voice narration")
	voiceSegments := s.GenerateVoice(ctx, script, req.VoiceStyle, req.Language, workDir)

	// 3. 视频片段
	s.advance(jobID, video.JobStatusVideoGen, 50, fmt.Sprintf("Generating video using %s backend", req.Backend))
	videoSegments, err := s.selector.Generate(ctx, script, req.Style, req.Backend, req.Options)
	if err != nil {
		s.failJob(jobID, err)
		return
	}

	// 4. 合成
	s.advance(jobID, video.JobStatusEditing, 80, "Editing and combining video segments")
	result, err := s.MergeSegments(ctx, jobID, videoSegments, voiceSegments, req.Options, workDir)
	if err != nil {
		s.failJob(jobID, err)
		return
	}

	// 5. 发布
	s.advance(jobID, video.JobStatusUploading, 95, "Uploading final video")
	result = s.PublishResult(ctx, result)

	attachMetadata(result, req, script, voiceSegments, videoSegments)

	if err := s.store.SetResult(jobID, result); err != nil {
		s.failJob(jobID, err)
		return
	}
	s.advance(jobID, video.JobStatusCompleted, 100, "Video generation completed successfully")

	log.Info().
		Str("job_id", jobID).
		Str("video_url", result.VideoURL).
		Str("backend_used", result.BackendUsed).
		Float64("duration", result.Duration).
		Msg("视频生成任务完成")
}

// advance 推进任务进度，store 写入失败只记日志（任务必然存在）
func (s *videoService) advance(jobID string, status video.JobStatus, progress int, step string) {
	if err := s.store.UpdateProgress(jobID, status, progress, step); err != nil {
		log.Warn().Err(err).Str("job_id", jobID).Msg("update job progress failed")
	}
}

// failJob 将任务置为失败终态
func (s *videoService) failJob(jobID string, cause error) {
	message := fmt.Sprintf("Video generation failed: %v", cause)
	log.Error().Err(cause).Str("job_id", jobID).Msg("视频生成任务失败")

	if err := s.store.Fail(jobID, message); err != nil {
		log.Warn().Err(err).Str("job_id", jobID).Msg("mark job failed failed")
	}
}

// cleanupWorkDir 终态后清理临时目录，出错只记日志
func (s *videoService) cleanupWorkDir(jobID, workDir string) {
	if err := os.RemoveAll(workDir); err != nil {
		log.Warn().Err(err).Str("job_id", jobID).Str("work_dir", workDir).
			Msg("cleanup work dir failed")
	}
}

// attachMetadata 补齐结果元数据，保留发布阶段已写入的键
func attachMetadata(result *video.VideoResult, req video.GenerateVideoRequest,
	script *video.Script, voiceSegments []video.VoiceSegment, videoSegments []video.VideoSegment) {

	if result.Metadata == nil {
		result.Metadata = make(map[string]any)
	}
	result.Metadata["script_segments"] = len(script.Segments)
	result.Metadata["video_segments"] = len(videoSegments)
	result.Metadata["voice_segments"] = len(voiceSegments)
	result.Metadata["generation_options"] = req.Options
	result.Metadata["style"] = string(req.Style)
	result.Metadata["voice_style"] = string(req.VoiceStyle)
}
