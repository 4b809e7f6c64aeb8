package video

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"lychee/internal/model/video"
	"lychee/internal/pkg/backend"
	"lychee/internal/pkg/cache"
)

// JobProgress 查询单个任务的进度投影
func (s *videoService) JobProgress(jobID string) (*video.JobProgress, error) {
	progress, err := s.store.Progress(jobID)
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// JobBackend 查询任务请求指定的后端
func (s *videoService) JobBackend(jobID string) (video.VideoBackend, error) {
	job, err := s.store.Get(jobID)
	if err != nil {
		return "", err
	}
	return job.Request.Backend, nil
}

// JobResult 查询已完成任务的最终结果
// 未完成返回 ErrJobNotCompleted，完成但结果缺失返回 ErrResultNotFound
func (s *videoService) JobResult(jobID string) (*video.VideoResult, error) {
	job, err := s.store.Get(jobID)
	if err != nil {
		return nil, err
	}
	if job.Progress.Status != video.JobStatusCompleted {
		return nil, ErrJobNotCompleted
	}
	if job.Result == nil {
		return nil, ErrResultNotFound
	}
	return job.Result, nil
}

// ListJobs 列出所有任务的进度投影
func (s *videoService) ListJobs() []video.JobProgress {
	return s.store.ListProgress()
}

// Backends 各后端的凭证可用性与自动模式的尝试顺序
func (s *videoService) Backends() (map[string]bool, []string) {
	return s.selector.Availability(), s.selector.Preference()
}

// AvailableBackends 可用后端列表
func (s *videoService) AvailableBackends() []string {
	return s.selector.AvailableBackends()
}

// Models 汇总所有后端的可用模型
// 模型目录变化很慢，结果在 Redis 缓存（未接缓存时直接透传）
func (s *videoService) Models(ctx context.Context) (map[string][]backend.ModelInfo, error) {
	if s.cache != nil {
		var cached map[string][]backend.ModelInfo
		if err := s.cache.Get(ctx, cache.ModelCatalogCacheKey, &cached); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	models := s.selector.Models(ctx)

	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.ModelCatalogCacheKey, models, cache.ModelCatalogCacheTTL); err != nil {
			log.Warn().Err(err).Msg("cache model catalog failed")
		}
	}
	return models, nil
}

// TestBackend 用单片段脚本对指定后端做一次冒烟生成
// 走与正式流水线相同的调度路径，auto 模式下同样带降级
func (s *videoService) TestBackend(ctx context.Context, name video.VideoBackend, prompt string) TestResult {
	result := TestResult{Backend: name.String()}

	script := &video.Script{
		Title: "Backend test",
		Segments: []video.ScriptSegment{{
			Text:             prompt,
			StartTime:        0,
			EndTime:          3,
			SceneDescription: prompt,
		}},
		TotalDuration: 3,
	}
	opts := video.GenerationOptions{
		Resolution:    video.Resolution720p,
		Length:        3,
		Quality:       "standard",
		StyleStrength: 1.0,
	}

	segments, err := s.selector.Generate(ctx, script, video.VideoStyleCinematic, name, opts)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	if len(segments) == 0 {
		result.Error = "backend returned no segments"
		return result
	}

	result.Success = true
	result.VideoURL = segments[0].VideoURL
	result.BackendUsed = segments[0].BackendUsed
	return result
}

// DownloadVideo 打开已完成任务的成片用于下载
// 依次尝试对象存储、本地文件；都取不到时返回远端地址让客户端自行跳转
func (s *videoService) DownloadVideo(ctx context.Context, jobID string) (*Download, error) {
	result, err := s.JobResult(jobID)
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("video_%s.mp4", jobID)

	if key, ok := result.Metadata["storage_key"].(string); ok && key != "" {
		reader, err := s.storage.Download(ctx, key)
		if err == nil {
			var size int64
			if info, infoErr := s.storage.GetFileInfo(ctx, key); infoErr == nil {
				size = info.Size
			}
			return &Download{Reader: reader, Size: size, Filename: filename}, nil
		}
		log.Warn().Err(err).Str("job_id", jobID).Str("key", key).
			Msg("storage download failed, using direct reference")
	}

	if !strings.HasPrefix(result.VideoURL, "http://") && !strings.HasPrefix(result.VideoURL, "https://") {
		if f, err := os.Open(result.VideoURL); err == nil {
			var size int64
			if info, statErr := f.Stat(); statErr == nil {
				size = info.Size()
			}
			return &Download{Reader: f, Size: size, Filename: filename}, nil
		}
	}

	return &Download{RemoteURL: result.VideoURL, Filename: filename}, nil
}

// ActiveJobs 未到终态的任务数
func (s *videoService) ActiveJobs() int {
	return s.store.ActiveCount()
}
