package video

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"lychee/internal/model/video"
)

// PublishResult 将成片上传到对象存储并换成公开地址
// 上传失败不终止任务，原样返回本地引用（成片已经存在，只是没发布出去）
func (s *videoService) PublishResult(ctx context.Context, result *video.VideoResult) *video.VideoResult {
	f, err := os.Open(result.VideoURL)
	if err != nil {
		log.Warn().Err(err).Str("job_id", result.JobID).
			Msg("final video not readable, skipping publish")
		return result
	}
	defer f.Close()

	key := fmt.Sprintf("videos/%s/final_video.mp4", result.JobID)
	publicURL, err := s.storage.Upload(ctx, key, f, "video/mp4")
	if err != nil {
		log.Warn().Err(err).Str("job_id", result.JobID).
			Msg("upload final video failed, keeping local reference")
		return result
	}

	result.VideoURL = publicURL
	if result.Metadata == nil {
		result.Metadata = make(map[string]any)
	}
	result.Metadata["storage_key"] = key

	// 缩略图上传失败不影响成片发布
	if result.ThumbnailURL != "" {
		if thumbURL, err := s.uploadThumbnail(ctx, result.JobID, result.ThumbnailURL); err != nil {
			log.Warn().Err(err).Str("job_id", result.JobID).Msg("upload thumbnail failed")
		} else {
			result.ThumbnailURL = thumbURL
		}
	}

	log.Info().
		Str("job_id", result.JobID).
		Str("storage_type", s.storage.GetStorageType()).
		Str("video_url", result.VideoURL).
		Msg("成片发布成功")

	return result
}

func (s *videoService) uploadThumbnail(ctx context.Context, jobID, thumbPath string) (string, error) {
	f, err := os.Open(thumbPath)
	if err != nil {
		return "", fmt.Errorf("open thumbnail: %w", err)
	}
	defer f.Close()

	key := fmt.Sprintf("videos/%s/thumbnail.jpg", jobID)
	return s.storage.Upload(ctx, key, f, "image/jpeg")
}
