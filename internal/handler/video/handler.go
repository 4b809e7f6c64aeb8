package video

import (
	"lychee/internal/service/video"
)

// Handler 视频生成处理器
// 所有 video 相关的 Handler 方法都通过这个结构体访问 Service
type Handler struct {
	videoService video.VideoService
}

// NewHandler 创建视频生成处理器
func NewHandler(videoService video.VideoService) *Handler {
	return &Handler{
		videoService: videoService,
	}
}
