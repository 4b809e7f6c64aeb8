package video

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"lychee/internal/config"
	"lychee/internal/model/video"
	"lychee/internal/pkg/backend"
	"lychee/internal/pkg/cache"
	"lychee/internal/pkg/ffmpeg"
	"lychee/internal/pkg/llm"
	"lychee/internal/pkg/storage"
	"lychee/internal/pkg/storagefactory"
	"lychee/internal/pkg/tts"
	"lychee/internal/pkg/wordcount"
	"lychee/internal/store"
)

var (
	// ErrJobNotCompleted 任务尚未完成，还取不到结果
	ErrJobNotCompleted = errors.New("job not completed")
	// ErrResultNotFound 任务已完成但结果缺失
	ErrResultNotFound = errors.New("video result not found")
)

// TestResult 单后端冒烟测试结果
type TestResult struct {
	Backend     string `json:"backend"`      // 被测后端
	Success     bool   `json:"success"`      // 是否成功
	VideoURL    string `json:"video_url"`    // 成功时的视频地址
	Error       string `json:"error"`        // 失败时的错误信息
	BackendUsed string `json:"backend_used"` // 实际使用的后端
}

// Download 成片下载描述
// Reader 非空时由调用方负责关闭；RemoteURL 非空表示成片不在本地，应跳转
type Download struct {
	Reader    io.ReadCloser
	Size      int64
	Filename  string
	RemoteURL string
}

// VideoService 视频生成服务接口
// 定义 video 模块 service 层提供的能力
type VideoService interface {
	// SubmitJob 提交生成任务，立即返回任务ID，流水线在后台运行
	SubmitJob(ctx context.Context, req *video.GenerateVideoRequest) (string, error)

	// JobProgress 查询单个任务的进度
	JobProgress(jobID string) (*video.JobProgress, error)

	// JobBackend 查询任务请求指定的后端
	JobBackend(jobID string) (video.VideoBackend, error)

	// JobResult 查询已完成任务的最终结果
	JobResult(jobID string) (*video.VideoResult, error)

	// ListJobs 列出所有任务的进度投影
	ListJobs() []video.JobProgress

	// Backends 各后端的凭证可用性与自动模式的尝试顺序
	Backends() (map[string]bool, []string)

	// AvailableBackends 可用后端列表（全部缺失凭证时返回全部，走模拟适配器）
	AvailableBackends() []string

	// Models 汇总所有后端的可用模型（结果走 Redis 缓存）
	Models(ctx context.Context) (map[string][]backend.ModelInfo, error)

	// TestBackend 对单个后端做一次单片段冒烟生成，不创建任务
	TestBackend(ctx context.Context, name video.VideoBackend, prompt string) TestResult

	// DownloadVideo 打开已完成任务的成片用于下载
	DownloadVideo(ctx context.Context, jobID string) (*Download, error)

	// ActiveJobs 未到终态的任务数
	ActiveJobs() int

	// Close 取消所有在途任务的基础上下文，服务关停时调用
	Close() error
}

// videoService 视频生成服务实现
type videoService struct {
	cfg      *config.Config
	store    *store.JobStore
	llm      llm.Provider       // nil 表示未配置，脚本阶段直接走兜底
	tts      *tts.Client        // nil 表示未配置，配音阶段走模拟
	counter  *wordcount.Counter
	selector *backend.Selector
	ffmpeg   *ffmpeg.Client
	storage  storage.Storage
	cache    *cache.RedisCache // nil 表示未连接，模型列表不走缓存
	sem      chan struct{}     // 任务并发上限

	// baseCtx 在途任务的根上下文，Close 时取消
	baseCtx context.Context
	cancel  context.CancelFunc
}

// NewVideoService 创建视频生成服务
// LLM / TTS 凭证缺失不阻止启动，对应阶段运行时降级
func NewVideoService(cfg *config.Config, jobStore *store.JobStore, redisCache *cache.RedisCache) (VideoService, error) {
	baseCtx, cancel := context.WithCancel(context.Background())
	s := &videoService{
		cfg:      cfg,
		store:    jobStore,
		counter:  wordcount.NewCounter(),
		selector: backend.NewSelector(&cfg.Backends),
		ffmpeg:   ffmpeg.NewClient(),
		cache:    redisCache,
		sem:      make(chan struct{}, cfg.Pipeline.MaxConcurrentJobs),
		baseCtx:  baseCtx,
		cancel:   cancel,
	}

	// 初始化 LLM Provider
	if cfg.AI.APIKey != "" {
		provider, err := llm.NewProvider(baseCtx, &cfg.AI)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("初始化 LLM Provider 失败: %w", err)
		}
		s.llm = provider
	} else {
		log.Warn().Msg("AI API key not found, script stage will use fallback scripts")
	}

	// 初始化 TTS 客户端
	ttsClient, err := tts.NewClient(&cfg.TTS)
	if err != nil {
		log.Warn().Err(err).Msg("TTS not configured, voice stage will use mock segments")
	} else {
		s.tts = ttsClient
	}

	// 初始化发布存储
	stor, err := storagefactory.NewStorage(baseCtx, &cfg.Storage)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("初始化存储失败: %w", err)
	}
	s.storage = stor

	return s, nil
}

// Close 取消在途任务并释放资源
func (s *videoService) Close() error {
	s.cancel()
	log.Info().Msg("video service closed, in-flight jobs canceled")
	return nil
}
