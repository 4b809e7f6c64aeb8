package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"lychee/internal/config"
	"lychee/internal/handler"
	videoHandler "lychee/internal/handler/video"
	"lychee/internal/pkg/cache"
	"lychee/internal/server/middleware"
	videosvc "lychee/internal/service/video"
	"lychee/internal/store"
)

// Server HTTP 服务器
type Server struct {
	cfg      *config.Config
	engine   *gin.Engine
	redis    *cache.RedisCache
	videoSvc videosvc.VideoService
}

// New 创建服务器实例
func New(cfg *config.Config) (*Server, error) {
	// 设置 Gin 模式
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建 Gin 引擎
	engine := gin.New()

	// 初始化 Redis (可选，模型目录缓存用)
	var redisCache *cache.RedisCache
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without it")
		} else {
			redisCache = rc
			log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
		}
	}

	// 初始化视频生成服务
	jobStore := store.NewJobStore()
	videoSvc, err := videosvc.NewVideoService(cfg, jobStore, redisCache)
	if err != nil {
		return nil, fmt.Errorf("init video service: %w", err)
	}

	srv := &Server{
		cfg:      cfg,
		engine:   engine,
		redis:    redisCache,
		videoSvc: videoSvc,
	}

	// 设置路由
	srv.setupRoutes()

	return srv, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// 全局中间件
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.CORS())

	// 健康检查
	healthHandler := handler.NewHealthHandler(s.videoSvc)
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	// Swagger 文档
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 本地存储的静态文件（发布到本地存储的成片通过这里访问）
	if s.cfg.Storage.Type == "local" && s.cfg.Storage.Local != nil {
		s.engine.Static("/static", s.cfg.Storage.Local.BasePath)
	}

	// API v1
	v1 := s.engine.Group("/api/v1")
	{
		videoHdl := videoHandler.NewHandler(s.videoSvc)

		videos := v1.Group("/videos")
		{
			videos.POST("/generate", videoHdl.Generate)
			videos.GET("/jobs", videoHdl.ListJobs)
			videos.GET("/jobs/:job_id", videoHdl.GetJob)
			videos.GET("/jobs/:job_id/result", videoHdl.GetResult)
			videos.GET("/backends", videoHdl.ListBackends)
			videos.GET("/models", videoHdl.ListModels)
			videos.POST("/backends/:backend/test", videoHdl.TestBackend)
			videos.GET("/download/:job_id", videoHdl.Download)
		}
	}
}

// Run 启动服务器
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	// 启动服务器
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待关闭信号或错误
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")

		// 先停止接收请求，再取消在途任务，最后断开连接
		shutdownErr := srv.Shutdown(context.Background())

		if err := s.videoSvc.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close video service")
		}
		if s.redis != nil {
			if err := s.redis.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close Redis connection")
			}
		}

		return shutdownErr
	case err := <-errCh:
		return err
	}
}

// Engine 获取 Gin 引擎 (用于测试)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
