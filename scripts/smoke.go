package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"lychee/internal/config"
	"lychee/internal/model/video"
	"lychee/internal/pkg/logger"
	videosvc "lychee/internal/service/video"
	"lychee/internal/store"
)

// 冒烟测试脚本：不经过 HTTP 层，直接驱动视频生成服务跑一遍
// 后端连通性测试和一次端到端生成。未配置任何 API Key 时全程走
// 模拟适配器，用于验证流水线本身是通的。
//
// 运行: go run ./scripts
func main() {
	// 1. 加载配置（与 cmd/root.go 保持一致的搜索路径）
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.lychee")

	viper.SetEnvPrefix("LYCHEE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("server.mode", "release")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("pipeline.max_concurrent_jobs", 2)
	viper.SetDefault("pipeline.job_timeout", "10m")
	viper.SetDefault("pipeline.work_dir", "./tmp/smoke/jobs")
	viper.SetDefault("storage.type", "local")
	viper.SetDefault("storage.local.base_path", "./tmp/smoke/storage")
	viper.SetDefault("storage.local.base_url", "http://localhost:8080/static")

	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "No config file found, using defaults and environment variables")
	}

	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to unmarshal config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化视频生成服务（不连 Redis）
	jobStore := store.NewJobStore()
	svc, err := videosvc.NewVideoService(&cfg, jobStore, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init video service")
	}
	defer svc.Close()

	ctx := context.Background()

	// 3. 打印后端可用情况
	availability, preference := svc.Backends()
	fmt.Printf("Backend preference order: %s\n", strings.Join(preference, ", "))
	for _, name := range preference {
		state := "mock (no API key)"
		if availability[name] {
			state = "live"
		}
		fmt.Printf("  %-12s %s\n", name, state)
	}

	// 4. 对每个后端做一次冒烟生成
	prompt := os.Getenv("SMOKE_PROMPT")
	if prompt == "" {
		prompt = "A majestic eagle soaring over snow-capped mountains at sunset"
	}

	for _, name := range append([]string{"auto"}, preference...) {
		result := svc.TestBackend(ctx, video.VideoBackend(name), prompt)
		if result.Success {
			fmt.Printf("backend %-12s OK  used=%s url=%s\n", name, result.BackendUsed, result.VideoURL)
		} else {
			fmt.Printf("backend %-12s FAILED  %s\n", name, result.Error)
		}
	}

	// 5. 提交一个完整任务并轮询到终态
	req := &video.GenerateVideoRequest{
		Prompt:   prompt,
		Duration: 15,
		Options:  video.DefaultGenerationOptions(),
	}
	jobID, err := svc.SubmitJob(ctx, req)
	if err != nil {
		log.Fatal().Err(err).Msg("submit job failed")
	}
	fmt.Printf("Submitted job %s, waiting for completion...\n", jobID)

	deadline := time.Now().Add(10 * time.Minute)
	for {
		progress, err := svc.JobProgress(jobID)
		if err != nil {
			log.Fatal().Err(err).Str("job_id", jobID).Msg("query job failed")
		}
		fmt.Printf("  [%3d%%] %-18s %s\n", progress.Progress, progress.Status, progress.CurrentStep)

		if progress.Status.Terminal() {
			if progress.Status == video.JobStatusFailed {
				log.Fatal().Str("job_id", jobID).Str("error", progress.ErrorMessage).Msg("job failed")
			}
			break
		}
		if time.Now().After(deadline) {
			log.Fatal().Str("job_id", jobID).Msg("job did not finish in time")
		}
		time.Sleep(2 * time.Second)
	}

	result, err := svc.JobResult(jobID)
	if err != nil {
		log.Fatal().Err(err).Str("job_id", jobID).Msg("fetch result failed")
	}

	fmt.Printf("Job completed: video=%s duration=%.1fs backend=%s size=%d\n",
		result.VideoURL, result.Duration, result.BackendUsed, result.FileSize)
}
