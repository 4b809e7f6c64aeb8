package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"lychee/internal/config"
	"lychee/internal/model/video"
)

// ArkAdapter 火山引擎 Ark 视频生成适配器（text-to-video）
// Go SDK 没有 content_generation.tasks 的 API，直接使用 HTTP 请求
// 参考官方文档: https://www.volcengine.com/docs/82379/1520757
type ArkAdapter struct {
	apiKey  string
	baseURL string
	model   string
	poll    PollPolicy
	client  *http.Client
}

// NewArkAdapter 创建 Ark 适配器
func NewArkAdapter(cfg *config.ArkConfig, poll PollPolicy) *ArkAdapter {
	return &ArkAdapter{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		model:   cfg.Model,
		poll:    poll,
		client:  &http.Client{Timeout: 5 * time.Minute},
	}
}

// Name 后端标识
func (a *ArkAdapter) Name() string {
	return video.VideoBackendArk.String()
}

// GenerateSegments 为每条画面描述生成一个视频片段
func (a *ArkAdapter) GenerateSegments(ctx context.Context, sceneDescriptions []string, style video.VideoStyle,
	durationPerSegment int, opts video.GenerationOptions) ([]video.VideoSegment, error) {

	// Ark 单任务时长上限 12 秒
	limitedDuration := durationPerSegment
	if limitedDuration > 12 {
		limitedDuration = 12
		log.Warn().Int("original", durationPerSegment).Int("limited", limitedDuration).Msg("segment duration exceeds ark limit, clamped to 12s")
	}

	segments := make([]video.VideoSegment, 0, len(sceneDescriptions))
	current := 0.0

	for i, description := range sceneDescriptions {
		fullPrompt := fmt.Sprintf("%s %s", StylePrompt(style), description)

		taskID, err := a.createVideoTask(ctx, fullPrompt, limitedDuration)
		if err != nil {
			return nil, fmt.Errorf("ark: submit segment %d: %w", i, err)
		}

		log.Info().Str("backend", a.Name()).Str("task_id", taskID).Int("segment", i).Msg("video task submitted, polling")

		videoURL, err := a.waitForTask(ctx, taskID)
		if err != nil {
			return nil, fmt.Errorf("ark: generate segment %d: %w", i, err)
		}

		segments = append(segments, video.VideoSegment{
			VideoURL:         videoURL,
			SceneDescription: description,
			StartTime:        current,
			EndTime:          current + float64(durationPerSegment),
			Duration:         float64(durationPerSegment),
			BackendUsed:      a.Name(),
		})
		current += float64(durationPerSegment)
	}

	return segments, nil
}

// createVideoTask 提交视频生成任务
// API 路径: POST {base}/contents/generations/tasks
func (a *ArkAdapter) createVideoTask(ctx context.Context, prompt string, duration int) (string, error) {
	requestBody := map[string]any{
		"model": a.model,
		"content": []map[string]any{
			{
				"type": "text",
				"text": prompt,
			},
		},
		"ratio":     "16:9",
		"duration":  duration,
		"watermark": false,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("marshal request body: %w", err)
	}

	apiURL := fmt.Sprintf("%s/contents/generations/tasks", a.baseURL)

	log.Debug().
		Str("api_url", apiURL).
		Str("model", a.model).
		Msg("创建视频生成任务")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", a.apiKey))

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Error().
			Int("status_code", resp.StatusCode).
			Str("url", apiURL).
			Str("response_body", string(body)).
			Msg("API 请求失败")
		return "", fmt.Errorf("API request failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var apiResp struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if apiResp.ID == "" {
		return "", fmt.Errorf("task ID is empty in response")
	}

	return apiResp.ID, nil
}

// waitForTask 轮询任务直到完成或超出尝试次数
func (a *ArkAdapter) waitForTask(ctx context.Context, taskID string) (string, error) {
	for attempt := 1; attempt <= a.poll.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(a.poll.Interval):
		}

		status := a.CheckStatus(ctx, taskID)
		switch status.Status {
		case "succeeded", "completed":
			if status.VideoURL == "" {
				return "", fmt.Errorf("task %s completed but video URL is empty", taskID)
			}
			return status.VideoURL, nil
		case "failed":
			return "", fmt.Errorf("video generation task failed: task_id=%s", taskID)
		}

		log.Debug().Str("task_id", taskID).Str("status", status.Status).Int("attempt", attempt).Msg("视频生成中，继续等待...")
	}

	return "", fmt.Errorf("video generation timeout: task_id=%s after %d attempts", taskID, a.poll.MaxAttempts)
}

// CheckStatus 查询任务状态（尽力而为）
// API 路径: GET {base}/contents/generations/tasks/{task_id}
func (a *ArkAdapter) CheckStatus(ctx context.Context, taskID string) TaskStatus {
	apiURL := fmt.Sprintf("%s/contents/generations/tasks/%s", a.baseURL, taskID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		log.Warn().Err(err).Str("backend", a.Name()).Msg("failed to build status request")
		return TaskStatus{TaskID: taskID, Status: "unknown"}
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", a.apiKey))

	resp, err := a.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("backend", a.Name()).Str("task_id", taskID).Msg("failed to query task status")
		return TaskStatus{TaskID: taskID, Status: "unknown"}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status_code", resp.StatusCode).Str("backend", a.Name()).Str("task_id", taskID).Msg("task status query returned non-200")
		return TaskStatus{TaskID: taskID, Status: "unknown"}
	}

	var apiResp struct {
		Status  string `json:"status"`
		Content struct {
			VideoURL string `json:"video_url"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		log.Warn().Err(err).Str("backend", a.Name()).Msg("failed to decode task status")
		return TaskStatus{TaskID: taskID, Status: "unknown"}
	}

	return TaskStatus{
		TaskID:   taskID,
		Status:   apiResp.Status,
		VideoURL: apiResp.Content.VideoURL,
	}
}

// ListModels 列出可用模型（尽力而为）
// Ark 没有公开的模型列表接口，返回配置的模型
func (a *ArkAdapter) ListModels(_ context.Context) []ModelInfo {
	return []ModelInfo{
		{
			ID:          a.model,
			Name:        a.model,
			Description: "Volcengine Ark video generation model",
			Backend:     a.Name(),
		},
	}
}
