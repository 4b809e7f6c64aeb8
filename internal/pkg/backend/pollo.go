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

// PolloAdapter Pollo (Veo3) 视频生成适配器
// 提交任务后在固定间隔内轮询，直到成功、失败或超出最大轮询次数
type PolloAdapter struct {
	apiKey  string
	baseURL string
	model   string
	poll    PollPolicy
	client  *http.Client
}

// NewPolloAdapter 创建 Pollo 适配器
func NewPolloAdapter(cfg *config.PolloConfig, poll PollPolicy) *PolloAdapter {
	return &PolloAdapter{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		model:   cfg.Model,
		poll:    poll,
		client:  &http.Client{Timeout: 5 * time.Minute},
	}
}

// Name 后端标识
func (a *PolloAdapter) Name() string {
	return video.VideoBackendPollo.String()
}

// GenerateSegments 为每条画面描述生成一个视频片段
func (a *PolloAdapter) GenerateSegments(ctx context.Context, sceneDescriptions []string, style video.VideoStyle,
	durationPerSegment int, opts video.GenerationOptions) ([]video.VideoSegment, error) {

	segments := make([]video.VideoSegment, 0, len(sceneDescriptions))
	current := 0.0

	for i, description := range sceneDescriptions {
		fullPrompt := fmt.Sprintf("%s %s", StylePrompt(style), description)

		videoURL, err := a.generateVideo(ctx, fullPrompt, durationPerSegment, opts.Quality)
		if err != nil {
			return nil, fmt.Errorf("pollo: generate segment %d: %w", i, err)
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

// generateVideo 提交单个视频生成请求
// 响应直接带 video_url 时立即返回，否则按任务ID轮询
func (a *PolloAdapter) generateVideo(ctx context.Context, prompt string, duration int, quality string) (string, error) {
	requestBody := map[string]any{
		"prompt":       prompt,
		"duration":     duration,
		"model":        a.model,
		"aspect_ratio": "16:9",
		"quality":      quality,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("marshal request body: %w", err)
	}

	apiURL := fmt.Sprintf("%s/videos/generate", a.baseURL)

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
		return "", fmt.Errorf("API request failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var apiResp struct {
		VideoURL string `json:"video_url"`
		ID       string `json:"id"`
		Status   string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	// 同步返回结果
	if apiResp.VideoURL != "" {
		return apiResp.VideoURL, nil
	}
	if apiResp.ID == "" {
		return "", fmt.Errorf("response has neither video_url nor task id")
	}

	return a.waitForTask(ctx, apiResp.ID)
}

// waitForTask 轮询任务直到完成、失败或超出最大次数
func (a *PolloAdapter) waitForTask(ctx context.Context, taskID string) (string, error) {
	log.Info().Str("backend", a.Name()).Str("task_id", taskID).Msg("video task submitted, polling")

	for attempt := 1; attempt <= a.poll.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(a.poll.Interval):
		}

		status, videoURL, err := a.getTaskStatus(ctx, taskID)
		if err != nil {
			return "", fmt.Errorf("get task status: %w", err)
		}

		switch status {
		case "succeeded", "completed":
			if videoURL == "" {
				return "", fmt.Errorf("task %s completed but video URL is empty", taskID)
			}
			return videoURL, nil
		case "failed":
			return "", fmt.Errorf("video generation task failed: task_id=%s", taskID)
		}

		log.Debug().Str("task_id", taskID).Str("status", status).Int("attempt", attempt).Msg("video task still running")
	}

	return "", fmt.Errorf("video generation timeout: task_id=%s after %d attempts", taskID, a.poll.MaxAttempts)
}

// getTaskStatus 查询任务状态
func (a *PolloAdapter) getTaskStatus(ctx context.Context, taskID string) (status, videoURL string, err error) {
	apiURL := fmt.Sprintf("%s/videos/%s", a.baseURL, taskID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", a.apiKey))

	resp, err := a.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", "", fmt.Errorf("API request failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var apiResp struct {
		Status   string `json:"status"`
		Progress int    `json:"progress"`
		VideoURL string `json:"video_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", "", fmt.Errorf("decode response: %w", err)
	}

	return apiResp.Status, apiResp.VideoURL, nil
}

// CheckStatus 查询远端任务状态（尽力而为）
func (a *PolloAdapter) CheckStatus(ctx context.Context, taskID string) TaskStatus {
	apiURL := fmt.Sprintf("%s/videos/%s", a.baseURL, taskID)

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
		Status   string `json:"status"`
		Progress int    `json:"progress"`
		VideoURL string `json:"video_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		log.Warn().Err(err).Str("backend", a.Name()).Msg("failed to decode task status")
		return TaskStatus{TaskID: taskID, Status: "unknown"}
	}

	return TaskStatus{
		TaskID:   taskID,
		Status:   apiResp.Status,
		Progress: apiResp.Progress,
		VideoURL: apiResp.VideoURL,
	}
}

// ListModels 列出可用模型（尽力而为）
func (a *PolloAdapter) ListModels(ctx context.Context) []ModelInfo {
	apiURL := fmt.Sprintf("%s/models", a.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		log.Warn().Err(err).Str("backend", a.Name()).Msg("failed to build models request")
		return nil
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", a.apiKey))

	resp, err := a.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("backend", a.Name()).Msg("failed to list models")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status_code", resp.StatusCode).Str("backend", a.Name()).Msg("model list query returned non-200")
		return nil
	}

	var apiResp struct {
		Models []struct {
			ID          string `json:"id"`
			Name        string `json:"name"`
			Description string `json:"description"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		log.Warn().Err(err).Str("backend", a.Name()).Msg("failed to decode model list")
		return nil
	}

	models := make([]ModelInfo, 0, len(apiResp.Models))
	for _, m := range apiResp.Models {
		models = append(models, ModelInfo{
			ID:          m.ID,
			Name:        m.Name,
			Description: m.Description,
			Backend:     a.Name(),
		})
	}
	return models
}
