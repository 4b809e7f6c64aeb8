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

// ImagineArtAdapter ImagineArt 视频生成适配器
// 与 Pollo 同为提交-轮询模型，但请求携带完整生成选项
type ImagineArtAdapter struct {
	apiKey  string
	baseURL string
	model   string
	poll    PollPolicy
	client  *http.Client
}

// NewImagineArtAdapter 创建 ImagineArt 适配器
func NewImagineArtAdapter(cfg *config.ImagineArtConfig, poll PollPolicy) *ImagineArtAdapter {
	return &ImagineArtAdapter{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		model:   cfg.Model,
		poll:    poll,
		client:  &http.Client{Timeout: 5 * time.Minute},
	}
}

// Name 后端标识
func (a *ImagineArtAdapter) Name() string {
	return video.VideoBackendImagineArt.String()
}

// GenerateSegments 为每条画面描述生成一个视频片段
func (a *ImagineArtAdapter) GenerateSegments(ctx context.Context, sceneDescriptions []string, style video.VideoStyle,
	durationPerSegment int, opts video.GenerationOptions) ([]video.VideoSegment, error) {

	segments := make([]video.VideoSegment, 0, len(sceneDescriptions))
	current := 0.0

	for i, description := range sceneDescriptions {
		fullPrompt := fmt.Sprintf("%s %s", StylePrompt(style), description)

		videoURL, err := a.generateVideo(ctx, fullPrompt, durationPerSegment, opts)
		if err != nil {
			return nil, fmt.Errorf("imagineart: generate segment %d: %w", i, err)
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

// generateVideo 提交单个视频生成任务并轮询结果
func (a *ImagineArtAdapter) generateVideo(ctx context.Context, prompt string, duration int, opts video.GenerationOptions) (string, error) {
	requestBody := map[string]any{
		"prompt":         prompt,
		"model":          a.model,
		"duration":       duration,
		"resolution":     opts.Resolution.String(),
		"generate_audio": opts.GenerateAudio,
		"quality":        opts.Quality,
		"style_strength": opts.StyleStrength,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("marshal request body: %w", err)
	}

	apiURL := fmt.Sprintf("%s/video/text-to-video", a.baseURL)

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

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("API request failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var apiResp struct {
		TaskID   string `json:"task_id"`
		VideoURL string `json:"video_url"`
		Status   string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if apiResp.VideoURL != "" {
		return apiResp.VideoURL, nil
	}
	if apiResp.TaskID == "" {
		return "", fmt.Errorf("response has neither video_url nor task_id")
	}

	log.Info().Str("backend", a.Name()).Str("task_id", apiResp.TaskID).Msg("video task submitted, polling")

	for attempt := 1; attempt <= a.poll.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(a.poll.Interval):
		}

		status := a.CheckStatus(ctx, apiResp.TaskID)
		switch status.Status {
		case "succeeded", "completed":
			if status.VideoURL == "" {
				return "", fmt.Errorf("task %s completed but video URL is empty", apiResp.TaskID)
			}
			return status.VideoURL, nil
		case "failed":
			return "", fmt.Errorf("video generation task failed: task_id=%s", apiResp.TaskID)
		}

		log.Debug().Str("task_id", apiResp.TaskID).Str("status", status.Status).Int("attempt", attempt).Msg("video task still running")
	}

	return "", fmt.Errorf("video generation timeout: task_id=%s after %d attempts", apiResp.TaskID, a.poll.MaxAttempts)
}

// CheckStatus 查询远端任务状态（尽力而为）
func (a *ImagineArtAdapter) CheckStatus(ctx context.Context, taskID string) TaskStatus {
	apiURL := fmt.Sprintf("%s/video/status/%s", a.baseURL, taskID)

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
func (a *ImagineArtAdapter) ListModels(ctx context.Context) []ModelInfo {
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
