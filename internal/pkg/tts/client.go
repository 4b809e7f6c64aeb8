package tts

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

const (
	// DefaultModelID 多语言语音合成模型
	DefaultModelID = "eleven_multilingual_v2"
	// DefaultOutputFormat 输出音频格式
	DefaultOutputFormat = "mp3_44100_128"
)

// voiceIDs 各解说风格对应的 ElevenLabs voice_id
var voiceIDs = map[video.VoiceStyle]string{
	video.VoiceStyleNarrative:      "21m00Tcm4TlvDq8ikWAM", // Rachel - Professional
	video.VoiceStyleConversational: "AZnzlk1XvdvUeBnXmlld", // Domi - Casual
	video.VoiceStyleProfessional:   "EXAVITQu4vr4xnSDxMaL", // Bella - Professional
	video.VoiceStyleCasual:         "VR6AewLTigWG4xSOukaG", // Arnold - Casual
	video.VoiceStyleDramatic:       "pNInz6obpgDQGcFmaJgB", // Adam - Dramatic
}

// VoiceIDForStyle 解说风格映射到 voice_id，未知风格使用旁白声音
func VoiceIDForStyle(style video.VoiceStyle) string {
	if id, ok := voiceIDs[style]; ok {
		return id
	}
	return voiceIDs[video.VoiceStyleNarrative]
}

// VoiceInfo 可用声音信息
type VoiceInfo struct {
	ID          string `json:"id"`          // 声音ID
	Name        string `json:"name"`        // 声音名称
	Category    string `json:"category"`    // 分类
	Description string `json:"description"` // 描述
}

// Client ElevenLabs TTS 客户端
// 用于调用 ElevenLabs API 合成解说语音
// 参考: https://api.elevenlabs.io/v1/text-to-speech/{voice_id}
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient 创建 TTS 客户端
func NewClient(cfg *config.TTSConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("TTS API key is required")
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.elevenlabs.io/v1"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Synthesize 合成单段语音，返回 MP3 音频数据
func (c *Client) Synthesize(ctx context.Context, text string, style video.VoiceStyle) ([]byte, error) {
	voiceID := VoiceIDForStyle(style)

	requestBody := map[string]any{
		"text":     text,
		"model_id": DefaultModelID,
	}
	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}

	apiURL := fmt.Sprintf("%s/text-to-speech/%s?output_format=%s", c.baseURL, voiceID, DefaultOutputFormat)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", c.apiKey)

	log.Debug().Str("voice_id", voiceID).Int("text_len", len(text)).Msg("sending TTS request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API request failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	audioData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio data: %w", err)
	}
	if len(audioData) == 0 {
		return nil, fmt.Errorf("audio data is empty")
	}

	return audioData, nil
}

// Voices 列出可用声音（尽力而为，失败返回空）
func (c *Client) Voices(ctx context.Context) []VoiceInfo {
	apiURL := fmt.Sprintf("%s/voices", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		log.Warn().Err(err).Msg("failed to build voices request")
		return nil
	}
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("failed to fetch available voices")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status_code", resp.StatusCode).Msg("voices query returned non-200")
		return nil
	}

	var apiResp struct {
		Voices []struct {
			VoiceID     string `json:"voice_id"`
			Name        string `json:"name"`
			Category    string `json:"category"`
			Description string `json:"description"`
		} `json:"voices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		log.Warn().Err(err).Msg("failed to decode voices response")
		return nil
	}

	voices := make([]VoiceInfo, 0, len(apiResp.Voices))
	for _, v := range apiResp.Voices {
		voices = append(voices, VoiceInfo{
			ID:          v.VoiceID,
			Name:        v.Name,
			Category:    v.Category,
			Description: v.Description,
		})
	}
	return voices
}

// MockVoices 未配置 API Key 时的固定声音列表
func MockVoices() []VoiceInfo {
	return []VoiceInfo{
		{ID: "mock_1", Name: "Rachel", Category: "professional"},
		{ID: "mock_2", Name: "Domi", Category: "casual"},
		{ID: "mock_3", Name: "Bella", Category: "professional"},
	}
}
