package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/volcengine/volcengine-go-sdk/service/arkruntime"
	"github.com/volcengine/volcengine-go-sdk/service/arkruntime/model"

	"lychee/internal/config"
)

// ArkClient 火山引擎 Ark 客户端封装（豆包大模型，官方 volcengine-go-sdk）
// 参考: https://github.com/volcengine/volcengine-go-sdk
type ArkClient struct {
	client *arkruntime.Client
	model  string
	mu     sync.Mutex // 并发安全
}

// NewArkClient 创建 Ark 客户端（使用官方 SDK）
func NewArkClient(cfg *config.AIConfig) (*ArkClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Ark API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://ark.cn-beijing.volces.com/api/v3"
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = "doubao-seed-1-6-flash-250615" // 默认模型
	}

	var opts []arkruntime.ConfigOption
	if baseURL != "" {
		opts = append(opts, arkruntime.WithBaseUrl(baseURL))
	}

	arkClient := arkruntime.NewClientWithApiKey(cfg.APIKey, opts...)

	return &ArkClient{
		client: arkClient,
		model:  modelName,
	}, nil
}

// CreateChatCompletion 调用 Ark ChatCompletion API
func (c *ArkClient) CreateChatCompletion(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	messages := make([]*model.ChatCompletionMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, &model.ChatCompletionMessage{
			Role: "system",
			Content: &model.ChatCompletionMessageContent{
				StringValue: &systemPrompt,
			},
		})
	}
	messages = append(messages, &model.ChatCompletionMessage{
		Role: "user",
		Content: &model.ChatCompletionMessageContent{
			StringValue: &userPrompt,
		},
	})

	input := &model.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	}

	output, err := c.client.CreateChatCompletion(ctx, input)
	if err != nil {
		log.Error().Err(err).Msg("failed to call Ark ChatCompletion API")
		return "", fmt.Errorf("Ark API call failed: %w", err)
	}

	if len(output.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	choice := output.Choices[0]
	if choice.Message.Content == nil || choice.Message.Content.StringValue == nil {
		return "", fmt.Errorf("empty message content in response")
	}

	return *choice.Message.Content.StringValue, nil
}

// ArkProvider 直连 Ark SDK 的 LLM 提供者
type ArkProvider struct {
	client *ArkClient
}

// NewArkProvider 创建基于 Ark SDK 的 LLM 提供者
func NewArkProvider(client *ArkClient) *ArkProvider {
	return &ArkProvider{
		client: client,
	}
}

// Generate 根据提示词生成文本（直连 Ark SDK）
func (p *ArkProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if p.client == nil {
		return "", fmt.Errorf("ark client is required")
	}
	return p.client.CreateChatCompletion(ctx, systemPrompt, userPrompt)
}
