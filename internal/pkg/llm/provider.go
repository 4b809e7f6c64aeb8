package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"lychee/internal/config"
)

// Provider 文本生成提供者接口
// 「如何调用大模型」由调用方注入，方便单测和替换实现
type Provider interface {
	// Generate 根据系统提示词和用户提示词生成文本
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// NewProvider 根据配置创建 Provider
// provider=ark-sdk 时直连官方 SDK，其余走 eino ChatModel
func NewProvider(ctx context.Context, cfg *config.AIConfig) (Provider, error) {
	if cfg.Provider == "ark-sdk" {
		client, err := NewArkClient(cfg)
		if err != nil {
			return nil, err
		}
		return NewArkProvider(client), nil
	}

	chatModel, err := NewChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewEinoProvider(chatModel), nil
}

// EinoProvider Eino 封装的 LLM 提供者（默认使用）
// 基于 NewChatModel 创建的 ChatModel（eino-ext 的 openai/ark 模块）
type EinoProvider struct {
	chatModel model.ChatModel
}

// NewEinoProvider 创建基于 Eino 的 LLM 提供者
func NewEinoProvider(chatModel model.ChatModel) *EinoProvider {
	return &EinoProvider{
		chatModel: chatModel,
	}
}

// Generate 根据提示词生成文本（使用 eino ChatModel）
func (p *EinoProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if p.chatModel == nil {
		return "", fmt.Errorf("chatModel is required")
	}

	messages := make([]*schema.Message, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, schema.SystemMessage(systemPrompt))
	}
	messages = append(messages, schema.UserMessage(userPrompt))

	response, err := p.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	content := response.Content
	if content == "" {
		return "", fmt.Errorf("empty response from chat model")
	}

	return content, nil
}
