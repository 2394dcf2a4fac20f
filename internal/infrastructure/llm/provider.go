package llm

import (
	"context"
	"strings"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/model"

	"z-script-ai-api/internal/application/generation"
	"z-script-ai-api/internal/domain/service"
	"z-script-ai-api/pkg/logger"
)

var _ generation.ModelProvider = (*EinoProvider)(nil)

// EinoProvider 通过 Eino ChatModel 实现模型调用端口
type EinoProvider struct {
	factory  *EinoFactory
	provider string
}

// NewEinoProvider 创建模型调用端口，provider 为空时使用默认提供商
func NewEinoProvider(factory *EinoFactory, provider string) *EinoProvider {
	return &EinoProvider{
		factory:  factory,
		provider: factory.ProviderName(provider),
	}
}

// Complete 发起一次非流式生成
func (p *EinoProvider) Complete(ctx context.Context, payload *generation.Payload, timeout time.Duration) (*generation.GeneratedText, error) {
	cm, err := p.factory.Get(ctx, p.provider)
	if err != nil {
		return nil, err
	}

	cfg, _ := p.factory.ProviderConfig(p.provider)
	modelName := cfg.Model
	if payload.Model != "" {
		modelName = payload.Model
	}

	opts := make([]model.Option, 0, 3)
	if payload.Model != "" {
		opts = append(opts, model.WithModel(payload.Model))
	}
	if payload.Temperature > 0 {
		opts = append(opts, model.WithTemperature(payload.Temperature))
	}
	if payload.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(payload.MaxTokens))
	}

	ctx = service.WithProvider(ctx, p.provider)
	// 独立调用（不经过 compose 图）时需要手动初始化，全局 callbacks 才会触发
	ctx = callbacks.InitCallbacks(ctx, &callbacks.RunInfo{
		Name:      service.WorkflowFromContext(ctx),
		Type:      p.provider,
		Component: components.ComponentOfChatModel,
	})

	logger.Debug(ctx, "calling chat model",
		"provider", p.provider,
		"model", modelName,
		"attempt", service.AttemptFromContext(ctx),
		"timeout_ms", timeout.Milliseconds(),
	)

	msg, err := cm.Generate(ctx, payload.Messages, opts...)
	if err != nil {
		return nil, err
	}

	out := &generation.GeneratedText{
		Text:     strings.TrimSpace(msg.Content),
		Provider: p.provider,
		Model:    modelName,
	}
	if msg.ResponseMeta != nil && msg.ResponseMeta.Usage != nil {
		out.PromptTokens = msg.ResponseMeta.Usage.PromptTokens
		out.CompletionTokens = msg.ResponseMeta.Usage.CompletionTokens
	}
	return out, nil
}
