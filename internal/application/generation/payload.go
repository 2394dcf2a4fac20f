// Package generation 提供带重试、超时与错误分类的模型调用能力
package generation

import (
	"context"
	"time"

	"github.com/cloudwego/eino/schema"
)

// Payload 一次生成请求的完整输入（Prompt 已渲染）
type Payload struct {
	Messages    []*schema.Message
	Model       string
	Temperature float32
	MaxTokens   int
}

// GeneratedText 模型返回的文本及元信息
type GeneratedText struct {
	Text             string
	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
	Attempts         int
}

// ModelProvider 托管模型的调用端口
//
// timeout 为本次尝试的预算；实现应尊重 ctx 取消并尽快返回。
type ModelProvider interface {
	Complete(ctx context.Context, payload *Payload, timeout time.Duration) (*GeneratedText, error)
}
