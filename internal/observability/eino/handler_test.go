package eino

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"z-script-ai-api/internal/domain/service"
	"z-script-ai-api/pkg/metrics"
)

func TestChatModelCallbackHandler_RecordsTokens(t *testing.T) {
	h := newChatModelCallbackHandler()
	ctx := service.WithWorkflowProvider(context.Background(), "script_generate", "handler-test")

	promptBefore := testutil.ToFloat64(metrics.LLMTokensUsed.WithLabelValues("handler-test", "m1", "prompt"))

	ctx = h.OnStart(ctx, nil, &model.CallbackInput{Config: &model.Config{Model: "m1"}})
	h.OnEnd(ctx, nil, &model.CallbackOutput{
		TokenUsage: &model.TokenUsage{PromptTokens: 10, CompletionTokens: 5},
	})

	assert.Equal(t, promptBefore+10, testutil.ToFloat64(metrics.LLMTokensUsed.WithLabelValues("handler-test", "m1", "prompt")))
	assert.Equal(t, float64(5), testutil.ToFloat64(metrics.LLMTokensUsed.WithLabelValues("handler-test", "m1", "completion")))
}

func TestChatModelCallbackHandler_OnError(t *testing.T) {
	h := newChatModelCallbackHandler()
	ctx := h.OnStart(context.Background(), nil, &model.CallbackInput{Messages: []*schema.Message{schema.UserMessage("x")}})
	assert.NotPanics(t, func() { h.OnError(ctx, nil, errors.New("boom")) })
}

func TestInit_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Init()
		Init()
	})
}
