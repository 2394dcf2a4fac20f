package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-script-ai-api/internal/application/generation"
	"z-script-ai-api/internal/config"
	"z-script-ai-api/internal/domain/service"
)

type chatModelStub struct {
	mu       sync.Mutex
	reply    *schema.Message
	err      error
	calls    int
	provider string
	opts     *model.Options
}

func (m *chatModelStub) Generate(ctx context.Context, _ []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.provider = service.ProviderFromContext(ctx)
	m.opts = model.GetCommonOptions(&model.Options{}, opts...)
	return m.reply, m.err
}

func (m *chatModelStub) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

func newTestFactory(stub *chatModelStub, builds *int) *EinoFactory {
	cfg := &config.LLMConfig{
		DefaultProvider: "openai",
		Providers: map[string]config.ProviderConfig{
			"openai": {Model: "gpt-4o-mini"},
		},
	}
	return NewEinoFactoryWithBuilder(cfg, func(context.Context, config.ProviderConfig) (model.BaseChatModel, error) {
		*builds++
		return stub, nil
	})
}

func TestEinoFactory_CachesModels(t *testing.T) {
	builds := 0
	f := newTestFactory(&chatModelStub{}, &builds)

	// 空名字取默认提供商
	_, err := f.Get(context.Background(), "")
	require.NoError(t, err)
	_, err = f.Get(context.Background(), "openai")
	require.NoError(t, err)
	assert.Equal(t, 1, builds)

	_, err = f.Get(context.Background(), "missing")
	assert.Error(t, err)
}

func TestEinoProvider_Complete(t *testing.T) {
	builds := 0
	stub := &chatModelStub{reply: &schema.Message{
		Role:    schema.Assistant,
		Content: "  A: hi  ",
		ResponseMeta: &schema.ResponseMeta{
			Usage: &schema.TokenUsage{PromptTokens: 12, CompletionTokens: 34, TotalTokens: 46},
		},
	}}
	p := NewEinoProvider(newTestFactory(stub, &builds), "")

	out, err := p.Complete(context.Background(), &generation.Payload{
		Messages:    []*schema.Message{schema.UserMessage("hi")},
		Temperature: 0.7,
		MaxTokens:   256,
	}, time.Second)
	require.NoError(t, err)

	assert.Equal(t, "A: hi", out.Text)
	assert.Equal(t, "openai", out.Provider)
	assert.Equal(t, "gpt-4o-mini", out.Model)
	assert.Equal(t, 12, out.PromptTokens)
	assert.Equal(t, 34, out.CompletionTokens)

	assert.Equal(t, "openai", stub.provider)
	require.NotNil(t, stub.opts.MaxTokens)
	assert.Equal(t, 256, *stub.opts.MaxTokens)
	require.NotNil(t, stub.opts.Temperature)
	assert.InDelta(t, 0.7, *stub.opts.Temperature, 0.0001)
}

func TestEinoProvider_PropagatesErrors(t *testing.T) {
	builds := 0
	stub := &chatModelStub{err: errors.New("error, status code: 429, message: slow down")}
	p := NewEinoProvider(newTestFactory(stub, &builds), "openai")

	_, err := p.Complete(context.Background(), &generation.Payload{}, time.Second)
	require.Error(t, err)
	assert.Equal(t, generation.KindProviderRateLimited, generation.Classify(err).Kind)
}
