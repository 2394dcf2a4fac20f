package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLLMContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "unknown", WorkflowFromContext(ctx))
	assert.Equal(t, "unknown", ProviderFromContext(ctx))
	assert.Equal(t, -1, AttemptFromContext(ctx))

	ctx = WithWorkflowProvider(ctx, " script_generate ", "openai")
	ctx = WithAttempt(ctx, 2)
	assert.Equal(t, "script_generate", WorkflowFromContext(ctx))
	assert.Equal(t, "openai", ProviderFromContext(ctx))
	assert.Equal(t, 2, AttemptFromContext(ctx))

	assert.Equal(t, "openai", ProviderFromContext(WithProvider(ctx, "  ")))
}
