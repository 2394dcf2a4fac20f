package prompt

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_ScriptGenTemplate(t *testing.T) {
	r := NewRegistry()
	tpl, err := r.ChatTemplate(PromptScriptGenV1)
	require.NoError(t, err)

	again, err := r.ChatTemplate(PromptScriptGenV1)
	require.NoError(t, err)
	assert.Same(t, tpl, again)

	msgs, err := tpl.Format(context.Background(), map[string]any{
		"body_start":        "---SCRIPT START---",
		"body_end":          "---SCRIPT END---",
		"character_count":   2,
		"genre":             "romance",
		"age_bracket":       "20s",
		"gender":            "mixed",
		"length_tier":       "short",
		"total_lines":       20,
		"theme":             "first snow",
		"allocation":        "- A: 10\n- B: 10",
		"reference_context": "(none)",
	})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "---SCRIPT START---")
	assert.Contains(t, msgs[1].Content, "- A: 10")
	assert.Contains(t, msgs[1].Content, "(20 dialogue lines in total)")
}

func TestRegistry_UnknownPrompt(t *testing.T) {
	_, err := NewRegistry().ChatTemplate("nope")
	assert.Error(t, err)
}
