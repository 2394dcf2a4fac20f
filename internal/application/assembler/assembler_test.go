package assembler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-script-ai-api/internal/config"
	"z-script-ai-api/internal/domain/entity"
	"z-script-ai-api/internal/workflow/prompt"
	apperrors "z-script-ai-api/pkg/errors"
)

func TestAssembler_Assemble(t *testing.T) {
	a := NewAssembler(prompt.NewRegistry(), config.ScriptConfig{
		BodyStart: "---SCRIPT START---",
		BodyEnd:   "---SCRIPT END---",
	}, config.RetrievalConfig{MaxRunesPerSegment: 100})

	criteria := &entity.GenerationCriteria{
		CharacterCount: 2,
		Genre:          "로맨스",
		LengthTier:     entity.LengthTierShort,
		Characters:     []entity.CharacterSpec{{Name: "Jiho", Percentage: 60}, {Name: "Sora", Percentage: 40}},
	}
	payload, alloc, err := a.Assemble(context.Background(), criteria, []entity.ReferenceFragment{
		{ID: "f1", Text: "Jiho: 눈 온다", Genre: "로맨스"},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"Jiho": 12, "Sora": 8}, alloc.Lines)
	assert.Equal(t, alloc.Lines, criteria.PerCharacterLineAllocation)

	require.Len(t, payload.Messages, 2)
	assert.Contains(t, payload.Messages[0].Content, "---SCRIPT END---")
	user := payload.Messages[1].Content
	assert.Contains(t, user, "- Jiho: 12 lines\n- Sora: 8 lines")
	assert.Contains(t, user, "Jiho: 눈 온다")
	assert.Contains(t, user, "Theme: none")
	assert.Contains(t, user, "Age bracket: any")
}

func TestAssembler_UnknownTier(t *testing.T) {
	a := NewAssembler(prompt.NewRegistry(), config.ScriptConfig{}, config.RetrievalConfig{})
	_, _, err := a.Assemble(context.Background(), &entity.GenerationCriteria{CharacterCount: 1, LengthTier: "huge"}, nil)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidRequestShape))
}
