package assembler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"z-script-ai-api/internal/application/generation"
	"z-script-ai-api/internal/application/retrieval"
	"z-script-ai-api/internal/config"
	"z-script-ai-api/internal/domain/entity"
	"z-script-ai-api/internal/workflow/prompt"
	apperrors "z-script-ai-api/pkg/errors"
)

// Assembler 将请求条件、台词分配与参考片段渲染为模型输入
type Assembler struct {
	registry  *prompt.Registry
	tiers     map[string]int
	maxRunes  int
	bodyStart string
	bodyEnd   string
}

func NewAssembler(registry *prompt.Registry, scriptCfg config.ScriptConfig, retrievalCfg config.RetrievalConfig) *Assembler {
	tiers := scriptCfg.LengthTiers
	if len(tiers) == 0 {
		tiers = DefaultLengthTiers
	}
	return &Assembler{
		registry:  registry,
		tiers:     tiers,
		maxRunes:  retrievalCfg.MaxRunesPerSegment,
		bodyStart: scriptCfg.BodyStart,
		bodyEnd:   scriptCfg.BodyEnd,
	}
}

// Assemble 计算台词分配并渲染 Prompt；分配结果同时写回 criteria
func (a *Assembler) Assemble(ctx context.Context, criteria *entity.GenerationCriteria, fragments []entity.ReferenceFragment) (*generation.Payload, Allocation, error) {
	alloc, err := Allocate(criteria.LengthTier, ResolveCharacters(*criteria), a.tiers)
	if err != nil {
		return nil, Allocation{}, apperrors.Wrap(err, apperrors.CodeInvalidRequestShape, "invalid line allocation").
			WithDetail(err.Error())
	}
	criteria.PerCharacterLineAllocation = alloc.Lines

	tpl, err := a.registry.ChatTemplate(prompt.PromptScriptGenV1)
	if err != nil {
		return nil, Allocation{}, err
	}

	refContext := retrieval.BuildPromptContext(fragments, a.maxRunes)
	if refContext == "" {
		refContext = "(none)"
	}

	msgs, err := tpl.Format(ctx, map[string]any{
		"body_start":        a.bodyStart,
		"body_end":          a.bodyEnd,
		"character_count":   strconv.Itoa(criteria.CharacterCount),
		"genre":             orDefault(criteria.Genre, "any"),
		"age_bracket":       orDefault(criteria.AgeBracket, "any"),
		"gender":            orDefault(criteria.Gender, "any"),
		"length_tier":       string(criteria.LengthTier),
		"total_lines":       strconv.Itoa(alloc.Total),
		"theme":             orDefault(criteria.Theme, "none"),
		"allocation":        formatAllocation(alloc),
		"reference_context": refContext,
	})
	if err != nil {
		return nil, Allocation{}, fmt.Errorf("failed to render prompt: %w", err)
	}

	return &generation.Payload{Messages: msgs}, alloc, nil
}

func formatAllocation(alloc Allocation) string {
	lines := make([]string, 0, len(alloc.Order))
	for _, name := range alloc.Order {
		lines = append(lines, fmt.Sprintf("- %s: %d lines", name, alloc.Lines[name]))
	}
	return strings.Join(lines, "\n")
}

func orDefault(v, def string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return def
}
