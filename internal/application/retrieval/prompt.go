package retrieval

import (
	"fmt"
	"strings"

	"z-script-ai-api/internal/domain/entity"
)

const defaultMaxRunesPerSegment = 400

// BuildPromptContext 将检索到的参考片段格式化为可直接注入 Prompt 的块。
// 约束：尽量短，不把分数等调试信息塞进 Prompt。
func BuildPromptContext(fragments []entity.ReferenceFragment, maxRunesPerSegment int) string {
	if len(fragments) == 0 {
		return ""
	}
	if maxRunesPerSegment <= 0 {
		maxRunesPerSegment = defaultMaxRunesPerSegment
	}

	lines := make([]string, 0, len(fragments)*2)
	n := 0
	for _, f := range fragments {
		txt := truncateRunes(compactOneLine(f.Text), maxRunesPerSegment)
		if txt == "" {
			continue
		}
		n++

		tags := make([]string, 0, 3)
		for _, t := range []string{f.Genre, f.Emotion, f.NarrativeContext} {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, compactOneLine(t))
			}
		}
		ref := "Reference"
		if len(tags) > 0 {
			ref = strings.Join(tags, " / ")
		}
		lines = append(lines, fmt.Sprintf("[%d] (%s) %s", n, truncateRunes(ref, 80), txt))

		if phrases := nonEmpty(f.RhythmicPhrases); len(phrases) > 0 {
			lines = append(lines, "    rhythm: "+strings.Join(phrases, " | "))
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func compactOneLine(s string) string {
	out := strings.ReplaceAll(s, "\r\n", "\n")
	out = strings.ReplaceAll(out, "\r", "\n")
	out = strings.ReplaceAll(out, "\n", " ")
	out = strings.TrimSpace(out)
	for strings.Contains(out, "  ") {
		out = strings.ReplaceAll(out, "  ", " ")
	}
	return out
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max])) + "…"
}
