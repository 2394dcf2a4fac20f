package script

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	untitled          = "Untitled"
	maxTitleLineRunes = 50
)

var (
	titleLine    = regexp.MustCompile(`(?i)^[#*\s]*(?:title|제목)\s*[:：]\s*(.*?)[*\s]*$`)
	titleBracket = regexp.MustCompile(`(?i)^\[([^\]]*title[^\]]*)\]$`)
)

// ExtractTitle 依次尝试：标题标记行 -> 含 title 的方括号 -> 较短的首行 -> "Untitled"
func ExtractTitle(text string) string {
	lines := nonEmptyLines(text)

	for _, line := range lines {
		if m := titleLine.FindStringSubmatch(line); m != nil {
			if t := cleanTitle(m[1]); t != "" {
				return t
			}
		}
	}

	for _, line := range lines {
		if m := titleBracket.FindStringSubmatch(line); m != nil {
			inner := m[1]
			if i := strings.IndexAny(inner, ":："); i >= 0 {
				_, size := utf8.DecodeRuneInString(inner[i:])
				inner = inner[i+size:]
			}
			if t := cleanTitle(inner); t != "" {
				return t
			}
		}
	}

	if len(lines) > 0 {
		first := lines[0]
		if !isStageDirection(first) && !isSeparator(first) && !isMarker(first) && !speakerLine.MatchString(first) {
			if t := cleanTitle(first); t != "" && utf8.RuneCountInString(t) <= maxTitleLineRunes {
				return t
			}
		}
	}
	return untitled
}

func cleanTitle(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "#*\"'“”「」『』 ")
	return strings.TrimSpace(s)
}

func nonEmptyLines(text string) []string {
	var out []string
	for _, l := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
