// Package script 提供生成剧本的解析、校验与持久化
package script

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"z-script-ai-api/internal/config"
	"z-script-ai-api/internal/domain/entity"
)

const (
	defaultBodyStart = "---SCRIPT START---"
	defaultBodyEnd   = "---SCRIPT END---"
)

// speakerLine 匹配 "名字: 台词"，支持全角冒号与 **名字** 写法；
// 名字长度上限为角色名上限加括注余量
var speakerLine = regexp.MustCompile(fmt.Sprintf(
	`^(?:\*\*)?([^\s:：()\[\]*][^:：]{0,%d}?)(?:\*\*)?\s*[:：]\s*(.*)$`,
	entity.MaxCharacterNameLen+speakerNoteAllowance-1,
))

// speakerNoteAllowance 名字后括注（如 "(whispering)"）的额外长度
const speakerNoteAllowance = 20

// Mismatch 某个角色的行数偏差
type Mismatch struct {
	Character string `json:"character"`
	Expected  int    `json:"expected"`
	Actual    int    `json:"actual"`
}

// ValidationResult 台词行数校验结果
type ValidationResult struct {
	Valid       bool           `json:"valid"`
	ActualLines map[string]int `json:"actual_lines"`
	Mismatches  []Mismatch     `json:"mismatches,omitempty"`
	// ExtraSpeakers 未在分配中出现的说话人，仅作提示
	ExtraSpeakers []string `json:"extra_speakers,omitempty"`
}

// Warning 将偏差格式化为一条可读提示
func (r ValidationResult) Warning() string {
	if r.Valid && len(r.Mismatches) == 0 {
		return ""
	}
	parts := make([]string, 0, len(r.Mismatches))
	for _, m := range r.Mismatches {
		parts = append(parts, fmt.Sprintf("%s expected %d lines, got %d", m.Character, m.Expected, m.Actual))
	}
	return "line allocation mismatch: " + strings.Join(parts, "; ")
}

// Validator 按台词分配校验生成文本
type Validator struct {
	bodyStart        string
	bodyEnd          string
	strictTolerance  int
	lenientTolerance int
	failOnMismatch   bool
}

func NewValidator(scriptCfg config.ScriptConfig, cfg config.ValidationConfig) *Validator {
	v := &Validator{
		bodyStart:        scriptCfg.BodyStart,
		bodyEnd:          scriptCfg.BodyEnd,
		strictTolerance:  cfg.StrictTolerance,
		lenientTolerance: cfg.LenientTolerance,
		failOnMismatch:   cfg.FailOnMismatch,
	}
	if v.bodyStart == "" {
		v.bodyStart = defaultBodyStart
	}
	if v.bodyEnd == "" {
		v.bodyEnd = defaultBodyEnd
	}
	return v
}

// Tolerance 严格模式使用严格容差
func (v *Validator) Tolerance(strict bool) int {
	if strict {
		return v.strictTolerance
	}
	return v.lenientTolerance
}

// FailOnMismatch 偏差是否视为失败（默认仅告警）
func (v *Validator) FailOnMismatch() bool {
	return v.failOnMismatch
}

// Validate 统计每个说话人的台词行数并与期望比较
//
// 每个期望角色满足 |actual - expected| <= tolerance 时有效；额外说话人不影响结果。
func (v *Validator) Validate(text string, expected map[string]int, tolerance int) ValidationResult {
	names := make([]string, 0, len(expected))
	for name := range expected {
		names = append(names, name)
	}
	actual := countLines(v.ExtractBody(text), names)

	res := ValidationResult{Valid: true, ActualLines: make(map[string]int, len(expected))}
	matched := make(map[string]struct{}, len(actual))
	for name, want := range expected {
		got := 0
		for speaker, n := range actual {
			if strings.EqualFold(speaker, name) {
				got += n
				matched[speaker] = struct{}{}
			}
		}
		res.ActualLines[name] = got
		if diff := got - want; diff > tolerance || -diff > tolerance {
			res.Valid = false
			res.Mismatches = append(res.Mismatches, Mismatch{Character: name, Expected: want, Actual: got})
		}
	}
	for speaker, n := range actual {
		if _, ok := matched[speaker]; !ok {
			res.ActualLines[speaker] = n
			res.ExtraSpeakers = append(res.ExtraSpeakers, speaker)
		}
	}
	sort.Slice(res.Mismatches, func(i, j int) bool { return res.Mismatches[i].Character < res.Mismatches[j].Character })
	sort.Strings(res.ExtraSpeakers)
	return res
}

// ExtractBody 截取开始与结束标记之间的正文；无开始标记时返回全文
func (v *Validator) ExtractBody(text string) string {
	start := strings.Index(text, v.bodyStart)
	if start < 0 {
		return text
	}
	body := text[start+len(v.bodyStart):]
	if end := strings.Index(body, v.bodyEnd); end >= 0 {
		body = body[:end]
	}
	return body
}

// CountLines 统计正文中每个说话人的台词行数
//
// "名字: 台词" 切换当前说话人并计一行；舞台指示跳过；
// 其他非空行视为当前说话人的续行。
func CountLines(body string) map[string]int {
	return countLines(body, nil)
}

// countLines 先按已知角色名识别说话行，再退回通用的 "名字: 台词" 规则
func countLines(body string, known []string) map[string]int {
	known = append([]string(nil), known...)
	// 长名字优先，避免 "Kim" 抢先匹配 "Kim Elder"
	sort.Slice(known, func(i, j int) bool { return len(known[i]) > len(known[j]) })

	counts := make(map[string]int)
	current := ""
	for _, raw := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || isStageDirection(line) || isSeparator(line) || isMarker(line) {
			continue
		}
		if titleLine.MatchString(line) {
			continue
		}
		if name, dialogue, ok := matchKnownSpeaker(line, known); ok {
			current = name
			if dialogue != "" {
				counts[current]++
			}
			continue
		}
		if m := speakerLine.FindStringSubmatch(line); m != nil {
			current = speakerName(m[1])
			if strings.TrimSpace(m[2]) != "" {
				counts[current]++
			}
			continue
		}
		if current != "" {
			counts[current]++
		}
	}
	return counts
}

// matchKnownSpeaker 行首为已知角色名（忽略大小写，可带 ** 与括注）且紧跟冒号时命中
func matchKnownSpeaker(line string, known []string) (name, dialogue string, ok bool) {
	rest := strings.TrimPrefix(line, "**")
	for _, k := range known {
		if k == "" || len(rest) < len(k) || !strings.EqualFold(rest[:len(k)], k) {
			continue
		}
		tail := strings.TrimSpace(strings.TrimPrefix(rest[len(k):], "**"))
		if strings.HasPrefix(tail, "(") || strings.HasPrefix(tail, "（") {
			end := strings.IndexAny(tail, ")）")
			if end < 0 {
				continue
			}
			_, size := utf8.DecodeRuneInString(tail[end:])
			tail = strings.TrimSpace(strings.TrimPrefix(tail[end+size:], "**"))
		}
		for _, colon := range []string{":", "："} {
			if strings.HasPrefix(tail, colon) {
				return k, strings.TrimSpace(tail[len(colon):]), true
			}
		}
	}
	return "", "", false
}

// speakerName 去掉名字中的强调符号与括注，如 "Mina (whispering)" -> "Mina"
func speakerName(raw string) string {
	name := strings.TrimSpace(strings.Trim(raw, "*"))
	if i := strings.IndexAny(name, "(（"); i > 0 {
		name = strings.TrimSpace(name[:i])
	}
	return name
}

func isStageDirection(line string) bool {
	if len(line) < 2 {
		return false
	}
	switch {
	case strings.HasPrefix(line, "(") && strings.HasSuffix(line, ")"):
		return true
	case strings.HasPrefix(line, "（") && strings.HasSuffix(line, "）"):
		return true
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return true
	case strings.HasPrefix(line, "*") && strings.HasSuffix(line, "*") && !strings.HasPrefix(line, "**"):
		return true
	}
	return false
}

func isSeparator(line string) bool {
	return strings.Trim(line, "-=#_ ") == ""
}

// isMarker 形如 ---XXX--- 的正文标记行
func isMarker(line string) bool {
	return len(line) > 6 && strings.HasPrefix(line, "---") && strings.HasSuffix(line, "---")
}
