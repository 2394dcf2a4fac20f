// Package entity 定义领域实体
package entity

import (
	"fmt"
	"strings"
)

// LengthTier 剧本长度档位
type LengthTier string

const (
	LengthTierShort  LengthTier = "short"
	LengthTierMedium LengthTier = "medium"
	LengthTierLong   LengthTier = "long"
)

// RandomSentinel 过滤条件哨兵值：不过滤
const RandomSentinel = "random"

// AgeBracketRandom 年龄段哨兵值：不过滤
const AgeBracketRandom = RandomSentinel

// GenderRandom 性别哨兵值：不过滤
const GenderRandom = RandomSentinel

// MaxCharacterNameLen 角色名最大字符数，与 CharacterSpec.Name 的 max 校验一致
const MaxCharacterNameLen = 40

// CharacterSpec 角色及其台词占比（百分比，0 表示未指定）
type CharacterSpec struct {
	Name       string  `json:"name" validate:"required,max=40"`
	Percentage float64 `json:"percentage" validate:"gte=0,lte=100"`
}

// GenerationCriteria 单次生成请求条件，仅存活于一次请求
type GenerationCriteria struct {
	CharacterCount int             `json:"character_count" validate:"required,gte=1,lte=10"`
	Genre          string          `json:"genre,omitempty" validate:"omitempty,max=32"`
	AgeBracket     string          `json:"age_bracket,omitempty" validate:"omitempty,max=32"`
	Gender         string          `json:"gender,omitempty" validate:"omitempty,max=16"`
	LengthTier     LengthTier      `json:"length_tier" validate:"required,oneof=short medium long"`
	Characters     []CharacterSpec `json:"characters,omitempty" validate:"omitempty,dive"`
	Theme          string          `json:"theme,omitempty" validate:"omitempty,max=500"`
	Strict         bool            `json:"strict,omitempty"`
	RequestID      string          `json:"request_id,omitempty" validate:"omitempty,max=128"`

	// PerCharacterLineAllocation 由长度档位与角色占比推导，组装 Prompt 时填充
	PerCharacterLineAllocation map[string]int `json:"per_character_line_allocation,omitempty" validate:"-"`
}

// CheckCharacters 校验角色列表与角色数一致且名字不重复（忽略大小写）
func (c *GenerationCriteria) CheckCharacters() error {
	if len(c.Characters) == 0 {
		return nil
	}
	if len(c.Characters) != c.CharacterCount {
		return fmt.Errorf("character_count %d does not match %d characters", c.CharacterCount, len(c.Characters))
	}
	seen := make(map[string]struct{}, len(c.Characters))
	for _, ch := range c.Characters {
		name := strings.TrimSpace(ch.Name)
		if name == "" {
			return fmt.Errorf("character name is empty")
		}
		// 台词统计按名字忽略大小写匹配
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			return fmt.Errorf("duplicate character name %q", name)
		}
		seen[key] = struct{}{}
	}
	return nil
}
