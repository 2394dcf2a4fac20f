// Package assembler 负责台词分配与 Prompt 组装
package assembler

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"z-script-ai-api/internal/domain/entity"
)

// DefaultLengthTiers 长度档位对应的台词总行数
var DefaultLengthTiers = map[string]int{
	string(entity.LengthTierShort):  20,
	string(entity.LengthTierMedium): 40,
	string(entity.LengthTierLong):   60,
}

// Allocation 每个角色的目标台词行数
type Allocation struct {
	Total int
	Lines map[string]int
	// Order 按占比降序排列的角色名
	Order []string
}

// ResolveCharacters 返回请求中的角色；未给出时按角色数生成 "Character 1..n"
func ResolveCharacters(criteria entity.GenerationCriteria) []entity.CharacterSpec {
	if len(criteria.Characters) > 0 {
		out := make([]entity.CharacterSpec, 0, len(criteria.Characters))
		for _, c := range criteria.Characters {
			out = append(out, entity.CharacterSpec{Name: strings.TrimSpace(c.Name), Percentage: c.Percentage})
		}
		return out
	}
	out := make([]entity.CharacterSpec, 0, criteria.CharacterCount)
	for i := 1; i <= criteria.CharacterCount; i++ {
		out = append(out, entity.CharacterSpec{Name: fmt.Sprintf("Character %d", i)})
	}
	return out
}

// Allocate 将档位总行数按占比分配给各角色，分配之和恒等于总行数
//
// 角色按占比降序（稳定）处理；除最后一名外每人取 round(total*share)，
// 且不超过剩余行数；最后一名承担剩余全部行数。
func Allocate(tier entity.LengthTier, characters []entity.CharacterSpec, tiers map[string]int) (Allocation, error) {
	if len(tiers) == 0 {
		tiers = DefaultLengthTiers
	}
	total, ok := tiers[string(tier)]
	if !ok || total <= 0 {
		return Allocation{}, fmt.Errorf("unknown length tier %q", tier)
	}
	if len(characters) == 0 {
		return Allocation{}, fmt.Errorf("no characters to allocate")
	}

	shares := normalizeShares(characters)
	idx := make([]int, len(characters))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return shares[idx[a]] > shares[idx[b]]
	})

	alloc := Allocation{
		Total: total,
		Lines: make(map[string]int, len(characters)),
		Order: make([]string, 0, len(characters)),
	}
	remaining := total
	for k, i := range idx {
		name := characters[i].Name
		n := remaining
		if k < len(idx)-1 {
			n = int(math.Round(float64(total) * shares[i]))
			if n > remaining {
				n = remaining
			}
		}
		alloc.Lines[name] = n
		alloc.Order = append(alloc.Order, name)
		remaining -= n
	}
	return alloc, nil
}

// normalizeShares 将百分比归一化为和为 1 的占比
// 全部未指定时平分；部分未指定时平分剩余百分比。
func normalizeShares(characters []entity.CharacterSpec) []float64 {
	n := len(characters)
	raw := make([]float64, n)

	specified, unset := 0.0, 0
	for i, c := range characters {
		if c.Percentage > 0 {
			raw[i] = c.Percentage
			specified += c.Percentage
		} else {
			unset++
		}
	}
	if unset > 0 {
		fill := 0.0
		if specified == 0 {
			fill = 1
		} else if specified < 100 {
			fill = (100 - specified) / float64(unset)
		}
		for i, c := range characters {
			if c.Percentage <= 0 {
				raw[i] = fill
			}
		}
	}

	sum := 0.0
	for _, v := range raw {
		sum += v
	}
	shares := make([]float64, n)
	for i, v := range raw {
		if sum > 0 {
			shares[i] = v / sum
		} else {
			shares[i] = 1 / float64(n)
		}
	}
	return shares
}
