// Package retrieval 提供参考片段的过滤、打分与格式化能力
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"z-script-ai-api/internal/domain/entity"
	"z-script-ai-api/internal/domain/repository"
	"z-script-ai-api/pkg/logger"
	"z-script-ai-api/pkg/metrics"
)

// Engine 基于属性过滤与关键词打分的检索引擎
type Engine struct {
	corpus repository.FragmentRepository
}

func NewEngine(corpus repository.FragmentRepository) *Engine {
	return &Engine{corpus: corpus}
}

// Retrieve 返回至多 limit 个与条件最相关的参考片段
//
// 过滤顺序：题材 -> 年龄段 -> 性别；题材过滤为空时跳过题材过滤，
// 全部过滤后为空时退回对完整语料打分。结果按分数降序，同分保持语料顺序。
func (e *Engine) Retrieve(ctx context.Context, criteria entity.GenerationCriteria, limit int) ([]entity.ReferenceFragment, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	all, err := e.corpus.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reference fragments: %w", err)
	}

	scored, stats := Rank(all, criteria)
	if len(scored) > limit {
		scored = scored[:limit]
	}

	out := make([]entity.ReferenceFragment, 0, len(scored))
	for _, s := range scored {
		out = append(out, s.Fragment)
	}

	metrics.RetrievalFragments.Observe(float64(len(out)))
	logger.Debug(ctx, "reference fragments retrieved",
		"total", stats.Total,
		"filtered", stats.Filtered,
		"genre_skipped", stats.GenreSkipped,
		"fallback", stats.Fallback,
		"returned", len(out),
	)
	return out, nil
}

// Rank 对语料执行过滤与打分，返回完整排序结果
func Rank(all []entity.ReferenceFragment, criteria entity.GenerationCriteria) ([]ScoredFragment, Stats) {
	stats := Stats{Total: len(all)}

	candidates := all
	if genre := strings.TrimSpace(criteria.Genre); genre != "" {
		byGenre := filter(candidates, func(f entity.ReferenceFragment) bool {
			return matchesContains(f.Genre, expand(genreSynonyms, genre))
		})
		if len(byGenre) > 0 {
			candidates = byGenre
		} else {
			stats.GenreSkipped = true
		}
	}

	if age := strings.TrimSpace(criteria.AgeBracket); age != "" && !strings.EqualFold(age, entity.AgeBracketRandom) {
		syns := expand(ageSynonyms, age)
		candidates = filter(candidates, func(f entity.ReferenceFragment) bool {
			return matchesContains(f.AgeBracket, syns)
		})
	}

	if gender := strings.TrimSpace(criteria.Gender); gender != "" && !strings.EqualFold(gender, entity.GenderRandom) {
		syns := expand(genderSynonyms, gender)
		candidates = filter(candidates, func(f entity.ReferenceFragment) bool {
			return matchesGender(f.Gender, syns)
		})
	}

	stats.Filtered = len(candidates)
	if len(candidates) == 0 {
		candidates = all
		stats.Fallback = true
	}

	scored := make([]ScoredFragment, 0, len(candidates))
	for _, f := range candidates {
		scored = append(scored, ScoredFragment{Fragment: f, Score: Score(f, criteria.Genre)})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored, stats
}

// Score 计算片段的上下文相关度，范围 [0, 20]
func Score(f entity.ReferenceFragment, genre string) int {
	narrative := strings.ToLower(f.NarrativeContext)
	emotion := strings.ToLower(f.Emotion)

	keywordScore := 0
	seen := make(map[string]struct{})
	for _, kw := range keywordsFor(genre) {
		kw = strings.ToLower(kw)
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		if strings.Contains(narrative, kw) {
			keywordScore += pointsPerKeyword
		}
	}
	if keywordScore > keywordScoreCap {
		keywordScore = keywordScoreCap
	}

	score := keywordScore
	if emotion != "" {
		for _, p := range emotionSituationPairs {
			if strings.Contains(emotion, p.emotion) && strings.Contains(narrative, p.situation) {
				score += pairScore
				break
			}
		}
	}
	if score > maxScore {
		score = maxScore
	}
	return score
}

// expand 返回与输入同组的全部同义词（小写，含输入本身）
func expand(table map[string][]string, value string) []string {
	v := strings.ToLower(strings.TrimSpace(value))
	out := []string{v}
	for canonical, syns := range table {
		group := append([]string{canonical}, syns...)
		if !containsFold(group, v) {
			continue
		}
		for _, s := range group {
			out = append(out, strings.ToLower(s))
		}
	}
	return out
}

// keywordsFor 题材关键词；未知题材时仅使用同义词本身
func keywordsFor(genre string) []string {
	g := strings.TrimSpace(genre)
	if g == "" {
		return nil
	}
	syns := expand(genreSynonyms, g)
	out := append([]string(nil), syns...)
	for canonical, kws := range genreKeywords {
		if containsFold(syns, canonical) {
			out = append(out, kws...)
		}
	}
	return out
}

func matchesContains(stored string, synonyms []string) bool {
	s := strings.ToLower(strings.TrimSpace(stored))
	if s == "" {
		return false
	}
	for _, syn := range synonyms {
		if syn == "" {
			continue
		}
		if strings.Contains(s, syn) || strings.Contains(syn, s) {
			return true
		}
	}
	return false
}

// matchesGender 片段性别可含多个标签（"male, female"、"남성/여성"），任一标签命中即可
func matchesGender(stored string, synonyms []string) bool {
	tokens := strings.FieldsFunc(strings.ToLower(stored), isGenderSeparator)
	if len(tokens) == 0 {
		return true
	}
	for _, tok := range tokens {
		if _, ok := genderWildcards[tok]; ok {
			return true
		}
		if containsFold(synonyms, tok) {
			return true
		}
	}
	return false
}

func isGenderSeparator(r rune) bool {
	switch r {
	case ',', '/', '|', ';', '&', '，', '、':
		return true
	}
	return unicode.IsSpace(r)
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

func filter(in []entity.ReferenceFragment, keep func(entity.ReferenceFragment) bool) []entity.ReferenceFragment {
	var out []entity.ReferenceFragment
	for _, f := range in {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}
