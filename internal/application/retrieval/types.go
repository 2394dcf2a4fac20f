package retrieval

import "z-script-ai-api/internal/domain/entity"

const (
	defaultLimit = 3

	pointsPerKeyword = 5
	keywordScoreCap  = 15
	pairScore        = 5
	maxScore         = 20
)

// ScoredFragment 打分后的片段
type ScoredFragment struct {
	Fragment entity.ReferenceFragment
	Score    int
}

// Stats 一次检索的统计信息（仅用于日志）
type Stats struct {
	Total        int
	Filtered     int
	GenreSkipped bool
	Fallback     bool
}
