// Package entity 定义领域实体
package entity

import "github.com/lib/pq"

// ReferenceFragment 参考语料片段（只读，由外部导入流程写入）
type ReferenceFragment struct {
	ID               string         `json:"id" gorm:"type:varchar(64);primaryKey"`
	Text             string         `json:"text" gorm:"type:text;not null"`
	Genre            string         `json:"genre" gorm:"type:varchar(64);index"`
	AgeBracket       string         `json:"age_bracket" gorm:"type:varchar(32)"`
	Gender           string         `json:"gender" gorm:"type:varchar(16)"`
	NarrativeContext string         `json:"narrative_context" gorm:"type:text"`
	Emotion          string         `json:"emotion" gorm:"type:varchar(64)"`
	SceneIndex       int            `json:"scene_index" gorm:"not null;default:0"`
	ChunkIndex       int            `json:"chunk_index" gorm:"not null;default:0"`
	RhythmicPhrases  pq.StringArray `json:"rhythmic_phrases,omitempty" gorm:"type:text[]"`
}

// TableName 表名
func (ReferenceFragment) TableName() string {
	return "reference_fragments"
}
