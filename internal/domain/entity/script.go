// Package entity 定义领域实体
package entity

import (
	"time"

	"github.com/google/uuid"
)

// GenerationParams 生成参数快照，随剧本一起落库
type GenerationParams struct {
	Criteria   GenerationCriteria `json:"criteria"`
	Allocation map[string]int     `json:"allocation"`
	Provider   string             `json:"provider,omitempty"`
	Model      string             `json:"model,omitempty"`
	Attempts   int                `json:"attempts,omitempty"`
	Warnings   []string           `json:"warnings,omitempty"`
}

// ScriptRecord 生成的剧本（持久化产物，整条写入）
type ScriptRecord struct {
	ID               string           `json:"id" gorm:"type:varchar(36);primaryKey"`
	OwnerID          string           `json:"owner_id" gorm:"type:varchar(64);index;not null"`
	Title            string           `json:"title" gorm:"type:varchar(255);not null"`
	Content          string           `json:"content" gorm:"type:text;not null"`
	CharacterCount   int              `json:"character_count" gorm:"not null"`
	GenerationParams GenerationParams `json:"generation_params" gorm:"type:jsonb;serializer:json"`
	CreatedAt        time.Time        `json:"created_at"`
}

// TableName 表名
func (ScriptRecord) TableName() string {
	return "scripts"
}

// NewScriptRecord 创建剧本记录
func NewScriptRecord(ownerID, title, content string, characterCount int, params GenerationParams) *ScriptRecord {
	return &ScriptRecord{
		ID:               uuid.NewString(),
		OwnerID:          ownerID,
		Title:            title,
		Content:          content,
		CharacterCount:   characterCount,
		GenerationParams: params,
		CreatedAt:        time.Now().UTC(),
	}
}
