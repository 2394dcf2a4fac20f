// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"z-script-ai-api/internal/domain/entity"
)

// ScriptRepository 剧本仓储接口
type ScriptRepository interface {
	// Insert 原子写入剧本
	Insert(ctx context.Context, script *entity.ScriptRecord) error

	// GetByID 根据 ID 获取剧本，不存在时返回 ErrNotFound
	GetByID(ctx context.Context, id string) (*entity.ScriptRecord, error)

	// ListByOwner 获取用户剧本列表
	ListByOwner(ctx context.Context, ownerID string, pagination Pagination) (*PagedResult[*entity.ScriptRecord], error)
}
