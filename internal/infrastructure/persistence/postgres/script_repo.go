// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"z-script-ai-api/internal/domain/entity"
	"z-script-ai-api/internal/domain/repository"
)

var _ repository.ScriptRepository = (*ScriptRepository)(nil)

// ScriptRepository 剧本仓储实现
type ScriptRepository struct {
	client *Client
}

// NewScriptRepository 创建剧本仓储
func NewScriptRepository(client *Client) *ScriptRepository {
	return &ScriptRepository{client: client}
}

// Insert 写入剧本（单条 INSERT，整体成功或失败）
func (r *ScriptRepository) Insert(ctx context.Context, script *entity.ScriptRecord) error {
	ctx, span := tracer.Start(ctx, "postgres.ScriptRepository.Insert")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(script).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to insert script: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取剧本
func (r *ScriptRepository) GetByID(ctx context.Context, id string) (*entity.ScriptRecord, error) {
	ctx, span := tracer.Start(ctx, "postgres.ScriptRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var script entity.ScriptRecord
	if err := db.First(&script, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get script: %w", err)
	}
	return &script, nil
}

// ListByOwner 获取用户剧本列表（按创建时间倒序）
func (r *ScriptRepository) ListByOwner(ctx context.Context, ownerID string, pagination repository.Pagination) (*repository.PagedResult[*entity.ScriptRecord], error) {
	ctx, span := tracer.Start(ctx, "postgres.ScriptRepository.ListByOwner")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var total int64
	if err := db.Model(&entity.ScriptRecord{}).Where("owner_id = ?", ownerID).Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count scripts: %w", err)
	}

	var scripts []*entity.ScriptRecord
	if err := db.Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&scripts).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list scripts: %w", err)
	}

	return repository.NewPagedResult(scripts, total, pagination), nil
}
