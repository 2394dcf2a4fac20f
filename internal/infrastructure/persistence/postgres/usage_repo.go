// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"z-script-ai-api/internal/domain/entity"
	"z-script-ai-api/internal/domain/repository"
)

var _ repository.UsageRepository = (*UsageRepository)(nil)

// UsageRepository 用户用量仓储实现
type UsageRepository struct {
	client *Client
}

// NewUsageRepository 创建用户用量仓储
func NewUsageRepository(client *Client) *UsageRepository {
	return &UsageRepository{client: client}
}

// GetUsage 获取用户用量
func (r *UsageRepository) GetUsage(ctx context.Context, userID string) (*entity.UsageRecord, error) {
	ctx, span := tracer.Start(ctx, "postgres.UsageRepository.GetUsage")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var record entity.UsageRecord
	if err := db.First(&record, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get usage: %w", err)
	}
	return &record, nil
}

// SetUsage 整条写回用户用量（按主键 upsert）
func (r *UsageRepository) SetUsage(ctx context.Context, record *entity.UsageRecord) error {
	ctx, span := tracer.Start(ctx, "postgres.UsageRepository.SetUsage")
	defer span.End()

	db := getDB(ctx, r.client.db)
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"current_month_count", "monthly_limit", "last_reset_at", "total_generated_count", "updated_at",
		}),
	}).Create(record).Error
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to set usage: %w", err)
	}
	return nil
}
