// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"z-script-ai-api/internal/domain/entity"
)

// UsageRepository 用户月度用量仓储接口
type UsageRepository interface {
	// GetUsage 获取用户用量，不存在时返回 ErrNotFound
	GetUsage(ctx context.Context, userID string) (*entity.UsageRecord, error)

	// SetUsage 整条写回用户用量（不存在则创建）
	SetUsage(ctx context.Context, record *entity.UsageRecord) error
}
