// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"z-script-ai-api/internal/domain/entity"
	"z-script-ai-api/internal/domain/repository"
)

var _ repository.FragmentRepository = (*FragmentRepository)(nil)

// FragmentRepository 参考语料仓储实现（只读）
type FragmentRepository struct {
	client *Client
}

// NewFragmentRepository 创建参考语料仓储
func NewFragmentRepository(client *Client) *FragmentRepository {
	return &FragmentRepository{client: client}
}

// ListAll 按场景、分块顺序返回全部片段
func (r *FragmentRepository) ListAll(ctx context.Context) ([]entity.ReferenceFragment, error) {
	ctx, span := tracer.Start(ctx, "postgres.FragmentRepository.ListAll")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var fragments []entity.ReferenceFragment
	if err := db.Order("scene_index ASC, chunk_index ASC, id ASC").Find(&fragments).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list fragments: %w", err)
	}
	return fragments, nil
}
