// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"z-script-ai-api/internal/domain/entity"
)

// FragmentRepository 参考语料仓储接口（只读）
type FragmentRepository interface {
	// ListAll 按语料顺序返回全部片段
	ListAll(ctx context.Context) ([]entity.ReferenceFragment, error)
}
