package redis

import (
	"context"
	"fmt"
	"time"

	"z-script-ai-api/internal/domain/service"
)

var _ service.PendingStore = (*PendingStore)(nil)

// keyValue 幂等存储所需的键值能力（*Client 实现）
type keyValue interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// PendingStore 基于 Redis 键过期的幂等结果存储
type PendingStore struct {
	client keyValue
	prefix string
}

// NewPendingStore 创建 Redis 幂等存储
func NewPendingStore(client *Client) *PendingStore {
	return newPendingStore(client)
}

func newPendingStore(client keyValue) *PendingStore {
	return &PendingStore{client: client, prefix: "pending:"}
}

// Put 写入条目（SET EX）
func (s *PendingStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.prefix+key, value, ttl); err != nil {
		return fmt.Errorf("failed to put pending entry: %w", err)
	}
	return nil
}

// Get 读取条目，过期由 Redis 保证不可见
func (s *PendingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, s.prefix+key)
	if err != nil {
		if IsNil(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get pending entry: %w", err)
	}
	return []byte(val), true, nil
}

// Sweep Redis 自行淘汰过期键，无需清理
func (s *PendingStore) Sweep(context.Context, time.Time) (int, error) {
	return 0, nil
}
