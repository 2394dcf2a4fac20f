package service

import (
	"context"
	"time"
)

// PendingStore 带过期时间的键值存储，用于保存已完成请求的结果以便幂等重放
//
// 实现需保证：过期条目对 Get 不可见（即使尚未被 Sweep 清理）。
type PendingStore interface {
	// Put 写入条目，ttl 到期后失效
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get 读取条目；不存在或已过期时 ok=false
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Sweep 清理 now 之前过期的条目，返回清理数量
	Sweep(ctx context.Context, now time.Time) (int, error)
}
