package ttlcache

import (
	"context"
	"time"

	"z-script-ai-api/internal/domain/service"
	"z-script-ai-api/pkg/logger"
)

var _ service.PendingStore = (*PendingStore)(nil)

// PendingStore 基于内存 TTL 缓存的幂等重放存储
type PendingStore struct {
	cache *Cache[string, []byte]
}

func NewPendingStore() *PendingStore {
	return &PendingStore{cache: New[string, []byte]()}
}

func (s *PendingStore) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	buf := make([]byte, len(value))
	copy(buf, value)
	s.cache.Set(key, buf, ttl)
	return nil
}

func (s *PendingStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.cache.Get(key)
	return v, ok, nil
}

func (s *PendingStore) Sweep(_ context.Context, now time.Time) (int, error) {
	return s.cache.Sweep(now), nil
}

// Run 周期性清理过期条目，直到 ctx 结束
func (s *PendingStore) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n, _ := s.Sweep(ctx, now); n > 0 {
				logger.Debug(ctx, "pending store swept", "removed", n)
			}
		}
	}
}
