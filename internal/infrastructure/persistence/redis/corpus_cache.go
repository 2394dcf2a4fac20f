package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"z-script-ai-api/internal/domain/entity"
	"z-script-ai-api/internal/domain/repository"
	"z-script-ai-api/pkg/logger"
)

// corpusCacheKey 语料全集缓存键
const corpusCacheKey = "corpus:fragments:v1"

// readThrough 读穿缓存能力（*Cache 实现）
type readThrough interface {
	GetOrLoadSafe(ctx context.Context, key string, ttl time.Duration, loader func(ctx context.Context) (any, error)) ([]byte, error)
}

var _ repository.FragmentRepository = (*CachedCorpus)(nil)

// CachedCorpus 参考语料的读穿缓存：命中时不访问数据库
type CachedCorpus struct {
	cache readThrough
	repo  repository.FragmentRepository
	ttl   time.Duration
}

// NewCachedCorpus 创建语料缓存
func NewCachedCorpus(cache *Cache, repo repository.FragmentRepository, ttl time.Duration) *CachedCorpus {
	return newCachedCorpus(cache, repo, ttl)
}

func newCachedCorpus(cache readThrough, repo repository.FragmentRepository, ttl time.Duration) *CachedCorpus {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedCorpus{cache: cache, repo: repo, ttl: ttl}
}

// storeError 标记来自数据库加载（而非 Redis）的错误，singleflight 共享调用方也能识别
type storeError struct{ err error }

func (e *storeError) Error() string { return e.err.Error() }
func (e *storeError) Unwrap() error { return e.err }

// ListAll 先查缓存，未命中时由数据库加载并回填；仅在 Redis 出错时直接回源
func (c *CachedCorpus) ListAll(ctx context.Context) ([]entity.ReferenceFragment, error) {
	raw, err := c.cache.GetOrLoadSafe(ctx, corpusCacheKey, c.ttl, func(ctx context.Context) (any, error) {
		fragments, err := c.repo.ListAll(ctx)
		if err != nil {
			return nil, &storeError{err: err}
		}
		return fragments, nil
	})
	if err != nil {
		var se *storeError
		if errors.As(err, &se) {
			return nil, se.err
		}
		logger.Warn(ctx, "corpus cache unavailable, falling back to store", "error", err)
		return c.repo.ListAll(ctx)
	}

	var fragments []entity.ReferenceFragment
	if err := json.Unmarshal(raw, &fragments); err != nil {
		return nil, fmt.Errorf("failed to decode cached corpus: %w", err)
	}
	return fragments, nil
}
