package wire

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-script-ai-api/internal/config"
	"z-script-ai-api/internal/infrastructure/persistence/redis"
	"z-script-ai-api/internal/infrastructure/ttlcache"
)

func TestProvideRedisClientOptional_UnreachableFallsBack(t *testing.T) {
	cfg := &config.Config{}
	cfg.Cache.Redis = config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1, DialTimeout: 200 * time.Millisecond}

	client, cleanup, err := ProvideRedisClientOptional(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()
	assert.Nil(t, client)
}

func TestProvideRedisClientOptional_Disabled(t *testing.T) {
	client, cleanup, err := ProvideRedisClientOptional(context.Background(), &config.Config{})
	require.NoError(t, err)
	defer cleanup()
	assert.Nil(t, client)
}

func TestProvidePendingStore_BackendSelection(t *testing.T) {
	ctx := context.Background()
	// 创建客户端不会建立连接
	rc := redis.NewClient(&config.RedisConfig{Host: "127.0.0.1", Port: 1})
	defer rc.Close()

	cases := []struct {
		backend string
		client  *redis.Client
		redis   bool
	}{
		{backend: config.PendingBackendAuto, client: rc, redis: true},
		{backend: "", client: rc, redis: true},
		{backend: config.PendingBackendRedis, client: rc, redis: true},
		{backend: config.PendingBackendMemory, client: rc, redis: false},
		{backend: config.PendingBackendAuto, client: nil, redis: false},
		{backend: config.PendingBackendRedis, client: nil, redis: false},
	}
	for _, tc := range cases {
		cfg := &config.Config{Pending: config.PendingConfig{Backend: tc.backend}}
		store := ProvidePendingStore(ctx, cfg, tc.client)
		if tc.redis {
			assert.IsType(t, &redis.PendingStore{}, store, tc.backend)
		} else {
			assert.IsType(t, &ttlcache.PendingStore{}, store, tc.backend)
		}
	}
}
