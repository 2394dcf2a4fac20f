// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"z-script-ai-api/internal/application/assembler"
	"z-script-ai-api/internal/application/generation"
	"z-script-ai-api/internal/application/orchestrator"
	"z-script-ai-api/internal/application/quota"
	"z-script-ai-api/internal/application/script"
	"z-script-ai-api/internal/config"
	"z-script-ai-api/internal/domain/repository"
	"z-script-ai-api/internal/domain/service"
	"z-script-ai-api/internal/infrastructure/llm"
	"z-script-ai-api/internal/infrastructure/persistence/postgres"
	"z-script-ai-api/internal/infrastructure/persistence/redis"
	"z-script-ai-api/internal/infrastructure/ttlcache"
	"z-script-ai-api/internal/workflow/prompt"
	"z-script-ai-api/pkg/logger"
)

// App 脚本生成应用
type App struct {
	Orchestrator *orchestrator.Orchestrator
	Scripts      repository.ScriptRepository
	Pending      service.PendingStore
}

// PostgresOnlyDataLayer 仅包含 PostgreSQL 的数据层（用于 bootstrap）
type PostgresOnlyDataLayer struct {
	PgClient     *postgres.Client
	TxManager    *postgres.TxManager
	UsageRepo    *postgres.UsageRepository
	FragmentRepo *postgres.FragmentRepository
	ScriptRepo   *postgres.ScriptRepository
}

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClientOptional 提供 Redis 客户端；未启用或不可达时返回 nil，相关功能降级为内存实现
func ProvideRedisClientOptional(ctx context.Context, cfg *config.Config) (*redis.Client, func(), error) {
	if !cfg.Cache.Redis.Enabled {
		return nil, func() {}, nil
	}
	client := redis.NewClient(&cfg.Cache.Redis)
	if err := client.HealthCheck(ctx); err != nil {
		logger.Warn(ctx, "redis not available, falling back to in-memory stores", "error", err.Error())
		_ = client.Close()
		return nil, func() {}, nil
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideFragmentRepository 参考语料来源：启用缓存且 Redis 可用时走读穿缓存
func ProvideFragmentRepository(cfg *config.Config, redisClient *redis.Client, store *postgres.FragmentRepository) repository.FragmentRepository {
	if !cfg.CorpusCache.Enabled || redisClient == nil {
		return store
	}
	return redis.NewCachedCorpus(redis.NewCache(redisClient), store, cfg.CorpusCache.TTL)
}

// ProvidePendingStore 幂等结果存储：backend 为 redis 或 auto 且 Redis 可用时使用 Redis，否则使用内存
//
// 内存存储只在单个进程内有效，script-gen 每次调用一个进程，跨调用重放需要 Redis。
func ProvidePendingStore(ctx context.Context, cfg *config.Config, redisClient *redis.Client) service.PendingStore {
	switch cfg.Pending.Backend {
	case config.PendingBackendRedis, config.PendingBackendAuto, "":
		if redisClient != nil {
			return redis.NewPendingStore(redisClient)
		}
		if cfg.Pending.Backend == config.PendingBackendRedis {
			logger.Warn(ctx, "pending backend redis unavailable, replay is limited to this process")
		}
	}
	return ttlcache.NewPendingStore()
}

// ProvideLedger 提供配额账本
func ProvideLedger(repo repository.UsageRepository, tx repository.Transactor, cfg *config.Config) *quota.Ledger {
	return quota.NewLedger(repo, tx, cfg.Quota)
}

// ProvideAssembler 提供 Prompt 组装器
func ProvideAssembler(registry *prompt.Registry, cfg *config.Config) *assembler.Assembler {
	return assembler.NewAssembler(registry, cfg.Script, cfg.Retrieval)
}

// ProvideValidator 提供台词行数校验器
func ProvideValidator(cfg *config.Config) *script.Validator {
	return script.NewValidator(cfg.Script, cfg.Validation)
}

// ProvideModelProvider 提供默认提供商的模型调用端口
func ProvideModelProvider(factory *llm.EinoFactory) generation.ModelProvider {
	return llm.NewEinoProvider(factory, "")
}

// ProvideInvoker 提供带重试的模型调用器
func ProvideInvoker(provider generation.ModelProvider, cfg *config.Config) *generation.Invoker {
	return generation.NewInvoker(provider, generation.OptionsFromConfig(cfg.Generation))
}

// ProvideOrchestratorOptions 提供编排参数
func ProvideOrchestratorOptions(cfg *config.Config) orchestrator.Options {
	return orchestrator.Options{
		RetrievalLimit: cfg.Retrieval.Limit,
		ReplayTTL:      cfg.Pending.TTL,
	}
}
