//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"z-script-ai-api/internal/application/assembler"
	"z-script-ai-api/internal/application/generation"
	"z-script-ai-api/internal/application/orchestrator"
	"z-script-ai-api/internal/application/quota"
	"z-script-ai-api/internal/application/retrieval"
	"z-script-ai-api/internal/application/script"
	"z-script-ai-api/internal/config"
	"z-script-ai-api/internal/domain/repository"
	"z-script-ai-api/internal/infrastructure/llm"
	"z-script-ai-api/internal/infrastructure/persistence/postgres"
	"z-script-ai-api/internal/workflow/prompt"
)

// InitializeApp 初始化脚本生成应用
func InitializeApp(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		GenerationSet,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}

// InitializePostgresOnly 仅初始化 PostgreSQL 数据层（用于 bootstrap）
func InitializePostgresOnly(ctx context.Context, cfg *config.Config) (*PostgresOnlyDataLayer, func(), error) {
	wire.Build(
		PostgresSet,
		wire.Struct(new(PostgresOnlyDataLayer), "*"),
	)
	return nil, nil, nil
}

// PostgresSet PostgreSQL 提供者集合
var PostgresSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewTxManager,
	postgres.NewUsageRepository,
	postgres.NewFragmentRepository,
	postgres.NewScriptRepository,
)

// RepoSet 整合了具体实现与接口绑定的集合
var RepoSet = wire.NewSet(
	PostgresSet,
	// 接口绑定
	wire.Bind(new(repository.Transactor), new(*postgres.TxManager)),
	wire.Bind(new(repository.UsageRepository), new(*postgres.UsageRepository)),
	wire.Bind(new(repository.ScriptRepository), new(*postgres.ScriptRepository)),
)

// RedisSet Redis 提供者集合（可选）
var RedisSet = wire.NewSet(
	ProvideRedisClientOptional,
	ProvideFragmentRepository,
	ProvidePendingStore,
)

// GenerationSet 生成流水线提供者集合
var GenerationSet = wire.NewSet(
	prompt.NewRegistry,
	llm.NewEinoFactory,
	ProvideModelProvider,
	ProvideInvoker,
	ProvideLedger,
	retrieval.NewEngine,
	ProvideAssembler,
	ProvideValidator,
	script.NewPersister,
	ProvideOrchestratorOptions,
	orchestrator.New,
	wire.Bind(new(orchestrator.QuotaLedger), new(*quota.Ledger)),
	wire.Bind(new(orchestrator.Retriever), new(*retrieval.Engine)),
	wire.Bind(new(orchestrator.PromptAssembler), new(*assembler.Assembler)),
	wire.Bind(new(orchestrator.TextGenerator), new(*generation.Invoker)),
	wire.Bind(new(orchestrator.ScriptValidator), new(*script.Validator)),
	wire.Bind(new(orchestrator.ScriptPersister), new(*script.Persister)),
)
