package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"z-script-ai-api/internal/config"
	"z-script-ai-api/internal/domain/entity"
	"z-script-ai-api/internal/domain/repository"
	"z-script-ai-api/internal/wire"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting system bootstrap...")

	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// 2. 初始化数据层（仅 PostgreSQL）
	dataLayer, cleanup, err := wire.InitializePostgresOnly(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize data layer: %v", err)
	}
	defer cleanup()

	if err := dataLayer.PgClient.HealthCheck(ctx); err != nil {
		log.Fatalf("database is not healthy: %v", err)
	}
	fmt.Println("Database connection is healthy.")

	// 3. 建表
	if err := dataLayer.PgClient.AutoMigrate(ctx); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}
	fmt.Println("Tables usage_records, reference_fragments, scripts are up to date.")

	fragments, err := dataLayer.FragmentRepo.ListAll(ctx)
	if err != nil {
		log.Fatalf("failed to read reference corpus: %v", err)
	}
	fmt.Printf("Reference corpus holds %d fragments.\n", len(fragments))

	// 4. 预置用户用量记录
	userID := os.Getenv("BOOTSTRAP_USER_ID")
	if userID == "" {
		fmt.Println("Bootstrap completed successfully.")
		return
	}

	limit := cfg.Quota.DefaultMonthlyLimit
	if raw := os.Getenv("BOOTSTRAP_MONTHLY_LIMIT"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			log.Fatalf("invalid BOOTSTRAP_MONTHLY_LIMIT %q: %v", raw, err)
		}
	}

	err = dataLayer.TxManager.WithTransaction(ctx, func(ctx context.Context) error {
		record, err := dataLayer.UsageRepo.GetUsage(ctx, userID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			fmt.Printf("Provisioning usage record for %s (limit %d)...\n", userID, limit)
			return dataLayer.UsageRepo.SetUsage(ctx, entity.NewUsageRecord(userID, limit, time.Now().UTC()))
		case err != nil:
			return err
		}
		record.MonthlyLimit = limit
		fmt.Printf("Usage record for %s exists, monthly limit set to %s.\n", userID, record.LimitLabel())
		return dataLayer.UsageRepo.SetUsage(ctx, record)
	})
	if err != nil {
		log.Fatalf("failed to provision usage record: %v", err)
	}

	fmt.Println("Bootstrap completed successfully.")
}
