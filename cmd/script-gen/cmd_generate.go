package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"z-script-ai-api/internal/domain/entity"
	"z-script-ai-api/internal/infrastructure/ttlcache"
	einoobs "z-script-ai-api/internal/observability/eino"
	"z-script-ai-api/internal/wire"
	"z-script-ai-api/pkg/logger"
	"z-script-ai-api/pkg/tracer"
)

var (
	generateUser     string
	generateCriteria string
)

// generateCmd 执行一次完整的生成请求并输出结果 JSON
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run one generation request and print the result as JSON",
	RunE:  runGenerate,
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	criteria, err := readCriteria(generateCriteria, cmd.InOrStdin())
	if err != nil {
		return err
	}

	cfg, shutdown, err := setup(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = shutdown(context.WithoutCancel(ctx)) }()

	einoobs.Init()
	startMetricsServer(ctx, cfg.Observability.Metrics)

	app, cleanup, err := wire.InitializeApp(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}
	defer cleanup()

	if store, ok := app.Pending.(*ttlcache.PendingStore); ok {
		go store.Run(ctx, cfg.Pending.SweepInterval)
	}

	if criteria.RequestID != "" {
		if _, ok := app.Pending.(*ttlcache.PendingStore); ok {
			logger.Warn(ctx, "pending store is in-memory, request_id replay only covers this process")
		}
	}

	ctx, span := tracer.Start(ctx, "script-gen.generate")
	defer span.End()

	result := app.Orchestrator.Generate(ctx, generateUser, criteria)
	if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
		return err
	}
	if !result.Success {
		if id := tracer.TraceID(ctx); id != "" {
			return fmt.Errorf("generation failed: %s (trace_id %s)", result.Code, id)
		}
		return fmt.Errorf("generation failed: %s", result.Code)
	}
	return nil
}

func readCriteria(path string, stdin io.Reader) (entity.GenerationCriteria, error) {
	var criteria entity.GenerationCriteria

	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return criteria, fmt.Errorf("failed to read criteria: %w", err)
	}
	if err := json.Unmarshal(raw, &criteria); err != nil {
		return criteria, fmt.Errorf("invalid criteria JSON: %w", err)
	}
	return criteria, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
