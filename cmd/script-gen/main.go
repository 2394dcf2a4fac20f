// Package main 剧本生成命令行入口（script-gen）
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"z-script-ai-api/internal/config"
	"z-script-ai-api/pkg/logger"
	"z-script-ai-api/pkg/tracer"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:           "script-gen",
	Short:         "Generate dialogue scripts against the reference corpus",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "configs", "Directory holding config.yaml")

	generateCmd.Flags().StringVar(&generateUser, "user", "", "User id charged for the generation (required)")
	generateCmd.Flags().StringVar(&generateCriteria, "criteria", "", "Criteria JSON file, - for stdin (required)")
	_ = generateCmd.MarkFlagRequired("user")
	_ = generateCmd.MarkFlagRequired("criteria")

	listCmd.Flags().StringVar(&listUser, "user", "", "Owner whose scripts are listed (required)")
	listCmd.Flags().IntVar(&listPage, "page", 1, "Page number")
	listCmd.Flags().IntVar(&listPageSize, "page-size", 20, "Page size (max 100)")
	_ = listCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup 加载配置并初始化日志与追踪，返回的 shutdown 需在退出前调用
func setup(ctx context.Context) (*config.Config, tracer.ShutdownFunc, error) {
	cfg, err := config.LoadFrom(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: "script-gen",
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init tracer: %w", err)
	}
	return cfg, shutdown, nil
}

// startMetricsServer 暴露 Prometheus 指标，ctx 结束时关闭
func startMetricsServer(ctx context.Context, cfg config.MetricsConfig) {
	if !cfg.Enabled {
		return
	}
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.Handler())
	srv := &http.Server{Addr: ":" + strconv.Itoa(cfg.Port), Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "metrics server stopped", err)
		}
	}()
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
}
