package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"z-script-ai-api/internal/domain/repository"
	"z-script-ai-api/internal/wire"
)

var (
	listUser     string
	listPage     int
	listPageSize int
)

// listCmd 分页列出用户已生成的剧本
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List scripts generated for a user, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withScripts(cmd.Context(), func(ctx context.Context, scripts repository.ScriptRepository) error {
			page, err := scripts.ListByOwner(ctx, listUser, repository.NewPagination(listPage, listPageSize))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), page)
		})
	},
}

// showCmd 输出单个剧本
var showCmd = &cobra.Command{
	Use:   "show <script-id>",
	Short: "Print one stored script as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withScripts(cmd.Context(), func(ctx context.Context, scripts repository.ScriptRepository) error {
			script, err := scripts.GetByID(ctx, args[0])
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("script %s not found", args[0])
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), script)
		})
	},
}

func withScripts(ctx context.Context, fn func(ctx context.Context, scripts repository.ScriptRepository) error) error {
	cfg, shutdown, err := setup(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = shutdown(context.WithoutCancel(ctx)) }()

	dataLayer, cleanup, err := wire.InitializePostgresOnly(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize data layer: %w", err)
	}
	defer cleanup()

	return fn(ctx, dataLayer.ScriptRepo)
}
