// Package quota 提供用户月度生成配额能力
package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"z-script-ai-api/internal/config"
	"z-script-ai-api/internal/domain/entity"
	"z-script-ai-api/internal/domain/repository"
	apperrors "z-script-ai-api/pkg/errors"
	"z-script-ai-api/pkg/logger"
	"z-script-ai-api/pkg/metrics"
)

// Reservation 一次准入判定的结果（只读快照，不占用任何资源）
type Reservation struct {
	UserID       string    `json:"user_id"`
	Allowed      bool      `json:"allowed"`
	CurrentCount int       `json:"current_count"`
	Limit        int       `json:"limit"`
	LimitLabel   string    `json:"limit_label"`
	NextResetAt  time.Time `json:"next_reset_at"`
}

// Ledger 月度配额账本
//
// Reserve 只读判定；Commit 在产出可用结果后才递增用量；Rollback 为空操作。
// 并发提交同一用户时以最后写入为准（软上限）。
type Ledger struct {
	repo         repository.UsageRepository
	tx           repository.Transactor
	defaultLimit int
	now          func() time.Time
}

// NewLedger 创建配额账本，tx 可为 nil
func NewLedger(repo repository.UsageRepository, tx repository.Transactor, cfg config.QuotaConfig) *Ledger {
	return &Ledger{
		repo:         repo,
		tx:           tx,
		defaultLimit: cfg.DefaultMonthlyLimit,
		now:          time.Now,
	}
}

// Reserve 判定用户本月是否还有生成额度，不写入任何数据
func (l *Ledger) Reserve(ctx context.Context, userID string) (*Reservation, error) {
	now := l.now().UTC()

	record, err := l.load(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	res := &Reservation{
		UserID:       userID,
		CurrentCount: record.EffectiveCount(now),
		Limit:        record.MonthlyLimit,
		LimitLabel:   record.LimitLabel(),
		NextResetAt:  entity.NextResetAt(now),
	}
	if record.IsUnlimited() || res.CurrentCount < record.MonthlyLimit {
		res.Allowed = true
		return res, nil
	}

	metrics.QuotaRejectedTotal.Inc()
	logger.Info(ctx, "monthly quota exhausted",
		"user_id", userID,
		"current", res.CurrentCount,
		"limit", res.Limit,
	)
	return res, apperrors.New(apperrors.CodeQuotaExceeded, "monthly generation limit reached").
		WithDetails(map[string]any{
			"currentUsage":       res.CurrentCount,
			"limit":              res.Limit,
			"nextResetTimestamp": res.NextResetAt.Format(time.RFC3339),
		})
}

// Commit 记账一次成功生成：必要时执行月度滚动，并递增本月与累计计数
func (l *Ledger) Commit(ctx context.Context, userID string) (*entity.UsageRecord, error) {
	var committed *entity.UsageRecord
	apply := func(ctx context.Context) error {
		now := l.now().UTC()
		record, err := l.load(ctx, userID, now)
		if err != nil {
			return err
		}
		if record.NeedsReset(now) {
			record.CurrentMonthCount = 0
			record.LastResetAt = now
		}
		record.CurrentMonthCount++
		record.TotalGeneratedCount++
		record.UpdatedAt = now

		if err := l.repo.SetUsage(ctx, record); err != nil {
			return fmt.Errorf("failed to write usage: %w", err)
		}
		committed = record
		return nil
	}

	var err error
	if l.tx != nil {
		err = l.tx.WithTransaction(ctx, apply)
	} else {
		err = apply(ctx)
	}
	if err != nil {
		metrics.QuotaCommitTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.QuotaCommitTotal.WithLabelValues("success").Inc()
	logger.Debug(ctx, "quota committed",
		"user_id", userID,
		"current", committed.CurrentMonthCount,
		"total", committed.TotalGeneratedCount,
	)
	return committed, nil
}

// Rollback 释放预留；Reserve 不占用资源，因此无需任何写入
func (l *Ledger) Rollback(ctx context.Context, userID string) {
	logger.Debug(ctx, "quota reservation released", "user_id", userID)
}

// load 读取用户用量；不存在时按默认上限懒创建（仅内存，Commit 时落库）
func (l *Ledger) load(ctx context.Context, userID string, now time.Time) (*entity.UsageRecord, error) {
	record, err := l.repo.GetUsage(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return entity.NewUsageRecord(userID, l.defaultLimit, now), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load usage: %w", err)
	}
	return record, nil
}
