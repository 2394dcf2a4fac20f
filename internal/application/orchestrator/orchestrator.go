package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"

	"z-script-ai-api/internal/application/assembler"
	"z-script-ai-api/internal/application/generation"
	"z-script-ai-api/internal/application/quota"
	"z-script-ai-api/internal/application/script"
	"z-script-ai-api/internal/domain/entity"
	"z-script-ai-api/internal/domain/service"
	apperrors "z-script-ai-api/pkg/errors"
	"z-script-ai-api/pkg/logger"
	"z-script-ai-api/pkg/metrics"
	"z-script-ai-api/pkg/tracer"
)

const workflowScriptGenerate = "script_generate"

// QuotaLedger 配额账本
type QuotaLedger interface {
	Reserve(ctx context.Context, userID string) (*quota.Reservation, error)
	Commit(ctx context.Context, userID string) (*entity.UsageRecord, error)
	Rollback(ctx context.Context, userID string)
}

// Retriever 参考片段检索
type Retriever interface {
	Retrieve(ctx context.Context, criteria entity.GenerationCriteria, limit int) ([]entity.ReferenceFragment, error)
}

// PromptAssembler Prompt 组装
type PromptAssembler interface {
	Assemble(ctx context.Context, criteria *entity.GenerationCriteria, fragments []entity.ReferenceFragment) (*generation.Payload, assembler.Allocation, error)
}

// TextGenerator 模型调用
type TextGenerator interface {
	Invoke(ctx context.Context, payload *generation.Payload) (*generation.GeneratedText, error)
}

// ScriptValidator 台词行数校验
type ScriptValidator interface {
	Validate(text string, expected map[string]int, tolerance int) script.ValidationResult
	Tolerance(strict bool) int
	FailOnMismatch() bool
}

// ScriptPersister 剧本持久化
type ScriptPersister interface {
	Persist(ctx context.Context, ownerID, text string, params entity.GenerationParams) (*entity.ScriptRecord, error)
}

// Options 编排参数
type Options struct {
	RetrievalLimit int
	ReplayTTL      time.Duration
}

// Orchestrator 生成请求编排器
//
// 顺序：校验 -> 幂等重放 -> Reserve -> 检索 -> 组装 -> 调用 -> 校验 -> 持久化 -> Commit。
// 持久化之前的任何失败都会 Rollback 并返回失败，不计配额；
// 持久化之后 Commit 失败仅记录日志，仍返回成功（宁可少计，不多计）。
type Orchestrator struct {
	ledger    QuotaLedger
	retriever Retriever
	assembler PromptAssembler
	generator TextGenerator
	validator ScriptValidator
	persister ScriptPersister
	pending   service.PendingStore
	validate  *validator.Validate
	opts      Options
}

func New(
	ledger QuotaLedger,
	retriever Retriever,
	assembler PromptAssembler,
	generator TextGenerator,
	scriptValidator ScriptValidator,
	persister ScriptPersister,
	pending service.PendingStore,
	opts Options,
) *Orchestrator {
	return &Orchestrator{
		ledger:    ledger,
		retriever: retriever,
		assembler: assembler,
		generator: generator,
		validator: scriptValidator,
		persister: persister,
		pending:   pending,
		validate:  validator.New(),
		opts:      opts,
	}
}

// Generate 处理一次生成请求，结果总是非 nil
func (o *Orchestrator) Generate(ctx context.Context, userID string, criteria entity.GenerationCriteria) *Result {
	start := time.Now()
	ctx = logger.WithContext(ctx, logger.UserIDKey, userID)
	if criteria.RequestID != "" {
		ctx = logger.WithContext(ctx, logger.RequestIDKey, criteria.RequestID)
	}
	ctx = service.WithWorkflow(ctx, workflowScriptGenerate)

	ctx, span := tracer.Start(ctx, "orchestrator.Orchestrator.Generate")
	defer span.End()

	res := o.generate(ctx, userID, &criteria)

	status := "success"
	if !res.Success {
		status = strings.ToLower(res.Code)
		span.SetAttributes(attribute.String("generation.error_code", res.Code))
	}
	span.SetAttributes(attribute.Bool("generation.replayed", res.Replayed))
	metrics.GenerationTotal.WithLabelValues(status).Inc()
	metrics.GenerationDuration.Observe(time.Since(start).Seconds())

	logger.Info(ctx, "generation finished",
		"success", res.Success,
		"code", res.Code,
		"replayed", res.Replayed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res
}

func (o *Orchestrator) generate(ctx context.Context, userID string, criteria *entity.GenerationCriteria) *Result {
	if err := o.checkRequest(userID, criteria); err != nil {
		return failure(err, nil)
	}

	key := replayKey(userID, criteria.RequestID)
	if prev := o.lookupReplay(ctx, key); prev != nil {
		return prev
	}

	reservation, err := o.ledger.Reserve(ctx, userID)
	if err != nil {
		return o.fail(ctx, err, usageFromReservation(reservation))
	}
	usage := usageFromReservation(reservation)

	fragments, err := o.retriever.Retrieve(ctx, *criteria, o.opts.RetrievalLimit)
	if err != nil {
		o.ledger.Rollback(ctx, userID)
		return o.fail(ctx, fmt.Errorf("retrieve fragments: %w", err), usage)
	}

	payload, alloc, err := o.assembler.Assemble(ctx, criteria, fragments)
	if err != nil {
		o.ledger.Rollback(ctx, userID)
		return o.fail(ctx, fmt.Errorf("assemble prompt: %w", err), usage)
	}

	generated, err := o.generator.Invoke(ctx, payload)
	if err != nil {
		o.ledger.Rollback(ctx, userID)
		return o.fail(ctx, err, usage)
	}

	var warnings []string
	vr := o.validator.Validate(generated.Text, alloc.Lines, o.validator.Tolerance(criteria.Strict))
	if vr.Valid {
		metrics.ValidationTotal.WithLabelValues("valid").Inc()
	} else {
		metrics.ValidationTotal.WithLabelValues("mismatch").Inc()
		logger.Warn(ctx, "generated script does not match line allocation",
			"mismatches", vr.Mismatches,
			"strict", criteria.Strict,
		)
		if o.validator.FailOnMismatch() {
			o.ledger.Rollback(ctx, userID)
			return o.fail(ctx, apperrors.New(apperrors.CodeValidationFailed, "generated script does not match the requested line allocation").
				WithDetails(map[string]any{"mismatches": vr.Mismatches}), usage)
		}
		warnings = append(warnings, vr.Warning())
	}
	if len(vr.ExtraSpeakers) > 0 {
		logger.Debug(ctx, "generated script has extra speakers", "speakers", vr.ExtraSpeakers)
	}

	if err := ctx.Err(); err != nil {
		o.ledger.Rollback(ctx, userID)
		return o.fail(ctx, err, usage)
	}

	record, err := o.persister.Persist(ctx, userID, generated.Text, entity.GenerationParams{
		Criteria:   *criteria,
		Allocation: alloc.Lines,
		Provider:   generated.Provider,
		Model:      generated.Model,
		Attempts:   generated.Attempts,
		Warnings:   warnings,
	})
	if err != nil {
		o.ledger.Rollback(ctx, userID)
		return o.fail(ctx, err, usage)
	}

	// 脱离请求取消：剧本已落库，计费应尽量完成
	committed, err := o.ledger.Commit(context.WithoutCancel(ctx), userID)
	if err != nil {
		logger.Error(ctx, "quota commit failed after persist", err, "script_id", record.ID)
	} else {
		usage = &Usage{Current: committed.CurrentMonthCount, Limit: committed.LimitLabel()}
	}

	res := &Result{
		Success:  true,
		Script:   record,
		Usage:    usage,
		Warnings: warnings,
	}
	o.storeReplay(ctx, key, res)
	return res
}

func (o *Orchestrator) checkRequest(userID string, criteria *entity.GenerationCriteria) *apperrors.AppError {
	if strings.TrimSpace(userID) == "" {
		return apperrors.New(apperrors.CodeInvalidRequestShape, "user id is required")
	}
	if err := o.validate.Struct(criteria); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInvalidRequestShape, "invalid generation criteria").
			WithDetail(err.Error())
	}
	if err := criteria.CheckCharacters(); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInvalidRequestShape, "invalid generation criteria").
			WithDetail(err.Error())
	}
	return nil
}

// fail 统一转换错误；请求已取消时归类为 REQUEST_CANCELLED
func (o *Orchestrator) fail(ctx context.Context, err error, usage *Usage) *Result {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		if ctx.Err() != nil {
			appErr = apperrors.Wrap(err, apperrors.CodeRequestCancelled, "the request was cancelled")
		} else {
			appErr = apperrors.Wrap(err, apperrors.CodeInternalError, "internal error")
		}
	}
	if appErr.Code != apperrors.CodeQuotaExceeded {
		logger.Warn(ctx, "generation failed", "code", string(appErr.Code), "error", err.Error())
	}
	return failure(appErr, usage)
}

func replayKey(userID, requestID string) string {
	if requestID == "" {
		return ""
	}
	return "generation:" + userID + ":" + requestID
}

func (o *Orchestrator) lookupReplay(ctx context.Context, key string) *Result {
	if o.pending == nil || key == "" {
		return nil
	}
	raw, ok, err := o.pending.Get(ctx, key)
	if err != nil {
		logger.Warn(ctx, "replay lookup failed", "error", err.Error())
		return nil
	}
	if !ok {
		return nil
	}
	var res Result
	if err := json.Unmarshal(raw, &res); err != nil {
		logger.Warn(ctx, "replay entry is corrupt", "error", err.Error())
		return nil
	}
	res.Replayed = true
	logger.Info(ctx, "replaying completed generation")
	return &res
}

func (o *Orchestrator) storeReplay(ctx context.Context, key string, res *Result) {
	if o.pending == nil || key == "" || o.opts.ReplayTTL <= 0 {
		return
	}
	raw, err := json.Marshal(res)
	if err != nil {
		logger.Warn(ctx, "failed to encode replay entry", "error", err.Error())
		return
	}
	if err := o.pending.Put(context.WithoutCancel(ctx), key, raw, o.opts.ReplayTTL); err != nil {
		logger.Warn(ctx, "failed to store replay entry", "error", err.Error())
	}
}

func usageFromReservation(r *quota.Reservation) *Usage {
	if r == nil {
		return nil
	}
	return &Usage{Current: r.CurrentCount, Limit: r.LimitLabel}
}
