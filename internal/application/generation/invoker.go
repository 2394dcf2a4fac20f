package generation

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"z-script-ai-api/internal/config"
	"z-script-ai-api/internal/domain/service"
	apperrors "z-script-ai-api/pkg/errors"
	"z-script-ai-api/pkg/logger"
	"z-script-ai-api/pkg/metrics"
	"z-script-ai-api/pkg/tracer"
)

// Options 重试与超时策略
type Options struct {
	MaxAttempts int
	BaseTimeout time.Duration
	TimeoutStep time.Duration
	BackoffBase time.Duration
	BackoffMax  time.Duration
}

// DefaultOptions 默认策略：3 次尝试，30s 起步每次 +10s，指数退避 1s 起、上限 10s
func DefaultOptions() Options {
	return Options{
		MaxAttempts: 3,
		BaseTimeout: 30 * time.Second,
		TimeoutStep: 10 * time.Second,
		BackoffBase: time.Second,
		BackoffMax:  10 * time.Second,
	}
}

// OptionsFromConfig 从配置构建策略，缺省项使用默认值
func OptionsFromConfig(cfg config.GenerationConfig) Options {
	o := DefaultOptions()
	if cfg.MaxAttempts > 0 {
		o.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.BaseTimeout > 0 {
		o.BaseTimeout = cfg.BaseTimeout
	}
	if cfg.TimeoutStep > 0 {
		o.TimeoutStep = cfg.TimeoutStep
	}
	if cfg.Backoff.Initial > 0 {
		o.BackoffBase = cfg.Backoff.Initial
	}
	if cfg.Backoff.Max > 0 {
		o.BackoffMax = cfg.Backoff.Max
	}
	return o
}

// AttemptTimeout 第 i 次尝试（从 0 开始）的时间预算，随 i 严格递增
func (o Options) AttemptTimeout(i int) time.Duration {
	step := o.TimeoutStep
	if step <= 0 {
		step = time.Millisecond
	}
	return o.BaseTimeout + time.Duration(i)*step
}

// Backoff 第 i 次失败后的等待时间：min(base * 2^i, max)
func (o Options) Backoff(i int) time.Duration {
	d := o.BackoffBase
	for n := 0; n < i; n++ {
		d *= 2
		if o.BackoffMax > 0 && d >= o.BackoffMax {
			return o.BackoffMax
		}
	}
	if o.BackoffMax > 0 && d > o.BackoffMax {
		return o.BackoffMax
	}
	return d
}

// Attempt 一次尝试的记录
type Attempt struct {
	Index    int
	Timeout  time.Duration
	Duration time.Duration
	Err      error
	Decision RetryDecision
}

// Invoker 弹性模型调用器
type Invoker struct {
	provider ModelProvider
	opts     Options
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewInvoker(provider ModelProvider, opts Options) *Invoker {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	return &Invoker{
		provider: provider,
		opts:     opts,
		sleep:    sleepWithCtx,
	}
}

// Invoke 调用模型，按分类决定是否重试；返回的错误均为 *errors.AppError
func (iv *Invoker) Invoke(ctx context.Context, payload *Payload) (*GeneratedText, error) {
	ctx, span := tracer.Start(ctx, "generation.Invoker.Invoke")
	defer span.End()

	attempts := make([]Attempt, 0, iv.opts.MaxAttempts)
	for i := 0; i < iv.opts.MaxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return nil, iv.fail(ctx, span, KindRequestCancelled, len(attempts), err)
		}

		a := Attempt{Index: i, Timeout: iv.opts.AttemptTimeout(i)}
		start := time.Now()
		out, err := iv.attempt(ctx, payload, a.Index, a.Timeout)
		a.Duration = time.Since(start)

		if err == nil {
			metrics.LLMAttemptTotal.WithLabelValues("success").Inc()
			out.Attempts = i + 1
			span.SetAttributes(attribute.Int("llm.attempts", out.Attempts))
			logger.Debug(ctx, "generation attempt succeeded",
				"attempt", i,
				"duration_ms", a.Duration.Milliseconds(),
			)
			return out, nil
		}

		a.Err = err
		a.Decision = Classify(err)
		if ctx.Err() != nil {
			a.Decision = RetryDecision{Kind: KindRequestCancelled}
		}
		attempts = append(attempts, a)
		metrics.LLMAttemptTotal.WithLabelValues(string(a.Decision.Kind)).Inc()

		logger.Warn(ctx, "generation attempt failed",
			"attempt", i,
			"timeout_ms", a.Timeout.Milliseconds(),
			"kind", string(a.Decision.Kind),
			"status", a.Decision.StatusCode,
			"retriable", a.Decision.Retriable,
			"error", err.Error(),
		)

		if !a.Decision.Retriable || i == iv.opts.MaxAttempts-1 {
			return nil, iv.fail(ctx, span, a.Decision.Kind, len(attempts), err)
		}
		if err := iv.sleep(ctx, iv.opts.Backoff(i)); err != nil {
			return nil, iv.fail(ctx, span, KindRequestCancelled, len(attempts), err)
		}
	}
	// MaxAttempts 至少为 1，循环内必然返回
	return nil, iv.fail(ctx, span, KindUnknownProviderError, len(attempts), errors.New("no attempts made"))
}

// attempt 在独立 goroutine 中调用模型，并与本次时间预算赛跑
func (iv *Invoker) attempt(ctx context.Context, payload *Payload, index int, timeout time.Duration) (*GeneratedText, error) {
	attemptCtx, cancel := context.WithTimeout(service.WithAttempt(ctx, index), timeout)
	defer cancel()

	type result struct {
		out *GeneratedText
		err error
	}
	// 带缓冲，超时后 provider goroutine 仍可写入并退出
	ch := make(chan result, 1)
	go func() {
		out, err := iv.provider.Complete(attemptCtx, payload, timeout)
		ch <- result{out: out, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			if ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
				return nil, errors.Join(ErrAttemptTimeout, r.err)
			}
			return nil, r.err
		}
		if r.out == nil || strings.TrimSpace(r.out.Text) == "" {
			return nil, ErrEmptyResponse
		}
		return r.out, nil
	case <-attemptCtx.Done():
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, ErrAttemptTimeout
	}
}

func (iv *Invoker) fail(ctx context.Context, span trace.Span, kind ErrorKind, attempts int, cause error) *apperrors.AppError {
	appErr := newKindError(kind, attempts, cause)
	span.SetAttributes(
		attribute.Int("llm.attempts", attempts),
		attribute.String("llm.error_kind", string(kind)),
	)
	tracer.Fail(span, appErr)
	logger.Error(ctx, "generation failed", cause,
		"kind", string(kind),
		"attempts", attempts,
	)
	return appErr
}

// sleepWithCtx 可取消的等待
func sleepWithCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
