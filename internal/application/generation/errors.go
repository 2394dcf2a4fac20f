package generation

import (
	"errors"

	apperrors "z-script-ai-api/pkg/errors"
)

// ErrAttemptTimeout 单次尝试超出时间预算
var ErrAttemptTimeout = errors.New("generation attempt timed out")

// ErrEmptyResponse 模型返回空内容
var ErrEmptyResponse = errors.New("model returned empty response")

// ErrorKind 内部错误分类
type ErrorKind string

const (
	KindInvalidRequestShape        ErrorKind = "invalid_request_shape"
	KindInvalidProviderCredentials ErrorKind = "invalid_provider_credentials"
	KindInsufficientProviderQuota  ErrorKind = "insufficient_provider_quota"
	KindProviderRateLimited        ErrorKind = "provider_rate_limited"
	KindGenerationTimedOut         ErrorKind = "generation_timed_out"
	KindRequestCancelled           ErrorKind = "request_cancelled"
	KindUnknownProviderError       ErrorKind = "unknown_provider_error"
)

// Code 对调用方稳定的错误码
func (k ErrorKind) Code() apperrors.ErrorCode {
	switch k {
	case KindInvalidRequestShape:
		return apperrors.CodeInvalidRequestShape
	case KindInvalidProviderCredentials:
		return apperrors.CodeInvalidProviderCredentials
	case KindInsufficientProviderQuota:
		return apperrors.CodeInsufficientProviderQuota
	case KindProviderRateLimited:
		return apperrors.CodeProviderRateLimited
	case KindGenerationTimedOut:
		return apperrors.CodeGenerationTimedOut
	case KindRequestCancelled:
		return apperrors.CodeRequestCancelled
	default:
		return apperrors.CodeUnknownProviderError
	}
}

// Message 面向调用方的描述，不包含提供商原始报错
func (k ErrorKind) Message() string {
	switch k {
	case KindInvalidRequestShape:
		return "the generation request was rejected by the model provider"
	case KindInvalidProviderCredentials:
		return "the model provider rejected the configured credentials"
	case KindInsufficientProviderQuota:
		return "the model provider account has no remaining quota"
	case KindProviderRateLimited:
		return "the model provider is busy, please retry later"
	case KindGenerationTimedOut:
		return "script generation timed out"
	case KindRequestCancelled:
		return "the request was cancelled"
	default:
		return "the model provider returned an unexpected error"
	}
}

func newKindError(kind ErrorKind, attempts int, cause error) *apperrors.AppError {
	return apperrors.Wrap(cause, kind.Code(), kind.Message()).
		WithDetails(map[string]any{"attempts": attempts})
}
