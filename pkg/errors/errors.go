// Package errors 提供统一的错误定义
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型（对调用方稳定的机器可读码）
type ErrorCode string

// 预定义错误码
const (
	CodeInternalError ErrorCode = "INTERNAL_ERROR"

	// 准入与请求
	CodeQuotaExceeded       ErrorCode = "QUOTA_EXCEEDED"
	CodeInvalidRequestShape ErrorCode = "INVALID_REQUEST_SHAPE"
	CodeRequestCancelled    ErrorCode = "REQUEST_CANCELLED"

	// 模型提供商
	CodeInsufficientProviderQuota  ErrorCode = "INSUFFICIENT_PROVIDER_QUOTA"
	CodeInvalidProviderCredentials ErrorCode = "INVALID_PROVIDER_CREDENTIALS"
	CodeProviderRateLimited        ErrorCode = "PROVIDER_RATE_LIMITED"
	CodeGenerationTimedOut         ErrorCode = "GENERATION_TIMED_OUT"
	CodeUnknownProviderError       ErrorCode = "UNKNOWN_PROVIDER_ERROR"

	// 产出
	CodeValidationFailed  ErrorCode = "VALIDATION_FAILED"
	CodePersistenceFailed ErrorCode = "PERSISTENCE_FAILED"
)

// AppError 应用错误
type AppError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Detail     string         `json:"detail,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	HTTPStatus int            `json:"-"`
	Err        error          `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail 添加详细信息
func (e *AppError) WithDetail(detail string) *AppError {
	e.Detail = detail
	return e
}

// WithDetails 添加结构化详情（如配额使用量）
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any, len(details))
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithError 添加底层错误
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// codeToHTTPStatus 错误码转 HTTP 状态码（供外层路由使用）
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeInvalidRequestShape:
		return http.StatusBadRequest
	case CodeQuotaExceeded, CodeProviderRateLimited:
		return http.StatusTooManyRequests
	case CodeInsufficientProviderQuota, CodeInvalidProviderCredentials:
		return http.StatusServiceUnavailable
	case CodeGenerationTimedOut:
		return http.StatusGatewayTimeout
	case CodeValidationFailed:
		return http.StatusUnprocessableEntity
	case CodeRequestCancelled:
		return 499
	default:
		return http.StatusInternalServerError
	}
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, CodeInternalError, "internal error")
}

// IsCode 判断错误链中是否存在指定错误码的 AppError
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return false
	}
	return appErr.Code == code
}
