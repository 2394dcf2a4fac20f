package generation

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

// ProviderError 结构化的提供商错误（HTTP 状态码 + type/code 字段）
type ProviderError interface {
	error
	StatusCode() int
	ErrorType() string
	ErrorCode() string
}

// RetryDecision 一次失败的分类结果
type RetryDecision struct {
	Kind       ErrorKind
	Retriable  bool
	StatusCode int
}

// statusInText 匹配 OpenAI 兼容客户端报错中的状态码，如 "status code: 429"
var statusInText = regexp.MustCompile(`(?i)status(?:\s*code)?\s*[:=]?\s*(\d{3})`)

// Classify 将任意错误映射为内部错误分类与是否可重试，纯函数
func Classify(err error) RetryDecision {
	if err == nil {
		return RetryDecision{}
	}
	if errors.Is(err, context.Canceled) {
		return RetryDecision{Kind: KindRequestCancelled}
	}
	if errors.Is(err, ErrAttemptTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return RetryDecision{Kind: KindGenerationTimedOut, Retriable: true}
	}

	status, errType, errCode := inspect(err)
	d := RetryDecision{StatusCode: status}
	switch {
	case errType == "insufficient_quota" || errCode == "insufficient_quota":
		d.Kind = KindInsufficientProviderQuota
	case status == http.StatusUnauthorized || status == http.StatusForbidden ||
		errType == "authentication_error" || errCode == "invalid_api_key":
		d.Kind = KindInvalidProviderCredentials
	case status == http.StatusBadRequest || errType == "invalid_request_error" ||
		errCode == "unsupported_parameter" || errCode == "unsupported_value":
		d.Kind = KindInvalidRequestShape
	case status == http.StatusTooManyRequests:
		d.Kind, d.Retriable = KindProviderRateLimited, true
	case status == http.StatusInternalServerError || status == http.StatusBadGateway ||
		status == http.StatusServiceUnavailable || status == http.StatusGatewayTimeout:
		d.Kind, d.Retriable = KindProviderRateLimited, true
	default:
		d.Kind, d.Retriable = KindUnknownProviderError, true
	}
	return d
}

// inspect 提取状态码与 type/code 字段；结构化错误优先，其次解析报错文本
func inspect(err error) (status int, errType, errCode string) {
	var pe ProviderError
	if errors.As(err, &pe) {
		return pe.StatusCode(), strings.ToLower(pe.ErrorType()), strings.ToLower(pe.ErrorCode())
	}

	msg := strings.ToLower(err.Error())
	if m := statusInText.FindStringSubmatch(msg); len(m) == 2 {
		status, _ = strconv.Atoi(m[1])
	}
	for _, t := range []string{"insufficient_quota", "authentication_error", "invalid_request_error"} {
		if strings.Contains(msg, t) {
			errType = t
			break
		}
	}
	for _, c := range []string{"insufficient_quota", "invalid_api_key", "unsupported_parameter", "unsupported_value"} {
		if strings.Contains(msg, c) {
			errCode = c
			break
		}
	}
	return status, errType, errCode
}
