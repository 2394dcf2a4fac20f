// Package orchestrator 串联配额、检索、组装、调用、校验与持久化
package orchestrator

import (
	"z-script-ai-api/internal/domain/entity"
	apperrors "z-script-ai-api/pkg/errors"
)

// Usage 本月用量快照
type Usage struct {
	Current int    `json:"current"`
	Limit   string `json:"limit"`
}

// Result 一次生成请求的最终结果
type Result struct {
	Success  bool                 `json:"success"`
	Script   *entity.ScriptRecord `json:"script,omitempty"`
	Usage    *Usage               `json:"usage,omitempty"`
	Warnings []string             `json:"warnings,omitempty"`
	Replayed bool                 `json:"replayed,omitempty"`

	Code    string         `json:"code,omitempty"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

func failure(appErr *apperrors.AppError, usage *Usage) *Result {
	r := &Result{
		Success: false,
		Usage:   usage,
		Code:    string(appErr.Code),
		Message: appErr.Message,
		Details: appErr.Details,
	}
	if appErr.Detail != "" {
		if r.Details == nil {
			r.Details = map[string]any{}
		}
		r.Details["detail"] = appErr.Detail
	}
	return r
}
