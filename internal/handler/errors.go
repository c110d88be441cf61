package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/tidwall/gjson"
	"github.com/zeromicro/go-zero/core/logx"

	"marketdash-api/internal/types"
	"marketdash-api/pkg/llm"
	"marketdash-api/pkg/market"
)

const (
	serverError   = "Server error"
	llmUpstream   = "OpenRouter error"
	invalidParams = "Invalid request parameters"
)

// ErrorHandler maps errors returned by logic to {error, details} bodies.
// Anything untyped becomes a bare 500 so internals never leak.
func ErrorHandler(ctx context.Context, err error) (int, any) {
	var me *market.Error
	if errors.As(err, &me) {
		if me.Kind == market.KindNetwork {
			logx.WithContext(ctx).Errorw("upstream request failed",
				logx.Field("provider", me.Provider),
				logx.Field("err", err.Error()))
			return http.StatusInternalServerError, types.ErrorResp{Error: serverError}
		}
		return me.Status, types.ErrorResp{Error: me.Message, Details: me.Details}
	}

	if status, body, ok := llm.APIStatus(err); ok {
		logx.WithContext(ctx).Errorw("llm request failed", logx.Field("status", status))
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		return status, types.ErrorResp{Error: llmUpstream, Details: decodeDetails(body)}
	}

	logx.WithContext(ctx).Errorw("request failed", logx.Field("err", err.Error()))
	return http.StatusInternalServerError, types.ErrorResp{Error: serverError}
}

func decodeDetails(body string) any {
	if body == "" {
		return nil
	}
	if gjson.Valid(body) {
		return gjson.Parse(body).Value()
	}
	return body
}

func parseError(err error) error {
	return &market.Error{
		Kind:    market.KindInput,
		Status:  http.StatusBadRequest,
		Message: invalidParams,
		Details: err.Error(),
	}
}
