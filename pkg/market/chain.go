package market

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"
)

// Strategy is one provider attempt in a fallback chain.
type Strategy[T any] struct {
	Name    string
	Attempt func(ctx context.Context) (T, error)
}

// FirstSuccess runs strategies in order and returns the first success along
// with the winning strategy name. When all fail, the last error is returned.
func FirstSuccess[T any](ctx context.Context, strategies ...Strategy[T]) (T, string, error) {
	var (
		zero    T
		lastErr error
	)
	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			return zero, "", NetworkError(s.Name, err)
		}
		v, err := s.Attempt(ctx)
		if err == nil {
			return v, s.Name, nil
		}
		logx.WithContext(ctx).Debugf("market: strategy %s failed: %v", s.Name, err)
		lastErr = err
	}
	if lastErr == nil {
		lastErr = NotFoundError("No provider available", nil)
	}
	return zero, "", lastErr
}
