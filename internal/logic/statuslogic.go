package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"marketdash-api/internal/svc"
	"marketdash-api/internal/types"
)

type StatusLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewStatusLogic(ctx context.Context, svcCtx *svc.ServiceContext) *StatusLogic {
	return &StatusLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Status reports credential presence. Ok needs market data and an LLM key.
func (l *StatusLogic) Status() (resp *types.StatusResp, err error) {
	creds := l.svcCtx.Credentials
	return &types.StatusResp{
		Ok: creds.Finnhub && creds.LLM,
		Env: map[string]bool{
			"FINNHUB_API_KEY":      creds.Finnhub,
			"ALPHAVANTAGE_API_KEY": creds.AlphaVantage,
			"COINGECKO_API_KEY":    creds.CoinGecko,
			"OPENAI_API_KEY":       creds.OpenAI,
			"OPENROUTER_API_KEY":   creds.OpenRouter,
		},
		Runtime: l.svcCtx.Config.Env,
	}, nil
}
