package logic

import (
	"context"
	"errors"

	"github.com/zeromicro/go-zero/core/logx"

	"marketdash-api/internal/svc"
	"marketdash-api/internal/types"
	"marketdash-api/pkg/llm"
	"marketdash-api/pkg/market"
)

const (
	llmProvider   = "openrouter"
	llmKeyEnv     = "OPENROUTER_API_KEY"
	missingSymbol = "Missing symbol. Use /api/ai?symbol=AAPL or /api/ai?mode=daily"
)

type AILogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewAILogic(ctx context.Context, svcCtx *svc.ServiceContext) *AILogic {
	return &AILogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// AI returns the parsed analysis fields alongside the raw model answer.
func (l *AILogic) AI(req *types.AIReq) (resp types.AIResp, err error) {
	analyst := l.svcCtx.Analyst
	if analyst == nil {
		return nil, market.CredentialError(llmProvider, llmKeyEnv)
	}

	ar, err := llm.AnalysisRequest{Mode: req.Mode, Symbol: req.Symbol, Price: req.Price}.Normalize()
	if errors.Is(err, llm.ErrMissingSymbol) {
		return nil, market.InputError(missingSymbol)
	}
	if err != nil {
		return nil, err
	}

	analysis, err := analyst.Analyze(l.ctx, ar)
	if err != nil {
		return nil, err
	}
	l.Infow("analysis completed",
		logx.Field("mode", ar.Mode),
		logx.Field("symbol", ar.Symbol),
		logx.Field("strategy", analysis.Strategy))

	resp = types.AIResp{
		"mode":      ar.Mode,
		"modelUsed": analyst.Model(),
	}
	for k, v := range analysis.Fields {
		resp[k] = v
	}
	resp["raw"] = analysis.Raw
	return resp, nil
}
