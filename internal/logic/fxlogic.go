package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"marketdash-api/internal/svc"
	"marketdash-api/internal/types"
	"marketdash-api/pkg/market"
)

type FXRateLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewFXRateLogic(ctx context.Context, svcCtx *svc.ServiceContext) *FXRateLogic {
	return &FXRateLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *FXRateLogic) FXRate(req *types.FXRateReq) (resp *types.FXRateResp, err error) {
	conv, err := l.svcCtx.Market.Convert(l.ctx, req.From, req.To, parseAmount(req.Amount))
	if err != nil {
		return nil, err
	}
	return &types.FXRateResp{
		From:      conv.From,
		To:        conv.To,
		Amount:    conv.Amount,
		Rate:      conv.Rate,
		Converted: conv.Converted,
		AsOf:      conv.AsOf,
		Source:    conv.Source,
	}, nil
}

type FXOverviewLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewFXOverviewLogic(ctx context.Context, svcCtx *svc.ServiceContext) *FXOverviewLogic {
	return &FXOverviewLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *FXOverviewLogic) FXOverview() (resp *types.OverviewResp, err error) {
	board, err := l.svcCtx.Market.FXOverview(l.ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]types.OverviewRow, 0, len(board.Rows))
	for _, r := range board.Rows {
		rows = append(rows, types.OverviewRow{
			Symbol: r.Symbol,
			Name:   r.Name,
			Price:  market.Nullable(r.Price),
		})
	}
	asOf := board.AsOf
	return &types.OverviewResp{Rows: rows, AsOf: &asOf}, nil
}
