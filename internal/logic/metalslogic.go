package logic

import (
	"context"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"marketdash-api/internal/svc"
	"marketdash-api/internal/types"
	"marketdash-api/pkg/market"
	"marketdash-api/pkg/market/aggregate"
)

const metalCategory = "Precious Metal"

type MetalsQuoteLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewMetalsQuoteLogic(ctx context.Context, svcCtx *svc.ServiceContext) *MetalsQuoteLogic {
	return &MetalsQuoteLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// MetalsQuote resolves symbol before id and defaults to gold.
func (l *MetalsQuoteLogic) MetalsQuote(req *types.MetalReq) (resp *types.MetalQuoteResp, err error) {
	metal, err := aggregate.ResolveMetal(firstNonBlank(req.Symbol, req.Id))
	if err != nil {
		return nil, err
	}
	q, err := l.svcCtx.Market.MetalQuote(l.ctx, metal)
	if err != nil {
		return nil, err
	}
	l.Infow("metal quote resolved",
		logx.Field("metal", metal.Symbol),
		logx.Field("source", q.Source))
	return &types.MetalQuoteResp{
		Id:            metal.Symbol,
		Symbol:        metal.Symbol,
		Name:          metal.Name,
		Category:      metalCategory,
		Price:         market.Nullable(q.Price),
		PrevClose:     market.Nullable(q.PrevClose),
		Change:        market.Nullable(q.Change),
		PercentChange: market.Nullable(q.PercentChange),
		High:          market.Nullable(q.High),
		Low:           market.Nullable(q.Low),
		Source:        q.Source,
	}, nil
}

type MetalsCandlesLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewMetalsCandlesLogic(ctx context.Context, svcCtx *svc.ServiceContext) *MetalsCandlesLogic {
	return &MetalsCandlesLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// MetalsCandles resolves id before symbol.
func (l *MetalsCandlesLogic) MetalsCandles(req *types.MetalCandlesReq) (resp *types.SeriesResp, err error) {
	metal, err := aggregate.ResolveMetal(firstNonBlank(req.Id, req.Symbol))
	if err != nil {
		return nil, err
	}
	series, err := l.svcCtx.Market.MetalCandles(l.ctx, metal, parseDays(req.Days))
	if err != nil {
		return nil, err
	}
	return toSeriesResp(series), nil
}

type MetalsSearchLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewMetalsSearchLogic(ctx context.Context, svcCtx *svc.ServiceContext) *MetalsSearchLogic {
	return &MetalsSearchLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *MetalsSearchLogic) MetalsSearch(req *types.QueryReq) (resp *types.AssetSearchResp, err error) {
	query := strings.ToLower(strings.TrimSpace(req.Text()))
	if query == "" {
		return nil, market.InputError("Missing query")
	}
	found := market.SearchMetals(query)
	matches := make([]types.AssetMatch, 0, len(found))
	for _, m := range found {
		matches = append(matches, types.AssetMatch{
			Id:          m.Symbol,
			Symbol:      m.Symbol,
			Name:        m.Name,
			Description: m.Name,
		})
	}
	return assetSearchResp(query, matches), nil
}

type MetalsMoversLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewMetalsMoversLogic(ctx context.Context, svcCtx *svc.ServiceContext) *MetalsMoversLogic {
	return &MetalsMoversLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *MetalsMoversLogic) MetalsMovers() (resp *types.MoversResp, err error) {
	movers, err := l.svcCtx.Market.MetalMovers(l.ctx)
	if err != nil {
		return nil, err
	}
	return &types.MoversResp{
		Gainers: toMovers(movers.Gainers),
		Losers:  toMovers(movers.Losers),
	}, nil
}

type MetalsOverviewLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewMetalsOverviewLogic(ctx context.Context, svcCtx *svc.ServiceContext) *MetalsOverviewLogic {
	return &MetalsOverviewLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *MetalsOverviewLogic) MetalsOverview() (resp *types.OverviewResp, err error) {
	rows, err := l.svcCtx.Market.MetalOverview(l.ctx)
	if err != nil {
		return nil, err
	}
	return &types.OverviewResp{Rows: toOverviewRows(rows)}, nil
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
