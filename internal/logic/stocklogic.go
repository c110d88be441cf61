package logic

import (
	"context"
	"strings"

	"github.com/guregu/null/v6"
	"github.com/zeromicro/go-zero/core/logx"

	"marketdash-api/internal/svc"
	"marketdash-api/internal/types"
	"marketdash-api/pkg/market"
)

type QuoteLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewQuoteLogic(ctx context.Context, svcCtx *svc.ServiceContext) *QuoteLogic {
	return &QuoteLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *QuoteLogic) Quote(req *types.SymbolReq) (resp *types.QuoteResp, err error) {
	q, err := l.svcCtx.Market.StockQuote(l.ctx, req.Symbol)
	if err != nil {
		return nil, err
	}
	return &types.QuoteResp{
		Symbol:        q.Symbol,
		Price:         market.Nullable(q.Price),
		PriceSource:   q.PriceSource,
		Change:        market.Nullable(q.Change),
		PercentChange: market.Nullable(q.PercentChange),
		High:          market.Nullable(q.High),
		Low:           market.Nullable(q.Low),
		Open:          market.Nullable(q.Open),
		PreviousClose: market.Nullable(q.PrevClose),
	}, nil
}

type CandlesLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewCandlesLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CandlesLogic {
	return &CandlesLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *CandlesLogic) Candles(req *types.CandlesReq) (resp *types.CandlesResp, err error) {
	series, err := l.svcCtx.Market.StockCandles(l.ctx, req.Symbol, req.Resolution, parseDays(req.Days))
	if err != nil {
		return nil, err
	}
	return &types.CandlesResp{
		Symbol: strings.ToUpper(strings.TrimSpace(req.Symbol)),
		T:      series.Times(),
		C:      market.NullableSlice(series.Closes()),
		H:      market.NullableSlice(series.Highs()),
		L:      market.NullableSlice(series.Lows()),
		O:      market.NullableSlice(series.Opens()),
		V:      market.NullableSlice(series.Volumes()),
	}, nil
}

type SearchLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewSearchLogic(ctx context.Context, svcCtx *svc.ServiceContext) *SearchLogic {
	return &SearchLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *SearchLogic) Search(req *types.QueryReq) (resp *types.SearchResp, err error) {
	result, err := l.svcCtx.Market.SearchSymbol(l.ctx, req.Text())
	if err != nil {
		return nil, err
	}
	matches := make([]types.SearchMatch, 0, len(result.Matches))
	for _, m := range result.Matches {
		matches = append(matches, types.SearchMatch{
			Symbol:        m.Symbol,
			DisplaySymbol: m.DisplaySymbol,
			Description:   m.Description,
			Type:          m.Type,
			Score:         m.Score,
		})
	}
	l.Debugw("symbol search resolved",
		logx.Field("query", result.Query),
		logx.Field("symbol", result.Symbol),
		logx.Field("candidates", len(matches)))
	return &types.SearchResp{
		Symbol:  result.Symbol,
		Query:   result.Query,
		Best:    matches[0],
		Matches: matches,
	}, nil
}

type MoversLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewMoversLogic(ctx context.Context, svcCtx *svc.ServiceContext) *MoversLogic {
	return &MoversLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *MoversLogic) Movers() (resp *types.MoversResp, err error) {
	movers, err := l.svcCtx.Market.StockMovers(l.ctx)
	if err != nil {
		return nil, err
	}
	count := movers.UniverseCount
	return &types.MoversResp{
		Gainers:       toMovers(movers.Gainers),
		Losers:        toMovers(movers.Losers),
		UniverseCount: &count,
	}, nil
}

type MetricsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewMetricsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *MetricsLogic {
	return &MetricsLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *MetricsLogic) Metrics(req *types.SymbolReq) (resp *types.MetricsResp, err error) {
	m, err := l.svcCtx.Market.StockMetrics(l.ctx, req.Symbol)
	if err != nil {
		return nil, err
	}
	return &types.MetricsResp{
		Symbol:        strings.ToUpper(strings.TrimSpace(req.Symbol)),
		PERatio:       market.Nullable(m.PERatio),
		Week52High:    market.Nullable(m.Week52High),
		Week52Low:     market.Nullable(m.Week52Low),
		Beta:          market.Nullable(m.Beta),
		EPSTTM:        market.Nullable(m.EPSTTM),
		DividendYield: market.Nullable(m.DividendYield),
	}, nil
}

type ProfileLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewProfileLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ProfileLogic {
	return &ProfileLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ProfileLogic) Profile(req *types.SymbolReq) (resp *types.ProfileResp, err error) {
	p, err := l.svcCtx.Market.StockProfile(l.ctx, req.Symbol)
	if err != nil {
		return nil, err
	}
	return &types.ProfileResp{
		Name:                 optionalString(p.Name),
		Ticker:               p.Ticker,
		Logo:                 optionalString(p.Logo),
		Exchange:             optionalString(p.Exchange),
		Sector:               optionalString(p.Industry),
		FinnhubIndustry:      optionalString(p.Industry),
		MarketCapitalization: market.Nullable(p.MarketCapitalization),
		IPO:                  optionalString(p.IPO),
		Country:              optionalString(p.Country),
		WebURL:               optionalString(p.WebURL),
	}, nil
}

type HistoryLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewHistoryLogic(ctx context.Context, svcCtx *svc.ServiceContext) *HistoryLogic {
	return &HistoryLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *HistoryLogic) History(req *types.SymbolReq) (resp *types.HistoryResp, err error) {
	points, err := l.svcCtx.Market.History(l.ctx, req.Symbol)
	if err != nil {
		return nil, err
	}
	resp = &types.HistoryResp{
		Symbol: strings.ToUpper(strings.TrimSpace(req.Symbol)),
		Points: make([]types.HistoryPoint, len(points)),
	}
	for i, p := range points {
		resp.Points[i] = types.HistoryPoint{Date: p.Date, Close: p.Close}
	}
	return resp, nil
}

func optionalString(s string) null.String {
	return null.NewString(s, s != "")
}
