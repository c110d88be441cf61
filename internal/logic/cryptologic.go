package logic

import (
	"context"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"marketdash-api/internal/svc"
	"marketdash-api/internal/types"
	"marketdash-api/pkg/market"
)

const cryptoCategory = "Cryptocurrency"

type CryptoQuoteLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewCryptoQuoteLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CryptoQuoteLogic {
	return &CryptoQuoteLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *CryptoQuoteLogic) CryptoQuote(req *types.CryptoQuoteReq) (resp *types.CryptoQuoteResp, err error) {
	row, err := l.svcCtx.Market.CryptoQuote(l.ctx, req.Id, req.Symbol)
	if err != nil {
		return nil, err
	}
	return &types.CryptoQuoteResp{
		Id:            row.ID,
		Symbol:        row.Symbol,
		Name:          row.Name,
		Logo:          row.Image,
		Category:      cryptoCategory,
		Price:         market.Nullable(row.Price),
		Change:        market.Nullable(row.Change),
		PercentChange: market.Nullable(row.PercentChange),
		High:          market.Nullable(row.High),
		Low:           market.Nullable(row.Low),
		Volume:        market.Nullable(row.Volume),
		MarketCap:     market.Nullable(row.MarketCap),
	}, nil
}

type CryptoCandlesLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewCryptoCandlesLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CryptoCandlesLogic {
	return &CryptoCandlesLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *CryptoCandlesLogic) CryptoCandles(req *types.CryptoCandlesReq) (resp *types.SeriesResp, err error) {
	series, err := l.svcCtx.Market.CryptoCandles(l.ctx, req.Id, parseDays(req.Days))
	if err != nil {
		return nil, err
	}
	return toSeriesResp(series), nil
}

type CryptoSearchLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewCryptoSearchLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CryptoSearchLogic {
	return &CryptoSearchLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *CryptoSearchLogic) CryptoSearch(req *types.QueryReq) (resp *types.AssetSearchResp, err error) {
	query := strings.TrimSpace(req.Text())
	coins, err := l.svcCtx.Market.CryptoSearch(l.ctx, query)
	if err != nil {
		return nil, err
	}
	matches := make([]types.AssetMatch, 0, len(coins))
	for _, c := range coins {
		matches = append(matches, types.AssetMatch{
			Id:          c.ID,
			Symbol:      c.Symbol,
			Name:        c.Name,
			Description: c.Name + " (" + c.Symbol + ")",
		})
	}
	return assetSearchResp(query, matches), nil
}

type CryptoMoversLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewCryptoMoversLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CryptoMoversLogic {
	return &CryptoMoversLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *CryptoMoversLogic) CryptoMovers() (resp *types.MoversResp, err error) {
	movers, err := l.svcCtx.Market.CryptoMovers(l.ctx)
	if err != nil {
		return nil, err
	}
	return &types.MoversResp{
		Gainers: toMovers(movers.Gainers),
		Losers:  toMovers(movers.Losers),
	}, nil
}

type CryptoOverviewLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewCryptoOverviewLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CryptoOverviewLogic {
	return &CryptoOverviewLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *CryptoOverviewLogic) CryptoOverview(req *types.CryptoOverviewReq) (resp *types.OverviewResp, err error) {
	var ids []string
	if raw := strings.TrimSpace(req.Ids); raw != "" {
		ids = strings.Split(raw, ",")
	}
	rows, err := l.svcCtx.Market.CryptoOverview(l.ctx, ids)
	if err != nil {
		return nil, err
	}
	return &types.OverviewResp{Rows: toOverviewRows(rows)}, nil
}

// assetSearchResp picks the first match as the resolved asset.
func assetSearchResp(query string, matches []types.AssetMatch) *types.AssetSearchResp {
	resp := &types.AssetSearchResp{Query: query, Matches: matches}
	if len(matches) > 0 {
		best := matches[0]
		resp.Best = &best
		resp.Symbol = best.Symbol
		resp.Id = best.Id
	}
	return resp
}
