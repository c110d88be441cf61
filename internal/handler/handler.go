package handler

import (
	"context"
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"marketdash-api/internal/logic"
	"marketdash-api/internal/svc"
	"marketdash-api/internal/types"
)

// withRequest parses Req from the query string and writes run's result as JSON.
func withRequest[Req, Resp any](svcCtx *svc.ServiceContext, run func(context.Context, *svc.ServiceContext, *Req) (Resp, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Req
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, parseError(err))
			return
		}
		resp, err := run(r.Context(), svcCtx, &req)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}

func withoutRequest[Resp any](svcCtx *svc.ServiceContext, run func(context.Context, *svc.ServiceContext) (Resp, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := run(r.Context(), svcCtx)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}

func QuoteHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return withRequest(svcCtx, func(ctx context.Context, s *svc.ServiceContext, req *types.SymbolReq) (*types.QuoteResp, error) {
		return logic.NewQuoteLogic(ctx, s).Quote(req)
	})
}

func CandlesHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return withRequest(svcCtx, func(ctx context.Context, s *svc.ServiceContext, req *types.CandlesReq) (*types.CandlesResp, error) {
		return logic.NewCandlesLogic(ctx, s).Candles(req)
	})
}

func SearchHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return withRequest(svcCtx, func(ctx context.Context, s *svc.ServiceContext, req *types.QueryReq) (*types.SearchResp, error) {
		return logic.NewSearchLogic(ctx, s).Search(req)
	})
}

func MoversHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return withoutRequest(svcCtx, func(ctx context.Context, s *svc.ServiceContext) (*types.MoversResp, error) {
		return logic.NewMoversLogic(ctx, s).Movers()
	})
}

func MetricsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return withRequest(svcCtx, func(ctx context.Context, s *svc.ServiceContext, req *types.SymbolReq) (*types.MetricsResp, error) {
		return logic.NewMetricsLogic(ctx, s).Metrics(req)
	})
}

func ProfileHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return withRequest(svcCtx, func(ctx context.Context, s *svc.ServiceContext, req *types.SymbolReq) (*types.ProfileResp, error) {
		return logic.NewProfileLogic(ctx, s).Profile(req)
	})
}

func HistoryHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return withRequest(svcCtx, func(ctx context.Context, s *svc.ServiceContext, req *types.SymbolReq) (*types.HistoryResp, error) {
		return logic.NewHistoryLogic(ctx, s).History(req)
	})
}

func CryptoQuoteHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return withRequest(svcCtx, func(ctx context.Context, s *svc.ServiceContext, req *types.CryptoQuoteReq) (*types.CryptoQuoteResp, error) {
		return logic.NewCryptoQuoteLogic(ctx, s).CryptoQuote(req)
	})
}

func CryptoCandlesHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return withRequest(svcCtx, func(ctx context.Context, s *svc.ServiceContext, req *types.CryptoCandlesReq) (*types.SeriesResp, error) {
		return logic.NewCryptoCandlesLogic(ctx, s).CryptoCandles(req)
	})
}

func CryptoSearchHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return withRequest(svcCtx, func(ctx context.Context, s *svc.ServiceContext, req *types.QueryReq) (*types.AssetSearchResp, error) {
		return logic.NewCryptoSearchLogic(ctx, s).CryptoSearch(req)
	})
}

func CryptoMoversHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return withoutRequest(svcCtx, func(ctx context.Context, s *svc.ServiceContext) (*types.MoversResp, error) {
		return logic.NewCryptoMoversLogic(ctx, s).CryptoMovers()
	})
}

func CryptoOverviewHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return withRequest(svcCtx, func(ctx context.Context, s *svc.ServiceContext, req *types.CryptoOverviewReq) (*types.OverviewResp, error) {
		return logic.NewCryptoOverviewLogic(ctx, s).CryptoOverview(req)
	})
}

func MetalsQuoteHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return withRequest(svcCtx, func(ctx context.Context, s *svc.ServiceContext, req *types.MetalReq) (*types.MetalQuoteResp, error) {
		return logic.NewMetalsQuoteLogic(ctx, s).MetalsQuote(req)
	})
}

func MetalsCandlesHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return withRequest(svcCtx, func(ctx context.Context, s *svc.ServiceContext, req *types.MetalCandlesReq) (*types.SeriesResp, error) {
		return logic.NewMetalsCandlesLogic(ctx, s).MetalsCandles(req)
	})
}

func MetalsSearchHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return withRequest(svcCtx, func(ctx context.Context, s *svc.ServiceContext, req *types.QueryReq) (*types.AssetSearchResp, error) {
		return logic.NewMetalsSearchLogic(ctx, s).MetalsSearch(req)
	})
}

func MetalsMoversHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return withoutRequest(svcCtx, func(ctx context.Context, s *svc.ServiceContext) (*types.MoversResp, error) {
		return logic.NewMetalsMoversLogic(ctx, s).MetalsMovers()
	})
}

func MetalsOverviewHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return withoutRequest(svcCtx, func(ctx context.Context, s *svc.ServiceContext) (*types.OverviewResp, error) {
		return logic.NewMetalsOverviewLogic(ctx, s).MetalsOverview()
	})
}

func FXRateHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return withRequest(svcCtx, func(ctx context.Context, s *svc.ServiceContext, req *types.FXRateReq) (*types.FXRateResp, error) {
		return logic.NewFXRateLogic(ctx, s).FXRate(req)
	})
}

func FXOverviewHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return withoutRequest(svcCtx, func(ctx context.Context, s *svc.ServiceContext) (*types.OverviewResp, error) {
		return logic.NewFXOverviewLogic(ctx, s).FXOverview()
	})
}

func StatusHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return withoutRequest(svcCtx, func(ctx context.Context, s *svc.ServiceContext) (*types.StatusResp, error) {
		return logic.NewStatusLogic(ctx, s).Status()
	})
}

func AIHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return withRequest(svcCtx, func(ctx context.Context, s *svc.ServiceContext, req *types.AIReq) (types.AIResp, error) {
		return logic.NewAILogic(ctx, s).AI(req)
	})
}
