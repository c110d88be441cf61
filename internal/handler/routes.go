package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest"
	"github.com/zeromicro/go-zero/rest/httpx"

	"marketdash-api/internal/svc"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	httpx.SetErrorHandlerCtx(ErrorHandler)

	server.AddRoutes(Routes(serverCtx), rest.WithPrefix("/api"))
}

// Routes lists every endpoint relative to the /api prefix.
func Routes(serverCtx *svc.ServiceContext) []rest.Route {
	get := func(path string, h http.HandlerFunc) rest.Route {
		return rest.Route{Method: http.MethodGet, Path: path, Handler: h}
	}
	return []rest.Route{
		get("/quote", QuoteHandler(serverCtx)),
		get("/candles", CandlesHandler(serverCtx)),
		get("/search", SearchHandler(serverCtx)),
		get("/movers", MoversHandler(serverCtx)),
		get("/metrics", MetricsHandler(serverCtx)),
		get("/profile", ProfileHandler(serverCtx)),
		get("/history", HistoryHandler(serverCtx)),

		get("/crypto-quote", CryptoQuoteHandler(serverCtx)),
		get("/crypto-candles", CryptoCandlesHandler(serverCtx)),
		get("/crypto-search", CryptoSearchHandler(serverCtx)),
		get("/crypto-movers", CryptoMoversHandler(serverCtx)),
		get("/crypto-overview", CryptoOverviewHandler(serverCtx)),

		get("/metals-quote", MetalsQuoteHandler(serverCtx)),
		get("/metals-candles", MetalsCandlesHandler(serverCtx)),
		get("/metals-search", MetalsSearchHandler(serverCtx)),
		get("/metals-movers", MetalsMoversHandler(serverCtx)),
		get("/metals-overview", MetalsOverviewHandler(serverCtx)),

		get("/fx-rate", FXRateHandler(serverCtx)),
		get("/fx-overview", FXOverviewHandler(serverCtx)),

		get("/status", StatusHandler(serverCtx)),
		get("/ai", AIHandler(serverCtx)),
	}
}
