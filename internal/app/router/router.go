// Package router builds the gin engine served by cmd/server.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	candleshandler "stock_metrics/internal/feature/candles/transport/handler"
	metricshandler "stock_metrics/internal/feature/metrics/transport/handler"
	symbollisthandler "stock_metrics/internal/feature/symbollist/transport/handler"
	jwtmw "stock_metrics/internal/platform/jwt"
)

// Handlers groups the handlers mounted by NewRouter.
type Handlers struct {
	Health     gin.HandlerFunc
	Metrics    *metricshandler.MetricHandler
	Candles    *candleshandler.CandlesHandler
	Symbols    *symbollisthandler.SymbolHandler
	Prometheus http.Handler
}

func NewRouter(h Handlers) *gin.Engine {
	r := gin.Default()

	// 認証不要
	// 導通確認用
	r.GET("/healthz", h.Health)
	r.HEAD("/healthz", h.Health)
	r.OPTIONS("/healthz", h.Health)
	r.GET("/prometheus", gin.WrapH(h.Prometheus))

	r.GET("/metrics/:kind/:symbol", h.Metrics.History)
	r.GET("/metrics/:kind/:symbol/latest", h.Metrics.Latest)
	r.GET("/candles/:code", h.Candles.GetCandlesHandler)
	r.GET("/symbols", h.Symbols.List)
	r.GET("/runs", h.Metrics.ListRuns)
	r.GET("/runs/:id", h.Metrics.GetRun)

	// 認証必須のルート
	// バッチ実行と銘柄登録には metrics:run スコープを持つ JWT が必要
	ops := r.Group("/")
	ops.Use(jwtmw.AuthRequired(jwtmw.ScopeRun))
	{
		ops.POST("/runs", h.Metrics.Run)
		ops.POST("/symbols", h.Symbols.Register)
	}

	return r
}
