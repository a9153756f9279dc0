package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	candle "stock_metrics/internal/feature/candles/domain/entity"
	candleshandler "stock_metrics/internal/feature/candles/transport/handler"
	"stock_metrics/internal/feature/metrics/domain/entity"
	metricshandler "stock_metrics/internal/feature/metrics/transport/handler"
	symbolentity "stock_metrics/internal/feature/symbollist/domain/entity"
	symbollisthandler "stock_metrics/internal/feature/symbollist/transport/handler"
	platformhandler "stock_metrics/internal/platform/http/handler"
	jwtmw "stock_metrics/internal/platform/jwt"
	"stock_metrics/internal/platform/observability"
)

type stubQuery struct{}

func (stubQuery) History(ctx context.Context, kind entity.Kind, symbol string, from, to int64) ([]entity.Result, error) {
	return []entity.Result{{Kind: kind, Symbol: symbol, Timestamp: 1, Value: 2}}, nil
}

func (stubQuery) Latest(ctx context.Context, kind entity.Kind, symbol string) (*entity.Result, error) {
	return &entity.Result{Kind: kind, Symbol: symbol, Timestamp: 1, Value: 2}, nil
}

type stubRunner struct{ calls int }

func (s *stubRunner) Run(ctx context.Context, symbols []string, kinds []entity.Kind) (*entity.Summary, error) {
	s.calls++
	return &entity.Summary{RunID: "r", Kinds: kinds, Succeeded: symbols}, nil
}

type stubSymbols struct{}

func (stubSymbols) Resolve(ctx context.Context, arg string) ([]string, error) {
	return []string{"AAPL"}, nil
}

func (stubSymbols) ListActiveSymbols(ctx context.Context) ([]symbolentity.Symbol, error) {
	return []symbolentity.Symbol{{Code: "AAPL"}}, nil
}

func (stubSymbols) Register(ctx context.Context, codes []string) (int, error) { return len(codes), nil }

type stubCandles struct{}

func (stubCandles) GetCandles(ctx context.Context, symbol, interval string, outputsize int) ([]candle.Candle, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *stubRunner) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	runner := &stubRunner{}
	m := observability.NewMetrics("test", prometheus.NewRegistry())
	m.ObserveWrite("atr")

	return NewRouter(Handlers{
		Health:     platformhandler.Health(nil),
		Metrics:    metricshandler.NewMetricHandler(stubQuery{}, runner, stubSymbols{}),
		Candles:    candleshandler.NewCandlesHandler(stubCandles{}),
		Symbols:    symbollisthandler.NewSymbolHandler(stubSymbols{}),
		Prometheus: m.Handler(),
	}), runner
}

func TestRouter_PublicRoutes(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, path := range []string{"/healthz", "/metrics/atr/AAPL", "/metrics/atr/AAPL/latest", "/candles/AAPL", "/symbols", "/runs", "/prometheus"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		})
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/prometheus", nil))
	assert.Contains(t, w.Body.String(), `test_results_written_total{kind="atr"} 1`)
}

func TestRouter_RunRequiresToken(t *testing.T) {
	const secret = "router-secret"
	t.Setenv(jwtmw.EnvKeyJWTSecret, secret)
	r, runner := newTestRouter(t)

	body := `{"kind":"atr","symbols":["AAPL"]}`
	post := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/runs", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusUnauthorized, post("").Code)

	readOnly, err := jwtmw.NewGenerator(secret, time.Hour).GenerateToken("viewer")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, post(readOnly).Code)
	assert.Zero(t, runner.calls)

	operator, err := jwtmw.NewGenerator(secret, time.Hour).GenerateToken("ops", jwtmw.ScopeRun)
	require.NoError(t, err)
	w := post(operator)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, runner.calls)
}
