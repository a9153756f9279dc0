// Package handler exposes stored metrics and batch runs over HTTP.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"stock_metrics/internal/feature/metrics/domain"
	"stock_metrics/internal/feature/metrics/domain/entity"
	"stock_metrics/internal/feature/metrics/transport/http/dto"
	"stock_metrics/internal/feature/metrics/usecase"
)

// MetricQuery reads stored results.
type MetricQuery interface {
	History(ctx context.Context, kind entity.Kind, symbol string, from, to int64) ([]entity.Result, error)
	Latest(ctx context.Context, kind entity.Kind, symbol string) (*entity.Result, error)
}

// BatchRunner runs a metric batch.
type BatchRunner interface {
	Run(ctx context.Context, symbols []string, kinds []entity.Kind) (*entity.Summary, error)
}

// SymbolResolver supplies the default symbol list when a run names none.
type SymbolResolver interface {
	Resolve(ctx context.Context, arg string) ([]string, error)
}

// RunLookup reads recorded runs.
type RunLookup interface {
	Get(ctx context.Context, id string) (*entity.RunRecord, error)
	Recent(ctx context.Context, limit int) ([]entity.RunRecord, error)
}

// MetricHandler serves the metrics endpoints.
type MetricHandler struct {
	query   MetricQuery
	runner  BatchRunner
	symbols SymbolResolver
	runs    RunLookup
}

// NewMetricHandler creates a MetricHandler. runner and symbols are only used by Run.
func NewMetricHandler(query MetricQuery, runner BatchRunner, symbols SymbolResolver) *MetricHandler {
	return &MetricHandler{query: query, runner: runner, symbols: symbols}
}

// WithRuns enables GET /runs and GET /runs/:id.
func (h *MetricHandler) WithRuns(runs RunLookup) *MetricHandler {
	h.runs = runs
	return h
}

// History handles GET /metrics/:kind/:symbol?from=&to= (epoch seconds, inclusive).
func (h *MetricHandler) History(c *gin.Context) {
	kind := entity.Kind(c.Param("kind"))
	symbol := c.Param("symbol")

	from, err := parseEpoch(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "from: " + err.Error()})
		return
	}
	to, err := parseEpoch(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "to: " + err.Error()})
		return
	}

	results, err := h.query.History(c.Request.Context(), kind, symbol, from, to)
	if err != nil {
		h.queryError(c, err)
		return
	}
	points := make([]dto.MetricPoint, 0, len(results))
	for _, r := range results {
		points = append(points, toPoint(r))
	}
	c.JSON(http.StatusOK, dto.HistoryResponse{Kind: string(kind), Symbol: symbol, Points: points})
}

// Latest handles GET /metrics/:kind/:symbol/latest.
func (h *MetricHandler) Latest(c *gin.Context) {
	kind := entity.Kind(c.Param("kind"))
	symbol := c.Param("symbol")

	r, err := h.query.Latest(c.Request.Context(), kind, symbol)
	if err != nil {
		h.queryError(c, err)
		return
	}
	if r == nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "no " + string(kind) + " stored for " + symbol})
		return
	}
	c.JSON(http.StatusOK, toPoint(*r))
}

// Run handles POST /runs. The batch runs synchronously within the request.
// Per-symbol failures are reported in the body of a 200 response.
func (h *MetricHandler) Run(c *gin.Context) {
	var req dto.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "kind is required"})
		return
	}
	kinds, err := entity.ParseKinds(req.Kind)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	ctx := c.Request.Context()
	symbols := req.Symbols
	if len(symbols) == 0 {
		symbols, err = h.symbols.Resolve(ctx, "")
		if err != nil {
			slog.Error("resolve symbols failed", "error", err)
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
			return
		}
	}

	summary, err := h.runner.Run(ctx, symbols, kinds)
	if summary == nil {
		summary = &entity.Summary{Kinds: kinds}
	}
	resp := toRunResponse(entity.NewRunRecord(summary, err))
	if err != nil {
		c.JSON(runStatus(err), resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetRun handles GET /runs/:id.
func (h *MetricHandler) GetRun(c *gin.Context) {
	if h.runs == nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "run history is disabled"})
		return
	}
	rec, err := h.runs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
			return
		}
		slog.Error("get run failed", "run_id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, toRunResponse(*rec))
}

// ListRuns handles GET /runs?limit=N, newest first.
func (h *MetricHandler) ListRuns(c *gin.Context) {
	if h.runs == nil {
		c.JSON(http.StatusOK, []dto.RunResponse{})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	recs, err := h.runs.Recent(c.Request.Context(), limit)
	if err != nil {
		slog.Error("list runs failed", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	out := make([]dto.RunResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toRunResponse(rec))
	}
	c.JSON(http.StatusOK, out)
}

func (h *MetricHandler) queryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUnknownKind):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNoSymbols), errors.Is(err, usecase.ErrInvalidRange):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	default:
		slog.Error("metric query failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}
}

func runStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNoSymbols), errors.Is(err, domain.ErrUnknownKind):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func parseEpoch(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func toPoint(r entity.Result) dto.MetricPoint {
	return dto.MetricPoint{
		Timestamp: r.Timestamp,
		Time:      time.Unix(r.Timestamp, 0).UTC().Format(time.RFC3339),
		Value:     r.Value,
	}
}

func toRunResponse(rec entity.RunRecord) dto.RunResponse {
	resp := dto.RunResponse{
		RunID:      rec.RunID,
		Kinds:      make([]string, 0, len(rec.Kinds)),
		Succeeded:  append([]string{}, rec.Succeeded...),
		Failures:   make([]dto.FailureItem, 0, len(rec.Failures)),
		Written:    rec.Written,
		StartedAt:  rec.StartedAt.UTC().Format(time.RFC3339),
		FinishedAt: rec.FinishedAt.UTC().Format(time.RFC3339),
		Error:      rec.Error,
	}
	for _, k := range rec.Kinds {
		resp.Kinds = append(resp.Kinds, string(k))
	}
	for _, f := range rec.Failures {
		resp.Failures = append(resp.Failures, dto.FailureItem{Symbol: f.Symbol, Kind: string(f.Kind), Error: f.Error})
	}
	return resp
}
