package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setupRouter(checks map[string]Check) *gin.Engine {
	r := gin.New()
	h := Health(checks)
	r.GET("/healthz", h)
	r.HEAD("/healthz", h)
	r.OPTIONS("/healthz", h)
	return r
}

type healthBody struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func TestHealth(t *testing.T) {
	t.Parallel()

	ok := func(ctx context.Context) error { return nil }
	down := func(ctx context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		method     string
		checks     map[string]Check
		wantStatus int
		wantBody   *healthBody
	}{
		{
			name:       "GET without checks",
			method:     http.MethodGet,
			wantStatus: http.StatusOK,
			wantBody:   &healthBody{Status: "ok", Checks: map[string]string{}},
		},
		{
			name:       "GET all healthy",
			method:     http.MethodGet,
			checks:     map[string]Check{"db": ok, "redis": ok},
			wantStatus: http.StatusOK,
			wantBody:   &healthBody{Status: "ok", Checks: map[string]string{"db": "ok", "redis": "ok"}},
		},
		{
			name:       "GET dependency down",
			method:     http.MethodGet,
			checks:     map[string]Check{"db": ok, "redis": down},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   &healthBody{Status: "unavailable", Checks: map[string]string{"db": "ok", "redis": "connection refused"}},
		},
		{name: "HEAD healthy", method: http.MethodHead, checks: map[string]Check{"db": ok}, wantStatus: http.StatusOK},
		{name: "HEAD dependency down", method: http.MethodHead, checks: map[string]Check{"db": down}, wantStatus: http.StatusServiceUnavailable},
		{name: "OPTIONS skips checks", method: http.MethodOptions, checks: map[string]Check{"db": down}, wantStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			setupRouter(tt.checks).ServeHTTP(w, httptest.NewRequest(tt.method, "/healthz", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
			if tt.wantBody == nil {
				assert.Empty(t, w.Body.String())
				return
			}
			var got healthBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, *tt.wantBody, got)
		})
	}
}

func TestHealth_CheckHasDeadline(t *testing.T) {
	t.Parallel()

	var deadline time.Time
	check := func(ctx context.Context) error {
		d, ok := ctx.Deadline()
		assert.True(t, ok)
		deadline = d
		return nil
	}

	w := httptest.NewRecorder()
	setupRouter(map[string]Check{"db": check}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.WithinDuration(t, time.Now().Add(checkTimeout), deadline, time.Second)
}
