package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantlab/advisor/internal/modules/advisor"
	"github.com/quantlab/advisor/internal/modules/analysis"
	"github.com/quantlab/advisor/internal/modules/backtest"
	"github.com/quantlab/advisor/internal/modules/optimization"
	"github.com/quantlab/advisor/internal/modules/universe"
)

func newTestServer() *Server {
	log := zerolog.Nop()

	// No network client: the routes under test never trigger a fetch.
	store := universe.NewStore(nil, nil, 0, log)
	service := advisor.NewService(
		store,
		universe.NewCustomSymbols(),
		analysis.NewEngine(store, log),
		optimization.NewOptimizer(log),
		backtest.NewBacktester(log),
		nil,
		"2y",
		log,
	)

	return New(Config{
		Log:     log,
		Port:    0,
		DevMode: true,
		Handler: advisor.NewHandler(service, log),
	})
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestRoutesWired(t *testing.T) {
	srv := newTestServer()

	// Reads before init surface the core's NotInitialized failure as 400,
	// proving the route reaches the handler.
	req := httptest.NewRequest(http.MethodGet, "/api/clusters", nil)
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/recommend",
		strings.NewReader(`{"risk_tolerance":"balanced","investment_amount":1000}`))
	rr = httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/stocks/list", nil)
	rr = httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	// Unknown route falls through to chi's 404.
	req = httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	rr = httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
