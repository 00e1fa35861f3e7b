package advisor

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/quantlab/advisor/internal/domain"
)

// Handler exposes the advisor service over HTTP.
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates the advisor HTTP handler.
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "advisor").Logger(),
	}
}

// HandleInit loads market data and returns the initial clustering. The body
// may carry an optional fetch period override.
func (h *Handler) HandleInit(w http.ResponseWriter, r *http.Request) {
	var req InitRequest
	// The body is optional; a missing or empty one means defaults.
	_ = json.NewDecoder(r.Body).Decode(&req)

	result, err := h.service.Init(r.Context(), req.Period)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"message":      fmt.Sprintf("Initialized with %d stocks", result.TotalStocks),
		"clusters":     result.Clusters,
		"total_stocks": result.TotalStocks,
	})
}

// HandleClusters re-clusters the current data.
func (h *Handler) HandleClusters(w http.ResponseWriter, r *http.Request) {
	clusters, err := h.service.Clusters()
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"clusters": clusters,
	})
}

// HandleRecommend validates the request and runs the recommendation
// pipeline.
func (h *Handler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	tolerance := domain.RiskTolerance(req.RiskTolerance)
	if !tolerance.Valid() {
		h.writeMessage(w, http.StatusBadRequest,
			fmt.Sprintf("risk_tolerance must be one of conservative, balanced, aggressive; got %q", req.RiskTolerance))
		return
	}
	if req.InvestmentAmount <= 0 {
		h.writeMessage(w, http.StatusBadRequest, "investment_amount must be positive")
		return
	}

	recommendation, err := h.service.Recommend(tolerance, req.InvestmentAmount, req.SelectedClusters)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, recommendation)
}

// HandleAddStock adds a custom symbol after probing its price history.
func (h *Handler) HandleAddStock(w http.ResponseWriter, r *http.Request) {
	var req SymbolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Symbol == "" {
		h.writeMessage(w, http.StatusBadRequest, "symbol is required")
		return
	}

	symbol, err := h.service.AddSymbol(r.Context(), req.Symbol)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Added %s", symbol),
		"symbols": h.service.ListSymbols(),
	})
}

// HandleRemoveStock removes a custom symbol.
func (h *Handler) HandleRemoveStock(w http.ResponseWriter, r *http.Request) {
	var req SymbolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Symbol == "" {
		h.writeMessage(w, http.StatusBadRequest, "symbol is required")
		return
	}

	if !h.service.RemoveSymbol(req.Symbol) {
		h.writeMessage(w, http.StatusNotFound, fmt.Sprintf("%s is not a custom symbol", req.Symbol))
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"symbols": h.service.ListSymbols(),
	})
}

// HandleListStocks lists the custom symbols.
func (h *Handler) HandleListStocks(w http.ResponseWriter, r *http.Request) {
	symbols := h.service.ListSymbols()
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"symbols": symbols,
		"count":   len(symbols),
	})
}

// HandleClearStocks empties the custom symbol set.
func (h *Handler) HandleClearStocks(w http.ResponseWriter, r *http.Request) {
	removed := h.service.ClearSymbols()
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Removed %d symbols", removed),
	})
}

// writeError maps a core error to an HTTP status and response message.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotInitialized),
		errors.Is(err, domain.ErrInvalidCandidateSet),
		errors.Is(err, domain.ErrEmpty):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrDataUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrOptimizationFailed):
		status = http.StatusInternalServerError
	}

	h.log.Warn().Err(err).Int("status", status).Msg("Request failed")
	h.writeMessage(w, status, err.Error())
}

func (h *Handler) writeMessage(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
