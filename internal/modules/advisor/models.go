// Package advisor orchestrates the recommendation pipeline: load, cluster,
// select candidates, optimize, backtest.
package advisor

import (
	"github.com/quantlab/advisor/internal/domain"
	"github.com/quantlab/advisor/internal/modules/analysis"
	"github.com/quantlab/advisor/internal/modules/backtest"
)

// InitResult is returned after a successful universe load.
type InitResult struct {
	Clusters    []analysis.ClusterSummary `json:"clusters"`
	TotalStocks int                       `json:"total_stocks"`
}

// InitRequest is the optional payload of POST /api/init.
type InitRequest struct {
	Period string `json:"period,omitempty"`
}

// RecommendRequest is the payload of POST /api/recommend. Validation happens
// at the boundary before the core is touched.
type RecommendRequest struct {
	RiskTolerance    string  `json:"risk_tolerance"`
	InvestmentAmount float64 `json:"investment_amount"`
	SelectedClusters []int   `json:"selected_clusters,omitempty"`
}

// Allocation is one position in the recommended portfolio.
type Allocation struct {
	Weight       float64 `json:"weight"`
	DollarAmount float64 `json:"dollar_amount"`
	Shares       int     `json:"shares"`
}

// Portfolio is the optimizer output shaped for the API: allocations below
// the reporting threshold are dropped, the statistics still describe the
// full optimized weight vector.
type Portfolio struct {
	Allocations     map[string]Allocation `json:"allocations"`
	ExpectedReturn  float64               `json:"expected_return"`
	NetReturn       float64               `json:"net_return"`
	Volatility      float64               `json:"volatility"`
	SharpeRatio     float64               `json:"sharpe_ratio"`
	NetSharpeRatio  float64               `json:"net_sharpe_ratio"`
	TotalInvestment float64               `json:"total_investment"`
}

// Recommendation is the full response of POST /api/recommend.
type Recommendation struct {
	RecommendationID string               `json:"recommendation_id"`
	RiskTolerance    domain.RiskTolerance `json:"risk_tolerance"`
	Portfolio        Portfolio            `json:"portfolio"`
	Backtest         *backtest.Result     `json:"backtest"`
	SelectedStocks   []string             `json:"selected_stocks"`
}

// SymbolRequest is the payload of the custom-universe mutation endpoints.
type SymbolRequest struct {
	Symbol string `json:"symbol"`
}
