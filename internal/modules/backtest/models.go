// Package backtest replays historical returns against a weight vector.
package backtest

import "time"

// Result holds the realized performance of a weight vector over the
// evaluated window. The three series are index-aligned with Dates.
type Result struct {
	TotalReturn  float64 `json:"total_return"`
	AnnualReturn float64 `json:"annual_return"`
	Volatility   float64 `json:"volatility"`
	SharpeRatio  float64 `json:"sharpe_ratio"`
	MaxDrawdown  float64 `json:"max_drawdown"`

	Dates           []time.Time `json:"dates"`
	PortfolioValues []float64   `json:"portfolio_values"`
	BenchmarkValues []float64   `json:"benchmark_values"`
	PeriodReturns   []float64   `json:"period_returns"`
}
