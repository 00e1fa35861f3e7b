// Package analysis computes per-symbol risk/return statistics and partitions
// the universe into risk-homogeneous clusters.
package analysis

import (
	"github.com/rs/zerolog"

	"github.com/quantlab/advisor/internal/modules/universe"
	"github.com/quantlab/advisor/pkg/formulas"
)

// rsiPeriod is the lookback for the informational RSI metric.
const rsiPeriod = 14

// SymbolMetrics holds the derived statistics for one symbol. Recomputed on
// demand from the return table, never mutated in place.
type SymbolMetrics struct {
	Symbol            string   `json:"symbol"`
	AnnualReturn      float64  `json:"annual_return"`
	Volatility        float64  `json:"volatility"`
	SharpeRatio       float64  `json:"sharpe_ratio"`
	MaxDrawdown       float64  `json:"max_drawdown"`
	MarketCorrelation float64  `json:"correlation_with_market"`
	RSI               *float64 `json:"rsi,omitempty"`
}

// Engine derives metrics and clusters from the market data store.
type Engine struct {
	store *universe.Store
	log   zerolog.Logger
}

// NewEngine creates a metrics and clustering engine.
func NewEngine(store *universe.Store, log zerolog.Logger) *Engine {
	return &Engine{
		store: store,
		log:   log.With().Str("component", "analysis").Logger(),
	}
}

// ComputeMetrics derives the per-symbol statistics from the current snapshot.
// Returns domain.ErrNotInitialized when no data has been loaded.
//
// MarketCorrelation and RSI are informational outputs; neither feeds the
// clustering feature vector or the optimizer.
func (e *Engine) ComputeMetrics() ([]SymbolMetrics, error) {
	snap, err := e.store.Snapshot()
	if err != nil {
		return nil, err
	}
	return computeMetrics(snap), nil
}

func computeMetrics(snap *universe.Snapshot) []SymbolMetrics {
	market := marketProxy(snap)

	metrics := make([]SymbolMetrics, 0, len(snap.Symbols))
	for _, symbol := range snap.Symbols {
		returns := snap.Returns[symbol]

		annualReturn := formulas.AnnualizedReturn(returns)
		volatility := formulas.AnnualizedVolatility(returns)

		metrics = append(metrics, SymbolMetrics{
			Symbol:            symbol,
			AnnualReturn:      annualReturn,
			Volatility:        volatility,
			SharpeRatio:       formulas.SharpeRatio(annualReturn, volatility),
			MaxDrawdown:       formulas.MaxDrawdown(returns),
			MarketCorrelation: formulas.Correlation(returns, market),
			RSI:               formulas.CalculateRSI(snap.Prices[symbol], rsiPeriod),
		})
	}

	return metrics
}

// marketProxy builds the equal-weighted average return across all symbols for
// each period. It stands in for an index benchmark.
func marketProxy(snap *universe.Snapshot) []float64 {
	if len(snap.Symbols) == 0 {
		return nil
	}

	n := len(snap.ReturnDates)
	proxy := make([]float64, n)
	for _, symbol := range snap.Symbols {
		for i, r := range snap.Returns[symbol] {
			proxy[i] += r
		}
	}
	for i := range proxy {
		proxy[i] /= float64(len(snap.Symbols))
	}
	return proxy
}
