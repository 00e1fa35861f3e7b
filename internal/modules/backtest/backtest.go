package backtest

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantlab/advisor/internal/domain"
	"github.com/quantlab/advisor/internal/modules/universe"
	"github.com/quantlab/advisor/pkg/formulas"
)

// Backtester evaluates portfolio weights against the historical return
// table.
type Backtester struct {
	log zerolog.Logger
}

// NewBacktester creates a backtester.
func NewBacktester(log zerolog.Logger) *Backtester {
	return &Backtester{
		log: log.With().Str("component", "backtest").Logger(),
	}
}

// Run replays the snapshot's returns against the weights, restricted to the
// optional [start, end] window (inclusive both ends, nil means unbounded).
// Weights are applied as given, without renormalization.
//
// Returns domain.ErrEmpty when weights is empty or no weighted symbol exists
// in the snapshot.
func (b *Backtester) Run(
	snap *universe.Snapshot,
	weights map[string]float64,
	start, end *time.Time,
) (*Result, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("%w: no weights to backtest", domain.ErrEmpty)
	}

	var symbols []string
	for _, symbol := range snap.Symbols {
		if _, ok := weights[symbol]; ok {
			symbols = append(symbols, symbol)
		}
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w: no weighted symbols in the data", domain.ErrEmpty)
	}

	from, to := windowIndices(snap.ReturnDates, start, end)
	if from >= to {
		return nil, fmt.Errorf("%w: no returns in the requested window", domain.ErrEmpty)
	}

	periods := to - from
	dates := snap.ReturnDates[from:to]

	portfolioReturns := make([]float64, periods)
	benchmarkReturns := make([]float64, periods)
	for i := 0; i < periods; i++ {
		var weighted, sum float64
		for _, symbol := range symbols {
			r := snap.Returns[symbol][from+i]
			weighted += weights[symbol] * r
			sum += r
		}
		portfolioReturns[i] = weighted
		benchmarkReturns[i] = sum / float64(len(symbols))
	}

	portfolioValues := formulas.CumulativeCurve(portfolioReturns)
	benchmarkValues := formulas.CumulativeCurve(benchmarkReturns)

	totalReturn := portfolioValues[periods-1] - 1.0
	annualReturn := math.Pow(1.0+totalReturn, formulas.TradingDaysPerYear/float64(periods)) - 1.0
	volatility := formulas.AnnualizedVolatility(portfolioReturns)

	b.log.Debug().
		Int("symbols", len(symbols)).
		Int("periods", periods).
		Float64("total_return", totalReturn).
		Msg("Backtest complete")

	return &Result{
		TotalReturn:     totalReturn,
		AnnualReturn:    annualReturn,
		Volatility:      volatility,
		SharpeRatio:     formulas.SharpeRatio(annualReturn, volatility),
		MaxDrawdown:     formulas.MaxDrawdown(portfolioReturns),
		Dates:           dates,
		PortfolioValues: portfolioValues,
		BenchmarkValues: benchmarkValues,
		PeriodReturns:   portfolioReturns,
	}, nil
}

// windowIndices returns the half-open [from, to) index range of the return
// dates falling inside the inclusive [start, end] window.
func windowIndices(dates []time.Time, start, end *time.Time) (int, int) {
	from, to := 0, len(dates)
	if start != nil {
		for from < to && dates[from].Before(*start) {
			from++
		}
	}
	if end != nil {
		for to > from && dates[to-1].After(*end) {
			to--
		}
	}
	return from, to
}
