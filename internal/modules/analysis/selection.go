package analysis

import (
	"sort"

	"github.com/quantlab/advisor/internal/domain"
	"github.com/quantlab/advisor/pkg/formulas"
)

// Candidate selection policy. The thresholds are a reproducibility contract:
// two deployments given the same metrics must pick the same candidates.
const (
	maxCandidates        = 15
	minCandidates        = 5
	fallbackCandidates   = 10
	conservativeQuantile = 0.33
	aggressiveQuantile   = 0.67
	balancedVolQuantile  = 0.75
)

// SelectCandidates applies the risk-tolerance filter to the metrics and
// returns the candidate symbols for optimization.
//
//   - conservative: volatility at or below the 33rd percentile
//   - aggressive:   annual return at or above the 67th percentile
//   - balanced:     Sharpe above the median AND volatility below the 75th percentile
//
// Each filter keeps at most maxCandidates symbols in metrics order. When a
// filter yields fewer than minCandidates, the fallback is the
// fallbackCandidates symbols with the highest Sharpe ratio overall.
//
// clusterFilter, when non-empty, restricts the eligible metrics to symbols
// assigned to one of the given cluster ids (labels index-aligned with
// metrics) before the tolerance filter is applied.
func SelectCandidates(metrics []SymbolMetrics, labels []int, tolerance domain.RiskTolerance, clusterFilter []int) []string {
	eligible := metrics
	if len(clusterFilter) > 0 && len(labels) == len(metrics) {
		wanted := make(map[int]struct{}, len(clusterFilter))
		for _, c := range clusterFilter {
			wanted[c] = struct{}{}
		}
		eligible = nil
		for i, m := range metrics {
			if _, ok := wanted[labels[i]]; ok {
				eligible = append(eligible, m)
			}
		}
	}

	if len(eligible) == 0 {
		return nil
	}

	vols := make([]float64, len(eligible))
	rets := make([]float64, len(eligible))
	sharpes := make([]float64, len(eligible))
	for i, m := range eligible {
		vols[i] = m.Volatility
		rets[i] = m.AnnualReturn
		sharpes[i] = m.SharpeRatio
	}

	var selected []string
	switch tolerance {
	case domain.RiskConservative:
		threshold := formulas.Quantile(vols, conservativeQuantile)
		selected = filterSymbols(eligible, func(m SymbolMetrics) bool {
			return m.Volatility <= threshold
		})
	case domain.RiskAggressive:
		threshold := formulas.Quantile(rets, aggressiveQuantile)
		selected = filterSymbols(eligible, func(m SymbolMetrics) bool {
			return m.AnnualReturn >= threshold
		})
	default: // balanced
		medianSharpe := formulas.Median(sharpes)
		volThreshold := formulas.Quantile(vols, balancedVolQuantile)
		selected = filterSymbols(eligible, func(m SymbolMetrics) bool {
			return m.SharpeRatio > medianSharpe && m.Volatility < volThreshold
		})
	}

	if len(selected) < minCandidates {
		selected = topBySharpe(eligible, fallbackCandidates)
	}

	return selected
}

// filterSymbols keeps the symbols passing the predicate, capped at
// maxCandidates, preserving metrics order.
func filterSymbols(metrics []SymbolMetrics, keep func(SymbolMetrics) bool) []string {
	var out []string
	for _, m := range metrics {
		if keep(m) {
			out = append(out, m.Symbol)
			if len(out) == maxCandidates {
				break
			}
		}
	}
	return out
}

// topBySharpe returns the n symbols with the highest Sharpe ratio.
func topBySharpe(metrics []SymbolMetrics, n int) []string {
	sorted := make([]SymbolMetrics, len(metrics))
	copy(sorted, metrics)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SharpeRatio > sorted[j].SharpeRatio
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = sorted[i].Symbol
	}
	return out
}
