package analysis

import (
	"math"

	"github.com/quantlab/advisor/internal/modules/universe"
	"github.com/quantlab/advisor/pkg/formulas"
)

// DefaultClusterCount is the number of risk groups used by /api/init.
const DefaultClusterCount = 6

// Risk label thresholds on mean annualized volatility.
const (
	lowRiskVolatility    = 0.15
	mediumRiskVolatility = 0.25
)

// ClusterSummary aggregates one partition of the universe. Cluster ids are
// positional labels for a single clustering call only; a later call may
// assign the same id to a different group of symbols.
type ClusterSummary struct {
	ClusterID     int      `json:"cluster_id"`
	Stocks        []string `json:"stocks"`
	AvgReturn     float64  `json:"avg_return"`
	AvgVolatility float64  `json:"avg_volatility"`
	AvgSharpe     float64  `json:"avg_sharpe"`
	Size          int      `json:"size"`
	RiskLevel     string   `json:"risk_level"`
}

// Cluster recomputes metrics and partitions the universe into k groups by
// {annual return, volatility, Sharpe}. Returns the summaries plus the raw
// metrics with their cluster assignment (index-aligned), so callers can run
// candidate selection without recomputing.
func (e *Engine) Cluster(k int) ([]ClusterSummary, []SymbolMetrics, []int, error) {
	snap, err := e.store.Snapshot()
	if err != nil {
		return nil, nil, nil, err
	}
	summaries, metrics, labels := e.ClusterSnapshot(snap, k)
	return summaries, metrics, labels, nil
}

// ClusterSnapshot is Cluster applied to an already captured snapshot, so a
// caller can derive metrics, clusters and downstream computations from one
// consistent view of the data.
func (e *Engine) ClusterSnapshot(snap *universe.Snapshot, k int) ([]ClusterSummary, []SymbolMetrics, []int) {
	if k <= 0 {
		k = DefaultClusterCount
	}

	metrics := computeMetrics(snap)

	features := make([][]float64, len(metrics))
	for i, m := range metrics {
		features[i] = []float64{
			safeFeature(m.AnnualReturn),
			safeFeature(m.Volatility),
			safeFeature(m.SharpeRatio),
		}
	}

	labels := kMeans(standardize(features), k)
	summaries := summarize(metrics, labels, k)

	e.log.Debug().
		Int("symbols", len(metrics)).
		Int("clusters", k).
		Msg("Clustering complete")

	return summaries, metrics, labels
}

// summarize aggregates member statistics per cluster. Empty clusters report
// zero members and zeroed statistics rather than failing.
func summarize(metrics []SymbolMetrics, labels []int, k int) []ClusterSummary {
	summaries := make([]ClusterSummary, k)
	for c := range summaries {
		summaries[c] = ClusterSummary{ClusterID: c, Stocks: []string{}}
	}

	var returns, vols, sharpes [][]float64
	returns = make([][]float64, k)
	vols = make([][]float64, k)
	sharpes = make([][]float64, k)

	for i, m := range metrics {
		c := labels[i]
		summaries[c].Stocks = append(summaries[c].Stocks, m.Symbol)
		returns[c] = append(returns[c], m.AnnualReturn)
		vols[c] = append(vols[c], m.Volatility)
		sharpes[c] = append(sharpes[c], m.SharpeRatio)
	}

	for c := range summaries {
		summaries[c].Size = len(summaries[c].Stocks)
		summaries[c].AvgReturn = formulas.Mean(returns[c])
		summaries[c].AvgVolatility = formulas.Mean(vols[c])
		summaries[c].AvgSharpe = formulas.Mean(sharpes[c])
		summaries[c].RiskLevel = RiskLevel(summaries[c].AvgVolatility)
	}

	return summaries
}

// RiskLevel maps mean annualized volatility to a qualitative label.
func RiskLevel(volatility float64) string {
	switch {
	case volatility < lowRiskVolatility:
		return "Low"
	case volatility < mediumRiskVolatility:
		return "Medium"
	default:
		return "High"
	}
}

// safeFeature replaces NaN/Inf with 0 so a degenerate statistic cannot
// poison the distance computation.
func safeFeature(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
