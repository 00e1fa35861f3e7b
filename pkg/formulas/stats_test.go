package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateReturns(t *testing.T) {
	prices := []float64{100, 110, 99, 108.9}
	returns := CalculateReturns(prices)

	require.Len(t, returns, 3)
	assert.InDelta(t, 0.10, returns[0], 1e-12)
	assert.InDelta(t, -0.10, returns[1], 1e-12)
	assert.InDelta(t, 0.10, returns[2], 1e-12)
}

func TestCalculateReturns_ShortSeries(t *testing.T) {
	assert.Empty(t, CalculateReturns([]float64{100}))
	assert.Empty(t, CalculateReturns(nil))
}

func TestMaxDrawdown(t *testing.T) {
	// 100 -> 110 -> 99 -> 108.9: worst decline is 110 -> 99 = -10%
	returns := CalculateReturns([]float64{100, 110, 99, 108.9})
	dd := MaxDrawdown(returns)
	assert.InDelta(t, -0.10, dd, 1e-9)
}

func TestMaxDrawdown_MonotonicRise(t *testing.T) {
	returns := []float64{0.01, 0.02, 0.005}
	assert.Equal(t, 0.0, MaxDrawdown(returns))
}

func TestMaxDrawdown_Empty(t *testing.T) {
	assert.Equal(t, 0.0, MaxDrawdown(nil))
}

func TestSharpeRatio_ZeroVolatility(t *testing.T) {
	assert.Equal(t, 0.0, SharpeRatio(0.10, 0))
	assert.InDelta(t, 0.5, SharpeRatio(0.10, 0.20), 1e-12)
}

func TestAnnualized(t *testing.T) {
	daily := []float64{0.001, 0.002, -0.001, 0.0005}

	annReturn := AnnualizedReturn(daily)
	assert.InDelta(t, Mean(daily)*252, annReturn, 1e-12)

	annVol := AnnualizedVolatility(daily)
	assert.InDelta(t, StdDev(daily)*math.Sqrt(252), annVol, 1e-12)
}

func TestQuantile(t *testing.T) {
	data := []float64{4, 1, 3, 2}

	assert.InDelta(t, 1.0, Quantile(data, 0), 1e-12)
	assert.InDelta(t, 4.0, Quantile(data, 1), 1e-12)
	assert.InDelta(t, 2.5, Quantile(data, 0.5), 1e-12)
	// h = 3*0.25 = 0.75 -> between 1 and 2
	assert.InDelta(t, 1.75, Quantile(data, 0.25), 1e-12)
}

func TestMedian_OddLength(t *testing.T) {
	assert.InDelta(t, 2.0, Median([]float64{3, 1, 2}), 1e-12)
}

func TestCorrelation_Degenerate(t *testing.T) {
	// Constant series has undefined correlation; helper must return 0, not NaN.
	x := []float64{1, 1, 1, 1}
	y := []float64{0.5, 0.2, 0.9, 0.1}
	assert.Equal(t, 0.0, Correlation(x, y))

	assert.Equal(t, 0.0, Correlation([]float64{1, 2}, []float64{1}))
}

func TestCorrelation_Perfect(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	y := []float64{2, 4, 6, 8}
	assert.InDelta(t, 1.0, Correlation(x, y), 1e-12)
}

func TestCumulativeCurve(t *testing.T) {
	curve := CumulativeCurve([]float64{0.10, -0.10})
	require.Len(t, curve, 2)
	assert.InDelta(t, 1.10, curve[0], 1e-12)
	assert.InDelta(t, 0.99, curve[1], 1e-12)
}
