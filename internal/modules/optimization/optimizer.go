package optimization

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/quantlab/advisor/internal/domain"
	"github.com/quantlab/advisor/internal/modules/universe"
	"github.com/quantlab/advisor/pkg/formulas"
)

// penaltyWeight scales the quadratic penalty holding the weight sum at 1
// during the unconstrained solve.
const penaltyWeight = 1000.0

// Optimizer solves for portfolio weights maximizing the capital-aware
// risk-adjusted net return over a candidate set.
type Optimizer struct {
	log zerolog.Logger
}

// NewOptimizer creates a portfolio optimizer.
func NewOptimizer(log zerolog.Logger) *Optimizer {
	return &Optimizer{
		log: log.With().Str("component", "optimizer").Logger(),
	}
}

// Optimize computes weights for the candidates given a risk tolerance and a
// capital amount. The snapshot is captured by the caller; the solve never
// touches shared state.
//
// Returns domain.ErrInvalidCandidateSet when fewer than two candidates are
// given or a candidate is missing from the snapshot, and
// domain.ErrOptimizationFailed when the solver does not converge or the
// weight bounds admit no portfolio summing to 1.
func (o *Optimizer) Optimize(
	snap *universe.Snapshot,
	candidates []string,
	tolerance domain.RiskTolerance,
	capital float64,
) (*Result, error) {
	n := len(candidates)
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 candidates, got %d", domain.ErrInvalidCandidateSet, n)
	}

	periods := len(snap.ReturnDates)
	returns := make([][]float64, n)
	prices := make([]float64, n)
	for i, symbol := range candidates {
		series, ok := snap.Returns[symbol]
		if !ok {
			return nil, fmt.Errorf("%w: %s not in return table", domain.ErrInvalidCandidateSet, symbol)
		}
		// Short series are padded with zero returns rather than dropped.
		padded := make([]float64, periods)
		copy(padded[periods-len(series):], series)
		returns[i] = padded
		prices[i] = snap.LastPrice(symbol)
	}

	mu := make([]float64, n)
	for i := range returns {
		mu[i] = formulas.AnnualizedReturn(returns[i])
	}

	sigma := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sigma.SetSym(i, j, formulas.Covariance(returns[i], returns[j])*formulas.TradingDaysPerYear)
		}
	}

	bounds := weightBounds(prices, capital)
	if err := checkFeasible(bounds); err != nil {
		return nil, err
	}

	costRate := transactionCostRate(capital, n)
	riskFactor := tolerance.Multiplier()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			w := projectToBounds(x, bounds)

			gross := floats.Dot(mu, w)
			net := gross - costRate*floats.Sum(w)
			variance := quadraticForm(w, sigma)
			vol := math.Sqrt(math.Max(variance, 1e-10))

			obj := -riskFactor * (net/vol - diversificationPenalty(w, capital))

			sum := floats.Sum(w)
			obj += penaltyWeight * (sum - 1.0) * (sum - 1.0)

			return obj
		},
	}

	initial := make([]float64, n)
	for i := range initial {
		initial[i] = 1.0 / float64(n)
	}

	result, err := solve(problem, initial)
	if err != nil {
		return nil, err
	}

	weights, err := normalizeToBounds(projectToBounds(result.X, bounds), bounds)
	if err != nil {
		return nil, err
	}

	gross := floats.Dot(mu, weights)
	variance := quadraticForm(weights, sigma)
	vol := math.Sqrt(math.Max(variance, 0))

	costs := make(map[string]float64, n)
	totalCost := 0.0
	weightBySymbol := make(map[string]float64, n)
	for i, symbol := range candidates {
		costs[symbol] = costRate
		totalCost += weights[i] * costRate
		weightBySymbol[symbol] = weights[i]
	}
	net := gross - totalCost

	o.log.Debug().
		Int("candidates", n).
		Str("risk_tolerance", string(tolerance)).
		Float64("capital", capital).
		Float64("net_return", net).
		Msg("Optimization complete")

	return &Result{
		Weights:          weightBySymbol,
		ExpectedReturn:   gross,
		NetReturn:        net,
		Volatility:       vol,
		SharpeRatio:      formulas.SharpeRatio(gross, vol),
		NetSharpeRatio:   formulas.SharpeRatio(net, vol),
		TransactionCosts: costs,
		InvestmentAmount: capital,
	}, nil
}

// solve minimizes the problem with Nelder-Mead, retrying with BFGS when the
// first attempt errors or stalls without converging.
func solve(problem optimize.Problem, initial []float64) (*optimize.Result, error) {
	result, err := optimize.Minimize(problem, initial, &optimize.Settings{}, &optimize.NelderMead{})
	if err == nil && converged(result.Status) {
		return result, nil
	}

	result, err = optimize.Minimize(problem, initial, &optimize.Settings{}, &optimize.BFGS{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrOptimizationFailed, err)
	}
	if !converged(result.Status) {
		return nil, fmt.Errorf("%w: status=%v", domain.ErrOptimizationFailed, result.Status)
	}
	return result, nil
}

func converged(status optimize.Status) bool {
	switch status {
	case optimize.Success, optimize.GradientThreshold, optimize.FunctionConvergence:
		return true
	default:
		return false
	}
}

// checkFeasible verifies that some weight vector inside the bounds can sum
// to 1.
func checkFeasible(bounds [][2]float64) error {
	var lo, hi float64
	for _, b := range bounds {
		lo += b[0]
		hi += b[1]
	}
	if lo > 1.0 || hi < 1.0 {
		return fmt.Errorf("%w: bounds admit no full allocation (min sum %.4f, max sum %.4f)",
			domain.ErrOptimizationFailed, lo, hi)
	}
	return nil
}

// projectToBounds clamps each coordinate into its [min, max] interval.
func projectToBounds(x []float64, bounds [][2]float64) []float64 {
	proj := make([]float64, len(x))
	for i, v := range x {
		proj[i] = math.Max(bounds[i][0], math.Min(bounds[i][1], v))
	}
	return proj
}

// normalizeToBounds shifts the solution onto the unit simplex without
// leaving the per-candidate bounds: bisect on the uniform shift t so that
// the clamped weights sum to exactly 1. Monotone in t, so bisection always
// lands inside the interval checked by checkFeasible.
func normalizeToBounds(x []float64, bounds [][2]float64) ([]float64, error) {
	shifted := func(t float64) []float64 {
		w := make([]float64, len(x))
		for i, v := range x {
			w[i] = math.Max(bounds[i][0], math.Min(bounds[i][1], v+t))
		}
		return w
	}

	span := 1.0
	for i, b := range bounds {
		span += math.Abs(x[i]) + b[1]
	}

	lo, hi := -span, span
	for iter := 0; iter < 200; iter++ {
		mid := (lo + hi) / 2
		sum := floats.Sum(shifted(mid))
		switch {
		case math.Abs(sum-1.0) < 1e-12:
			return shifted(mid), nil
		case sum < 1.0:
			lo = mid
		default:
			hi = mid
		}
	}

	w := shifted((lo + hi) / 2)
	if math.Abs(floats.Sum(w)-1.0) > 1e-6 {
		return nil, fmt.Errorf("%w: could not normalize weights within bounds", domain.ErrOptimizationFailed)
	}
	return w, nil
}

func quadraticForm(w []float64, sigma *mat.SymDense) float64 {
	n := len(w)
	var total float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			total += w[i] * w[j] * sigma.At(i, j)
		}
	}
	return total
}
