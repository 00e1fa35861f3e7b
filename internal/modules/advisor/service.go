package advisor

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quantlab/advisor/internal/domain"
	"github.com/quantlab/advisor/internal/modules/analysis"
	"github.com/quantlab/advisor/internal/modules/backtest"
	"github.com/quantlab/advisor/internal/modules/optimization"
	"github.com/quantlab/advisor/internal/modules/universe"
)

// reportingThreshold drops dust allocations from the API response. The
// underlying optimization keeps them.
const reportingThreshold = 0.01

// Service wires the pipeline components together. One instance is shared by
// the HTTP layer and the scheduler.
type Service struct {
	store      *universe.Store
	symbols    *universe.CustomSymbols
	engine     *analysis.Engine
	optimizer  *optimization.Optimizer
	backtester *backtest.Backtester
	client     universe.HistoryClient
	period     string
	log        zerolog.Logger
}

// NewService creates the advisor service.
func NewService(
	store *universe.Store,
	symbols *universe.CustomSymbols,
	engine *analysis.Engine,
	optimizer *optimization.Optimizer,
	backtester *backtest.Backtester,
	client universe.HistoryClient,
	period string,
	log zerolog.Logger,
) *Service {
	return &Service{
		store:      store,
		symbols:    symbols,
		engine:     engine,
		optimizer:  optimizer,
		backtester: backtester,
		client:     client,
		period:     period,
		log:        log.With().Str("component", "advisor").Logger(),
	}
}

// Init loads history for the default universe plus any custom symbols, then
// clusters the admitted set. period overrides the configured fetch period
// when non-empty.
func (s *Service) Init(ctx context.Context, period string) (*InitResult, error) {
	if period == "" {
		period = s.period
	}
	if err := s.store.Load(ctx, s.symbols.Combined(), period); err != nil {
		return nil, err
	}

	summaries, metrics, _, err := s.engine.Cluster(analysis.DefaultClusterCount)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int("stocks", len(metrics)).Msg("Advisor initialized")

	return &InitResult{Clusters: summaries, TotalStocks: len(metrics)}, nil
}

// Refresh reloads market data with the current symbol set. Used by the
// scheduled refresh job; a failure leaves the previous data serving.
func (s *Service) Refresh(ctx context.Context) error {
	return s.store.Load(ctx, s.symbols.Combined(), s.period)
}

// Clusters re-clusters the current data.
func (s *Service) Clusters() ([]analysis.ClusterSummary, error) {
	summaries, _, _, err := s.engine.Cluster(analysis.DefaultClusterCount)
	return summaries, err
}

// Recommend runs the full pipeline for one request: select candidates by
// risk tolerance, optimize weights for the capital amount, and backtest the
// result. All stages compute from the snapshot captured at entry, so a
// concurrent reload cannot mix data generations.
func (s *Service) Recommend(tolerance domain.RiskTolerance, amount float64, selectedClusters []int) (*Recommendation, error) {
	snap, err := s.store.Snapshot()
	if err != nil {
		return nil, err
	}

	_, metrics, labels := s.engine.ClusterSnapshot(snap, analysis.DefaultClusterCount)

	candidates := analysis.SelectCandidates(metrics, labels, tolerance, selectedClusters)
	if len(candidates) < 2 {
		return nil, fmt.Errorf("%w: selection yielded %d symbols", domain.ErrInvalidCandidateSet, len(candidates))
	}

	result, err := s.optimizer.Optimize(snap, candidates, tolerance, amount)
	if err != nil {
		return nil, err
	}

	backtestResult, err := s.backtester.Run(snap, result.Weights, nil, nil)
	if err != nil {
		return nil, err
	}

	recommendation := &Recommendation{
		RecommendationID: uuid.New().String(),
		RiskTolerance:    tolerance,
		Portfolio:        buildPortfolio(snap, result, amount),
		Backtest:         backtestResult,
		SelectedStocks:   candidates,
	}

	s.log.Info().
		Str("recommendation_id", recommendation.RecommendationID).
		Str("risk_tolerance", string(tolerance)).
		Float64("amount", amount).
		Int("positions", len(recommendation.Portfolio.Allocations)).
		Msg("Recommendation generated")

	return recommendation, nil
}

// AddSymbol validates a symbol against the market data source and adds it to
// the custom universe. The symbol takes effect on the next load.
func (s *Service) AddSymbol(ctx context.Context, symbol string) (string, error) {
	normalized := universe.Normalize(symbol)
	if normalized == "" {
		return "", fmt.Errorf("%w: empty symbol", domain.ErrInvalidCandidateSet)
	}

	// Probe a short history so unknown tickers are rejected up front.
	bars, err := s.client.GetHistoricalPrices(ctx, normalized, "1mo")
	if err != nil || len(bars) == 0 {
		return "", fmt.Errorf("%w: no price history for %s", domain.ErrDataUnavailable, normalized)
	}

	s.symbols.Add(normalized)
	return normalized, nil
}

// RemoveSymbol drops a symbol from the custom universe.
func (s *Service) RemoveSymbol(symbol string) bool {
	return s.symbols.Remove(universe.Normalize(symbol))
}

// ListSymbols returns the custom symbols, sorted.
func (s *Service) ListSymbols() []string {
	return s.symbols.List()
}

// ClearSymbols empties the custom universe and returns how many symbols were
// removed.
func (s *Service) ClearSymbols() int {
	return s.symbols.Clear()
}

// buildPortfolio shapes the optimizer result for the API: keep allocations
// above the reporting threshold, convert weights to dollars and whole
// shares.
func buildPortfolio(snap *universe.Snapshot, result *optimization.Result, amount float64) Portfolio {
	allocations := make(map[string]Allocation)
	for symbol, weight := range result.Weights {
		if weight <= reportingThreshold {
			continue
		}
		dollars := weight * amount
		shares := 0
		if price := snap.LastPrice(symbol); price > 0 {
			shares = int(math.Floor(dollars / price))
		}
		allocations[symbol] = Allocation{
			Weight:       weight,
			DollarAmount: dollars,
			Shares:       shares,
		}
	}

	return Portfolio{
		Allocations:     allocations,
		ExpectedReturn:  result.ExpectedReturn,
		NetReturn:       result.NetReturn,
		Volatility:      result.Volatility,
		SharpeRatio:     result.SharpeRatio,
		NetSharpeRatio:  result.NetSharpeRatio,
		TotalInvestment: result.InvestmentAmount,
	}
}
