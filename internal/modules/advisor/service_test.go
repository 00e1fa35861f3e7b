package advisor

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantlab/advisor/internal/clients/yahoo"
	"github.com/quantlab/advisor/internal/domain"
	"github.com/quantlab/advisor/internal/modules/analysis"
	"github.com/quantlab/advisor/internal/modules/backtest"
	"github.com/quantlab/advisor/internal/modules/optimization"
	"github.com/quantlab/advisor/internal/modules/universe"
)

// fakeHistoryClient synthesizes a deterministic price path for any symbol,
// seeded by the symbol name, so the full default universe is admissible.
type fakeHistoryClient struct {
	bars int
	errs map[string]error
}

func (f *fakeHistoryClient) GetHistoricalPrices(_ context.Context, symbol, _ string) ([]yahoo.HistoricalPrice, error) {
	if err, ok := f.errs[symbol]; ok {
		return nil, err
	}

	seed := 0.0
	for _, c := range symbol {
		seed += float64(c)
	}

	start := time.Date(2023, 1, 2, 14, 30, 0, 0, time.UTC)
	out := make([]yahoo.HistoricalPrice, f.bars)
	price := 30 + math.Mod(seed, 120)
	drift := 0.0001 + math.Mod(seed, 7)/10000
	amplitude := 0.003 + math.Mod(seed, 11)/2000
	for i := range out {
		price *= 1 + drift + amplitude*math.Sin(float64(i)*0.6+seed)
		out[i] = yahoo.HistoricalPrice{
			Date:  start.AddDate(0, 0, i),
			Close: price,
			Open:  price, High: price, Low: price,
		}
	}
	return out, nil
}

func newTestService(client universe.HistoryClient) *Service {
	log := zerolog.Nop()
	store := universe.NewStore(client, nil, time.Hour, log)
	return NewService(
		store,
		universe.NewCustomSymbols(),
		analysis.NewEngine(store, log),
		optimization.NewOptimizer(log),
		backtest.NewBacktester(log),
		client,
		"2y",
		log,
	)
}

func TestServiceInit(t *testing.T) {
	service := newTestService(&fakeHistoryClient{bars: 300})

	result, err := service.Init(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, len(universe.DefaultUniverse), result.TotalStocks)
	require.Len(t, result.Clusters, analysis.DefaultClusterCount)

	total := 0
	for _, c := range result.Clusters {
		total += c.Size
	}
	assert.Equal(t, result.TotalStocks, total)
}

func TestServiceRecommendBeforeInit(t *testing.T) {
	service := newTestService(&fakeHistoryClient{bars: 300})

	_, err := service.Recommend(domain.RiskBalanced, 10000, nil)
	assert.ErrorIs(t, err, domain.ErrNotInitialized)

	_, err = service.Clusters()
	assert.ErrorIs(t, err, domain.ErrNotInitialized)
}

func TestServiceRecommend(t *testing.T) {
	service := newTestService(&fakeHistoryClient{bars: 300})
	_, err := service.Init(context.Background(), "")
	require.NoError(t, err)

	capital := 25000.0
	rec, err := service.Recommend(domain.RiskBalanced, capital, nil)
	require.NoError(t, err)

	_, err = uuid.Parse(rec.RecommendationID)
	assert.NoError(t, err)
	assert.Equal(t, domain.RiskBalanced, rec.RiskTolerance)
	assert.NotEmpty(t, rec.SelectedStocks)

	snap, err := service.store.Snapshot()
	require.NoError(t, err)

	require.NotEmpty(t, rec.Portfolio.Allocations)
	for symbol, alloc := range rec.Portfolio.Allocations {
		assert.Greater(t, alloc.Weight, reportingThreshold, "symbol %s", symbol)
		assert.InDelta(t, alloc.Weight*capital, alloc.DollarAmount, 1e-9)

		price := snap.LastPrice(symbol)
		require.Greater(t, price, 0.0)
		assert.Equal(t, int(math.Floor(alloc.DollarAmount/price)), alloc.Shares)
	}

	assert.Equal(t, capital, rec.Portfolio.TotalInvestment)
	require.NotNil(t, rec.Backtest)
	assert.NotEmpty(t, rec.Backtest.PortfolioValues)
}

func TestServiceRecommendSelectedClusters(t *testing.T) {
	service := newTestService(&fakeHistoryClient{bars: 300})
	_, err := service.Init(context.Background(), "")
	require.NoError(t, err)

	// Pre-filtering to one cluster restricts the candidate pool to its
	// members (or the Sharpe fallback within them).
	snap, err := service.store.Snapshot()
	require.NoError(t, err)
	_, metrics, labels := service.engine.ClusterSnapshot(snap, analysis.DefaultClusterCount)

	members := make(map[string]bool)
	for i, m := range metrics {
		if labels[i] == 0 {
			members[m.Symbol] = true
		}
	}
	if len(members) < 2 {
		t.Skip("cluster 0 too small for this synthetic universe")
	}

	rec, err := service.Recommend(domain.RiskBalanced, 25000, []int{0})
	require.NoError(t, err)
	for _, symbol := range rec.SelectedStocks {
		assert.True(t, members[symbol], "symbol %s not in cluster 0", symbol)
	}
}

func TestServiceAddSymbol(t *testing.T) {
	client := &fakeHistoryClient{
		bars: 300,
		errs: map[string]error{"BAD": errors.New("not found")},
	}
	service := newTestService(client)

	symbol, err := service.AddSymbol(context.Background(), " nflx ")
	require.NoError(t, err)
	assert.Equal(t, "NFLX", symbol)
	assert.Equal(t, []string{"NFLX"}, service.ListSymbols())

	_, err = service.AddSymbol(context.Background(), "BAD")
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)

	_, err = service.AddSymbol(context.Background(), "   ")
	assert.Error(t, err)

	assert.True(t, service.RemoveSymbol("nflx"))
	assert.False(t, service.RemoveSymbol("NFLX"))
	assert.Empty(t, service.ListSymbols())
}

func TestServiceClearSymbols(t *testing.T) {
	service := newTestService(&fakeHistoryClient{bars: 300})

	_, err := service.AddSymbol(context.Background(), "AAA")
	require.NoError(t, err)
	_, err = service.AddSymbol(context.Background(), "BBB")
	require.NoError(t, err)

	assert.Equal(t, 2, service.ClearSymbols())
	assert.Empty(t, service.ListSymbols())
}
