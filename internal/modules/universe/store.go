// Package universe holds the market data store: the price history table and
// the derived returns table for the loaded symbol universe.
package universe

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantlab/advisor/internal/clients/yahoo"
	"github.com/quantlab/advisor/internal/domain"
	"github.com/quantlab/advisor/pkg/formulas"
)

// Store owns the in-memory price and return tables. A successful Load fully
// replaces the previous state; a failed Load leaves it untouched. The tables
// are only ever swapped as a whole, so readers either see the old snapshot or
// the new one, never a mix.
type Store struct {
	client   HistoryClient
	cache    *PriceCache // optional, may be nil
	cacheTTL time.Duration
	log      zerolog.Logger

	mu       sync.RWMutex
	snapshot *Snapshot
}

// NewStore creates a market data store. cache may be nil to disable the
// persistent price cache.
func NewStore(client HistoryClient, cache *PriceCache, cacheTTL time.Duration, log zerolog.Logger) *Store {
	return &Store{
		client:   client,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      log.With().Str("component", "market_store").Logger(),
	}
}

// Load fetches historical close prices covering period for every symbol,
// admits symbols with more than MinSeriesLength observations, and replaces
// the in-memory state with the aligned price/return tables.
//
// Individual symbol failures are tolerated and skipped; the load as a whole
// fails with domain.ErrDataUnavailable when fewer than MinUniverseSize
// symbols are admitted. On failure the prior state is left unchanged.
func (s *Store) Load(ctx context.Context, symbols []string, period string) error {
	admitted := make(map[string][]yahoo.HistoricalPrice)

	for _, symbol := range symbols {
		bars, err := s.fetchSymbol(ctx, symbol, period)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("Skipping symbol, fetch failed")
			continue
		}
		if len(bars) <= MinSeriesLength {
			s.log.Debug().
				Str("symbol", symbol).
				Int("observations", len(bars)).
				Msg("Skipping symbol, insufficient history")
			continue
		}
		admitted[symbol] = bars
	}

	if len(admitted) < MinUniverseSize {
		return fmt.Errorf("%w: only %d of %d symbols admitted (minimum %d)",
			domain.ErrDataUnavailable, len(admitted), len(symbols), MinUniverseSize)
	}

	snapshot := buildSnapshot(admitted)

	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()

	s.log.Info().
		Int("symbols", len(snapshot.Symbols)).
		Int("sessions", len(snapshot.Dates)).
		Msg("Market data loaded")

	return nil
}

// Snapshot returns the current immutable market data view, or
// domain.ErrNotInitialized when no load has succeeded yet.
func (s *Store) Snapshot() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, domain.ErrNotInitialized
	}
	return s.snapshot, nil
}

// Initialized reports whether a load has succeeded.
func (s *Store) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot != nil
}

// fetchSymbol returns the price history for one symbol, consulting the
// persistent cache before going to the network.
func (s *Store) fetchSymbol(ctx context.Context, symbol, period string) ([]yahoo.HistoricalPrice, error) {
	if s.cache != nil {
		if bars, ok, err := s.cache.Get(symbol, period); err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("Price cache read failed")
		} else if ok {
			return bars, nil
		}
	}

	bars, err := s.client.GetHistoricalPrices(ctx, symbol, period)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && len(bars) > 0 {
		if err := s.cache.Put(symbol, period, bars, s.cacheTTL); err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("Price cache write failed")
		}
	}

	return bars, nil
}

// buildSnapshot aligns the per-symbol histories on a shared date axis,
// forward-fills gaps, drops the leading rows where any symbol has no value
// yet, and derives the simple percentage-change return table.
func buildSnapshot(histories map[string][]yahoo.HistoricalPrice) *Snapshot {
	symbols := make([]string, 0, len(histories))
	for symbol := range histories {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	// Union of trading dates across all symbols, normalized to UTC midnight.
	dateSet := make(map[time.Time]struct{})
	closeBySymbol := make(map[string]map[time.Time]float64, len(histories))
	for symbol, bars := range histories {
		closes := make(map[time.Time]float64, len(bars))
		for _, bar := range bars {
			day := normalizeDay(bar.Date)
			closes[day] = bar.Close
			dateSet[day] = struct{}{}
		}
		closeBySymbol[symbol] = closes
	}

	allDates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		allDates = append(allDates, d)
	}
	sort.Slice(allDates, func(i, j int) bool { return allDates[i].Before(allDates[j]) })

	// Forward-fill each symbol over the union axis. A symbol has NaN only
	// before its first observation, so dropping incomplete rows means
	// trimming the common prefix.
	filled := make(map[string][]float64, len(symbols))
	start := 0
	for _, symbol := range symbols {
		series := make([]float64, len(allDates))
		last := math.NaN()
		firstIdx := -1
		for i, day := range allDates {
			if v, ok := closeBySymbol[symbol][day]; ok {
				last = v
				if firstIdx < 0 {
					firstIdx = i
				}
			}
			series[i] = last
		}
		filled[symbol] = series
		if firstIdx > start {
			start = firstIdx
		}
	}

	dates := allDates[start:]
	prices := make(map[string][]float64, len(symbols))
	returns := make(map[string][]float64, len(symbols))
	for _, symbol := range symbols {
		series := filled[symbol][start:]
		prices[symbol] = series
		returns[symbol] = formulas.CalculateReturns(series)
	}

	var returnDates []time.Time
	if len(dates) > 1 {
		returnDates = dates[1:]
	}

	return &Snapshot{
		Symbols:     symbols,
		Dates:       dates,
		Prices:      prices,
		ReturnDates: returnDates,
		Returns:     returns,
	}
}

func normalizeDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
