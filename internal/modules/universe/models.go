package universe

import (
	"context"
	"time"

	"github.com/quantlab/advisor/internal/clients/yahoo"
)

// MinSeriesLength is the minimum number of price observations a symbol needs
// to be admitted into the universe (one trading year).
const MinSeriesLength = 252

// MinUniverseSize is the hard floor of admitted symbols below which a load
// fails entirely. Clustering and optimization stop being statistically
// meaningful with fewer symbols.
const MinUniverseSize = 20

// HistoryClient fetches historical daily prices for a symbol.
type HistoryClient interface {
	GetHistoricalPrices(ctx context.Context, symbol, period string) ([]yahoo.HistoricalPrice, error)
}

// Snapshot is an immutable view of the loaded market data. All per-symbol
// slices are aligned on the shared date axes. Readers must never mutate a
// snapshot; a new load produces a fresh one.
type Snapshot struct {
	Symbols []string // admitted symbols, sorted

	// Dates is the aligned trading-date axis after forward-fill and removal
	// of incomplete leading rows. Every price series has len(Dates) points.
	Dates  []time.Time
	Prices map[string][]float64

	// ReturnDates is Dates[1:]. Every return series has len(Dates)-1 points.
	ReturnDates []time.Time
	Returns     map[string][]float64
}

// LastPrice returns the most recent close for a symbol, or 0 if unknown.
func (s *Snapshot) LastPrice(symbol string) float64 {
	prices, ok := s.Prices[symbol]
	if !ok || len(prices) == 0 {
		return 0
	}
	return prices[len(prices)-1]
}

// HasSymbol reports whether the symbol was admitted into the snapshot.
func (s *Snapshot) HasSymbol(symbol string) bool {
	_, ok := s.Returns[symbol]
	return ok
}

// NumSymbols returns the number of admitted symbols.
func (s *Snapshot) NumSymbols() int {
	return len(s.Symbols)
}

// DefaultUniverse is the built-in large-cap universe analyzed when no custom
// symbols are configured.
var DefaultUniverse = []string{
	"AAPL", "MSFT", "AMZN", "GOOGL", "TSLA", "META", "BRK-B", "UNH", "JNJ", "V",
	"WMT", "JPM", "MA", "PG", "HD", "CVX", "LLY", "ABBV", "PFE", "KO",
	"PEP", "AVGO", "TMO", "COST", "MRK", "BAC", "XOM", "DIS", "ABT", "CRM",
	"NFLX", "VZ", "ADBE", "WFC", "T", "NKE", "AMD", "CMCSA", "BMY", "TXN",
	"QCOM", "DHR", "UPS", "PM", "MS", "HON", "NEE", "LOW", "COP", "AMGN",
}
