// Package domain holds the shared types and error taxonomy of the advisor core.
// Every failure the core can signal is one of the sentinel errors below so the
// HTTP layer can map it to a user-facing message with errors.Is.
package domain

import "errors"

var (
	// ErrDataUnavailable - market data fetch failed, or fewer than the minimum
	// number of symbols were admitted into the universe.
	ErrDataUnavailable = errors.New("market data unavailable")

	// ErrNotInitialized - clustering or recommendation requested before a
	// successful data load.
	ErrNotInitialized = errors.New("data not initialized")

	// ErrInvalidCandidateSet - fewer than 2 candidate symbols, or candidates
	// absent from the return table.
	ErrInvalidCandidateSet = errors.New("invalid candidate set")

	// ErrOptimizationFailed - the solver did not converge or raised.
	ErrOptimizationFailed = errors.New("portfolio optimization failed")

	// ErrEmpty - a backtest was requested with no weights.
	ErrEmpty = errors.New("empty portfolio weights")
)
