package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantlab/advisor/internal/modules/universe"
)

// refreshTimeout bounds one full universe reload, including the per-symbol
// network fetches.
const refreshTimeout = 10 * time.Minute

// Refresher reloads market data with the current symbol set.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// MarketDataRefreshJob reloads price history on schedule so recommendations
// keep tracking the market without a manual re-init. Expired cache rows are
// purged first so the reload goes to the network.
type MarketDataRefreshJob struct {
	refresher Refresher
	cache     *universe.PriceCache
	log       zerolog.Logger
}

// NewMarketDataRefreshJob creates the refresh job. cache may be nil when
// price caching is disabled.
func NewMarketDataRefreshJob(refresher Refresher, cache *universe.PriceCache, log zerolog.Logger) *MarketDataRefreshJob {
	return &MarketDataRefreshJob{
		refresher: refresher,
		cache:     cache,
		log:       log.With().Str("job", "market_data_refresh").Logger(),
	}
}

// Name implements Job.
func (j *MarketDataRefreshJob) Name() string {
	return "market_data_refresh"
}

// Run implements Job. A failed reload leaves the previous data serving, so
// the error is reported but nothing is rolled back here.
func (j *MarketDataRefreshJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	if j.cache != nil {
		purged, err := j.cache.Purge()
		if err != nil {
			j.log.Warn().Err(err).Msg("Price cache purge failed")
		} else if purged > 0 {
			j.log.Debug().Int64("rows", purged).Msg("Purged expired cache rows")
		}
	}

	if err := j.refresher.Refresh(ctx); err != nil {
		return err
	}

	j.log.Info().Msg("Market data refreshed")
	return nil
}
