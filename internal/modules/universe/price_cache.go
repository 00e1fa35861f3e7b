package universe

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/quantlab/advisor/internal/clients/yahoo"
)

// PriceCache persists fetched price histories so repeated initializations do
// not hammer the upstream API. Rows carry an expiration timestamp; expired
// rows are treated as misses and overwritten on the next Put.
type PriceCache struct {
	db *sql.DB
}

const priceCacheSchema = `
CREATE TABLE IF NOT EXISTS price_history (
	symbol     TEXT    NOT NULL,
	period     TEXT    NOT NULL,
	data       BLOB    NOT NULL,
	expires_at INTEGER NOT NULL,
	PRIMARY KEY (symbol, period)
);
`

// NewPriceCache creates the cache repository and ensures its schema exists.
func NewPriceCache(db *sql.DB) (*PriceCache, error) {
	if _, err := db.Exec(priceCacheSchema); err != nil {
		return nil, fmt.Errorf("failed to create price_history table: %w", err)
	}
	return &PriceCache{db: db}, nil
}

// Get returns the cached history for (symbol, period) if present and fresh.
func (c *PriceCache) Get(symbol, period string) ([]yahoo.HistoricalPrice, bool, error) {
	row := c.db.QueryRow(
		`SELECT data FROM price_history WHERE symbol = ? AND period = ? AND expires_at > ?`,
		symbol, period, time.Now().Unix(),
	)

	var blob []byte
	if err := row.Scan(&blob); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read price cache: %w", err)
	}

	var bars []yahoo.HistoricalPrice
	if err := msgpack.Unmarshal(blob, &bars); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached prices: %w", err)
	}

	return bars, true, nil
}

// Put stores the history for (symbol, period) with expiration = now + ttl.
func (c *PriceCache) Put(symbol, period string, bars []yahoo.HistoricalPrice, ttl time.Duration) error {
	blob, err := msgpack.Marshal(bars)
	if err != nil {
		return fmt.Errorf("failed to encode prices: %w", err)
	}

	expiresAt := time.Now().Add(ttl).Unix()

	_, err = c.db.Exec(
		`INSERT OR REPLACE INTO price_history (symbol, period, data, expires_at) VALUES (?, ?, ?, ?)`,
		symbol, period, blob, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store prices in cache: %w", err)
	}

	return nil
}

// Purge deletes expired rows. Called opportunistically by the refresh job.
func (c *PriceCache) Purge() (int64, error) {
	res, err := c.db.Exec(`DELETE FROM price_history WHERE expires_at <= ?`, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge price cache: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
