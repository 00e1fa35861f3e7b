package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chartPayload(timestamps []int64, closes []float64) string {
	ts := ""
	cs := ""
	for i := range timestamps {
		if i > 0 {
			ts += ","
			cs += ","
		}
		ts += fmt.Sprintf("%d", timestamps[i])
		cs += fmt.Sprintf("%g", closes[i])
	}
	return fmt.Sprintf(`{
		"chart": {
			"result": [{
				"timestamp": [%s],
				"indicators": {
					"quote": [{
						"open": [%s], "high": [%s], "low": [%s], "close": [%s],
						"volume": [100, 200, 300]
					}],
					"adjclose": [{"adjclose": [%s]}]
				}
			}],
			"error": null
		}
	}`, ts, cs, cs, cs, cs, cs)
}

func TestGetHistoricalPrices(t *testing.T) {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC).Unix()
	timestamps := []int64{base, base + 86400, base + 2*86400}
	closes := []float64{100, 110, 99}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/v8/finance/chart/AAPL")
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.Equal(t, "2y", r.URL.Query().Get("range"))
		fmt.Fprint(w, chartPayload(timestamps, closes))
	}))
	defer srv.Close()

	client := NewClient(5*time.Second, zerolog.Nop())
	client.SetBaseURL(srv.URL)

	prices, err := client.GetHistoricalPrices(context.Background(), "AAPL", "2y")
	require.NoError(t, err)
	require.Len(t, prices, 3)

	assert.Equal(t, 100.0, prices[0].Close)
	assert.Equal(t, 99.0, prices[2].Close)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), prices[0].Date)
}

func TestGetHistoricalPrices_SkipsNullBars(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"chart": {
				"result": [{
					"timestamp": [1700000000, 1700086400],
					"indicators": {
						"quote": [{
							"open": [0, 10], "high": [0, 11], "low": [0, 9], "close": [0, 10.5],
							"volume": [0, 42]
						}],
						"adjclose": [{"adjclose": [0, 10.5]}]
					}
				}],
				"error": null
			}
		}`)
	}))
	defer srv.Close()

	client := NewClient(5*time.Second, zerolog.Nop())
	client.SetBaseURL(srv.URL)

	prices, err := client.GetHistoricalPrices(context.Background(), "MSFT", "1y")
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.Equal(t, 10.5, prices[0].Close)
}

func TestGetHistoricalPrices_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart": {"result": [], "error": {"code": "Not Found"}}}`)
	}))
	defer srv.Close()

	client := NewClient(5*time.Second, zerolog.Nop())
	client.SetBaseURL(srv.URL)

	_, err := client.GetHistoricalPrices(context.Background(), "NOPE", "1y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "yahoo finance API error")
}

func TestGetHistoricalPrices_HTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(5*time.Second, zerolog.Nop())
	client.SetBaseURL(srv.URL)

	_, err := client.GetHistoricalPrices(context.Background(), "AAPL", "1y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}
