package yahooApi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fintrackhq/fintrack/config"
	"github.com/fintrackhq/fintrack/internal/externalApi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartBody = `{"chart":{"result":[{"meta":{"regularMarketPrice":190.5}}]}}`

func testConfig(baseURL, proxyURL string) *config.Config {
	cfg := &config.Config{}
	cfg.API.Timeout = 5 * time.Second
	cfg.API.Yahoo.Url = baseURL
	cfg.API.Yahoo.ProxyUrl = proxyURL
	return cfg
}

func TestGetQuote_Direct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	api := New(testConfig(srv.URL, ""))

	price, err := api.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 190.5, price)
}

func TestGetQuote_ThroughProxy(t *testing.T) {
	// the proxy wraps the raw chart body as a JSON string, forcing the
	// double parse
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target := r.URL.Query().Get("url")
		assert.Contains(t, target, "/v8/finance/chart/AAPL")

		envelope, err := json.Marshal(map[string]string{"contents": chartBody})
		require.NoError(t, err)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(envelope)
	}))
	defer srv.Close()

	api := New(testConfig("https://unreachable.invalid", srv.URL))

	price, err := api.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 190.5, price)
}

func TestGetQuote_EmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"chart":{"result":[]}}`))
	}))
	defer srv.Close()

	api := New(testConfig(srv.URL, ""))

	_, err := api.GetQuote(context.Background(), "ZZZZ")
	assert.ErrorIs(t, err, externalApi.ErrNotFound)
}

func TestGetQuote_NonPositivePrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"regularMarketPrice":0}}]}}`))
	}))
	defer srv.Close()

	api := New(testConfig(srv.URL, ""))

	_, err := api.GetQuote(context.Background(), "HALTED")
	assert.ErrorIs(t, err, externalApi.ErrNotFound)
}

func TestGetQuote_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	api := New(testConfig(srv.URL, ""))

	_, err := api.GetQuote(context.Background(), "AAPL")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, externalApi.ErrNotFound)
}
