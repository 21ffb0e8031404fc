package priceService

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fintrackhq/fintrack/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCryptoApi struct {
	prices     map[string]float64
	err        error
	requestIDs []string
	calls      int
}

func (f *fakeCryptoApi) GetPrices(_ context.Context, ids []string) (map[string]float64, error) {
	f.calls++
	f.requestIDs = ids
	if f.err != nil {
		return nil, f.err
	}
	return f.prices, nil
}

type fakeStockApi struct {
	prices map[string]float64
	errs   map[string]error
}

func (f *fakeStockApi) GetQuote(_ context.Context, ticker string) (float64, error) {
	if err, ok := f.errs[ticker]; ok {
		return 0, err
	}
	price, ok := f.prices[ticker]
	if !ok {
		return 0, errors.New("no quote")
	}
	return price, nil
}

type fakeFallbackApi struct {
	prices  map[string]float64
	err     error
	tickers []string
}

func (f *fakeFallbackApi) GetStockPrices(_ context.Context, tickers []string) (map[string]float64, error) {
	f.tickers = tickers
	if f.err != nil {
		return nil, f.err
	}
	return f.prices, nil
}

type fakeCache struct {
	quote     float64
	quoteErr  error
	quotes    map[string]float64
	quotesErr error
	setCh     chan map[string]float64
}

func newFakeCache() *fakeCache {
	return &fakeCache{setCh: make(chan map[string]float64, 1)}
}

func (f *fakeCache) GetQuote(_ context.Context, _ string) (float64, error) {
	return f.quote, f.quoteErr
}

func (f *fakeCache) GetQuotes(_ context.Context, _ []string) (map[string]float64, error) {
	if f.quotesErr != nil {
		return nil, f.quotesErr
	}
	return f.quotes, nil
}

func (f *fakeCache) SetQuotes(_ context.Context, quotes map[string]float64) error {
	f.setCh <- quotes
	return nil
}

func (f *fakeCache) written(t *testing.T) map[string]float64 {
	t.Helper()
	select {
	case quotes := <-f.setCh:
		return quotes
	case <-time.After(time.Second):
		t.Fatal("no cache write happened")
		return nil
	}
}

func TestFetchPrices_CryptoMappedTicker(t *testing.T) {
	cryptoApi := &fakeCryptoApi{prices: map[string]float64{"bitcoin": 65000}}
	srv := New(cryptoApi, &fakeStockApi{}, nil, nil)

	prices := srv.FetchPrices(context.Background(), []model.QuoteRequest{
		{Symbol: "BTC", Name: "Bitcoin", Type: model.AssetTypeCrypto},
	})

	assert.Equal(t, map[string]float64{"BTC": 65000}, prices)
	assert.Equal(t, []string{"bitcoin"}, cryptoApi.requestIDs)
}

func TestFetchPrices_CryptoUnmappedTickerUsesLowercasedName(t *testing.T) {
	cryptoApi := &fakeCryptoApi{prices: map[string]float64{"foocoin": 0.25}}
	srv := New(cryptoApi, &fakeStockApi{}, nil, nil)

	prices := srv.FetchPrices(context.Background(), []model.QuoteRequest{
		{Symbol: "FOO", Name: "FooCoin", Type: model.AssetTypeCrypto},
	})

	assert.Equal(t, []string{"foocoin"}, cryptoApi.requestIDs)
	assert.Equal(t, map[string]float64{"FOO": 0.25}, prices)
}

func TestFetchPrices_CryptoSourceFailureYieldsEmptyMapping(t *testing.T) {
	cryptoApi := &fakeCryptoApi{err: errors.New("boom")}
	srv := New(cryptoApi, &fakeStockApi{}, nil, nil)

	prices := srv.FetchPrices(context.Background(), []model.QuoteRequest{
		{Symbol: "BTC", Type: model.AssetTypeCrypto},
	})

	assert.Empty(t, prices)
}

func TestFetchPrices_StockPartialFailure(t *testing.T) {
	stockApi := &fakeStockApi{
		prices: map[string]float64{"AAPL": 190.5},
		errs:   map[string]error{"ZZZZ": errors.New("no such ticker")},
	}
	srv := New(&fakeCryptoApi{}, stockApi, nil, nil)

	prices := srv.FetchPrices(context.Background(), []model.QuoteRequest{
		{Symbol: "AAPL", Type: model.AssetTypeStock},
		{Symbol: "ZZZZ", Type: model.AssetTypeStock},
	})

	assert.Equal(t, map[string]float64{"AAPL": 190.5}, prices)
}

func TestFetchPrices_FallbackCoversFailedTickers(t *testing.T) {
	stockApi := &fakeStockApi{
		prices: map[string]float64{"AAPL": 190.5},
		errs:   map[string]error{"ZZZZ": errors.New("no such ticker")},
	}
	fallback := &fakeFallbackApi{prices: map[string]float64{"ZZZZ": 12.5}}
	srv := New(&fakeCryptoApi{}, stockApi, fallback, nil)

	prices := srv.FetchPrices(context.Background(), []model.QuoteRequest{
		{Symbol: "AAPL", Type: model.AssetTypeStock},
		{Symbol: "ZZZZ", Type: model.AssetTypeStock},
	})

	require.Equal(t, []string{"ZZZZ"}, fallback.tickers)
	assert.Equal(t, map[string]float64{"AAPL": 190.5, "ZZZZ": 12.5}, prices)
}

func TestFetchPrices_Idempotent(t *testing.T) {
	cryptoApi := &fakeCryptoApi{prices: map[string]float64{"bitcoin": 65000}}
	stockApi := &fakeStockApi{prices: map[string]float64{"AAPL": 190.5}}
	srv := New(cryptoApi, stockApi, nil, nil)

	reqs := []model.QuoteRequest{
		{Symbol: "BTC", Type: model.AssetTypeCrypto},
		{Symbol: "AAPL", Type: model.AssetTypeStock},
	}

	first := srv.FetchPrices(context.Background(), reqs)
	second := srv.FetchPrices(context.Background(), reqs)

	assert.Equal(t, first, second)
}

func TestFetchPrices_SkipsCashAndEmptySymbols(t *testing.T) {
	cryptoApi := &fakeCryptoApi{prices: map[string]float64{}}
	srv := New(cryptoApi, &fakeStockApi{}, nil, nil)

	prices := srv.FetchPrices(context.Background(), []model.QuoteRequest{
		{Symbol: "EUR", Type: model.AssetTypeCash},
		{Symbol: "", Type: model.AssetTypeCrypto},
	})

	assert.Empty(t, prices)
	assert.Zero(t, cryptoApi.calls)
}

func TestFetchPrice_SingleSymbol(t *testing.T) {
	cryptoApi := &fakeCryptoApi{prices: map[string]float64{"ethereum": 3200}}
	srv := New(cryptoApi, &fakeStockApi{}, nil, nil)

	price, ok := srv.FetchPrice(context.Background(), "ETH", model.AssetTypeCrypto)
	require.True(t, ok)
	assert.Equal(t, 3200.0, price)
}

func TestFetchPrices_CachedQuotesSkipFetch(t *testing.T) {
	cryptoApi := &fakeCryptoApi{prices: map[string]float64{"bitcoin": 65000}}
	quoteCache := newFakeCache()
	quoteCache.quotes = map[string]float64{"BTC": 64000}
	srv := New(cryptoApi, &fakeStockApi{}, nil, quoteCache)

	prices := srv.FetchPrices(context.Background(), []model.QuoteRequest{
		{Symbol: "BTC", Type: model.AssetTypeCrypto},
	})

	assert.Equal(t, map[string]float64{"BTC": 64000}, prices)
	assert.Zero(t, cryptoApi.calls)
}

func TestFetchPrices_CacheReadErrorDegradesToFetch(t *testing.T) {
	cryptoApi := &fakeCryptoApi{prices: map[string]float64{"bitcoin": 65000}}
	quoteCache := newFakeCache()
	quoteCache.quotesErr = errors.New("redis down")
	srv := New(cryptoApi, &fakeStockApi{}, nil, quoteCache)

	prices := srv.FetchPrices(context.Background(), []model.QuoteRequest{
		{Symbol: "BTC", Type: model.AssetTypeCrypto},
	})

	assert.Equal(t, map[string]float64{"BTC": 65000}, prices)
	assert.Equal(t, 1, cryptoApi.calls)
}

func TestFetchPrices_WritesFetchedQuotesThrough(t *testing.T) {
	cryptoApi := &fakeCryptoApi{prices: map[string]float64{"bitcoin": 65000}}
	quoteCache := newFakeCache()
	srv := New(cryptoApi, &fakeStockApi{prices: map[string]float64{"AAPL": 190.5}}, nil, quoteCache)

	srv.FetchPrices(context.Background(), []model.QuoteRequest{
		{Symbol: "BTC", Type: model.AssetTypeCrypto},
		{Symbol: "AAPL", Type: model.AssetTypeStock},
	})

	assert.Equal(t, map[string]float64{"BTC": 65000, "AAPL": 190.5}, quoteCache.written(t))
}

func TestFetchPrice_CachedQuoteShortCircuits(t *testing.T) {
	cryptoApi := &fakeCryptoApi{}
	quoteCache := newFakeCache()
	quoteCache.quote = 64000
	srv := New(cryptoApi, &fakeStockApi{}, nil, quoteCache)

	price, ok := srv.FetchPrice(context.Background(), "BTC", model.AssetTypeCrypto)
	require.True(t, ok)
	assert.Equal(t, 64000.0, price)
	assert.Zero(t, cryptoApi.calls)
}

func TestFetchPrice_CacheMissFallsThroughToFetch(t *testing.T) {
	cryptoApi := &fakeCryptoApi{prices: map[string]float64{"bitcoin": 65000}}
	quoteCache := newFakeCache()
	quoteCache.quoteErr = errors.New("not found")
	srv := New(cryptoApi, &fakeStockApi{}, nil, quoteCache)

	price, ok := srv.FetchPrice(context.Background(), "BTC", model.AssetTypeCrypto)
	require.True(t, ok)
	assert.Equal(t, 65000.0, price)
	assert.Equal(t, 1, cryptoApi.calls)
}

func TestMatchSymbol_Precedence(t *testing.T) {
	reqs := []model.QuoteRequest{
		{Symbol: "AAPL", Name: "Apple"},
		{Symbol: "MSTR", Name: "MicroStrategy"},
	}

	// ticker match wins, case-insensitively
	assert.Equal(t, "AAPL", MatchSymbol(reqs, "aapl"))

	// then display name
	assert.Equal(t, "MSTR", MatchSymbol(reqs, "microstrategy"))

	// unknown symbols keep the raw key so the price is not dropped
	assert.Equal(t, "TSLA", MatchSymbol(reqs, "TSLA"))
}

func TestIsKnownCryptoTicker(t *testing.T) {
	assert.True(t, IsKnownCryptoTicker("btc"))
	assert.True(t, IsKnownCryptoTicker("ETH"))
	assert.False(t, IsKnownCryptoTicker("AAPL"))
}
