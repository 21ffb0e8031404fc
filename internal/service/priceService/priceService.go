package priceService

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/fintrackhq/fintrack/internal/model"
	"github.com/fintrackhq/fintrack/utils"
)

type CryptoApi interface {
	GetPrices(ctx context.Context, ids []string) (map[string]float64, error)
}

type StockApi interface {
	GetQuote(ctx context.Context, ticker string) (float64, error)
}

// FallbackApi is the generative quote source used for tickers the primary
// stock source could not price.
type FallbackApi interface {
	GetStockPrices(ctx context.Context, tickers []string) (map[string]float64, error)
}

type Cache interface {
	GetQuote(ctx context.Context, symbol string) (float64, error)
	GetQuotes(ctx context.Context, symbols []string) (map[string]float64, error)
	SetQuotes(ctx context.Context, quotes map[string]float64) error
}

// cryptoIDTable maps common display tickers to the price source's canonical
// asset ids. Unmapped tickers fall back to the lowercased display name.
var cryptoIDTable = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"BNB":   "binancecoin",
	"XRP":   "ripple",
	"ADA":   "cardano",
	"DOGE":  "dogecoin",
	"DOT":   "polkadot",
	"AVAX":  "avalanche-2",
	"LINK":  "chainlink",
	"MATIC": "matic-network",
	"USDT":  "tether",
}

// IsKnownCryptoTicker reports whether a bare ticker appears in the static
// crypto table. Callers use it as a classification heuristic; the fetch path
// never re-classifies.
func IsKnownCryptoTicker(ticker string) bool {
	_, ok := cryptoIDTable[strings.ToUpper(ticker)]
	return ok
}

func canonicalCryptoID(req model.QuoteRequest) string {
	if id, ok := cryptoIDTable[strings.ToUpper(req.Symbol)]; ok {
		return id
	}
	name := req.Name
	if name == "" {
		name = req.Symbol
	}
	return strings.ToLower(name)
}

// MatchSymbol picks the map key for a price returned under symbol: the
// display symbol of the first request whose symbol matches
// case-insensitively, then the first whose name matches, else the raw
// returned symbol so the price is not silently dropped.
func MatchSymbol(reqs []model.QuoteRequest, symbol string) string {
	for _, req := range reqs {
		if strings.EqualFold(req.Symbol, symbol) {
			return req.Symbol
		}
	}
	for _, req := range reqs {
		if req.Name != "" && strings.EqualFold(req.Name, symbol) {
			return req.Symbol
		}
	}
	return symbol
}

type PriceService struct {
	cryptoApi   CryptoApi
	stockApi    StockApi
	fallbackApi FallbackApi // nil disables the generative fallback
	cache       Cache      // nil disables quote caching
}

func New(cryptoApi CryptoApi, stockApi StockApi, fallbackApi FallbackApi, cache Cache) *PriceService {
	return &PriceService{
		cryptoApi:   cryptoApi,
		stockApi:    stockApi,
		fallbackApi: fallbackApi,
		cache:       cache,
	}
}

// FetchPrices resolves a positive USD price per request symbol. It never
// fails: any network or parse error drops that subset and whatever partial
// mapping was built is returned, possibly empty.
func (s *PriceService) FetchPrices(ctx context.Context, reqs []model.QuoteRequest) map[string]float64 {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PriceService.FetchPrices"

	slog.Debug("FetchPrices start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("requests", len(reqs)))
	defer func() {
		slog.Debug("FetchPrices finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	result := make(map[string]float64)

	var cryptoReqs, stockReqs []model.QuoteRequest
	for _, req := range reqs {
		if req.Symbol == "" {
			continue
		}
		switch req.Type {
		case model.AssetTypeCrypto:
			cryptoReqs = append(cryptoReqs, req)
		case model.AssetTypeStock:
			stockReqs = append(stockReqs, req)
		}
	}

	cryptoReqs, stockReqs = s.takeCached(ctx, result, cryptoReqs, stockReqs)

	fetched := make(map[string]float64)
	s.fetchCrypto(ctx, cryptoReqs, fetched)
	s.fetchStocks(ctx, stockReqs, fetched)

	for symbol, price := range fetched {
		result[symbol] = price
	}

	if s.cache != nil && len(fetched) > 0 {
		go func() {
			if err := s.cache.SetQuotes(context.WithoutCancel(ctx), fetched); err != nil {
				slog.Warn("can't store quotes in cache", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			}
		}()
	}

	return result
}

// FetchPrice is the single-symbol convenience entry point. Classification of
// the bare symbol is the caller's job. A cached quote short-circuits the
// batch machinery; any cache error degrades to a straight fetch.
func (s *PriceService) FetchPrice(ctx context.Context, symbol string, assetType model.AssetType) (float64, bool) {
	if s.cache != nil {
		if price, err := s.cache.GetQuote(ctx, symbol); err == nil && price > 0 {
			return price, true
		}
	}

	prices := s.FetchPrices(ctx, []model.QuoteRequest{{Symbol: symbol, Type: assetType}})
	price, ok := prices[symbol]
	return price, ok
}

// takeCached moves already-cached symbols straight into result and returns
// the remaining requests. Cache failures degrade to fetching everything.
func (s *PriceService) takeCached(
	ctx context.Context,
	result map[string]float64,
	cryptoReqs, stockReqs []model.QuoteRequest,
) ([]model.QuoteRequest, []model.QuoteRequest) {
	if s.cache == nil {
		return cryptoReqs, stockReqs
	}

	rqID := utils.GetRequestIDFromCtx(ctx)

	symbols := make([]string, 0, len(cryptoReqs)+len(stockReqs))
	for _, req := range append(append([]model.QuoteRequest{}, cryptoReqs...), stockReqs...) {
		symbols = append(symbols, req.Symbol)
	}

	cached, err := s.cache.GetQuotes(ctx, symbols)
	if err != nil {
		slog.Warn("can't read quotes from cache", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return cryptoReqs, stockReqs
	}

	filter := func(reqs []model.QuoteRequest) []model.QuoteRequest {
		remaining := reqs[:0]
		for _, req := range reqs {
			if price, ok := cached[req.Symbol]; ok && price > 0 {
				result[req.Symbol] = price
				continue
			}
			remaining = append(remaining, req)
		}
		return remaining
	}

	return filter(cryptoReqs), filter(stockReqs)
}

func (s *PriceService) fetchCrypto(ctx context.Context, reqs []model.QuoteRequest, result map[string]float64) {
	if len(reqs) == 0 {
		return
	}

	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PriceService.fetchCrypto"

	ids := make([]string, 0, len(reqs))
	seen := make(map[string]struct{}, len(reqs))
	for _, req := range reqs {
		id := canonicalCryptoID(req)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	prices, err := s.cryptoApi.GetPrices(ctx, ids)
	if err != nil {
		slog.Warn("crypto price fetch failed, skipping subset", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return
	}

	// attribute each returned price by re-deriving every request's id
	for _, req := range reqs {
		if price, ok := prices[canonicalCryptoID(req)]; ok && price > 0 {
			result[req.Symbol] = price
		}
	}
}

func (s *PriceService) fetchStocks(ctx context.Context, reqs []model.QuoteRequest, result map[string]float64) {
	if len(reqs) == 0 {
		return
	}

	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PriceService.fetchStocks"

	type stockQuote struct {
		ticker string
		price  float64
		err    error
	}

	quoteCh := make(chan stockQuote, len(reqs))
	var wg sync.WaitGroup

	// one request per ticker, failures isolated per ticker
	for _, req := range reqs {
		wg.Add(1)
		go func(ticker string) {
			defer wg.Done()
			price, err := s.stockApi.GetQuote(ctx, ticker)
			quoteCh <- stockQuote{ticker: ticker, price: price, err: err}
		}(req.Symbol)
	}

	wg.Wait()
	close(quoteCh)

	var failed []string
	for quote := range quoteCh {
		if quote.err != nil || quote.price <= 0 {
			if quote.err != nil {
				slog.Warn("stock quote failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", quote.ticker), slog.String("err", quote.err.Error()))
			}
			failed = append(failed, quote.ticker)
			continue
		}
		result[MatchSymbol(reqs, quote.ticker)] = quote.price
	}

	if len(failed) == 0 || s.fallbackApi == nil {
		return
	}

	fallbackPrices, err := s.fallbackApi.GetStockPrices(ctx, failed)
	if err != nil {
		slog.Warn("fallback price fetch failed, skipping subset", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return
	}

	for ticker, price := range fallbackPrices {
		if price > 0 {
			result[MatchSymbol(reqs, ticker)] = price
		}
	}
}
