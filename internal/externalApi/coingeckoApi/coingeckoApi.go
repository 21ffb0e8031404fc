package coingeckoApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fintrackhq/fintrack/config"
	"github.com/fintrackhq/fintrack/utils"
	"github.com/go-resty/resty/v2"
)

type CoingeckoApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *CoingeckoApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.Coingecko.Url)
	return &CoingeckoApi{client: client}
}

// GetPrices issues one batched request for all canonical ids at once and
// returns USD prices keyed by canonical id.
func (a *CoingeckoApi) GetPrices(ctx context.Context, ids []string) (map[string]float64, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("start CoingeckoApi.GetPrices request", slog.String("rqID", rqID), slog.Any("ids", ids))

	resp, err := a.client.R().
		SetHeader("Accept", "application/json").
		SetQueryParams(map[string]string{
			"ids":           strings.Join(ids, ","),
			"vs_currencies": "usd",
		}).
		Get("/simple/price")

	if err != nil {
		slog.Error("error while dialing CoingeckoApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return nil, err
	}

	if resp.IsError() {
		slog.Error("CoingeckoApi returned error status", slog.Int("status", resp.StatusCode()), slog.String("rqID", rqID))
		return nil, fmt.Errorf("coingecko status %d", resp.StatusCode())
	}

	raw := map[string]struct {
		USD float64 `json:"usd"`
	}{}
	err = json.Unmarshal(resp.Body(), &raw)
	if err != nil {
		slog.Error("can't unmarshall CoingeckoApi response", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return nil, err
	}

	prices := make(map[string]float64, len(raw))
	for id, quote := range raw {
		prices[id] = quote.USD
	}

	slog.Debug("CoingeckoApi.GetPrices request complete", slog.String("rqID", rqID), slog.Int("count", len(prices)))

	return prices, nil
}
