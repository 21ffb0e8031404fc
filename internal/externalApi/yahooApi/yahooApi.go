package yahooApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/fintrackhq/fintrack/config"
	"github.com/fintrackhq/fintrack/internal/externalApi"
	"github.com/fintrackhq/fintrack/utils"
	"github.com/go-resty/resty/v2"
)

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
		} `json:"result"`
	} `json:"chart"`
}

// proxyEnvelope is the CORS-relaxing proxy wrapper: the true chart response
// arrives as a JSON string in Contents and needs a second parse.
type proxyEnvelope struct {
	Contents string `json:"contents"`
}

type YahooApi struct {
	client   *resty.Client
	baseURL  string
	proxyURL string
}

func New(cfg *config.Config) *YahooApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetHeader("User-Agent", "fintrack/1.0")
	return &YahooApi{
		client:   client,
		baseURL:  cfg.API.Yahoo.Url,
		proxyURL: cfg.API.Yahoo.ProxyUrl,
	}
}

// GetQuote fetches the regular market price for one ticker.
func (a *YahooApi) GetQuote(ctx context.Context, ticker string) (float64, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("start YahooApi.GetQuote request", slog.String("rqID", rqID), slog.String("ticker", ticker))

	chartURL := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d", a.baseURL, url.PathEscape(ticker))

	var body []byte
	if a.proxyURL != "" {
		resp, err := a.client.R().
			SetQueryParam("url", chartURL).
			Get(a.proxyURL)
		if err != nil {
			slog.Error("error while dialing yahoo proxy", slog.String("err", err.Error()), slog.String("rqID", rqID), slog.String("ticker", ticker))
			return 0, err
		}
		if resp.IsError() {
			return 0, fmt.Errorf("yahoo proxy status %d", resp.StatusCode())
		}

		envelope := proxyEnvelope{}
		if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
			slog.Error("can't unmarshall proxy envelope", slog.String("err", err.Error()), slog.String("rqID", rqID), slog.String("ticker", ticker))
			return 0, err
		}
		body = []byte(envelope.Contents)
	} else {
		resp, err := a.client.R().
			SetHeader("Accept", "application/json").
			Get(chartURL)
		if err != nil {
			slog.Error("error while dialing YahooApi", slog.String("err", err.Error()), slog.String("rqID", rqID), slog.String("ticker", ticker))
			return 0, err
		}
		if resp.IsError() {
			return 0, fmt.Errorf("yahoo status %d", resp.StatusCode())
		}
		body = resp.Body()
	}

	chart := chartResponse{}
	if err := json.Unmarshal(body, &chart); err != nil {
		slog.Error("can't unmarshall chart response", slog.String("err", err.Error()), slog.String("rqID", rqID), slog.String("ticker", ticker))
		return 0, err
	}

	if len(chart.Chart.Result) == 0 {
		return 0, externalApi.ErrNotFound
	}

	price := chart.Chart.Result[0].Meta.RegularMarketPrice
	if price <= 0 {
		return 0, externalApi.ErrNotFound
	}

	slog.Debug("YahooApi.GetQuote request complete", slog.String("rqID", rqID), slog.String("ticker", ticker))

	return price, nil
}
