package geminiApi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fintrackhq/fintrack/config"
	"github.com/fintrackhq/fintrack/utils"
	"google.golang.org/genai"
)

// GeminiApi is the generative fallback quote source: it asks the model for a
// ticker->price JSON object and parses it out of the text response.
type GeminiApi struct {
	client *genai.Client
	model  string
}

func New(ctx context.Context, cfg *config.Config) (*GeminiApi, error) {
	if cfg.API.Gemini.ApiKey == "" {
		return nil, errors.New("gemini api key is not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.API.Gemini.ApiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiApi{client: client, model: cfg.API.Gemini.Model}, nil
}

func (a *GeminiApi) GetStockPrices(ctx context.Context, tickers []string) (map[string]float64, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("start GeminiApi.GetStockPrices request", slog.String("rqID", rqID), slog.Any("tickers", tickers))

	prompt := fmt.Sprintf(
		"What are the current stock prices in USD for the tickers: %s? "+
			"Answer with a single JSON object mapping each ticker to its numeric price, nothing else.",
		strings.Join(tickers, ", "),
	)

	resp, err := a.client.Models.GenerateContent(ctx, a.model, genai.Text(prompt), nil)
	if err != nil {
		slog.Error("error while dialing GeminiApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return nil, err
	}

	prices, err := ParsePriceResponse(resp.Text())
	if err != nil {
		slog.Error("can't parse gemini response", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return nil, err
	}

	slog.Debug("GeminiApi.GetStockPrices request complete", slog.String("rqID", rqID), slog.Int("count", len(prices)))

	return prices, nil
}

// ParsePriceResponse extracts the ticker->price object from the model's text
// output, stripping any surrounding markdown code fences first.
func ParsePriceResponse(text string) (map[string]float64, error) {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		if _, rest, found := strings.Cut(text, "\n"); found {
			text = rest
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	prices := map[string]float64{}
	if err := json.Unmarshal([]byte(text), &prices); err != nil {
		return nil, fmt.Errorf("unmarshal price object: %w", err)
	}

	return prices, nil
}
