package cache

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/fintrackhq/fintrack/config"
	"github.com/fintrackhq/fintrack/utils"
	"github.com/redis/go-redis/v9"
)

const quoteKeyPrefix = "quote:"

var ErrNotFound = errors.New("not found in cache")

// RedisCache holds recently fetched quotes so repeated refreshes within the
// TTL don't hit the external price sources again.
type RedisCache struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisCache(redisClient *redis.Client, cfg *config.Config) *RedisCache {
	return &RedisCache{redis: redisClient, cfg: cfg}
}

func quoteKey(symbol string) string {
	return quoteKeyPrefix + strings.ToUpper(symbol)
}

func (r *RedisCache) SetQuotes(ctx context.Context, quotes map[string]float64) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("SetQuotes start", slog.String("rqID", rqID), slog.Int("count", len(quotes)))

	pipe := r.redis.Pipeline()
	for symbol, price := range quotes {
		pipe.Set(ctx, quoteKey(symbol), strconv.FormatFloat(price, 'f', -1, 64), r.cfg.Cache.QuotesExpiration)
	}

	_, err := pipe.Exec(ctx)
	if err != nil {
		slog.Error("failed on pipe.Exec", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("SetQuotes completed", slog.String("rqID", rqID))

	return nil
}

func (r *RedisCache) GetQuote(ctx context.Context, symbol string) (float64, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	res, err := r.redis.Get(ctx, quoteKey(symbol)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrNotFound
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("symbol", symbol))
		return 0, err
	}

	price, err := strconv.ParseFloat(res, 64)
	if err != nil {
		slog.Error("can't parse cached quote", slog.String("rqID", rqID), slog.String("symbol", symbol), slog.String("value", res))
		return 0, errors.New("can't parse cached quote")
	}

	return price, nil
}

// GetQuotes returns whatever subset of symbols is cached. Symbols without a
// cached price are simply absent from the result.
func (r *RedisCache) GetQuotes(ctx context.Context, symbols []string) (map[string]float64, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	if len(symbols) == 0 {
		return map[string]float64{}, nil
	}

	keys := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		keys = append(keys, quoteKey(symbol))
	}

	values, err := r.redis.MGet(ctx, keys...).Result()
	if err != nil {
		slog.Error("failed on redis.MGet", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return nil, err
	}

	quotes := make(map[string]float64, len(symbols))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			slog.Error("can't parse cached quote", slog.String("rqID", rqID), slog.String("symbol", symbols[i]), slog.String("value", raw))
			continue
		}
		quotes[symbols[i]] = price
	}

	return quotes, nil
}
