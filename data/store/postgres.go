package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/fintrackhq/fintrack/utils"
	"github.com/jmoiron/sqlx"
)

// PostgresStore keeps every key in a single kv table, one jsonb value per row.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Load(ctx context.Context, key string) (value []byte, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `SELECT value FROM kv WHERE key = $1`

	err = s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		slog.Error("PostgresStore.Load failed", slog.String("rqID", rqID), slog.String("key", key), slog.String("err", err.Error()))
		return nil, err
	}

	return value, nil
}

func (s *PostgresStore) Save(ctx context.Context, key string, value []byte) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `INSERT INTO kv(key, value) VALUES($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`

	_, err := s.db.ExecContext(ctx, query, key, value)
	if err != nil {
		slog.Error("PostgresStore.Save failed", slog.String("rqID", rqID), slog.String("key", key), slog.String("err", err.Error()))
		return err
	}

	return nil
}
