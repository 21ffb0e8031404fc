package store

import (
	"context"
	"errors"
)

// Fixed keys, one per top-level collection. Each key is saved and loaded
// independently of the others.
const (
	KeyAssets     = "fintrack_assets"
	KeyTrades     = "fintrack_option_trades"
	KeyAirdrops   = "fintrack_airdrops"
	KeyManualPnL  = "fintrack_manual_pnl"
	KeySyncConfig = "fintrack_sync_config"
)

var ErrNotFound = errors.New("key not found")

// Store persists one JSON document per key. No transaction spans two Save
// calls: a crash between writes can leave keys inconsistent with each other,
// which is accepted for a single-user tracker.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
}
