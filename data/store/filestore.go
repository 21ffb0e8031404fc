package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fintrackhq/fintrack/utils"
)

// FileStore keeps one <key>.json file per key under a data directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStore) Load(ctx context.Context, key string) ([]byte, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		slog.Error("FileStore.Load failed", slog.String("rqID", rqID), slog.String("key", key), slog.String("err", err.Error()))
		return nil, err
	}

	return data, nil
}

func (s *FileStore) Save(ctx context.Context, key string, value []byte) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	// write to a temp file first so a crash mid-write can't truncate the
	// previous value
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		slog.Error("FileStore.Save write failed", slog.String("rqID", rqID), slog.String("key", key), slog.String("err", err.Error()))
		return err
	}

	if err := os.Rename(tmp, s.path(key)); err != nil {
		slog.Error("FileStore.Save rename failed", slog.String("rqID", rqID), slog.String("key", key), slog.String("err", err.Error()))
		return err
	}

	return nil
}
