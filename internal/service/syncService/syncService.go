package syncService

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fintrackhq/fintrack/internal/externalApi"
	"github.com/fintrackhq/fintrack/internal/model"
	"github.com/fintrackhq/fintrack/internal/service"
	"github.com/fintrackhq/fintrack/utils"
)

const (
	backupFilename    = "fintrack-backup.json"
	backupDescription = "fintrack dataset backup"
)

type Tracker interface {
	GetSyncConfig(ctx context.Context) model.SyncConfig
	SetSyncMeta(ctx context.Context, gistID, lastSyncTime string)
	Snapshot(ctx context.Context) model.Dataset
	RestoreDataset(ctx context.Context, payload []byte) error
}

type GistApi interface {
	CreateGist(ctx context.Context, token, description, filename, content string) (string, error)
	UpdateGist(ctx context.Context, token, gistID, filename, content string) error
	GetGist(ctx context.Context, token, gistID string) (map[string]string, error)
}

// SyncService backs the dataset up to, and restores it from, a single remote
// gist document. Operations are single-shot and non-retrying; the mutex
// keeps at most one sync in flight.
type SyncService struct {
	mu      sync.Mutex
	tracker Tracker
	gistApi GistApi
}

func New(tracker Tracker, gistApi GistApi) *SyncService {
	return &SyncService{tracker: tracker, gistApi: gistApi}
}

// Upload serializes the full dataset and creates the remote document on
// first use, or overwrites the known one. A stale gist id surfaces as
// ErrGistGone rather than being silently recreated.
func (s *SyncService) Upload(ctx context.Context) (model.SyncConfig, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "SyncService.Upload"

	if !s.mu.TryLock() {
		return model.SyncConfig{}, service.ErrSyncInProgress
	}
	defer s.mu.Unlock()

	slog.Debug("Upload start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("Upload finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	cfg := s.tracker.GetSyncConfig(ctx)
	if cfg.GithubToken == "" {
		return model.SyncConfig{}, service.ErrNoToken
	}

	dataset := s.tracker.Snapshot(ctx)
	payload, err := json.Marshal(dataset)
	if err != nil {
		slog.Error("can't marshal dataset", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.SyncConfig{}, fmt.Errorf("marshal dataset: %w", err)
	}

	if cfg.GistID == "" {
		gistID, err := s.gistApi.CreateGist(ctx, cfg.GithubToken, backupDescription, backupFilename, string(payload))
		if err != nil {
			slog.Error("got error from gistApi.CreateGist", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			return model.SyncConfig{}, err
		}
		cfg.GistID = gistID
	} else {
		err := s.gistApi.UpdateGist(ctx, cfg.GithubToken, cfg.GistID, backupFilename, string(payload))
		if err != nil {
			if errors.Is(err, externalApi.ErrNotFound) {
				return model.SyncConfig{}, service.ErrGistGone
			}
			slog.Error("got error from gistApi.UpdateGist", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			return model.SyncConfig{}, err
		}
	}

	cfg.LastSyncTime = time.Now().UTC().Format(time.RFC3339)
	s.tracker.SetSyncMeta(ctx, cfg.GistID, cfg.LastSyncTime)

	return cfg, nil
}

// Download fetches the remote document and restores it with
// presence-of-key semantics.
func (s *SyncService) Download(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "SyncService.Download"

	if !s.mu.TryLock() {
		return service.ErrSyncInProgress
	}
	defer s.mu.Unlock()

	slog.Debug("Download start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("Download finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	cfg := s.tracker.GetSyncConfig(ctx)
	if cfg.GithubToken == "" {
		return service.ErrNoToken
	}
	if cfg.GistID == "" {
		return service.ErrNoGistID
	}

	files, err := s.gistApi.GetGist(ctx, cfg.GithubToken, cfg.GistID)
	if err != nil {
		if errors.Is(err, externalApi.ErrNotFound) {
			return service.ErrGistGone
		}
		slog.Error("got error from gistApi.GetGist", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	content, ok := files[backupFilename]
	if !ok {
		// a gist with a single differently-named file is still accepted
		if len(files) != 1 {
			return fmt.Errorf("backup file %s not found in gist", backupFilename)
		}
		for _, c := range files {
			content = c
		}
	}

	if err := s.tracker.RestoreDataset(ctx, []byte(content)); err != nil {
		return err
	}

	s.tracker.SetSyncMeta(ctx, cfg.GistID, time.Now().UTC().Format(time.RFC3339))

	return nil
}
