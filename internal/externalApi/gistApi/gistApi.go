package gistApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/fintrackhq/fintrack/config"
	"github.com/fintrackhq/fintrack/internal/externalApi"
	"github.com/fintrackhq/fintrack/utils"
	"github.com/go-resty/resty/v2"
)

type gistFile struct {
	Content string `json:"content"`
}

type gistRequest struct {
	Description string              `json:"description,omitempty"`
	Public      bool                `json:"public"`
	Files       map[string]gistFile `json:"files"`
}

type gistResponse struct {
	ID    string              `json:"id"`
	Files map[string]gistFile `json:"files"`
}

// GistApi is the remote backup document store: one private gist holding the
// serialized dataset as a named file.
type GistApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *GistApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.Gist.Url).
		SetHeader("Accept", "application/vnd.github+json")
	return &GistApi{client: client}
}

// CreateGist creates a new private gist and returns its id.
func (a *GistApi) CreateGist(ctx context.Context, token, description, filename, content string) (string, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("start GistApi.CreateGist request", slog.String("rqID", rqID))

	body := gistRequest{
		Description: description,
		Public:      false,
		Files:       map[string]gistFile{filename: {Content: content}},
	}

	resp, err := a.client.R().
		SetAuthToken(token).
		SetBody(body).
		Post("/gists")

	if err != nil {
		slog.Error("error while dialing GistApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return "", err
	}

	if resp.IsError() {
		slog.Error("GistApi.CreateGist returned error status", slog.Int("status", resp.StatusCode()), slog.String("rqID", rqID))
		return "", fmt.Errorf("gist create status %d", resp.StatusCode())
	}

	created := gistResponse{}
	if err := json.Unmarshal(resp.Body(), &created); err != nil {
		slog.Error("can't unmarshall gist response", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return "", err
	}

	if created.ID == "" {
		return "", fmt.Errorf("gist create response has no id")
	}

	slog.Debug("GistApi.CreateGist request complete", slog.String("rqID", rqID), slog.String("gistID", created.ID))

	return created.ID, nil
}

// UpdateGist overwrites the named file in an existing gist. A 404 is
// reported as externalApi.ErrNotFound so the caller can tell the user the
// stored id is stale instead of silently creating a new document.
func (a *GistApi) UpdateGist(ctx context.Context, token, gistID, filename, content string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("start GistApi.UpdateGist request", slog.String("rqID", rqID), slog.String("gistID", gistID))

	body := gistRequest{
		Files: map[string]gistFile{filename: {Content: content}},
	}

	resp, err := a.client.R().
		SetAuthToken(token).
		SetBody(body).
		Patch("/gists/" + gistID)

	if err != nil {
		slog.Error("error while dialing GistApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return err
	}

	if resp.StatusCode() == http.StatusNotFound {
		return externalApi.ErrNotFound
	}

	if resp.IsError() {
		slog.Error("GistApi.UpdateGist returned error status", slog.Int("status", resp.StatusCode()), slog.String("rqID", rqID))
		return fmt.Errorf("gist update status %d", resp.StatusCode())
	}

	slog.Debug("GistApi.UpdateGist request complete", slog.String("rqID", rqID))

	return nil
}

// GetGist returns the gist's files as a filename->content map.
func (a *GistApi) GetGist(ctx context.Context, token, gistID string) (map[string]string, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("start GistApi.GetGist request", slog.String("rqID", rqID), slog.String("gistID", gistID))

	req := a.client.R()
	if token != "" {
		req.SetAuthToken(token)
	}

	resp, err := req.Get("/gists/" + gistID)
	if err != nil {
		slog.Error("error while dialing GistApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return nil, err
	}

	if resp.StatusCode() == http.StatusNotFound {
		return nil, externalApi.ErrNotFound
	}

	if resp.IsError() {
		slog.Error("GistApi.GetGist returned error status", slog.Int("status", resp.StatusCode()), slog.String("rqID", rqID))
		return nil, fmt.Errorf("gist get status %d", resp.StatusCode())
	}

	fetched := gistResponse{}
	if err := json.Unmarshal(resp.Body(), &fetched); err != nil {
		slog.Error("can't unmarshall gist response", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return nil, err
	}

	files := make(map[string]string, len(fetched.Files))
	for name, f := range fetched.Files {
		files[name] = f.Content
	}

	slog.Debug("GistApi.GetGist request complete", slog.String("rqID", rqID))

	return files, nil
}
