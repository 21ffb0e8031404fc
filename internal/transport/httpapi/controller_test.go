package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fintrackhq/fintrack/internal/model"
	"github.com/fintrackhq/fintrack/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTrackerService struct {
	TrackerService

	assets      []model.Asset
	createErr   error
	deleteErr   error
	syncCfg     model.SyncConfig
	reportBytes []byte
}

func (f *fakeTrackerService) ListAssets(_ context.Context) []model.Asset { return f.assets }

func (f *fakeTrackerService) CreateAsset(_ context.Context, asset model.Asset) (model.Asset, error) {
	if f.createErr != nil {
		return model.Asset{}, f.createErr
	}
	asset.ID = "generated-id"
	return asset, nil
}

func (f *fakeTrackerService) DeleteAsset(_ context.Context, _ string) error { return f.deleteErr }

func (f *fakeTrackerService) GetSyncConfig(_ context.Context) model.SyncConfig { return f.syncCfg }

func (f *fakeTrackerService) GenerateReport(_ context.Context) ([]byte, string, error) {
	return f.reportBytes, "report.xlsx", nil
}

type fakeSyncService struct {
	uploadCfg model.SyncConfig
	uploadErr error
}

func (f *fakeSyncService) Upload(_ context.Context) (model.SyncConfig, error) {
	return f.uploadCfg, f.uploadErr
}

func (f *fakeSyncService) Download(_ context.Context) error { return nil }

func serve(t *testing.T, tracker TrackerService, sync SyncService, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	router := NewRouter(NewController(tracker, sync))

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := serve(t, &fakeTrackerService{}, &fakeSyncService{}, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestListAssets(t *testing.T) {
	tracker := &fakeTrackerService{assets: []model.Asset{{ID: "a1", Name: "Apple"}}}

	rec := serve(t, tracker, &fakeSyncService{}, http.MethodGet, "/api/v1/assets/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var assets []model.Asset
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &assets))
	require.Len(t, assets, 1)
	assert.Equal(t, "Apple", assets[0].Name)
}

func TestCreateAsset(t *testing.T) {
	rec := serve(t, &fakeTrackerService{}, &fakeSyncService{},
		http.MethodPost, "/api/v1/assets/", `{"name":"Apple","type":"STOCK"}`)

	require.Equal(t, http.StatusCreated, rec.Code)

	var created model.Asset
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "generated-id", created.ID)
}

func TestCreateAsset_MalformedBody(t *testing.T) {
	rec := serve(t, &fakeTrackerService{}, &fakeSyncService{},
		http.MethodPost, "/api/v1/assets/", `{broken`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAsset_ValidationError(t *testing.T) {
	tracker := &fakeTrackerService{createErr: service.ErrInvalidArgument}
	rec := serve(t, tracker, &fakeSyncService{},
		http.MethodPost, "/api/v1/assets/", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteAsset_NotFound(t *testing.T) {
	tracker := &fakeTrackerService{deleteErr: service.ErrNotFound}
	rec := serve(t, tracker, &fakeSyncService{}, http.MethodDelete, "/api/v1/assets/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSyncUpload_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{service.ErrNoToken, http.StatusUnprocessableEntity},
		{service.ErrGistGone, http.StatusConflict},
		{service.ErrSyncInProgress, http.StatusConflict},
	}

	for _, tc := range cases {
		rec := serve(t, &fakeTrackerService{}, &fakeSyncService{uploadErr: tc.err},
			http.MethodPost, "/api/v1/sync/upload", "")
		assert.Equal(t, tc.status, rec.Code, "error %v", tc.err)
	}
}

func TestGetSyncConfig_MasksToken(t *testing.T) {
	tracker := &fakeTrackerService{syncCfg: model.SyncConfig{GithubToken: "ghp_secret", GistID: "abc"}}

	rec := serve(t, tracker, &fakeSyncService{}, http.MethodGet, "/api/v1/sync/config", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.NotContains(t, rec.Body.String(), "ghp_secret")

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["hasToken"])
	assert.Equal(t, "abc", resp["gistId"])
}

func TestDownloadReport(t *testing.T) {
	tracker := &fakeTrackerService{reportBytes: []byte("xlsx-bytes")}

	rec := serve(t, tracker, &fakeSyncService{}, http.MethodGet, "/api/v1/report", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Contains(t, rec.Header().Get("Content-Disposition"), "report.xlsx")
	assert.Equal(t, "xlsx-bytes", rec.Body.String())
}
