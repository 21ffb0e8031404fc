package httpConverter

import "github.com/fintrackhq/fintrack/internal/model"

// SyncConfigResponse masks the stored token: clients only learn whether one
// is set.
type SyncConfigResponse struct {
	GistID       string `json:"gistId"`
	LastSyncTime string `json:"lastSyncTime,omitempty"`
	HasToken     bool   `json:"hasToken"`
}

func SyncConfigResponseFrom(cfg model.SyncConfig) SyncConfigResponse {
	return SyncConfigResponse{
		GistID:       cfg.GistID,
		LastSyncTime: cfg.LastSyncTime,
		HasToken:     cfg.GithubToken != "",
	}
}

type RefreshPricesResponse struct {
	Updated   int                `json:"updated"`
	Unmatched map[string]float64 `json:"unmatched,omitempty"`
}

type UploadReportResponse struct {
	DownloadLink string `json:"downloadLink"`
}
