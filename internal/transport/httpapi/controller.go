package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fintrackhq/fintrack/internal/converter/httpConverter"
	"github.com/fintrackhq/fintrack/internal/model"
	"github.com/fintrackhq/fintrack/internal/service"
	"github.com/go-chi/chi/v5"
)

type TrackerService interface {
	ListAssets(ctx context.Context) []model.Asset
	CreateAsset(ctx context.Context, asset model.Asset) (model.Asset, error)
	UpdateAsset(ctx context.Context, asset model.Asset) (model.Asset, error)
	DeleteAsset(ctx context.Context, id string) error
	AssetSummary(ctx context.Context) model.AssetSummary
	RefreshPrices(ctx context.Context) (int, map[string]float64, error)

	TradeInsights(ctx context.Context) []model.TradeInsight
	CreateTrade(ctx context.Context, trade model.OptionTrade) (model.OptionTrade, error)
	UpdateTrade(ctx context.Context, trade model.OptionTrade) (model.OptionTrade, error)
	DeleteTrade(ctx context.Context, id string) error
	TradeStats(ctx context.Context) model.TradeStats

	ListAirdrops(ctx context.Context) []model.AirdropProject
	CreateAirdrop(ctx context.Context, project model.AirdropProject) (model.AirdropProject, error)
	UpdateAirdrop(ctx context.Context, project model.AirdropProject) (model.AirdropProject, error)
	DeleteAirdrop(ctx context.Context, id string) error

	ListPnLEntries(ctx context.Context) []model.PnLEntry
	CreatePnLEntry(ctx context.Context, entry model.PnLEntry) (model.PnLEntry, error)
	UpdatePnLEntry(ctx context.Context, entry model.PnLEntry) (model.PnLEntry, error)
	DeletePnLEntry(ctx context.Context, id string) error
	MonthlyPnL(ctx context.Context) []model.MonthlyPnL

	GetSyncConfig(ctx context.Context) model.SyncConfig
	SetSyncConfig(ctx context.Context, cfg model.SyncConfig) model.SyncConfig

	GenerateReport(ctx context.Context) ([]byte, string, error)
	UploadReport(ctx context.Context) (string, error)
}

type SyncService interface {
	Upload(ctx context.Context) (model.SyncConfig, error)
	Download(ctx context.Context) error
}

type Controller struct {
	trackerService TrackerService
	syncService    SyncService
}

func NewController(trackerService TrackerService, syncService SyncService) *Controller {
	return &Controller{
		trackerService: trackerService,
		syncService:    syncService,
	}
}

func (ctrl *Controller) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeBody[T any](r *http.Request) (T, error) {
	var value T
	if err := json.NewDecoder(r.Body).Decode(&value); err != nil {
		return value, fmt.Errorf("%w: malformed json body", service.ErrInvalidArgument)
	}
	return value, nil
}

// ---- assets ----

func (ctrl *Controller) ListAssets(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, ctrl.trackerService.ListAssets(r.Context()))
}

func (ctrl *Controller) CreateAsset(w http.ResponseWriter, r *http.Request) {
	asset, err := decodeBody[model.Asset](r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	created, err := ctrl.trackerService.CreateAsset(r.Context(), asset)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

func (ctrl *Controller) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	asset, err := decodeBody[model.Asset](r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	asset.ID = chi.URLParam(r, "id")

	updated, err := ctrl.trackerService.UpdateAsset(r.Context(), asset)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

func (ctrl *Controller) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	if err := ctrl.trackerService.DeleteAsset(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (ctrl *Controller) AssetSummary(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, ctrl.trackerService.AssetSummary(r.Context()))
}

func (ctrl *Controller) RefreshPrices(w http.ResponseWriter, r *http.Request) {
	updated, unmatched, err := ctrl.trackerService.RefreshPrices(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, httpConverter.RefreshPricesResponse{
		Updated:   updated,
		Unmatched: unmatched,
	})
}

// ---- trades ----

func (ctrl *Controller) ListTrades(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, ctrl.trackerService.TradeInsights(r.Context()))
}

func (ctrl *Controller) CreateTrade(w http.ResponseWriter, r *http.Request) {
	trade, err := decodeBody[model.OptionTrade](r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	created, err := ctrl.trackerService.CreateTrade(r.Context(), trade)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

func (ctrl *Controller) UpdateTrade(w http.ResponseWriter, r *http.Request) {
	trade, err := decodeBody[model.OptionTrade](r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	trade.ID = chi.URLParam(r, "id")

	updated, err := ctrl.trackerService.UpdateTrade(r.Context(), trade)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

func (ctrl *Controller) DeleteTrade(w http.ResponseWriter, r *http.Request) {
	if err := ctrl.trackerService.DeleteTrade(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (ctrl *Controller) TradeStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, ctrl.trackerService.TradeStats(r.Context()))
}

// ---- airdrops ----

func (ctrl *Controller) ListAirdrops(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, ctrl.trackerService.ListAirdrops(r.Context()))
}

func (ctrl *Controller) CreateAirdrop(w http.ResponseWriter, r *http.Request) {
	project, err := decodeBody[model.AirdropProject](r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	created, err := ctrl.trackerService.CreateAirdrop(r.Context(), project)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

func (ctrl *Controller) UpdateAirdrop(w http.ResponseWriter, r *http.Request) {
	project, err := decodeBody[model.AirdropProject](r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	project.ID = chi.URLParam(r, "id")

	updated, err := ctrl.trackerService.UpdateAirdrop(r.Context(), project)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

func (ctrl *Controller) DeleteAirdrop(w http.ResponseWriter, r *http.Request) {
	if err := ctrl.trackerService.DeleteAirdrop(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// ---- manual P&L ----

func (ctrl *Controller) ListPnLEntries(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, ctrl.trackerService.ListPnLEntries(r.Context()))
}

func (ctrl *Controller) CreatePnLEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := decodeBody[model.PnLEntry](r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	created, err := ctrl.trackerService.CreatePnLEntry(r.Context(), entry)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

func (ctrl *Controller) UpdatePnLEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := decodeBody[model.PnLEntry](r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	entry.ID = chi.URLParam(r, "id")

	updated, err := ctrl.trackerService.UpdatePnLEntry(r.Context(), entry)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

func (ctrl *Controller) DeletePnLEntry(w http.ResponseWriter, r *http.Request) {
	if err := ctrl.trackerService.DeletePnLEntry(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (ctrl *Controller) MonthlyPnL(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, ctrl.trackerService.MonthlyPnL(r.Context()))
}

// ---- sync ----

func (ctrl *Controller) GetSyncConfig(w http.ResponseWriter, r *http.Request) {
	cfg := ctrl.trackerService.GetSyncConfig(r.Context())
	respondJSON(w, http.StatusOK, httpConverter.SyncConfigResponseFrom(cfg))
}

func (ctrl *Controller) SetSyncConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := decodeBody[model.SyncConfig](r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	saved := ctrl.trackerService.SetSyncConfig(r.Context(), cfg)
	respondJSON(w, http.StatusOK, httpConverter.SyncConfigResponseFrom(saved))
}

func (ctrl *Controller) SyncUpload(w http.ResponseWriter, r *http.Request) {
	cfg, err := ctrl.syncService.Upload(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, httpConverter.SyncConfigResponseFrom(cfg))
}

func (ctrl *Controller) SyncDownload(w http.ResponseWriter, r *http.Request) {
	if err := ctrl.syncService.Download(r.Context()); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "restored"})
}

// ---- reports ----

func (ctrl *Controller) DownloadReport(w http.ResponseWriter, r *http.Request) {
	fileBytes, filename, err := ctrl.trackerService.GenerateReport(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(fileBytes)
}

func (ctrl *Controller) UploadReport(w http.ResponseWriter, r *http.Request) {
	link, err := ctrl.trackerService.UploadReport(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, httpConverter.UploadReportResponse{DownloadLink: link})
}
