package httpapi

import (
	"net/http"

	customMW "github.com/fintrackhq/fintrack/internal/transport/httpapi/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(ctrl *Controller) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer, customMW.Logger())

	r.Get("/health", ctrl.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/assets", func(r chi.Router) {
			r.Get("/", ctrl.ListAssets)
			r.Post("/", ctrl.CreateAsset)
			r.Get("/summary", ctrl.AssetSummary)
			r.Post("/refresh", ctrl.RefreshPrices)
			r.Put("/{id}", ctrl.UpdateAsset)
			r.Delete("/{id}", ctrl.DeleteAsset)
		})

		r.Route("/trades", func(r chi.Router) {
			r.Get("/", ctrl.ListTrades)
			r.Post("/", ctrl.CreateTrade)
			r.Get("/stats", ctrl.TradeStats)
			r.Put("/{id}", ctrl.UpdateTrade)
			r.Delete("/{id}", ctrl.DeleteTrade)
		})

		r.Route("/airdrops", func(r chi.Router) {
			r.Get("/", ctrl.ListAirdrops)
			r.Post("/", ctrl.CreateAirdrop)
			r.Put("/{id}", ctrl.UpdateAirdrop)
			r.Delete("/{id}", ctrl.DeleteAirdrop)
		})

		r.Route("/pnl", func(r chi.Router) {
			r.Get("/", ctrl.ListPnLEntries)
			r.Post("/", ctrl.CreatePnLEntry)
			r.Get("/monthly", ctrl.MonthlyPnL)
			r.Put("/{id}", ctrl.UpdatePnLEntry)
			r.Delete("/{id}", ctrl.DeletePnLEntry)
		})

		r.Route("/sync", func(r chi.Router) {
			r.Get("/config", ctrl.GetSyncConfig)
			r.Put("/config", ctrl.SetSyncConfig)
			r.Post("/upload", ctrl.SyncUpload)
			r.Post("/download", ctrl.SyncDownload)
		})

		r.Get("/report", ctrl.DownloadReport)
		r.Post("/report/upload", ctrl.UploadReport)
	})

	return r
}
