package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fintrackhq/fintrack/internal/service"
	"github.com/fintrackhq/fintrack/utils"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("can't encode response", slog.String("err", err.Error()))
	}
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	rqID := utils.GetRequestIDFromCtx(r.Context())

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrNoToken), errors.Is(err, service.ErrNoGistID):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrGistGone), errors.Is(err, service.ErrSyncInProgress):
		status = http.StatusConflict
	case errors.Is(err, service.ErrReportUploadUnavailable):
		status = http.StatusNotImplemented
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		respondJSON(w, status, errorResponse{Error: "internal error"})
		return
	}

	respondJSON(w, status, errorResponse{Error: err.Error()})
}
