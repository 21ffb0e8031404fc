package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/fintrackhq/fintrack/utils"
	"github.com/google/uuid"
)

// Logger tags every request with a generated request id and logs its
// duration. The id travels down through context to the service and data
// layers.
func Logger() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := time.Now()

			rqID := uuid.NewString()
			ctx := utils.CtxWithRqID(r.Context(), rqID)
			w.Header().Set("X-Request-Id", rqID)

			slog.Info(
				"start request",
				slog.String("rqID", rqID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)

			defer func() {
				slog.Info(
					"request finished",
					slog.String("rqID", rqID),
					slog.String("request duration", fmt.Sprintf("%.2fs", time.Since(now).Seconds())),
				)
			}()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
