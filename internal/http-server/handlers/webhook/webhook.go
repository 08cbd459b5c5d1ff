package webhookHandler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/riekert7/whapi-bridge/internal/lib/logger/sl"
)

type Ingester interface {
	Ingest(ctx context.Context, raw []byte)
}

// Handle accepts gateway webhook deliveries. Only POST is processed; any
// other method is a no-op. POST always answers 200 with an empty body no
// matter what happened inside — a non-success answer would only trigger
// provider retries for payloads that will never parse better.
func Handle(ingester Ingester, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.webhook.Handle"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		raw, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("failed to read body", sl.Err(err))
			w.WriteHeader(http.StatusOK)
			return
		}

		ingester.Ingest(r.Context(), raw)

		w.WriteHeader(http.StatusOK)
	}
}
