package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"editzen-backend/internal/handlers"
	"editzen-backend/internal/middleware"
)

func New(
	aiHandler *handlers.AIHandler,
	chatStreamHandler *handlers.ChatStreamHandler,
	logger *zap.Logger,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(frontendURL))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/ai", func(r chi.Router) {
		r.Use(middleware.Metrics)

		r.Post("/chat", aiHandler.Chat)
		r.Get("/chat/stream", chatStreamHandler.Stream)
		r.Post("/analyze", aiHandler.Analyze)
		r.Post("/suggest", aiHandler.Suggest)
	})

	return r
}
