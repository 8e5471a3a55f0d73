package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rocketscienceinc/fourpiece-tictactoe/pkg/handlers"
)

// NewRouter builds the HTTP API around the game manager.
func NewRouter(logger *slog.Logger, manager gameManager) http.Handler {
	h := &gameHandlers{
		logger:  logger.With("component", "rest"),
		manager: manager,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.logger))

	r.Get("/ping", handlers.Ping)

	r.Route("/games", func(r chi.Router) {
		r.Post("/", h.createGame)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getGame)
			r.Delete("/", h.deleteGame)
			r.Post("/actions", h.act)
			r.Post("/reset", h.reset)
			r.Post("/bot", h.bot)
			r.Post("/command", h.command)
		})
	})

	// single-table routes
	r.Get("/game", h.getGame)
	r.Post("/game", h.act)
	r.Post("/reset", h.reset)
	r.Post("/ai_move", h.bot)
	r.Post("/command", h.command)

	return r
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Debug("request served",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
