package routes

import (
	"net/http"

	"github.com/AndrijanaDejkovic/SnookerProject/handlers"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	allowedOrigin string,
	liveHandler *handlers.LiveMatchHandler,
	leaderboardHandler *handlers.LeaderboardHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{allowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	router.Route("/live/matches", func(r chi.Router) {
		r.Post("/", liveHandler.StartMatch)
		r.Get("/", liveHandler.ListActive)
		r.Get("/{matchID}", liveHandler.GetMatch)
		r.Delete("/{matchID}", liveHandler.StopMatch)
	})

	router.Route("/leaderboard", func(r chi.Router) {
		r.Get("/", leaderboardHandler.GetLeaderboard)
		r.Get("/players/{playerID}", leaderboardHandler.GetPlayerRank)
		r.Get("/cache", leaderboardHandler.GetCacheStatus)
		r.Post("/cache/clear", leaderboardHandler.ClearCache)
	})

	router.Get("/ws/matches/{matchID}", webSocketHandler.ServeWs)
}
