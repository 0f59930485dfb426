package handlers

import (
	"net/http"
	"strconv"

	"github.com/AndrijanaDejkovic/SnookerProject/services"
	"github.com/go-chi/chi/v5"
)

type LeaderboardHandler struct {
	leaderboard services.LeaderboardService
}

func NewLeaderboardHandler(leaderboard services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboard: leaderboard}
}

// GetLeaderboard возвращает топ-N глобального рейтинга.
// GET /leaderboard?limit=N
func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			errorResponse(w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	entries, err := h.leaderboard.GetLeaderboard(r.Context(), limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetPlayerRank возвращает строку рейтинга одного игрока.
// GET /leaderboard/players/{playerID}
func (h *LeaderboardHandler) GetPlayerRank(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")
	if playerID == "" {
		notFoundResponse(w, r, "")
		return
	}

	entry, err := h.leaderboard.GetPlayerRank(r.Context(), playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, entry, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetCacheStatus — административная проверка кеша рейтинга.
// GET /leaderboard/cache
func (h *LeaderboardHandler) GetCacheStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.leaderboard.CacheStatus(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, status, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ClearCache принудительно сбрасывает кеш рейтинга.
// POST /leaderboard/cache/clear
func (h *LeaderboardHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.leaderboard.Invalidate(r.Context()); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "leaderboard cache cleared"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
