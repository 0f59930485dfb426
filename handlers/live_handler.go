package handlers

import (
	"net/http"

	"github.com/AndrijanaDejkovic/SnookerProject/services"
	"github.com/go-chi/chi/v5"
)

type LiveMatchHandler struct {
	simulations services.SimulationService
}

func NewLiveMatchHandler(simulations services.SimulationService) *LiveMatchHandler {
	return &LiveMatchHandler{simulations: simulations}
}

type startMatchRequest struct {
	Player1ID    string  `json:"player1Id"`
	Player2ID    string  `json:"player2Id"`
	TournamentID *string `json:"tournamentId,omitempty"`
	BestOf       int     `json:"bestOf,omitempty"`
	Round        string  `json:"round,omitempty"`
}

// StartMatch запускает симуляцию live-матча.
// POST /live/matches
func (h *LiveMatchHandler) StartMatch(w http.ResponseWriter, r *http.Request) {
	var req startMatchRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	started, err := h.simulations.StartMatch(r.Context(), services.StartMatchInput{
		Player1ID:    req.Player1ID,
		Player2ID:    req.Player2ID,
		TournamentID: req.TournamentID,
		BestOf:       req.BestOf,
		Round:        req.Round,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"match": started}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListActive возвращает снимки всех активных матчей.
// GET /live/matches
func (h *LiveMatchHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	matches, err := h.simulations.ListActive(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetMatch возвращает снимок конкретного live-матча с текущим фреймом.
// GET /live/matches/{matchID}
func (h *LiveMatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	if matchID == "" {
		notFoundResponse(w, r, "")
		return
	}

	snapshot, err := h.simulations.GetLiveMatch(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, snapshot, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StopMatch досрочно останавливает симуляцию.
// DELETE /live/matches/{matchID}
func (h *LiveMatchHandler) StopMatch(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	if matchID == "" {
		notFoundResponse(w, r, "")
		return
	}

	if err := h.simulations.StopMatch(r.Context(), matchID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "match simulation stopped"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
