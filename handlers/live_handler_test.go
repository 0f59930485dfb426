package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AndrijanaDejkovic/SnookerProject/models"
	"github.com/AndrijanaDejkovic/SnookerProject/services"
	"github.com/go-chi/chi/v5"
)

type fakeSimulationService struct {
	startErr error
	stopErr  error
	getErr   error
	started  *services.StartedMatch
	active   []models.LiveMatchInfo
	snapshot *models.LiveMatchSnapshot

	lastInput services.StartMatchInput
	stoppedID string
}

func (f *fakeSimulationService) StartMatch(ctx context.Context, input services.StartMatchInput) (*services.StartedMatch, error) {
	f.lastInput = input
	if f.startErr != nil {
		return nil, f.startErr
	}
	return f.started, nil
}

func (f *fakeSimulationService) StopMatch(ctx context.Context, matchID string) error {
	f.stoppedID = matchID
	return f.stopErr
}

func (f *fakeSimulationService) ListActive(ctx context.Context) ([]models.LiveMatchInfo, error) {
	return f.active, nil
}

func (f *fakeSimulationService) GetLiveMatch(ctx context.Context, matchID string) (*models.LiveMatchSnapshot, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.snapshot, nil
}

func (f *fakeSimulationService) ReconcileActive(ctx context.Context) (int, error) { return 0, nil }

func (f *fakeSimulationService) Shutdown() {}

func liveTestRouter(svc services.SimulationService) *chi.Mux {
	h := NewLiveMatchHandler(svc)
	router := chi.NewRouter()
	router.Post("/live/matches", h.StartMatch)
	router.Get("/live/matches", h.ListActive)
	router.Get("/live/matches/{matchID}", h.GetMatch)
	router.Delete("/live/matches/{matchID}", h.StopMatch)
	return router
}

func TestStartMatchHandler(t *testing.T) {
	svc := &fakeSimulationService{started: &services.StartedMatch{
		MatchID: "m1",
		Player1: models.Player{ID: "p1", Name: "A"},
		Player2: models.Player{ID: "p2", Name: "B"},
		BestOf:  7,
		Status:  models.MatchStatusLive,
	}}
	router := liveTestRouter(svc)

	body := `{"player1Id":"p1","player2Id":"p2","bestOf":7}`
	req := httptest.NewRequest(http.MethodPost, "/live/matches", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if svc.lastInput.Player1ID != "p1" || svc.lastInput.BestOf != 7 {
		t.Errorf("service got input %+v", svc.lastInput)
	}

	var resp struct {
		Match services.StartedMatch `json:"match"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Match.MatchID != "m1" {
		t.Errorf("matchId = %s, want m1", resp.Match.MatchID)
	}
}

func TestStartMatchHandlerErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
	}{
		{"malformed json", `{"player1Id":`, nil, http.StatusBadRequest},
		{"unknown field", `{"playerOneId":"p1"}`, nil, http.StatusBadRequest},
		{"missing players", `{}`, services.ErrMissingPlayers, http.StatusBadRequest},
		{"same player", `{"player1Id":"p1","player2Id":"p1"}`, services.ErrSamePlayer, http.StatusBadRequest},
		{"unknown player", `{"player1Id":"p1","player2Id":"ghost"}`, services.ErrPlayerNotFound, http.StatusNotFound},
		{"even best-of", `{"player1Id":"p1","player2Id":"p2","bestOf":4}`, services.ErrInvalidBestOf, http.StatusBadRequest},
		{"duplicate simulation", `{"player1Id":"p1","player2Id":"p2"}`, services.ErrSimulationExists, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := liveTestRouter(&fakeSimulationService{startErr: tt.serviceErr})
			req := httptest.NewRequest(http.MethodPost, "/live/matches", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestGetMatchHandler(t *testing.T) {
	svc := &fakeSimulationService{snapshot: &models.LiveMatchSnapshot{
		Match: models.LiveMatchInfo{MatchID: "m1", Status: string(models.MatchStatusLive), BestOf: 7},
	}}
	router := liveTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/live/matches/m1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var snapshot models.LiveMatchSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if snapshot.Match.MatchID != "m1" {
		t.Errorf("matchId = %s, want m1", snapshot.Match.MatchID)
	}
}

func TestGetMatchHandlerNotFound(t *testing.T) {
	router := liveTestRouter(&fakeSimulationService{getErr: services.ErrMatchNotFound})
	req := httptest.NewRequest(http.MethodGet, "/live/matches/ghost", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestStopMatchHandler(t *testing.T) {
	svc := &fakeSimulationService{}
	router := liveTestRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/live/matches/m1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if svc.stoppedID != "m1" {
		t.Errorf("stopped id = %s, want m1", svc.stoppedID)
	}
}

func TestListActiveHandler(t *testing.T) {
	svc := &fakeSimulationService{active: []models.LiveMatchInfo{
		{MatchID: "m1", Status: string(models.MatchStatusLive)},
		{MatchID: "m2", Status: string(models.MatchStatusLive)},
	}}
	router := liveTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/live/matches", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Matches []models.LiveMatchInfo `json:"matches"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Matches) != 2 {
		t.Errorf("got %d matches, want 2", len(resp.Matches))
	}
}
