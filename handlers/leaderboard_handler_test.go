package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AndrijanaDejkovic/SnookerProject/models"
	"github.com/AndrijanaDejkovic/SnookerProject/services"
	"github.com/go-chi/chi/v5"
)

type fakeLeaderboardService struct {
	entries []models.LeaderboardEntry
	rankErr error
	status  models.LeaderboardCacheStatus

	lastLimit   int
	invalidated bool
}

func (f *fakeLeaderboardService) GetLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	f.lastLimit = limit
	if len(f.entries) > limit && limit > 0 {
		return f.entries[:limit], nil
	}
	return f.entries, nil
}

func (f *fakeLeaderboardService) GetPlayerRank(ctx context.Context, playerID string) (*models.LeaderboardEntry, error) {
	if f.rankErr != nil {
		return nil, f.rankErr
	}
	for i := range f.entries {
		if f.entries[i].PlayerID == playerID {
			return &f.entries[i], nil
		}
	}
	return nil, services.ErrPlayerNotRanked
}

func (f *fakeLeaderboardService) Invalidate(ctx context.Context) error {
	f.invalidated = true
	return nil
}

func (f *fakeLeaderboardService) CacheStatus(ctx context.Context) (models.LeaderboardCacheStatus, error) {
	return f.status, nil
}

func leaderboardTestRouter(svc services.LeaderboardService) *chi.Mux {
	h := NewLeaderboardHandler(svc)
	router := chi.NewRouter()
	router.Get("/leaderboard", h.GetLeaderboard)
	router.Get("/leaderboard/players/{playerID}", h.GetPlayerRank)
	router.Get("/leaderboard/cache", h.GetCacheStatus)
	router.Post("/leaderboard/cache/clear", h.ClearCache)
	return router
}

func rankedEntry(id string, rank int) models.LeaderboardEntry {
	return models.LeaderboardEntry{
		PlayerStats: models.PlayerStats{PlayerID: id, PlayerName: id},
		Ranking:     rank,
	}
}

func TestGetLeaderboardHandler(t *testing.T) {
	svc := &fakeLeaderboardService{entries: []models.LeaderboardEntry{
		rankedEntry("p1", 1), rankedEntry("p2", 2), rankedEntry("p3", 3),
	}}
	router := leaderboardTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/leaderboard?limit=2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if svc.lastLimit != 2 {
		t.Errorf("service got limit %d, want 2", svc.lastLimit)
	}
	var resp struct {
		Leaderboard []models.LeaderboardEntry `json:"leaderboard"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Leaderboard) != 2 {
		t.Errorf("got %d entries, want 2", len(resp.Leaderboard))
	}
}

func TestGetLeaderboardHandlerRejectsBadLimit(t *testing.T) {
	router := leaderboardTestRouter(&fakeLeaderboardService{})
	for _, limit := range []string{"abc", "0", "-5"} {
		req := httptest.NewRequest(http.MethodGet, "/leaderboard?limit="+limit, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%s: status = %d, want 400", limit, rec.Code)
		}
	}
}

func TestGetPlayerRankHandler(t *testing.T) {
	svc := &fakeLeaderboardService{entries: []models.LeaderboardEntry{rankedEntry("p1", 1)}}
	router := leaderboardTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/leaderboard/players/p1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/leaderboard/players/ghost", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown player: status = %d, want 404", rec.Code)
	}
}

func TestCacheEndpoints(t *testing.T) {
	svc := &fakeLeaderboardService{status: models.LeaderboardCacheStatus{
		CacheKey:   "leaderboard:global:all",
		Exists:     true,
		TTLSeconds: 120,
		Entries:    10,
	}}
	router := leaderboardTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/leaderboard/cache", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("cache status: status = %d, want 200", rec.Code)
	}
	var status models.LeaderboardCacheStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !status.Exists || status.Entries != 10 {
		t.Errorf("unexpected status %+v", status)
	}

	req = httptest.NewRequest(http.MethodPost, "/leaderboard/cache/clear", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("cache clear: status = %d, want 200", rec.Code)
	}
	if !svc.invalidated {
		t.Error("cache clear did not reach the service")
	}
}
