package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/AndrijanaDejkovic/SnookerProject/cache"
	"github.com/AndrijanaDejkovic/SnookerProject/models"
	"github.com/AndrijanaDejkovic/SnookerProject/repositories"
	"golang.org/x/sync/singleflight"
)

const defaultLeaderboardLimit = 50

type LeaderboardService interface {
	// GetLeaderboard возвращает первые limit строк глобального рейтинга.
	// limit <= 0 заменяется значением по умолчанию.
	GetLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)

	// GetPlayerRank возвращает строку рейтинга конкретного игрока,
	// даже если он за пределами топ-N.
	GetPlayerRank(ctx context.Context, playerID string) (*models.LeaderboardEntry, error)

	Invalidate(ctx context.Context) error
	CacheStatus(ctx context.Context) (models.LeaderboardCacheStatus, error)
}

type leaderboardService struct {
	stats  repositories.LeaderboardRepository
	cache  cache.LeaderboardCache
	logger *slog.Logger

	// Параллельные промахи сливаются в один пересчёт.
	group singleflight.Group
}

func NewLeaderboardService(stats repositories.LeaderboardRepository, c cache.LeaderboardCache, logger *slog.Logger) LeaderboardService {
	return &leaderboardService{stats: stats, cache: c, logger: logger}
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	entries, err := s.fullBoard(ctx)
	if err != nil {
		return nil, err
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *leaderboardService) GetPlayerRank(ctx context.Context, playerID string) (*models.LeaderboardEntry, error) {
	entries, err := s.fullBoard(ctx)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].PlayerID == playerID {
			return &entries[i], nil
		}
	}
	return nil, ErrPlayerNotRanked
}

func (s *leaderboardService) Invalidate(ctx context.Context) error {
	return s.cache.Invalidate(ctx)
}

func (s *leaderboardService) CacheStatus(ctx context.Context) (models.LeaderboardCacheStatus, error) {
	return s.cache.Status(ctx)
}

// fullBoard — cache-aside чтение полного рейтинга.
func (s *leaderboardService) fullBoard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	entries, hit, err := s.cache.Get(ctx)
	if err != nil {
		// Кеш недоступен или повреждён: считаем заново из durable-хранилища.
		s.logger.Warn("leaderboard cache read failed, recomputing", slog.Any("error", err))
	} else if hit {
		return entries, nil
	}

	result, err, _ := s.group.Do("global", func() (interface{}, error) {
		return s.recompute(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.LeaderboardEntry), nil
}

func (s *leaderboardService) recompute(ctx context.Context) ([]models.LeaderboardEntry, error) {
	stats, err := s.stats.CollectPlayerStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build leaderboard: %w", err)
	}

	entries := rankPlayers(stats)

	if err := s.cache.Set(ctx, entries); err != nil {
		// Следующий запрос просто пересчитает снова.
		s.logger.Warn("failed to cache leaderboard", slog.Any("error", err))
	}
	return entries, nil
}

// rankPlayers сортирует агрегаты и присваивает плотные 1-based ранги.
// Порядок: победы турниров по убыванию, призовые по убыванию, имя по
// возрастанию. Ранг растёт, только когда тройка (wins, prize, name)
// отличается от предыдущей строки.
func rankPlayers(stats []models.PlayerStats) []models.LeaderboardEntry {
	sorted := make([]models.PlayerStats, len(stats))
	copy(sorted, stats)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.TournamentsWon != b.TournamentsWon {
			return a.TournamentsWon > b.TournamentsWon
		}
		if a.TotalPrize != b.TotalPrize {
			return a.TotalPrize > b.TotalPrize
		}
		return a.PlayerName < b.PlayerName
	})

	entries := make([]models.LeaderboardEntry, 0, len(sorted))
	rank := 0
	for i, ps := range sorted {
		if i == 0 || !sameRank(sorted[i-1], ps) {
			rank++
		}
		entries = append(entries, models.LeaderboardEntry{PlayerStats: ps, Ranking: rank})
	}
	return entries
}

func sameRank(a, b models.PlayerStats) bool {
	return a.TournamentsWon == b.TournamentsWon &&
		a.TotalPrize == b.TotalPrize &&
		a.PlayerName == b.PlayerName
}
