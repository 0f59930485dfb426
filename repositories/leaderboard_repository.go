package repositories

import (
	"context"
	"fmt"

	"github.com/AndrijanaDejkovic/SnookerProject/models"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type LeaderboardRepository interface {
	// CollectPlayerStats возвращает агрегаты по всем игрокам за скользящее
	// окно в 365 дней (турниры без endDate тоже учитываются). Сортировка и
	// присвоение рангов выполняются на стороне сервиса.
	CollectPlayerStats(ctx context.Context) ([]models.PlayerStats, error)
}

type neo4jLeaderboardRepository struct {
	driver   neo4j.DriverWithContext
	database string
}

func NewNeo4jLeaderboardRepository(driver neo4j.DriverWithContext, database string) LeaderboardRepository {
	return &neo4jLeaderboardRepository{driver: driver, database: database}
}

func (r *neo4jLeaderboardRepository) CollectPlayerStats(ctx context.Context) ([]models.PlayerStats, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: r.database})
	defer session.Close(ctx)

	query := `
		MATCH (p:Player)
		OPTIONAL MATCH (p)-[participated:PARTICIPATED_IN]->(t:Tournament)
		WHERE t.endDate IS NULL OR t.endDate >= date() - duration({days: 365})
		WITH p,
			count(CASE WHEN participated.finalPosition = 1 THEN 1 END) AS tournamentsWon,
			sum(coalesce(participated.prize, 0)) AS totalPrize,
			count(t) AS tournamentsPlayed,
			sum(coalesce(participated.matchesWon, 0)) AS totalMatches,
			sum(coalesce(participated.framesWon, 0)) AS totalFrames
		RETURN p.id AS playerId,
			p.name AS playerName,
			p.nationality AS nationality,
			tournamentsWon,
			totalPrize,
			tournamentsPlayed,
			totalMatches,
			totalFrames`

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect player stats: %w", err)
	}

	records := result.([]*neo4j.Record)
	stats := make([]models.PlayerStats, 0, len(records))
	for _, record := range records {
		stats = append(stats, models.PlayerStats{
			PlayerID:          stringValue(record, "playerId"),
			PlayerName:        stringValue(record, "playerName"),
			Nationality:       stringValue(record, "nationality"),
			TournamentsWon:    intValue(record, "tournamentsWon"),
			TotalPrize:        floatValue(record, "totalPrize"),
			TournamentsPlayed: intValue(record, "tournamentsPlayed"),
			TotalMatches:      intValue(record, "totalMatches"),
			TotalFrames:       intValue(record, "totalFrames"),
		})
	}
	return stats, nil
}
