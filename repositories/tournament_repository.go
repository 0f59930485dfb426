package repositories

import (
	"context"
	"fmt"

	"github.com/AndrijanaDejkovic/SnookerProject/models"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type TournamentRepository interface {
	// CompleteByDecidingMatch завершает турнир, если указанный матч —
	// его финал. Guard по t.status гарантирует ровно один переход в
	// COMPLETED, сколько бы раз запрос ни выполнился. Возвращает true,
	// если турнир был завершён этим вызовом.
	CompleteByDecidingMatch(ctx context.Context, matchID, winnerID string, framesWon int) (bool, error)
}

type neo4jTournamentRepository struct {
	driver   neo4j.DriverWithContext
	database string
}

func NewNeo4jTournamentRepository(driver neo4j.DriverWithContext, database string) TournamentRepository {
	return &neo4jTournamentRepository{driver: driver, database: database}
}

func (r *neo4jTournamentRepository) CompleteByDecidingMatch(ctx context.Context, matchID, winnerID string, framesWon int) (bool, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: r.database})
	defer session.Close(ctx)

	query := `
		MATCH (m:Match {id: $matchId})-[:PART_OF]->(t:Tournament)
		WHERE m.round = 'Final' AND coalesce(t.status, '') <> 'COMPLETED'
		MATCH (winner:Player {id: $winnerId})
		SET t.winner = winner.id, t.status = 'COMPLETED'
		MERGE (winner)-[p:PARTICIPATED_IN]->(t)
		ON CREATE SET
			p.finalPosition = 1,
			p.prize = coalesce(t.prizePool, $defaultPrize),
			p.matchesWon = 1,
			p.framesWon = $framesWon
		ON MATCH SET
			p.finalPosition = 1,
			p.prize = coalesce(t.prizePool, $defaultPrize)
		RETURN t.id AS tournamentId`

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{
			"matchId":      matchID,
			"winnerId":     winnerID,
			"framesWon":    framesWon,
			"defaultPrize": models.DefaultTournamentPrize,
		})
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		return len(records) > 0, nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to complete tournament for match %s: %w", matchID, err)
	}
	return result.(bool), nil
}
