package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

var ErrPlayerNotFound = errors.New("player not found")

type PlayerRepository interface {
	// GetPairNames возвращает имена обоих игроков, либо ErrPlayerNotFound,
	// если хотя бы один из них отсутствует в графе.
	GetPairNames(ctx context.Context, player1ID, player2ID string) (player1Name, player2Name string, err error)
}

type neo4jPlayerRepository struct {
	driver   neo4j.DriverWithContext
	database string
}

func NewNeo4jPlayerRepository(driver neo4j.DriverWithContext, database string) PlayerRepository {
	return &neo4jPlayerRepository{driver: driver, database: database}
}

func (r *neo4jPlayerRepository) GetPairNames(ctx context.Context, player1ID, player2ID string) (string, string, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: r.database})
	defer session.Close(ctx)

	query := `
		MATCH (p1:Player {id: $player1Id}), (p2:Player {id: $player2Id})
		RETURN p1.name AS player1Name, p2.name AS player2Name`

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{
			"player1Id": player1ID,
			"player2Id": player2ID,
		})
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return nil, ErrPlayerNotFound
		}
		return records[0], nil
	})
	if err != nil {
		if errors.Is(err, ErrPlayerNotFound) {
			return "", "", ErrPlayerNotFound
		}
		return "", "", fmt.Errorf("failed to look up players %s, %s: %w", player1ID, player2ID, err)
	}

	record := result.(*neo4j.Record)
	return stringValue(record, "player1Name"), stringValue(record, "player2Name"), nil
}
