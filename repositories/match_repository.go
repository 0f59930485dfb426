package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/AndrijanaDejkovic/SnookerProject/models"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

var (
	ErrMatchNotFound = errors.New("match not found")

	// ErrMatchCompleted: запись в терминальном статусе COMPLETED неизменяема.
	ErrMatchCompleted = errors.New("match already completed")
)

type CreateLiveMatchParams struct {
	ID           string
	Player1ID    string
	Player2ID    string
	TournamentID *string
	BestOf       int
	Round        string
}

type CommitFrameParams struct {
	MatchID         string
	FrameID         string
	WinnerID        string
	LoserID         string
	FrameNumber     int
	WinnerScore     int
	LoserScore      int
	HighestBreak    int
	DurationSeconds int
}

type MatchRepository interface {
	// CreateLive создаёт LIVE-матч с нулевыми счётчиками COMPETED у обоих
	// игроков и, если задан турнир, связью PART_OF.
	CreateLive(ctx context.Context, params CreateLiveMatchParams) error

	// CommitFrame в одной write-транзакции создаёт узел Frame со связями,
	// инкрементирует счётчики фреймов и, если победитель набрал
	// ceil(bestOf/2), завершает матч. Это единственное место, где матч
	// переходит в COMPLETED.
	CommitFrame(ctx context.Context, params CommitFrameParams) (*models.FrameCommitResult, error)

	// UpdateStatus переводит матч в нетерминальный статус. Матч в статусе
	// COMPLETED не изменяется никогда: возвращается ErrMatchCompleted.
	UpdateStatus(ctx context.Context, matchID string, status models.MatchStatus) error
}

type neo4jMatchRepository struct {
	driver   neo4j.DriverWithContext
	database string
}

func NewNeo4jMatchRepository(driver neo4j.DriverWithContext, database string) MatchRepository {
	return &neo4jMatchRepository{driver: driver, database: database}
}

func (r *neo4jMatchRepository) CreateLive(ctx context.Context, params CreateLiveMatchParams) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: r.database})
	defer session.Close(ctx)

	query := `
		MATCH (p1:Player {id: $player1Id})
		MATCH (p2:Player {id: $player2Id})`
	if params.TournamentID != nil {
		query += `
		MATCH (t:Tournament {id: $tournamentId})`
	}
	query += `
		CREATE (m:Match {
			id: $matchId,
			date: datetime(),
			bestOf: $bestOf,
			status: $status,
			round: $round
		})
		CREATE (p1)-[:COMPETED {framesWon: 0, framesLost: 0}]->(m)
		CREATE (p2)-[:COMPETED {framesWon: 0, framesLost: 0}]->(m)`
	if params.TournamentID != nil {
		query += `
		CREATE (m)-[:PART_OF]->(t)`
	}
	query += `
		RETURN m.id AS matchId`

	parameters := map[string]any{
		"matchId":   params.ID,
		"player1Id": params.Player1ID,
		"player2Id": params.Player2ID,
		"bestOf":    params.BestOf,
		"status":    string(models.MatchStatusLive),
		"round":     params.Round,
	}
	if params.TournamentID != nil {
		parameters["tournamentId"] = *params.TournamentID
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, parameters)
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			// MATCH по игрокам или турниру не нашёл узлов — матч не создан.
			return nil, ErrPlayerNotFound
		}
		return nil, nil
	})
	if err != nil {
		if errors.Is(err, ErrPlayerNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to create live match %s: %w", params.ID, err)
	}
	return nil
}

func (r *neo4jMatchRepository) CommitFrame(ctx context.Context, params CommitFrameParams) (*models.FrameCommitResult, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: r.database})
	defer session.Close(ctx)

	query := `
		MATCH (m:Match {id: $matchId})
		MATCH (winner:Player {id: $winnerId})
		MATCH (loser:Player {id: $loserId})
		CREATE (f:Frame {
			id: $frameId,
			frameNumber: $frameNumber,
			winnerScore: $winnerScore,
			loserScore: $loserScore,
			duration: duration({seconds: $durationSeconds}),
			highestBreak: $highestBreak,
			status: 'COMPLETED'
		})
		CREATE (m)-[:CONTAINS_FRAME]->(f)
		CREATE (winner)-[:WON_FRAME {
			score: $winnerScore,
			highestBreak: $highestBreak
		}]->(f)
		CREATE (loser)-[:LOST_FRAME {
			score: $loserScore
		}]->(f)
		MERGE (winner)-[cw:COMPETED]->(m)
			ON CREATE SET cw.framesWon = 0, cw.framesLost = 0
		MERGE (loser)-[cl:COMPETED]->(m)
			ON CREATE SET cl.framesWon = 0, cl.framesLost = 0
		SET cw.framesWon = coalesce(cw.framesWon, 0) + 1,
			cl.framesLost = coalesce(cl.framesLost, 0) + 1
		WITH m, winner, loser, cw, cl, toInteger(ceil(m.bestOf / 2.0)) AS framesToWin
		FOREACH (_ IN CASE WHEN cw.framesWon >= framesToWin AND m.status <> 'COMPLETED' THEN [1] ELSE [] END |
			SET m.winner = winner.id, m.winnerName = winner.name, m.status = 'COMPLETED'
			MERGE (m)-[:WON_BY]->(winner)
			SET cw.won = true, cl.won = false
		)
		RETURN cw.framesWon AS winnerFrames, cl.framesWon AS loserFrames, m.winner AS matchWinner`

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{
			"matchId":         params.MatchID,
			"frameId":         params.FrameID,
			"winnerId":        params.WinnerID,
			"loserId":         params.LoserID,
			"frameNumber":     params.FrameNumber,
			"winnerScore":     params.WinnerScore,
			"loserScore":      params.LoserScore,
			"highestBreak":    params.HighestBreak,
			"durationSeconds": params.DurationSeconds,
		})
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return nil, ErrMatchNotFound
		}
		return records[0], nil
	})
	if err != nil {
		if errors.Is(err, ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to commit frame %d of match %s: %w", params.FrameNumber, params.MatchID, err)
	}

	record := result.(*neo4j.Record)
	return &models.FrameCommitResult{
		WinnerFrames:  intValue(record, "winnerFrames"),
		LoserFrames:   intValue(record, "loserFrames"),
		MatchWinnerID: stringValue(record, "matchWinner"),
	}, nil
}

func (r *neo4jMatchRepository) UpdateStatus(ctx context.Context, matchID string, status models.MatchStatus) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: r.database})
	defer session.Close(ctx)

	// CASE оставляет терминальный статус на месте даже при гонке с
	// транзакцией CommitFrame: проверка и запись происходят атомарно.
	query := `
		MATCH (m:Match {id: $matchId})
		WITH m, m.status AS previous
		SET m.status = CASE WHEN previous = 'COMPLETED' THEN previous ELSE $status END
		RETURN previous`

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{
			"matchId": matchID,
			"status":  string(status),
		})
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return nil, ErrMatchNotFound
		}
		if stringValue(records[0], "previous") == string(models.MatchStatusCompleted) {
			return nil, ErrMatchCompleted
		}
		return nil, nil
	})
	if err != nil {
		if errors.Is(err, ErrMatchNotFound) || errors.Is(err, ErrMatchCompleted) {
			return err
		}
		return fmt.Errorf("failed to update status of match %s: %w", matchID, err)
	}
	return nil
}
