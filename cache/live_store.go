package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/AndrijanaDejkovic/SnookerProject/models"
	"github.com/redis/go-redis/v9"
)

// ErrLiveStateMissing возвращается, когда ключ матча или фрейма
// отсутствует или уже истёк.
var ErrLiveStateMissing = errors.New("live state not found")

const (
	activeMatchesKey = "live:matches:active"

	liveStateTTL      = time.Hour
	completedMatchTTL = 24 * time.Hour
)

// LiveMatchInit — стартовое состояние live-матча в ephemeral-хранилище.
type LiveMatchInit struct {
	MatchID     string
	Player1ID   string
	Player2ID   string
	Player1Name string
	Player2Name string
	BestOf      int
	StartTime   time.Time
}

// LiveStore хранит эфемерное состояние live-матчей: hash на матч, hash на
// текущий фрейм и durable-набор активных матчей, переживающий рестарт
// процесса. Ключи матча/фрейма пишет только процесс симуляции этого матча.
type LiveStore interface {
	RegisterActive(ctx context.Context, matchID string) error
	DeregisterActive(ctx context.Context, matchID string) error
	ActiveMatchIDs(ctx context.Context) ([]string, error)

	InitMatch(ctx context.Context, init LiveMatchInit) error
	InitFrame(ctx context.Context, matchID string, frameNumber int) error
	FrameScores(ctx context.Context, matchID string, frameNumber int) (p1, p2 int, err error)
	SetFrameScores(ctx context.Context, matchID string, frameNumber, p1, p2 int) error
	CompleteFrame(ctx context.Context, matchID string, frameNumber int) error

	RecordFrameResult(ctx context.Context, matchID string, frameNumber, p1Frames, p2Frames int) error
	CompleteMatch(ctx context.Context, matchID, winnerID string) error
	MarkStopped(ctx context.Context, matchID string) error

	MatchSnapshot(ctx context.Context, matchID string) (*models.LiveMatchInfo, int, error)
	FrameSnapshot(ctx context.Context, matchID string, frameNumber int) (*models.LiveFrameInfo, error)
}

type redisLiveStore struct {
	client *redis.Client
}

func NewRedisLiveStore(client *redis.Client) LiveStore {
	return &redisLiveStore{client: client}
}

func matchKey(matchID string) string {
	return fmt.Sprintf("live:match:%s", matchID)
}

func frameKey(matchID string, frameNumber int) string {
	return fmt.Sprintf("live:match:%s:frame:%d", matchID, frameNumber)
}

func (s *redisLiveStore) RegisterActive(ctx context.Context, matchID string) error {
	if err := s.client.SAdd(ctx, activeMatchesKey, matchID).Err(); err != nil {
		return fmt.Errorf("failed to register active match %s: %w", matchID, err)
	}
	return nil
}

func (s *redisLiveStore) DeregisterActive(ctx context.Context, matchID string) error {
	if err := s.client.SRem(ctx, activeMatchesKey, matchID).Err(); err != nil {
		return fmt.Errorf("failed to deregister active match %s: %w", matchID, err)
	}
	return nil
}

func (s *redisLiveStore) ActiveMatchIDs(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, activeMatchesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list active matches: %w", err)
	}
	return ids, nil
}

func (s *redisLiveStore) InitMatch(ctx context.Context, init LiveMatchInit) error {
	key := matchKey(init.MatchID)
	fields := map[string]interface{}{
		"matchId":       init.MatchID,
		"player1Id":     init.Player1ID,
		"player2Id":     init.Player2ID,
		"player1Name":   init.Player1Name,
		"player2Name":   init.Player2Name,
		"player1Frames": "0",
		"player2Frames": "0",
		"bestOf":        strconv.Itoa(init.BestOf),
		"status":        string(models.MatchStatusLive),
		"currentFrame":  "0",
		"startTime":     init.StartTime.UTC().Format(time.RFC3339),
	}
	if err := s.client.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("failed to init live match %s: %w", init.MatchID, err)
	}
	return s.expire(ctx, key, liveStateTTL)
}

func (s *redisLiveStore) InitFrame(ctx context.Context, matchID string, frameNumber int) error {
	key := frameKey(matchID, frameNumber)
	fields := map[string]interface{}{
		"matchId":      matchID,
		"frameNumber":  strconv.Itoa(frameNumber),
		"player1Score": "0",
		"player2Score": "0",
		"status":       string(models.FrameStatusLive),
	}
	if err := s.client.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("failed to init live frame %s/%d: %w", matchID, frameNumber, err)
	}
	if err := s.expire(ctx, key, liveStateTTL); err != nil {
		return err
	}
	// Номер текущего фрейма держим в hash матча, чтобы снимок собирался
	// за два чтения.
	if err := s.client.HSet(ctx, matchKey(matchID), "currentFrame", strconv.Itoa(frameNumber)).Err(); err != nil {
		return fmt.Errorf("failed to advance current frame for match %s: %w", matchID, err)
	}
	return nil
}

func (s *redisLiveStore) FrameScores(ctx context.Context, matchID string, frameNumber int) (int, int, error) {
	data, err := s.client.HGetAll(ctx, frameKey(matchID, frameNumber)).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read live frame %s/%d: %w", matchID, frameNumber, err)
	}
	if len(data) == 0 || data["player1Score"] == "" {
		return 0, 0, ErrLiveStateMissing
	}
	p1, _ := strconv.Atoi(data["player1Score"])
	p2, _ := strconv.Atoi(data["player2Score"])
	return p1, p2, nil
}

func (s *redisLiveStore) SetFrameScores(ctx context.Context, matchID string, frameNumber, p1, p2 int) error {
	fields := map[string]interface{}{
		"player1Score": strconv.Itoa(p1),
		"player2Score": strconv.Itoa(p2),
	}
	if err := s.client.HSet(ctx, frameKey(matchID, frameNumber), fields).Err(); err != nil {
		return fmt.Errorf("failed to update live frame %s/%d: %w", matchID, frameNumber, err)
	}
	return nil
}

func (s *redisLiveStore) CompleteFrame(ctx context.Context, matchID string, frameNumber int) error {
	if err := s.client.HSet(ctx, frameKey(matchID, frameNumber), "status", string(models.FrameStatusCompleted)).Err(); err != nil {
		return fmt.Errorf("failed to complete live frame %s/%d: %w", matchID, frameNumber, err)
	}
	return nil
}

func (s *redisLiveStore) RecordFrameResult(ctx context.Context, matchID string, frameNumber, p1Frames, p2Frames int) error {
	fields := map[string]interface{}{
		"lastFrameNumber": strconv.Itoa(frameNumber),
		"player1Frames":   strconv.Itoa(p1Frames),
		"player2Frames":   strconv.Itoa(p2Frames),
	}
	if err := s.client.HSet(ctx, matchKey(matchID), fields).Err(); err != nil {
		return fmt.Errorf("failed to record frame result for match %s: %w", matchID, err)
	}
	return nil
}

func (s *redisLiveStore) CompleteMatch(ctx context.Context, matchID, winnerID string) error {
	key := matchKey(matchID)
	fields := map[string]interface{}{
		"status": string(models.MatchStatusCompleted),
		"winner": winnerID,
	}
	if err := s.client.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("failed to complete live match %s: %w", matchID, err)
	}
	// Завершённый матч держим дольше, чтобы страница результатов успела
	// дочитать снимок.
	return s.expire(ctx, key, completedMatchTTL)
}

func (s *redisLiveStore) MarkStopped(ctx context.Context, matchID string) error {
	if err := s.client.HSet(ctx, matchKey(matchID), "status", string(models.MatchStatusStopped)).Err(); err != nil {
		return fmt.Errorf("failed to mark live match %s stopped: %w", matchID, err)
	}
	return nil
}

func (s *redisLiveStore) MatchSnapshot(ctx context.Context, matchID string) (*models.LiveMatchInfo, int, error) {
	data, err := s.client.HGetAll(ctx, matchKey(matchID)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read live match %s: %w", matchID, err)
	}
	if len(data) == 0 {
		return nil, 0, ErrLiveStateMissing
	}

	bestOf, _ := strconv.Atoi(data["bestOf"])
	p1Frames, _ := strconv.Atoi(data["player1Frames"])
	p2Frames, _ := strconv.Atoi(data["player2Frames"])

	info := &models.LiveMatchInfo{
		MatchID:   data["matchId"],
		Status:    data["status"],
		BestOf:    bestOf,
		StartTime: data["startTime"],
		Winner:    data["winner"],
		Player1: models.MatchPlayerState{
			ID:        data["player1Id"],
			Name:      data["player1Name"],
			FramesWon: p1Frames,
		},
		Player2: models.MatchPlayerState{
			ID:        data["player2Id"],
			Name:      data["player2Name"],
			FramesWon: p2Frames,
		},
	}

	current, _ := strconv.Atoi(data["currentFrame"])
	return info, current, nil
}

func (s *redisLiveStore) FrameSnapshot(ctx context.Context, matchID string, frameNumber int) (*models.LiveFrameInfo, error) {
	data, err := s.client.HGetAll(ctx, frameKey(matchID, frameNumber)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read live frame %s/%d: %w", matchID, frameNumber, err)
	}
	if len(data) == 0 {
		return nil, ErrLiveStateMissing
	}

	num, _ := strconv.Atoi(data["frameNumber"])
	p1, _ := strconv.Atoi(data["player1Score"])
	p2, _ := strconv.Atoi(data["player2Score"])

	return &models.LiveFrameInfo{
		FrameNumber:  num,
		Status:       data["status"],
		Player1Score: p1,
		Player2Score: p2,
	}, nil
}

func (s *redisLiveStore) expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := s.client.Expire(ctx, key, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set ttl on %s: %w", key, err)
	}
	return nil
}
