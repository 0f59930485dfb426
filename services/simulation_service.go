package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/AndrijanaDejkovic/SnookerProject/cache"
	"github.com/AndrijanaDejkovic/SnookerProject/models"
	"github.com/AndrijanaDejkovic/SnookerProject/repositories"
	"github.com/google/uuid"
)

const defaultBestOf = 7

// EventPublisher рассылает события симуляции зрителям матча.
// Доставка best-effort, ошибки доставки не влияют на durable-запись.
type EventPublisher interface {
	PublishScore(matchID string, payload interface{})
	PublishFrame(matchID string, payload interface{})
	PublishMatch(matchID string, payload interface{})
}

// LeaderboardInvalidator сбрасывает кеш рейтинга после завершения
// решающего матча турнира.
type LeaderboardInvalidator interface {
	Invalidate(ctx context.Context) error
}

// SimulationConfig — тайминги симуляции. Нулевые значения заменяются
// значениями по умолчанию в NewSimulationService.
type SimulationConfig struct {
	StartDelay    time.Duration // пауза между созданием матча и первым фреймом
	TickInterval  time.Duration // период тиков начисления очков
	FrameDelay    time.Duration // пауза между фреймами
	MaxFrameTicks int           // предохранитель: фрейм принудительно завершается
}

func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		StartDelay:    3 * time.Second,
		TickInterval:  3 * time.Second,
		FrameDelay:    5 * time.Second,
		MaxFrameTicks: 500,
	}
}

type StartMatchInput struct {
	Player1ID    string
	Player2ID    string
	TournamentID *string
	BestOf       int
	Round        string
}

// StartedMatch возвращается вызывающему сразу после запуска симуляции.
type StartedMatch struct {
	MatchID string             `json:"matchId"`
	Player1 models.Player      `json:"player1"`
	Player2 models.Player      `json:"player2"`
	BestOf  int                `json:"bestOf"`
	Status  models.MatchStatus `json:"status"`
}

type SimulationService interface {
	StartMatch(ctx context.Context, input StartMatchInput) (*StartedMatch, error)
	StopMatch(ctx context.Context, matchID string) error
	ListActive(ctx context.Context) ([]models.LiveMatchInfo, error)
	GetLiveMatch(ctx context.Context, matchID string) (*models.LiveMatchSnapshot, error)

	// ReconcileActive сверяет durable-реестр активных матчей с локальными
	// процессами и принудительно останавливает осиротевшие записи.
	// Вызывается один раз при старте приложения.
	ReconcileActive(ctx context.Context) (int, error)

	// Shutdown отменяет все запущенные симуляции.
	Shutdown()
}

type matchParams struct {
	matchID      string
	player1ID    string
	player2ID    string
	player1Name  string
	player2Name  string
	tournamentID *string
	bestOf       int
	round        string
}

type frameOutcome struct {
	commit      *models.FrameCommitResult
	winnerID    string
	winnerName  string
	frameNumber int
}

type simulationService struct {
	cfg         SimulationConfig
	players     repositories.PlayerRepository
	matches     repositories.MatchRepository
	tournaments repositories.TournamentRepository
	live        cache.LiveStore
	publisher   EventPublisher
	leaderboard LeaderboardInvalidator
	logger      *slog.Logger

	baseCtx    context.Context
	baseCancel context.CancelFunc

	// Один процесс симуляции на matchID; инвариант держится этой картой.
	mu      sync.Mutex
	running map[string]context.CancelFunc
}

func NewSimulationService(
	cfg SimulationConfig,
	players repositories.PlayerRepository,
	matches repositories.MatchRepository,
	tournaments repositories.TournamentRepository,
	live cache.LiveStore,
	publisher EventPublisher,
	leaderboard LeaderboardInvalidator,
	logger *slog.Logger,
) SimulationService {
	defaults := DefaultSimulationConfig()
	if cfg.StartDelay <= 0 {
		cfg.StartDelay = defaults.StartDelay
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = defaults.TickInterval
	}
	if cfg.FrameDelay <= 0 {
		cfg.FrameDelay = defaults.FrameDelay
	}
	if cfg.MaxFrameTicks <= 0 {
		cfg.MaxFrameTicks = defaults.MaxFrameTicks
	}

	baseCtx, baseCancel := context.WithCancel(context.Background())
	return &simulationService{
		cfg:         cfg,
		players:     players,
		matches:     matches,
		tournaments: tournaments,
		live:        live,
		publisher:   publisher,
		leaderboard: leaderboard,
		logger:      logger,
		baseCtx:     baseCtx,
		baseCancel:  baseCancel,
		running:     make(map[string]context.CancelFunc),
	}
}

func (s *simulationService) StartMatch(ctx context.Context, input StartMatchInput) (*StartedMatch, error) {
	if input.Player1ID == "" || input.Player2ID == "" {
		return nil, ErrMissingPlayers
	}
	if input.Player1ID == input.Player2ID {
		return nil, ErrSamePlayer
	}
	bestOf := input.BestOf
	if bestOf == 0 {
		bestOf = defaultBestOf
	}
	if bestOf < 0 || bestOf%2 == 0 {
		return nil, ErrInvalidBestOf
	}
	round := input.Round
	if round == "" {
		round = "Live Match"
	}

	player1Name, player2Name, err := s.players.GetPairNames(ctx, input.Player1ID, input.Player2ID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to validate players: %w", err)
	}

	m := matchParams{
		matchID:      uuid.NewString(),
		player1ID:    input.Player1ID,
		player2ID:    input.Player2ID,
		player1Name:  player1Name,
		player2Name:  player2Name,
		tournamentID: input.TournamentID,
		bestOf:       bestOf,
		round:        round,
	}

	if err := s.matches.CreateLive(ctx, repositories.CreateLiveMatchParams{
		ID:           m.matchID,
		Player1ID:    m.player1ID,
		Player2ID:    m.player2ID,
		TournamentID: m.tournamentID,
		BestOf:       m.bestOf,
		Round:        m.round,
	}); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to create match record: %w", err)
	}

	if err := s.live.InitMatch(ctx, cache.LiveMatchInit{
		MatchID:     m.matchID,
		Player1ID:   m.player1ID,
		Player2ID:   m.player2ID,
		Player1Name: m.player1Name,
		Player2Name: m.player2Name,
		BestOf:      m.bestOf,
		StartTime:   time.Now(),
	}); err != nil {
		return nil, fmt.Errorf("failed to init live state: %w", err)
	}
	if err := s.live.RegisterActive(ctx, m.matchID); err != nil {
		return nil, fmt.Errorf("failed to register live match: %w", err)
	}

	s.mu.Lock()
	if _, exists := s.running[m.matchID]; exists {
		s.mu.Unlock()
		return nil, ErrSimulationExists
	}
	matchCtx, cancel := context.WithCancel(s.baseCtx)
	s.running[m.matchID] = cancel
	s.mu.Unlock()

	s.publisher.PublishMatch(m.matchID, models.MatchUpdatePayload{
		MatchID: m.matchID,
		Status:  string(models.MatchStatusLive),
		Players: &models.MatchPlayers{
			Player1: models.MatchPlayerState{ID: m.player1ID, Name: m.player1Name},
			Player2: models.MatchPlayerState{ID: m.player2ID, Name: m.player2Name},
		},
		BestOf:    m.bestOf,
		Message:   fmt.Sprintf("Live match started: %s vs %s", m.player1Name, m.player2Name),
		Timestamp: eventTimestamp(),
	})

	s.logger.Info("live match simulation started",
		slog.String("match_id", m.matchID),
		slog.String("player1", m.player1Name),
		slog.String("player2", m.player2Name),
		slog.Int("best_of", m.bestOf))

	go s.runMatch(matchCtx, m)

	return &StartedMatch{
		MatchID: m.matchID,
		Player1: models.Player{ID: m.player1ID, Name: m.player1Name},
		Player2: models.Player{ID: m.player2ID, Name: m.player2Name},
		BestOf:  m.bestOf,
		Status:  models.MatchStatusLive,
	}, nil
}

func (s *simulationService) StopMatch(ctx context.Context, matchID string) error {
	s.mu.Lock()
	cancel, ok := s.running[matchID]
	if ok {
		delete(s.running, matchID)
	}
	s.mu.Unlock()
	if !ok {
		// Уже остановлен или завершился сам: сообщаем not-found,
		// повторная остановка ничего не ломает.
		return ErrMatchNotFound
	}
	cancel()

	// Сначала durable-статус: матч, успевший завершиться в гонке с
	// остановкой, остаётся COMPLETED, его учёт доведёт finishMatch.
	if err := s.matches.UpdateStatus(ctx, matchID, models.MatchStatusStopped); err != nil {
		if errors.Is(err, repositories.ErrMatchCompleted) {
			return ErrMatchNotFound
		}
		if !errors.Is(err, repositories.ErrMatchNotFound) {
			return fmt.Errorf("failed to mark match stopped: %w", err)
		}
	}

	if err := s.live.MarkStopped(ctx, matchID); err != nil {
		s.logger.Warn("failed to mark live state stopped", slog.String("match_id", matchID), slog.Any("error", err))
	}
	if err := s.live.DeregisterActive(ctx, matchID); err != nil {
		s.logger.Warn("failed to deregister live match", slog.String("match_id", matchID), slog.Any("error", err))
	}

	s.publisher.PublishMatch(matchID, models.MatchUpdatePayload{
		MatchID:   matchID,
		Status:    string(models.MatchStatusStopped),
		Message:   "Match simulation stopped",
		Timestamp: eventTimestamp(),
	})
	s.logger.Info("live match simulation stopped", slog.String("match_id", matchID))
	return nil
}

func (s *simulationService) ListActive(ctx context.Context) ([]models.LiveMatchInfo, error) {
	ids, err := s.live.ActiveMatchIDs(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]models.LiveMatchInfo, 0, len(ids))
	for _, id := range ids {
		info, _, err := s.live.MatchSnapshot(ctx, id)
		if err != nil {
			if errors.Is(err, cache.ErrLiveStateMissing) {
				continue // hash истёк раньше, чем запись в реестре
			}
			return nil, err
		}
		active = append(active, *info)
	}
	return active, nil
}

func (s *simulationService) GetLiveMatch(ctx context.Context, matchID string) (*models.LiveMatchSnapshot, error) {
	info, currentFrame, err := s.live.MatchSnapshot(ctx, matchID)
	if err != nil {
		if errors.Is(err, cache.ErrLiveStateMissing) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}

	snapshot := &models.LiveMatchSnapshot{Match: *info}
	if currentFrame > 0 {
		frame, err := s.live.FrameSnapshot(ctx, matchID, currentFrame)
		if err == nil {
			snapshot.CurrentFrame = frame
		} else if !errors.Is(err, cache.ErrLiveStateMissing) {
			return nil, err
		}
	}
	return snapshot, nil
}

func (s *simulationService) ReconcileActive(ctx context.Context) (int, error) {
	ids, err := s.live.ActiveMatchIDs(ctx)
	if err != nil {
		return 0, err
	}

	stopped := 0
	for _, id := range ids {
		s.mu.Lock()
		_, ok := s.running[id]
		s.mu.Unlock()
		if ok {
			continue
		}

		// Запись пережила рестарт процесса, владелец-горутина потеряна.
		// Возобновление не предпринимаем: эфемерный счёт не является
		// durable-фактом, честный выход — принудительная остановка.
		err := s.matches.UpdateStatus(ctx, id, models.MatchStatusStopped)
		if errors.Is(err, repositories.ErrMatchCompleted) {
			// Процесс умер между решающим CommitFrame и дерегистрацией:
			// матч уже COMPLETED, трогаем только реестр.
			s.logger.Info("deregistering completed match left in active set", slog.String("match_id", id))
			if err := s.live.DeregisterActive(ctx, id); err != nil {
				s.logger.Warn("failed to deregister completed match", slog.String("match_id", id), slog.Any("error", err))
			}
			continue
		}
		if err != nil && !errors.Is(err, repositories.ErrMatchNotFound) {
			s.logger.Error("failed to stop orphaned match", slog.String("match_id", id), slog.Any("error", err))
		}
		s.logger.Warn("force-stopping orphaned live match", slog.String("match_id", id))
		if err := s.live.MarkStopped(ctx, id); err != nil && !errors.Is(err, cache.ErrLiveStateMissing) {
			s.logger.Warn("failed to mark orphaned live state stopped", slog.String("match_id", id), slog.Any("error", err))
		}
		if err := s.live.DeregisterActive(ctx, id); err != nil {
			s.logger.Warn("failed to deregister orphaned match", slog.String("match_id", id), slog.Any("error", err))
		}
		stopped++
	}
	return stopped, nil
}

func (s *simulationService) Shutdown() {
	s.baseCancel()
}

func (s *simulationService) runMatch(ctx context.Context, m matchParams) {
	if !s.sleep(ctx, s.cfg.StartDelay) {
		return
	}

	for frameNumber := 1; ; frameNumber++ {
		outcome, err := s.runFrame(ctx, m, frameNumber)
		if err != nil {
			if ctx.Err() != nil {
				return // остановлено через StopMatch или Shutdown
			}
			// Неудачный коммит не повторяем: частичный эффект нарушил бы
			// инвариант "счётчик == число durable-фреймов". Симуляция
			// замирает, запись в реестре остаётся видимой оператору,
			// путь восстановления — StopMatch и перезапуск.
			s.logger.Error("frame persistence failed, simulation stalled",
				slog.String("match_id", m.matchID),
				slog.Int("frame", frameNumber),
				slog.Any("error", err))
			return
		}

		if outcome.winnerID != "" {
			s.finishMatch(m, outcome)
			return
		}

		if !s.sleep(ctx, s.cfg.FrameDelay) {
			return
		}
	}
}

func (s *simulationService) runFrame(ctx context.Context, m matchParams, frameNumber int) (*frameOutcome, error) {
	start := time.Now()
	if err := s.live.InitFrame(ctx, m.matchID, frameNumber); err != nil {
		return nil, err
	}

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	lastScorer := 0
	for ticks := 1; ; ticks++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		p1Score, p2Score, err := s.live.FrameScores(ctx, m.matchID, frameNumber)
		if err != nil {
			return nil, err
		}

		scorer := pickScorer()
		points := rollBreakPoints()
		if scorer == 1 {
			p1Score += points
		} else {
			p2Score += points
		}
		lastScorer = scorer

		if err := s.live.SetFrameScores(ctx, m.matchID, frameNumber, p1Score, p2Score); err != nil {
			return nil, err
		}

		s.publisher.PublishScore(m.matchID, models.ScoreUpdatePayload{
			MatchID:     m.matchID,
			FrameNumber: frameNumber,
			Player1:     models.PlayerScore{ID: m.player1ID, Name: m.player1Name, Score: p1Score},
			Player2:     models.PlayerScore{ID: m.player2ID, Name: m.player2Name, Score: p2Score},
			Timestamp:   eventTimestamp(),
		})

		if frameDecided(p1Score, p2Score) {
			return s.completeFrame(ctx, m, frameNumber, p1Score, p2Score, lastScorer, start)
		}
		if ticks >= s.cfg.MaxFrameTicks {
			// Предохранитель от теоретически бесконечного фрейма.
			s.logger.Warn("frame hit tick limit, forcing completion",
				slog.String("match_id", m.matchID), slog.Int("frame", frameNumber))
			return s.completeFrame(ctx, m, frameNumber, p1Score, p2Score, lastScorer, start)
		}
	}
}

func (s *simulationService) completeFrame(ctx context.Context, m matchParams, frameNumber, p1Score, p2Score, lastScorer int, start time.Time) (*frameOutcome, error) {
	if err := s.live.CompleteFrame(ctx, m.matchID, frameNumber); err != nil {
		s.logger.Warn("failed to mark live frame completed",
			slog.String("match_id", m.matchID), slog.Int("frame", frameNumber), slog.Any("error", err))
	}

	winnerID, winnerName, winnerScore := m.player1ID, m.player1Name, p1Score
	loserID, loserName, loserScore := m.player2ID, m.player2Name, p2Score
	if frameWinner(p1Score, p2Score, lastScorer) == 2 {
		winnerID, winnerName, winnerScore = m.player2ID, m.player2Name, p2Score
		loserID, loserName, loserScore = m.player1ID, m.player1Name, p1Score
	}

	commit, err := s.matches.CommitFrame(ctx, repositories.CommitFrameParams{
		MatchID:         m.matchID,
		FrameID:         uuid.NewString(),
		WinnerID:        winnerID,
		LoserID:         loserID,
		FrameNumber:     frameNumber,
		WinnerScore:     winnerScore,
		LoserScore:      loserScore,
		HighestBreak:    max(p1Score, p2Score),
		DurationSeconds: int(time.Since(start) / time.Second),
	})
	if err != nil {
		return nil, err
	}

	p1Frames, p2Frames := commit.WinnerFrames, commit.LoserFrames
	if winnerID == m.player2ID {
		p1Frames, p2Frames = commit.LoserFrames, commit.WinnerFrames
	}
	if err := s.live.RecordFrameResult(ctx, m.matchID, frameNumber, p1Frames, p2Frames); err != nil {
		s.logger.Warn("failed to record frame result in live state",
			slog.String("match_id", m.matchID), slog.Any("error", err))
	}

	s.publisher.PublishFrame(m.matchID, models.FrameUpdatePayload{
		MatchID:     m.matchID,
		FrameNumber: frameNumber,
		Status:      string(models.FrameStatusCompleted),
		Winner:      models.FramePlayerResult{ID: winnerID, Name: winnerName, Score: winnerScore, FramesWon: commit.WinnerFrames},
		Loser:       models.FramePlayerResult{ID: loserID, Name: loserName, Score: loserScore, FramesWon: commit.LoserFrames},
		Timestamp:   eventTimestamp(),
	})

	outcome := &frameOutcome{commit: commit, frameNumber: frameNumber}
	if commit.MatchWinnerID != "" {
		outcome.winnerID = commit.MatchWinnerID
		outcome.winnerName = winnerName
		if commit.MatchWinnerID == m.player1ID {
			outcome.winnerName = m.player1Name
		} else if commit.MatchWinnerID == m.player2ID {
			outcome.winnerName = m.player2Name
		}
	}
	return outcome, nil
}

// finishMatch доводит решённый матч до конца: эфемерное состояние,
// турнир, кеш рейтинга, событие зрителям, реестр. Работает на свежем
// контексте — отмена симуляции не должна обрывать учёт результата.
func (s *simulationService) finishMatch(m matchParams, outcome *frameOutcome) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := s.live.CompleteMatch(ctx, m.matchID, outcome.winnerID); err != nil {
		s.logger.Warn("failed to complete live state", slog.String("match_id", m.matchID), slog.Any("error", err))
	}

	if m.tournamentID != nil && m.round == models.RoundFinal {
		completed, err := s.tournaments.CompleteByDecidingMatch(ctx, m.matchID, outcome.winnerID, outcome.commit.WinnerFrames)
		if err != nil {
			s.logger.Error("failed to complete tournament",
				slog.String("match_id", m.matchID), slog.Any("error", err))
		} else if completed {
			s.logger.Info("tournament completed by final match",
				slog.String("match_id", m.matchID), slog.String("winner_id", outcome.winnerID))
			if err := s.leaderboard.Invalidate(ctx); err != nil {
				// Кеш и так истечёт по TTL, свежий пересчёт просто задержится.
				s.logger.Warn("failed to invalidate leaderboard cache", slog.Any("error", err))
			}
		}
	}

	s.publisher.PublishMatch(m.matchID, models.MatchUpdatePayload{
		MatchID: m.matchID,
		Status:  string(models.MatchStatusCompleted),
		Winner: &models.MatchPlayerState{
			ID:        outcome.winnerID,
			Name:      outcome.winnerName,
			FramesWon: outcome.commit.WinnerFrames,
		},
		Message: fmt.Sprintf("Match completed! %s wins %d-%d",
			outcome.winnerName, outcome.commit.WinnerFrames, outcome.commit.LoserFrames),
		Timestamp: eventTimestamp(),
	})

	if err := s.live.DeregisterActive(ctx, m.matchID); err != nil {
		s.logger.Warn("failed to deregister completed match", slog.String("match_id", m.matchID), slog.Any("error", err))
	}

	s.mu.Lock()
	if cancelMatch, ok := s.running[m.matchID]; ok {
		delete(s.running, m.matchID)
		cancelMatch()
	}
	s.mu.Unlock()

	s.logger.Info("live match completed",
		slog.String("match_id", m.matchID),
		slog.String("winner_id", outcome.winnerID),
		slog.Int("frames", outcome.frameNumber))
}

func (s *simulationService) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func eventTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
