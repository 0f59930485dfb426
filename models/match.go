package models

type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "SCHEDULED"
	MatchStatusLive      MatchStatus = "LIVE"
	MatchStatusCompleted MatchStatus = "COMPLETED"
	MatchStatusStopped   MatchStatus = "STOPPED"
)

// RoundFinal — решающий раунд турнира: победитель этого матча
// становится победителем турнира.
const RoundFinal = "Final"

// FrameCommitResult — итог одной транзакции записи фрейма:
// обновлённые счётчики фреймов и, если матч решён, победитель.
type FrameCommitResult struct {
	WinnerFrames  int
	LoserFrames   int
	MatchWinnerID string // пустая строка, пока матч не решён
}
