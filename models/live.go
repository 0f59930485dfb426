package models

// Полезные нагрузки websocket-событий. Имена полей в camelCase —
// их же ожидают клиенты live-страницы.

type PlayerScore struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// ScoreUpdatePayload рассылается после каждого засчитанного брейка.
type ScoreUpdatePayload struct {
	MatchID     string      `json:"matchId"`
	FrameNumber int         `json:"frameNumber"`
	Player1     PlayerScore `json:"player1"`
	Player2     PlayerScore `json:"player2"`
	Timestamp   string      `json:"timestamp"`
}

type FramePlayerResult struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
	FramesWon int    `json:"framesWon"`
}

// FrameUpdatePayload рассылается после durable-записи фрейма.
type FrameUpdatePayload struct {
	MatchID     string            `json:"matchId"`
	FrameNumber int               `json:"frameNumber"`
	Status      string            `json:"status"`
	Winner      FramePlayerResult `json:"winner"`
	Loser       FramePlayerResult `json:"loser"`
	Timestamp   string            `json:"timestamp"`
}

type MatchPlayerState struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	FramesWon int    `json:"framesWon"`
}

type MatchPlayers struct {
	Player1 MatchPlayerState `json:"player1"`
	Player2 MatchPlayerState `json:"player2"`
}

// MatchUpdatePayload рассылается при старте, остановке и завершении матча.
type MatchUpdatePayload struct {
	MatchID   string            `json:"matchId"`
	Status    string            `json:"status"`
	Players   *MatchPlayers     `json:"players,omitempty"`
	Winner    *MatchPlayerState `json:"winner,omitempty"`
	BestOf    int               `json:"bestOf,omitempty"`
	Message   string            `json:"message,omitempty"`
	Timestamp string            `json:"timestamp"`
}

// LiveFrameInfo — моментальный снимок текущего фрейма из ephemeral-хранилища.
type LiveFrameInfo struct {
	FrameNumber  int    `json:"frameNumber"`
	Status       string `json:"status"`
	Player1Score int    `json:"player1Score"`
	Player2Score int    `json:"player2Score"`
}

// LiveMatchInfo — моментальный снимок матча из ephemeral-хранилища.
type LiveMatchInfo struct {
	MatchID   string           `json:"matchId"`
	Status    string           `json:"status"`
	BestOf    int              `json:"bestOf"`
	StartTime string           `json:"startTime"`
	Winner    string           `json:"winner,omitempty"`
	Player1   MatchPlayerState `json:"player1"`
	Player2   MatchPlayerState `json:"player2"`
}

// LiveMatchSnapshot — точка синхронизации для зрителей, подключившихся
// посреди фрейма: пропущенные score-события не доигрываются, вместо
// этого запрашивается снимок.
type LiveMatchSnapshot struct {
	Match        LiveMatchInfo  `json:"match"`
	CurrentFrame *LiveFrameInfo `json:"currentFrame,omitempty"`
}
