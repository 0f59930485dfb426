package models

// PlayerStats — сырые агрегаты по игроку за скользящее окно в 365 дней,
// как их возвращает durable-хранилище, ещё без рангов.
type PlayerStats struct {
	PlayerID          string  `json:"playerId"`
	PlayerName        string  `json:"playerName"`
	Nationality       string  `json:"nationality"`
	TournamentsWon    int     `json:"tournamentsWon"`
	TotalPrize        float64 `json:"totalPrize"`
	TournamentsPlayed int     `json:"tournamentsPlayed"`
	TotalMatches      int     `json:"totalMatches"`
	TotalFrames       int     `json:"totalFrames"`
}

// LeaderboardEntry — строка рейтинга. Ранг плотный, 1-based,
// одинаковый только при полном совпадении (wins, prize, name).
type LeaderboardEntry struct {
	PlayerStats
	Ranking int `json:"ranking"`
}

// LeaderboardCacheStatus описывает состояние кеша рейтинга
// для административной проверки.
type LeaderboardCacheStatus struct {
	CacheKey   string `json:"cache_key"`
	Exists     bool   `json:"exists"`
	TTLSeconds int    `json:"ttl_seconds"`
	Entries    int    `json:"entries"`
}
