package services

import "errors"

// Общие ошибки сервисного слоя, используемые в маппинге HTTP.
var (
	// Ошибки валидации: отклоняются до создания какого-либо состояния.
	ErrMissingPlayers = errors.New("both player ids are required")
	ErrSamePlayer     = errors.New("a match requires two distinct players")
	ErrInvalidBestOf  = errors.New("best-of must be a positive odd number")

	// Not-found: отличаются от валидационных, для вызывающего не фатальны.
	ErrPlayerNotFound  = errors.New("one or both players not found")
	ErrMatchNotFound   = errors.New("match not found or not live")
	ErrPlayerNotRanked = errors.New("player not found in current rankings")

	// Конфликты.
	ErrSimulationExists = errors.New("a simulation is already running for this match")
)
