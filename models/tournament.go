package models

// DefaultTournamentPrize начисляется победителю, если у турнира
// не задан prizePool.
const DefaultTournamentPrize = 1000
