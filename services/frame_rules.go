package services

import "math/rand"

// Правила начисления и завершения фрейма. Чистые функции — их покрывают
// таблицы в frame_rules_test.go, сама симуляция проверяется отдельно.

const (
	// Максимальный брейк за один тик; очки равномерны на 1..maxBreakPoints.
	maxBreakPoints = 30

	// Фрейм выигран с margin-правилом: счёт не меньше minWinningScore
	// и отрыв строго больше winningMargin.
	minWinningScore = 60
	winningMargin   = 20

	// Запасное правило: фрейм завершается, когда сумма очков достигает потолка.
	frameScoreCap = 100
)

func rollBreakPoints() int {
	return rand.Intn(maxBreakPoints) + 1
}

// pickScorer выбирает, кто из игроков забивает на этом тике: 1 или 2.
func pickScorer() int {
	if rand.Intn(2) == 0 {
		return 1
	}
	return 2
}

// frameDecided проверяет условия завершения после каждого тика.
// Margin-правило проверяется первым, но достаточно любого из двух.
func frameDecided(p1Score, p2Score int) bool {
	if p1Score >= minWinningScore && p1Score > p2Score+winningMargin {
		return true
	}
	if p2Score >= minWinningScore && p2Score > p1Score+winningMargin {
		return true
	}
	return p1Score+p2Score >= frameScoreCap
}

// frameWinner возвращает номер игрока, взявшего фрейм. Равный счёт
// возможен, только когда сработал потолок суммы; тогда фрейм забирает
// автор последнего брейка.
func frameWinner(p1Score, p2Score, lastScorer int) int {
	switch {
	case p1Score > p2Score:
		return 1
	case p2Score > p1Score:
		return 2
	default:
		return lastScorer
	}
}
