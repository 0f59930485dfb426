package services

import "testing"

func TestRollBreakPointsRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		points := rollBreakPoints()
		if points < 1 || points > maxBreakPoints {
			t.Fatalf("rollBreakPoints() = %d, want 1..%d", points, maxBreakPoints)
		}
	}
}

func TestPickScorerReturnsBothPlayers(t *testing.T) {
	seen := map[int]bool{}
	for i := 0; i < 1000; i++ {
		scorer := pickScorer()
		if scorer != 1 && scorer != 2 {
			t.Fatalf("pickScorer() = %d, want 1 or 2", scorer)
		}
		seen[scorer] = true
	}
	if !seen[1] || !seen[2] {
		t.Errorf("pickScorer never returned both players over 1000 rolls: %v", seen)
	}
}

func TestFrameDecided(t *testing.T) {
	tests := []struct {
		name    string
		p1, p2  int
		decided bool
	}{
		{"empty frame", 0, 0, false},
		{"score below minimum", 59, 0, false},
		{"minimum score but lead not over margin", 60, 40, false},
		{"lead exactly at margin", 60, 39, false},
		{"minimum score with winning lead", 60, 38, true},
		{"player two wins on margin", 12, 61, true},
		{"sum just below cap", 55, 44, false},
		{"sum at cap", 55, 45, true},
		{"sum over cap", 70, 65, true},
		{"tie at cap", 50, 50, true},
		{"high score without lead", 90, 85, true}, // за счёт суммы
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := frameDecided(tt.p1, tt.p2); got != tt.decided {
				t.Errorf("frameDecided(%d, %d) = %v, want %v", tt.p1, tt.p2, got, tt.decided)
			}
		})
	}
}

func TestFrameWinner(t *testing.T) {
	tests := []struct {
		name       string
		p1, p2     int
		lastScorer int
		want       int
	}{
		{"player one leads", 65, 40, 2, 1},
		{"player two leads", 40, 65, 1, 2},
		{"tie goes to last scorer one", 50, 50, 1, 1},
		{"tie goes to last scorer two", 50, 50, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := frameWinner(tt.p1, tt.p2, tt.lastScorer); got != tt.want {
				t.Errorf("frameWinner(%d, %d, %d) = %d, want %d", tt.p1, tt.p2, tt.lastScorer, got, tt.want)
			}
		})
	}
}

// Фрейм, который длится достаточно долго, всегда завершается: каждый тик
// добавляет хотя бы одно очко, потолок суммы конечен.
func TestFrameAlwaysTerminates(t *testing.T) {
	for trial := 0; trial < 100; trial++ {
		p1, p2 := 0, 0
		ticks := 0
		for !frameDecided(p1, p2) {
			ticks++
			if ticks > frameScoreCap {
				t.Fatalf("frame not decided after %d ticks (score %d-%d)", ticks, p1, p2)
			}
			if pickScorer() == 1 {
				p1 += rollBreakPoints()
			} else {
				p2 += rollBreakPoints()
			}
		}
	}
}
