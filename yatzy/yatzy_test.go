package yatzy

import (
	"testing"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		dice     []int
		want     int
	}{
		{"ones counts only ones", Ones, []int{1, 1, 3, 4, 5}, 2},
		{"sixes all sixes", Sixes, []int{6, 6, 6, 6, 6}, 30},
		{"twos none present", Twos, []int{1, 3, 4, 5, 6}, 0},
		{"three of a kind sums all dice", ThreeOfAKind, []int{3, 3, 3, 4, 5}, 18},
		{"three of a kind satisfied by four", ThreeOfAKind, []int{2, 2, 2, 2, 5}, 13},
		{"three of a kind missing", ThreeOfAKind, []int{1, 2, 3, 4, 5}, 0},
		{"four of a kind sums all dice", FourOfAKind, []int{4, 4, 4, 4, 2}, 18},
		{"four of a kind missing", FourOfAKind, []int{4, 4, 4, 2, 2}, 0},
		{"full house", FullHouse, []int{2, 2, 3, 3, 3}, 25},
		{"full house needs exactly three and two", FullHouse, []int{2, 2, 2, 2, 3}, 0},
		{"five of a kind is not a full house", FullHouse, []int{6, 6, 6, 6, 6}, 0},
		{"small straight low", SmallStraight, []int{1, 2, 3, 4, 6}, 30},
		{"small straight high with pair", SmallStraight, []int{3, 4, 5, 6, 6}, 30},
		{"small straight missing", SmallStraight, []int{1, 2, 3, 5, 6}, 0},
		{"large straight low", LargeStraight, []int{1, 2, 3, 4, 5}, 40},
		{"large straight high", LargeStraight, []int{2, 3, 4, 5, 6}, 40},
		{"large straight missing", LargeStraight, []int{1, 2, 3, 4, 6}, 0},
		{"yatzy", Yatzy, []int{4, 4, 4, 4, 4}, 50},
		{"yatzy missing", Yatzy, []int{4, 4, 4, 4, 5}, 0},
		{"chance sums everything", Chance, []int{1, 2, 3, 4, 5}, 15},
		{"unknown category scores zero", Category("bogus"), []int{1, 2, 3, 4, 5}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.category, tt.dice); got != tt.want {
				t.Errorf("Score(%s, %v) = %d, want %d", tt.category, tt.dice, got, tt.want)
			}
		})
	}
}

// All-sixes hand, every category at once.
func TestScore_AllSixes(t *testing.T) {
	dice := []int{6, 6, 6, 6, 6}
	want := map[Category]int{
		Yatzy:         50,
		Chance:        30,
		Sixes:         30,
		ThreeOfAKind:  30,
		FourOfAKind:   30,
		FullHouse:     0,
		SmallStraight: 0,
		LargeStraight: 0,
		Ones:          0,
	}
	for category, expected := range want {
		if got := Score(category, dice); got != expected {
			t.Errorf("Score(%s, %v) = %d, want %d", category, dice, got, expected)
		}
	}
}

func TestScore_Deterministic(t *testing.T) {
	dice := []int{2, 3, 3, 5, 6}
	for _, c := range Categories {
		first := Score(c, dice)
		for i := 0; i < 10; i++ {
			if got := Score(c, dice); got != first {
				t.Fatalf("Score(%s, %v) not deterministic: %d then %d", c, dice, first, got)
			}
		}
	}
}

func TestTotalScore_BonusThreshold(t *testing.T) {
	// Upper section sums to exactly 63.
	atThreshold := ScoreSheet{
		Ones: 3, Twos: 6, Threes: 9, Fours: 12, Fives: 15, Sixes: 18,
	}
	if !HasBonus(atThreshold) {
		t.Error("expected bonus at upper total 63")
	}
	if got := TotalScore(atThreshold); got != 63+BonusValue {
		t.Errorf("TotalScore = %d, want %d", got, 63+BonusValue)
	}

	// One point short: no bonus.
	below := ScoreSheet{
		Ones: 2, Twos: 6, Threes: 9, Fours: 12, Fives: 15, Sixes: 18,
	}
	if HasBonus(below) {
		t.Error("expected no bonus at upper total 62")
	}
	if got := TotalScore(below); got != 62 {
		t.Errorf("TotalScore = %d, want 62", got)
	}
}

func TestTotalScore_IncludesLowerSection(t *testing.T) {
	sheet := ScoreSheet{
		Sixes:  30,
		Yatzy:  50,
		Chance: 22,
	}
	if got := TotalScore(sheet); got != 102 {
		t.Errorf("TotalScore = %d, want 102", got)
	}
}

func TestValid(t *testing.T) {
	for _, c := range Categories {
		if !Valid(c) {
			t.Errorf("Valid(%s) = false, want true", c)
		}
	}
	if Valid(Category("fivesOfAKind")) {
		t.Error("Valid should reject unknown categories")
	}
	if len(Categories) != 13 {
		t.Errorf("expected 13 categories, got %d", len(Categories))
	}
}
