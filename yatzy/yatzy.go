// Package yatzy holds the scoring rules: a pure mapping from a dice
// combination to a point value for a category, plus sheet totals.
package yatzy

// Category is one of the 13 scoring categories on a sheet.
type Category string

const (
	Ones          Category = "ones"
	Twos          Category = "twos"
	Threes        Category = "threes"
	Fours         Category = "fours"
	Fives         Category = "fives"
	Sixes         Category = "sixes"
	ThreeOfAKind  Category = "threeOfAKind"
	FourOfAKind   Category = "fourOfAKind"
	FullHouse     Category = "fullHouse"
	SmallStraight Category = "smallStraight"
	LargeStraight Category = "largeStraight"
	Yatzy         Category = "yatzy"
	Chance        Category = "chance"
)

// Categories lists every category in sheet order.
var Categories = []Category{
	Ones, Twos, Threes, Fours, Fives, Sixes,
	ThreeOfAKind, FourOfAKind, FullHouse,
	SmallStraight, LargeStraight, Yatzy, Chance,
}

var upperSection = map[Category]int{
	Ones: 1, Twos: 2, Threes: 3, Fours: 4, Fives: 5, Sixes: 6,
}

const (
	BonusThreshold = 63
	BonusValue     = 35
)

// ScoreSheet maps a category to its recorded score. A missing key means the
// category has not been scored yet; a present zero is a deliberate scratch.
type ScoreSheet map[Category]int

// Valid reports whether c is one of the 13 legal categories.
func Valid(c Category) bool {
	_, upper := upperSection[c]
	if upper {
		return true
	}
	switch c {
	case ThreeOfAKind, FourOfAKind, FullHouse, SmallStraight, LargeStraight, Yatzy, Chance:
		return true
	}
	return false
}

// Score returns the point value of the dice for the given category.
// Unknown categories score 0.
func Score(c Category, dice []int) int {
	counts := countFaces(dice)
	total := sumDice(dice)

	if face, ok := upperSection[c]; ok {
		return counts[face] * face
	}

	switch c {
	case ThreeOfAKind:
		if anyCount(counts, func(n int) bool { return n >= 3 }) {
			return total
		}
		return 0
	case FourOfAKind:
		if anyCount(counts, func(n int) bool { return n >= 4 }) {
			return total
		}
		return 0
	case FullHouse:
		hasThree := anyCount(counts, func(n int) bool { return n == 3 })
		hasTwo := anyCount(counts, func(n int) bool { return n == 2 })
		if hasThree && hasTwo {
			return 25
		}
		return 0
	case SmallStraight:
		for _, run := range [][]int{{1, 2, 3, 4}, {2, 3, 4, 5}, {3, 4, 5, 6}} {
			if containsRun(counts, run) {
				return 30
			}
		}
		return 0
	case LargeStraight:
		if containsRun(counts, []int{1, 2, 3, 4, 5}) || containsRun(counts, []int{2, 3, 4, 5, 6}) {
			return 40
		}
		return 0
	case Yatzy:
		if len(counts) == 1 {
			return 50
		}
		return 0
	case Chance:
		return total
	}
	return 0
}

// UpperTotal sums the scored upper-section categories.
func UpperTotal(scores ScoreSheet) int {
	total := 0
	for c := range upperSection {
		total += scores[c]
	}
	return total
}

// HasBonus reports whether the upper section has reached the bonus threshold.
func HasBonus(scores ScoreSheet) bool {
	return UpperTotal(scores) >= BonusThreshold
}

// TotalScore sums the full sheet: upper section, bonus, lower section.
func TotalScore(scores ScoreSheet) int {
	upper := UpperTotal(scores)
	total := upper
	if upper >= BonusThreshold {
		total += BonusValue
	}
	for _, c := range []Category{ThreeOfAKind, FourOfAKind, FullHouse, SmallStraight, LargeStraight, Yatzy, Chance} {
		total += scores[c]
	}
	return total
}

func countFaces(dice []int) map[int]int {
	counts := make(map[int]int)
	for _, d := range dice {
		counts[d]++
	}
	return counts
}

func sumDice(dice []int) int {
	total := 0
	for _, d := range dice {
		total += d
	}
	return total
}

func anyCount(counts map[int]int, pred func(int) bool) bool {
	for _, n := range counts {
		if pred(n) {
			return true
		}
	}
	return false
}

func containsRun(counts map[int]int, run []int) bool {
	for _, v := range run {
		if counts[v] == 0 {
			return false
		}
	}
	return true
}
