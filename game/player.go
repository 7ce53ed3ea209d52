package game

import (
	"github.com/wfunc/yatzyserver/yatzy"
)

// Player is one seat in a room: connection identity, display name, avatar,
// score sheet and the totals derived from it.
type Player struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Avatar     string           `json:"avatar"`
	Scores     yatzy.ScoreSheet `json:"scores"`
	TotalScore int              `json:"totalScore"`
	UpperBonus bool             `json:"upperBonus"`
}

func NewPlayer(id, name, avatar string) *Player {
	return &Player{
		ID:     id,
		Name:   name,
		Avatar: avatar,
		Scores: make(yatzy.ScoreSheet),
	}
}

// recomputeTotals refreshes the derived fields after a score is written.
func (p *Player) recomputeTotals() {
	p.TotalScore = yatzy.TotalScore(p.Scores)
	p.UpperBonus = yatzy.HasBonus(p.Scores)
}

// sheetComplete reports whether all 13 categories have been scored.
func (p *Player) sheetComplete() bool {
	return len(p.Scores) == len(yatzy.Categories)
}

// resetSheet clears the sheet and derived totals for a rematch.
func (p *Player) resetSheet() {
	p.Scores = make(yatzy.ScoreSheet)
	p.TotalScore = 0
	p.UpperBonus = false
}

// Clone returns a deep copy of the player.
func (p *Player) Clone() *Player {
	scores := make(yatzy.ScoreSheet, len(p.Scores))
	for c, v := range p.Scores {
		scores[c] = v
	}
	clone := *p
	clone.Scores = scores
	return &clone
}
