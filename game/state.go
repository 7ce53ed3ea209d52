// Package game implements the authoritative turn state machine for one room:
// it validates and applies roll, hold, score, surrender and rematch actions
// and owns the phase transitions from lobby to game over.
package game

import (
	"errors"
	"math/rand"

	"github.com/wfunc/yatzyserver/yatzy"
)

const (
	NumDice        = 5
	RollsPerTurn   = 3
	TurnsPerPlayer = 13
	MaxPlayers     = 2
)

var (
	ErrRoomFull              = errors.New("room is full")
	ErrAlreadyJoined         = errors.New("already joined")
	ErrGameAlreadyStarted    = errors.New("game already started")
	ErrNotYourTurn           = errors.New("not your turn")
	ErrNoRollsLeft           = errors.New("no rolls left")
	ErrWrongPhase            = errors.New("action not allowed in this phase")
	ErrMustRollFirst         = errors.New("must roll first")
	ErrInvalidCategory       = errors.New("invalid category")
	ErrCategoryAlreadyScored = errors.New("category already filled")
	ErrGameFinished          = errors.New("game is finished")
	ErrOpponentLeft          = errors.New("opponent left")
	ErrUnknownPlayer         = errors.New("player not in this game")
)

// State is the single authoritative aggregate for one room. It is not safe
// for concurrent use; the owning room serializes access.
type State struct {
	RoomID             string    `json:"roomId"`
	Players            []*Player `json:"players"`
	CurrentPlayerIndex int       `json:"currentPlayerIndex"`
	Dice               []int     `json:"dice"`
	HeldDice           []bool    `json:"heldDice"`
	RollsLeft          int       `json:"rollsLeft"`
	Phase              Phase     `json:"phase"`
	Turn               int       `json:"turn"`
	MaxTurns           int       `json:"maxTurns"`
	Winner             string    `json:"winner,omitempty"`
	Surrendered        bool      `json:"surrendered,omitempty"`
	OpponentLeft       bool      `json:"opponentLeft,omitempty"`
}

func NewState(roomID string) *State {
	return &State{
		RoomID:    roomID,
		Players:   make([]*Player, 0, MaxPlayers),
		Dice:      []int{1, 1, 1, 1, 1},
		HeldDice:  make([]bool, NumDice),
		RollsLeft: RollsPerTurn,
		Phase:     PhaseWaiting,
		MaxTurns:  TurnsPerPlayer,
	}
}

// AddPlayer seats a player. When the room fills the game starts immediately:
// phase moves to rolling with a fresh three-roll, all-dice-free turn.
func (s *State) AddPlayer(p *Player) error {
	if len(s.Players) >= MaxPlayers {
		return ErrRoomFull
	}
	for _, existing := range s.Players {
		if existing.ID == p.ID {
			return ErrAlreadyJoined
		}
	}
	if s.Phase != PhaseWaiting {
		return ErrGameAlreadyStarted
	}
	s.Players = append(s.Players, p)

	if len(s.Players) == MaxPlayers {
		s.RollsLeft = RollsPerTurn
		s.HeldDice = make([]bool, NumDice)
		s.MaxTurns = TurnsPerPlayer * len(s.Players)
		return s.transition(PhaseRolling)
	}
	return nil
}

// RemovePlayer drops a player from the game. Active play stops: if exactly
// one player remains mid-game, the game finishes in their favor with the
// opponent-left outcome. Returns false if the player was not seated.
func (s *State) RemovePlayer(id string) bool {
	idx := -1
	for i, p := range s.Players {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	s.Players = append(s.Players[:idx], s.Players[idx+1:]...)
	if s.CurrentPlayerIndex >= len(s.Players) {
		s.CurrentPlayerIndex = 0
	}

	if len(s.Players) == 1 && (s.Phase == PhaseRolling || s.Phase == PhaseScoring) {
		s.Winner = s.Players[0].ID
		s.OpponentLeft = true
		s.Phase = PhaseFinished
	}
	return true
}

// Roll resamples every free die for the current player and consumes a roll.
// When the last roll is used the phase moves to scoring.
func (s *State) Roll(playerID string) error {
	current := s.currentPlayer()
	if current == nil || current.ID != playerID {
		return ErrNotYourTurn
	}
	if s.RollsLeft <= 0 {
		return ErrNoRollsLeft
	}
	if s.Phase != PhaseRolling {
		return ErrWrongPhase
	}

	for i := range s.Dice {
		if !s.HeldDice[i] {
			s.Dice[i] = rand.Intn(6) + 1
		}
	}
	s.RollsLeft--
	if s.RollsLeft == 0 {
		return s.transition(PhaseScoring)
	}
	return nil
}

// ToggleHold flips the held flag of one die. Invalid attempts are a silent
// no-op: holds are a best-effort hint, not a scored action. The return value
// reports whether anything changed.
func (s *State) ToggleHold(playerID string, index int) bool {
	current := s.currentPlayer()
	if current == nil || current.ID != playerID {
		return false
	}
	if s.RollsLeft >= RollsPerTurn || s.RollsLeft <= 0 {
		return false
	}
	if index < 0 || index >= NumDice {
		return false
	}
	s.HeldDice[index] = !s.HeldDice[index]
	return true
}

// ScoreCategory writes the current dice's value for the category into the
// acting player's sheet, then either finishes the game or hands the turn
// over. Sheet entries are write-once.
func (s *State) ScoreCategory(playerID string, category yatzy.Category) error {
	if s.Phase == PhaseFinished {
		return ErrGameFinished
	}
	if s.Phase == PhaseWaiting {
		return ErrWrongPhase
	}
	current := s.currentPlayer()
	if current == nil || current.ID != playerID {
		return ErrNotYourTurn
	}
	if s.RollsLeft == RollsPerTurn {
		return ErrMustRollFirst
	}
	if !yatzy.Valid(category) {
		return ErrInvalidCategory
	}
	if _, scored := current.Scores[category]; scored {
		return ErrCategoryAlreadyScored
	}

	current.Scores[category] = yatzy.Score(category, s.Dice)
	current.recomputeTotals()

	if s.allSheetsComplete() {
		s.declareWinner()
		return s.transition(PhaseFinished)
	}

	s.advanceTurn()
	return nil
}

// Surrender ends the game immediately in favor of the other player. Any
// seated player may concede, not only the one whose turn it is.
func (s *State) Surrender(playerID string) error {
	if s.Phase == PhaseWaiting || s.Phase == PhaseFinished {
		return ErrWrongPhase
	}
	loser, ok := s.PlayerByID(playerID)
	if !ok {
		return ErrUnknownPlayer
	}
	for _, p := range s.Players {
		if p.ID != loser.ID {
			s.Winner = p.ID
		}
	}
	s.Surrendered = true
	return s.transition(PhaseFinished)
}

// Rematch restarts a finished game with the same seats and sheet order.
func (s *State) Rematch() error {
	if s.Phase != PhaseFinished {
		return ErrWrongPhase
	}
	if len(s.Players) < MaxPlayers {
		return ErrOpponentLeft
	}
	for _, p := range s.Players {
		p.resetSheet()
	}
	s.CurrentPlayerIndex = 0
	s.Dice = []int{1, 1, 1, 1, 1}
	s.HeldDice = make([]bool, NumDice)
	s.RollsLeft = RollsPerTurn
	s.Turn = 0
	s.Winner = ""
	s.Surrendered = false
	s.OpponentLeft = false
	return s.transition(PhaseRolling)
}

// PlayerByID looks up a seated player.
func (s *State) PlayerByID(id string) (*Player, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Clone returns a deep copy of the state. The room applies every action to a
// clone and installs it only on success, so a failed or panicking action can
// never leave a half-mutated state visible.
func (s *State) Clone() *State {
	clone := *s
	clone.Players = make([]*Player, len(s.Players))
	for i, p := range s.Players {
		clone.Players[i] = p.Clone()
	}
	clone.Dice = append([]int(nil), s.Dice...)
	clone.HeldDice = append([]bool(nil), s.HeldDice...)
	return &clone
}

func (s *State) currentPlayer() *Player {
	if s.CurrentPlayerIndex < 0 || s.CurrentPlayerIndex >= len(s.Players) {
		return nil
	}
	return s.Players[s.CurrentPlayerIndex]
}

func (s *State) allSheetsComplete() bool {
	for _, p := range s.Players {
		if !p.sheetComplete() {
			return false
		}
	}
	return len(s.Players) > 0
}

// declareWinner picks the higher total. Ties go to the first seat by
// registration order, matching the original rule.
func (s *State) declareWinner() {
	if len(s.Players) < 2 {
		if len(s.Players) == 1 {
			s.Winner = s.Players[0].ID
		}
		return
	}
	if s.Players[0].TotalScore >= s.Players[1].TotalScore {
		s.Winner = s.Players[0].ID
	} else {
		s.Winner = s.Players[1].ID
	}
}

func (s *State) advanceTurn() {
	s.CurrentPlayerIndex = (s.CurrentPlayerIndex + 1) % len(s.Players)
	s.RollsLeft = RollsPerTurn
	s.HeldDice = make([]bool, NumDice)
	s.Turn++
	s.Phase = PhaseRolling
}
