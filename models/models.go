// models holds the wire payloads exchanged with clients and the records
// written to the match store.
package models

import (
	"time"

	"github.com/wfunc/yatzyserver/game"
)

// Inbound payloads.

type CreateRoomRequest struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type JoinRoomRequest struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type ToggleHoldRequest struct {
	Index int `json:"index"`
}

type ScoreCategoryRequest struct {
	Category string `json:"category"`
}

// Outbound payloads.

type RoomCreated struct {
	Code     string `json:"code"`
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type GameStarted struct {
	RoomID string `json:"roomId"`
}

type GameOver struct {
	Winner       string         `json:"winner"`
	Players      []*game.Player `json:"players"`
	Surrendered  bool           `json:"surrendered,omitempty"`
	OpponentLeft bool           `json:"opponentLeft,omitempty"`
}

type PlayerDisconnected struct {
	ID string `json:"id"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}

// MatchRecord 对局记录模型
type MatchRecord struct {
	RoomID       string        `json:"room_id"`
	RoomCode     string        `json:"room_code"`
	Players      []MatchPlayer `json:"players"`
	WinnerName   string        `json:"winner_name"`
	Surrendered  bool          `json:"surrendered"`
	OpponentLeft bool          `json:"opponent_left"`
	Turns        int           `json:"turns"`
	CreatedAt    time.Time     `json:"created_at"`
}

// MatchPlayer 玩家信息（用于对局记录）
type MatchPlayer struct {
	Name       string `json:"name"`
	Avatar     string `json:"avatar"`
	Score      int    `json:"score"`
	UpperBonus bool   `json:"upper_bonus"`
	Winner     bool   `json:"winner"`
}

// PlayerStats 玩家统计信息
type PlayerStats struct {
	Name      string `json:"name"`
	Games     int    `json:"games"`
	Wins      int    `json:"wins"`
	Losses    int    `json:"losses"`
	BestScore int    `json:"best_score"`
}
