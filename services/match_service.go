// services/match_service.go
package services

import (
	"time"

	"github.com/wfunc/yatzyserver/game"
	"github.com/wfunc/yatzyserver/models"
	"github.com/wfunc/yatzyserver/persistence"
)

// MatchService records finished games and serves player statistics.
type MatchService struct {
	db persistence.Database
}

func NewMatchService(db persistence.Database) *MatchService {
	return &MatchService{db: db}
}

// RecordFinishedGame converts a finished game state into a match record and
// stores it. Callers treat failures as non-fatal: losing a history row must
// never affect the room.
func (s *MatchService) RecordFinishedGame(code string, st *game.State) error {
	if st.Phase != game.PhaseFinished {
		return nil
	}

	record := &models.MatchRecord{
		RoomID:       st.RoomID,
		RoomCode:     code,
		Surrendered:  st.Surrendered,
		OpponentLeft: st.OpponentLeft,
		Turns:        st.Turn,
		CreatedAt:    time.Now(),
	}
	for _, p := range st.Players {
		winner := p.ID == st.Winner
		if winner {
			record.WinnerName = p.Name
		}
		record.Players = append(record.Players, models.MatchPlayer{
			Name:       p.Name,
			Avatar:     p.Avatar,
			Score:      p.TotalScore,
			UpperBonus: p.UpperBonus,
			Winner:     winner,
		})
	}

	return s.db.SaveMatch(record)
}

// PlayerStats 获取玩家统计
func (s *MatchService) PlayerStats(name string) (*models.PlayerStats, error) {
	return s.db.GetPlayerStats(name)
}

// RecentMatches returns the latest finished games.
func (s *MatchService) RecentMatches(limit int) ([]models.MatchRecord, error) {
	return s.db.RecentMatches(limit)
}
