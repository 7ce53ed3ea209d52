package persistence

import (
	"github.com/wfunc/yatzyserver/models"
)

// Noop discards match records. Used when no database is configured; the
// server itself never depends on the store being real.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (n *Noop) SaveMatch(record *models.MatchRecord) error { return nil }

func (n *Noop) GetPlayerStats(name string) (*models.PlayerStats, error) {
	return nil, ErrRecordNotFound
}

func (n *Noop) RecentMatches(limit int) ([]models.MatchRecord, error) {
	return nil, nil
}

func (n *Noop) Close() error { return nil }
