package persistence

import (
	"fmt"

	"github.com/wfunc/yatzyserver/models"
)

// Database 数据库接口: the match-history store. Session state is never
// persisted; only finished games are written here.
type Database interface {
	SaveMatch(record *models.MatchRecord) error
	GetPlayerStats(name string) (*models.PlayerStats, error)
	RecentMatches(limit int) ([]models.MatchRecord, error)
	Close() error
}

// 错误定义
var (
	ErrRecordNotFound = fmt.Errorf("record not found")
)
