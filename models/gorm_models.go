package models

import (
	"gorm.io/gorm"
)

// GormMatch 对局记录模型
type GormMatch struct {
	gorm.Model
	RoomID       string `gorm:"index;not null"`
	RoomCode     string `gorm:"index;not null"`
	Players      string `gorm:"type:jsonb;not null"` // marshaled []MatchPlayer
	WinnerName   string `gorm:"not null"`
	Surrendered  bool   `gorm:"default:false"`
	OpponentLeft bool   `gorm:"default:false"`
	Turns        int    `gorm:"default:0"`
}

// GormPlayerStats 玩家统计模型
type GormPlayerStats struct {
	gorm.Model
	Name      string `gorm:"uniqueIndex;not null"`
	Games     int    `gorm:"default:0"`
	Wins      int    `gorm:"default:0"`
	Losses    int    `gorm:"default:0"`
	BestScore int    `gorm:"default:0"`
}
