// persistence/gorm_postgresql.go
package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wfunc/yatzyserver/models"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&models.GormMatch{}, &models.GormPlayerStats{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

// SaveMatch writes the finished game and folds it into each player's stats
// inside one transaction.
func (g *GormPostgreSQL) SaveMatch(record *models.MatchRecord) error {
	players, err := json.Marshal(record.Players)
	if err != nil {
		return err
	}

	return g.db.Transaction(func(tx *gorm.DB) error {
		match := models.GormMatch{
			RoomID:       record.RoomID,
			RoomCode:     record.RoomCode,
			Players:      string(players),
			WinnerName:   record.WinnerName,
			Surrendered:  record.Surrendered,
			OpponentLeft: record.OpponentLeft,
			Turns:        record.Turns,
		}
		if err := tx.Create(&match).Error; err != nil {
			return err
		}

		for _, p := range record.Players {
			var stats models.GormPlayerStats
			err := tx.Where("name = ?", p.Name).First(&stats).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				stats = models.GormPlayerStats{Name: p.Name}
			} else if err != nil {
				return err
			}

			stats.Games++
			if p.Winner {
				stats.Wins++
			} else {
				stats.Losses++
			}
			if p.Score > stats.BestScore {
				stats.BestScore = p.Score
			}
			if err := tx.Save(&stats).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (g *GormPostgreSQL) GetPlayerStats(name string) (*models.PlayerStats, error) {
	var stats models.GormPlayerStats
	if err := g.db.Where("name = ?", name).First(&stats).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &models.PlayerStats{
		Name:      stats.Name,
		Games:     stats.Games,
		Wins:      stats.Wins,
		Losses:    stats.Losses,
		BestScore: stats.BestScore,
	}, nil
}

func (g *GormPostgreSQL) RecentMatches(limit int) ([]models.MatchRecord, error) {
	var rows []models.GormMatch
	if err := g.db.Order("created_at desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]models.MatchRecord, 0, len(rows))
	for _, row := range rows {
		var players []models.MatchPlayer
		if err := json.Unmarshal([]byte(row.Players), &players); err != nil {
			return nil, err
		}
		records = append(records, models.MatchRecord{
			RoomID:       row.RoomID,
			RoomCode:     row.RoomCode,
			Players:      players,
			WinnerName:   row.WinnerName,
			Surrendered:  row.Surrendered,
			OpponentLeft: row.OpponentLeft,
			Turns:        row.Turns,
			CreatedAt:    row.CreatedAt,
		})
	}
	return records, nil
}

func (g *GormPostgreSQL) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
