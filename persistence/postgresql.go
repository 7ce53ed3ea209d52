// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	// PostgreSQL 驱动
	_ "github.com/lib/pq"

	"github.com/wfunc/yatzyserver/models"
)

// PostgreSQL is a plain database/sql implementation of the same store, for
// deployments that do not want the ORM in the write path.
type PostgreSQL struct {
	db *sql.DB
}

// NewPostgreSQL 创建 PostgreSQL 数据库连接
func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS matches (
            id SERIAL PRIMARY KEY,
            room_id TEXT NOT NULL,
            room_code TEXT NOT NULL,
            players JSONB NOT NULL,
            winner_name TEXT NOT NULL,
            surrendered BOOLEAN NOT NULL DEFAULT FALSE,
            opponent_left BOOLEAN NOT NULL DEFAULT FALSE,
            turns INT NOT NULL DEFAULT 0,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS player_stats (
            id SERIAL PRIMARY KEY,
            name TEXT UNIQUE NOT NULL,
            games INT NOT NULL DEFAULT 0,
            wins INT NOT NULL DEFAULT 0,
            losses INT NOT NULL DEFAULT 0,
            best_score INT NOT NULL DEFAULT 0
        )`)
	return err
}

func (p *PostgreSQL) SaveMatch(record *models.MatchRecord) error {
	players, err := json.Marshal(record.Players)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
        INSERT INTO matches (room_id, room_code, players, winner_name, surrendered, opponent_left, turns)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		record.RoomID, record.RoomCode, players, record.WinnerName,
		record.Surrendered, record.OpponentLeft, record.Turns)
	if err != nil {
		return err
	}

	for _, mp := range record.Players {
		wins, losses := 0, 1
		if mp.Winner {
			wins, losses = 1, 0
		}
		_, err = tx.ExecContext(ctx, `
            INSERT INTO player_stats (name, games, wins, losses, best_score)
            VALUES ($1, 1, $2, $3, $4)
            ON CONFLICT (name) DO UPDATE SET
                games = player_stats.games + 1,
                wins = player_stats.wins + $2,
                losses = player_stats.losses + $3,
                best_score = GREATEST(player_stats.best_score, $4)`,
			mp.Name, wins, losses, mp.Score)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (p *PostgreSQL) GetPlayerStats(name string) (*models.PlayerStats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stats := &models.PlayerStats{Name: name}
	err := p.db.QueryRowContext(ctx, `
        SELECT games, wins, losses, best_score FROM player_stats WHERE name = $1`,
		name).Scan(&stats.Games, &stats.Wins, &stats.Losses, &stats.BestScore)
	if err == sql.ErrNoRows {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (p *PostgreSQL) RecentMatches(limit int) ([]models.MatchRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rows, err := p.db.QueryContext(ctx, `
        SELECT room_id, room_code, players, winner_name, surrendered, opponent_left, turns, created_at
        FROM matches ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.MatchRecord
	for rows.Next() {
		var rec models.MatchRecord
		var players []byte
		if err := rows.Scan(&rec.RoomID, &rec.RoomCode, &players, &rec.WinnerName,
			&rec.Surrendered, &rec.OpponentLeft, &rec.Turns, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(players, &rec.Players); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
