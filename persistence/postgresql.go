// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/wfunc/spellchain/models"
)

// PostgreSQL is the plain database/sql implementation of Database, for
// deployments that prefer hand-written SQL over the GORM backend.
type PostgreSQL struct {
	db *sql.DB
}

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
        CREATE TABLE IF NOT EXISTS game_records (
            id SERIAL PRIMARY KEY,
            room_id VARCHAR(6) NOT NULL,
            player_count INT NOT NULL,
            rounds INT NOT NULL DEFAULT 1,
            scores JSONB NOT NULL,
            found_words JSONB NOT NULL,
            reason VARCHAR(255) NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE INDEX IF NOT EXISTS idx_game_records_room_id ON game_records(room_id);
        CREATE INDEX IF NOT EXISTS idx_game_records_created_at ON game_records(created_at);
    `)
	return err
}

func (p *PostgreSQL) SaveGameRecord(record *models.GameRecord) error {
	scores, err := json.Marshal(record.Scores)
	if err != nil {
		return err
	}
	foundWords, err := json.Marshal(record.FoundWords)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = p.db.ExecContext(ctx, `
        INSERT INTO game_records (room_id, player_count, rounds, scores, found_words, reason)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		record.RoomID, record.PlayerCount, record.Rounds, scores, foundWords, record.Reason,
	)
	return err
}

func (p *PostgreSQL) TopScores(limit int) ([]models.PlayerScore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rows, err := p.db.QueryContext(ctx, `
        SELECT room_id, s.key::int AS player, s.value::int AS score
        FROM game_records, jsonb_each_text(scores) AS s
        ORDER BY score DESC
        LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []models.PlayerScore
	for rows.Next() {
		var ps models.PlayerScore
		if err := rows.Scan(&ps.RoomID, &ps.Player, &ps.Score); err != nil {
			return nil, err
		}
		scores = append(scores, ps)
	}
	return scores, rows.Err()
}

func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
