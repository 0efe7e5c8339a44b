// persistence/gorm_postgresql.go
package persistence

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wfunc/spellchain/models"
)

// GormPostgreSQL archives game records through GORM.
type GormPostgreSQL struct {
	db *gorm.DB
}

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

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.GormGameRecord{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

func (p *GormPostgreSQL) SaveGameRecord(record *models.GameRecord) error {
	scores, err := json.Marshal(record.Scores)
	if err != nil {
		return err
	}
	foundWords, err := json.Marshal(record.FoundWords)
	if err != nil {
		return err
	}

	row := models.GormGameRecord{
		RoomID:      record.RoomID,
		PlayerCount: record.PlayerCount,
		Rounds:      record.Rounds,
		Scores:      scores,
		FoundWords:  foundWords,
		Reason:      record.Reason,
	}
	return p.db.Create(&row).Error
}

// TopScores flattens the per-player jsonb score maps into a ranked list.
func (p *GormPostgreSQL) TopScores(limit int) ([]models.PlayerScore, error) {
	var scores []models.PlayerScore

	err := p.db.Raw(
		`
        SELECT room_id, s.key::int AS player, s.value::int AS score
        FROM gorm_game_records, jsonb_each_text(scores) AS s
        ORDER BY score DESC
        LIMIT ?`,
		limit,
	).Scan(&scores).Error

	return scores, err
}

func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
