// models/gorm_models.go
package models

import (
	"gorm.io/gorm"
)

// GormGameRecord mirrors GameRecord for the GORM backend. The score and word
// maps land in jsonb columns; a relational breakdown buys nothing for an
// append-only archive.
type GormGameRecord struct {
	gorm.Model
	RoomID      string `gorm:"index;not null"`
	PlayerCount int    `gorm:"not null"`
	Rounds      int    `gorm:"default:1"`
	Scores      []byte `gorm:"type:jsonb;not null"`
	FoundWords  []byte `gorm:"type:jsonb;not null"`
	Reason      string `gorm:"not null"`
}
