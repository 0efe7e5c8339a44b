// models/models.go
package models

import (
	"time"
)

// GameRecord is the archived outcome of one finished room.
type GameRecord struct {
	RoomID      string           `json:"room_id"`
	PlayerCount int              `json:"player_count"`
	Rounds      int              `json:"rounds"`
	Scores      map[int]int      `json:"scores"`
	FoundWords  map[int][]string `json:"found_words"`
	Reason      string           `json:"reason"`
	CreatedAt   time.Time        `json:"created_at"`
}

// PlayerScore is one leaderboard row: the best score a player number reached
// in a single game, per archived record.
type PlayerScore struct {
	RoomID string `json:"room_id"`
	Player int    `json:"player"`
	Score  int    `json:"score"`
}
