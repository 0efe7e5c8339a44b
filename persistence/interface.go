// persistence/interface.go
package persistence

import (
	"errors"

	"github.com/wfunc/spellchain/models"
)

// Database archives finished games. Live room state is never written: a
// server restart forgets every in-flight game by design, only completed
// records survive.
type Database interface {
	SaveGameRecord(record *models.GameRecord) error
	TopScores(limit int) ([]models.PlayerScore, error)
	Close() error
}

var ErrRecordNotFound = errors.New("record not found")
