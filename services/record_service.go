// services/record_service.go
package services

import (
	"time"

	"github.com/wfunc/spellchain/logger"
	"github.com/wfunc/spellchain/models"
	"github.com/wfunc/spellchain/persistence"
	"github.com/wfunc/spellchain/room"
)

// RecordService turns finished-room snapshots into archived game records.
// With no database configured it degrades to a no-op, so the game path never
// depends on storage being up.
type RecordService struct {
	db persistence.Database
}

func NewRecordService(db persistence.Database) *RecordService {
	return &RecordService{db: db}
}

// ArchiveGame persists the final state of an ended room. Failures are logged
// and swallowed: an archive miss must never disturb a running server.
func (s *RecordService) ArchiveGame(snapshot *room.Snapshot) {
	if s.db == nil || snapshot == nil {
		return
	}

	record := &models.GameRecord{
		RoomID:      snapshot.Code,
		PlayerCount: snapshot.PlayerCount,
		Rounds:      snapshot.RoundCount,
		Scores:      snapshot.Scores,
		FoundWords:  snapshot.FoundWords,
		Reason:      snapshot.Reason,
		CreatedAt:   time.Now(),
	}
	if err := s.db.SaveGameRecord(record); err != nil {
		logger.Log.Errorf("Failed to archive game record for room %s: %v", record.RoomID, err)
		return
	}
	logger.Log.Infof("Archived game record for room %s (%d rounds)", record.RoomID, record.Rounds)
}

// TopScores proxies the leaderboard query for the admin RPC.
func (s *RecordService) TopScores(limit int) ([]models.PlayerScore, error) {
	if s.db == nil {
		return nil, persistence.ErrRecordNotFound
	}
	return s.db.TopScores(limit)
}
