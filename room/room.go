// room/room.go
package room

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wfunc/spellchain/dictionary"
	"github.com/wfunc/spellchain/game"
	"github.com/wfunc/spellchain/logger"
	"github.com/wfunc/spellchain/network"
	"github.com/wfunc/spellchain/session"
)

var (
	ErrRoomFull      = errors.New("room is already full")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrGameNotActive = errors.New("game has not started yet")
	ErrRoomEnded     = errors.New("room has already ended")
)

// Status is the room's lifecycle state. A room moves Waiting -> Active
// exactly once, when the last expected player joins, and any player leaving
// moves it to Ended for everyone.
type Status int

const (
	StatusWaiting Status = iota
	StatusActive
	StatusEnded
)

// slot binds one session to its 1-based player number, in join order.
type slot struct {
	sess   *session.Session
	number int
}

// Room is one game's authoritative state. Every mutating operation runs under
// the room's own lock for its full duration, broadcasts included, so no
// client ever observes a half-applied turn. Locks of different rooms never
// contend and the registry lock is never held inside a room operation.
type Room struct {
	Code        string
	PlayerCount int
	CreatedAt   time.Time

	engine      *game.Engine
	slots       []slot
	status      Status
	broadcaster Broadcaster
	mutex       sync.Mutex
}

func NewRoom(code string, playerCount int, dict *dictionary.Trie, broadcaster Broadcaster) *Room {
	return &Room{
		Code:        code,
		PlayerCount: playerCount,
		CreatedAt:   time.Now(),
		engine:      game.NewEngine(dict, playerCount),
		status:      StatusWaiting,
		broadcaster: broadcaster,
	}
}

func (r *Room) Status() Status {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.status
}

// IsEmpty reports whether every slot has been cleared.
func (r *Room) IsEmpty() bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.slots) == 0
}

// sessions snapshots the slot sessions. Callers hold r.mutex.
func (r *Room) sessions() []*session.Session {
	sessions := make([]*session.Session, 0, len(r.slots))
	for _, sl := range r.slots {
		sessions = append(sessions, sl.sess)
	}
	return sessions
}

// AddPlayer seats the session in the next free slot and returns its player
// number. The acknowledgment (room_created or room_joined, per ackType) goes
// to the joining session before anything else: clients learn their player
// number from it, so it must precede the game_start broadcast a filling join
// triggers. Both sends happen under the lock, keeping the order fixed.
func (r *Room) AddPlayer(sess *session.Session, ackType string) (int, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.status == StatusEnded {
		return 0, ErrRoomEnded
	}
	if len(r.slots) >= r.PlayerCount {
		return 0, ErrRoomFull
	}

	number := len(r.slots) + 1
	r.slots = append(r.slots, slot{sess: sess, number: number})
	sess.RoomID = r.Code
	sess.PlayerNumber = number

	if err := sess.Send(&network.RoomStatusMessage{
		Type:         ackType,
		RoomID:       r.Code,
		PlayerNumber: number,
		PlayerCount:  r.PlayerCount,
	}); err != nil {
		logger.Log.Warnf("Failed to acknowledge player %d in room %s: %v", number, r.Code, err)
	}

	if len(r.slots) == r.PlayerCount {
		r.status = StatusActive
		logger.Log.Infof("Starting game in room %s with %d players", r.Code, r.PlayerCount)
		r.broadcaster.Send(r.sessions(), &network.GameStartMessage{
			Type:          network.MsgTypeGameStart,
			CurrentPlayer: r.engine.CurrentPlayer(),
			Sequence:      r.engine.Sequence(),
			Scores:        r.engine.Scores(),
			RoundCount:    r.engine.RoundCount(),
		})
	}
	return number, nil
}

// ProcessCharacter applies one turn and broadcasts the resulting game_update.
// Everything from the turn check to the broadcast is one atomic unit: two
// players racing for the same turn serialize on the room lock and the loser
// is rejected by the current-player check.
func (r *Room) ProcessCharacter(playerNumber int, char string) (*game.TurnResult, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.status != StatusActive {
		return nil, ErrGameNotActive
	}
	if playerNumber != r.engine.CurrentPlayer() {
		return nil, ErrNotYourTurn
	}

	result := r.engine.AddCharacter(playerNumber, char)
	logger.Log.Infof("Room %s update: player=%d char=%q sequence=%q round=%d",
		r.Code, playerNumber, char, result.Sequence, result.RoundCount)

	messages := result.Messages
	if messages == nil {
		messages = []string{}
	}
	r.broadcaster.Send(r.sessions(), &network.GameUpdateMessage{
		Type:          network.MsgTypeGameUpdate,
		Player:        result.Player,
		Char:          result.Char,
		Messages:      messages,
		CurrentPlayer: result.CurrentPlayer,
		Sequence:      result.Sequence,
		Scores:        r.engine.Scores(),
		RoundCount:    result.RoundCount,
	})
	return &result, nil
}

// WordsCompleted counts every word found in the room so far.
func (r *Room) WordsCompleted() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	total := 0
	for _, words := range r.engine.FoundWords() {
		total += len(words)
	}
	return total
}

// Snapshot is the final record of a finished room.
type Snapshot struct {
	Code        string
	PlayerCount int
	Scores      map[int]int
	FoundWords  map[int][]string
	RoundCount  int
	Reason      string
}

// RemovePlayer ends the whole room: one player leaving, for any reason,
// broadcasts game_end with the final scores and each player's words, closes
// every connection and clears the slots. There is no continuation with the
// remaining players. Returns the final snapshot for archival.
func (r *Room) RemovePlayer(playerNumber int, reason string) *Snapshot {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.status == StatusEnded {
		return nil
	}
	logger.Log.Infof("Player %d left room %s. Reason: %s", playerNumber, r.Code, reason)

	foundWords := make(map[int][]string, r.PlayerCount)
	for player, words := range r.engine.FoundWords() {
		list := make([]string, 0, len(words))
		for w := range words {
			list = append(list, w)
		}
		sort.Strings(list)
		foundWords[player] = list
	}

	r.broadcaster.Send(r.sessions(), &network.GameEndMessage{
		Type:         network.MsgTypeGameEnd,
		PlayerNumber: playerNumber,
		Reason:       reason,
		Scores:       r.engine.Scores(),
		FoundWords:   foundWords,
	})

	for _, sl := range r.slots {
		if err := sl.sess.Close(); err != nil {
			logger.Log.Warnf("Error closing connection of player %d in room %s: %v", sl.number, r.Code, err)
		}
	}
	r.slots = nil
	r.status = StatusEnded

	return &Snapshot{
		Code:        r.Code,
		PlayerCount: r.PlayerCount,
		Scores:      r.engine.Scores(),
		FoundWords:  foundWords,
		RoundCount:  r.engine.RoundCount(),
		Reason:      reason,
	}
}

// Manager is the room registry: the sole authority for room codes, lookup and
// deletion. Its lock only ever covers the map itself, never a broadcast or a
// socket write.
type Manager struct {
	rooms map[string]*Room
	dict  *dictionary.Trie
	mutex sync.RWMutex
}

func NewManager(dict *dictionary.Trie) *Manager {
	return &Manager{
		rooms: make(map[string]*Room),
		dict:  dict,
	}
}

// generateCode derives a 6-character uppercase code from a fresh UUID. The
// first six characters of a v4 UUID are hex digits, which keeps the code
// inside the [A-Z0-9]{6} wire format.
func generateCode() string {
	return strings.ToUpper(uuid.New().String()[:6])
}

// CreateRoom registers a new room under a code unique among live rooms.
func (m *Manager) CreateRoom(playerCount int, broadcaster Broadcaster) *Room {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	code := generateCode()
	for m.rooms[code] != nil {
		code = generateCode()
	}

	room := NewRoom(code, playerCount, m.dict, broadcaster)
	m.rooms[code] = room
	return room
}

func (m *Manager) GetRoom(code string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	room, exists := m.rooms[code]
	return room, exists
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}

// DeleteIfEmpty removes the room once its last player is gone. Deleting
// through this single path is what makes a second removal harmless.
func (m *Manager) DeleteIfEmpty(code string) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	room, exists := m.rooms[code]
	if !exists || !room.IsEmpty() {
		return false
	}
	delete(m.rooms, code)
	logger.Log.Infof("Terminated room %s", code)
	return true
}

// Shutdown force-ends every live room and clears the registry. Only the
// process shutdown path calls this.
func (m *Manager) Shutdown() {
	m.mutex.Lock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		rooms = append(rooms, room)
	}
	m.rooms = make(map[string]*Room)
	m.mutex.Unlock()

	for _, room := range rooms {
		room.RemovePlayer(0, "Server shutting down")
	}
}
