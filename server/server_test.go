package server

import (
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/wfunc/spellchain/config"
	"github.com/wfunc/spellchain/dictionary"
	"github.com/wfunc/spellchain/logger"
	"github.com/wfunc/spellchain/network"
	"github.com/wfunc/spellchain/session"
)

func init() {
	logger.Init()
}

// MockConnection records every message sent to it.
type MockConnection struct {
	mutex  sync.Mutex
	sent   [][]byte
	closed bool
}

func (m *MockConnection) Send(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return m.WriteLine(data)
}

func (m *MockConnection) WriteLine(data []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	m.sent = append(m.sent, buf)
	return nil
}

func (m *MockConnection) ReadMessage() ([]byte, error)   { return nil, nil }
func (m *MockConnection) SetIdleTimeout(d time.Duration) {}
func (m *MockConnection) RemoteAddr() net.Addr           { return &net.TCPAddr{} }

func (m *MockConnection) Close() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.closed = true
	return nil
}

func (m *MockConnection) LastSent(t *testing.T) map[string]interface{} {
	t.Helper()
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if len(m.sent) == 0 {
		t.Fatal("Expected at least one sent message")
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(m.sent[len(m.sent)-1], &decoded); err != nil {
		t.Fatalf("Last sent message is not valid JSON: %v", err)
	}
	return decoded
}

func (m *MockConnection) SentTypes(t *testing.T) []string {
	t.Helper()
	m.mutex.Lock()
	defer m.mutex.Unlock()
	types := make([]string, 0, len(m.sent))
	for _, frame := range m.sent {
		var probe struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(frame, &probe); err != nil {
			t.Fatalf("Sent frame is not valid JSON: %v", err)
		}
		types = append(types, probe.Type)
	}
	return types
}

func testServer() *GameServer {
	trie := dictionary.NewTrie()
	trie.Insert("cat", "a small domesticated feline")
	trie.Insert("cart", "a wheeled vehicle")

	cfg := config.ServerConfig{
		TCPAddress:  "127.0.0.1:0",
		IdleTimeout: time.Minute,
	}
	return NewGameServer(cfg, trie, nil)
}

func testSession(id string) (*session.Session, *MockConnection) {
	conn := &MockConnection{}
	return session.NewSession(id, conn), conn
}

func TestHandleMessage_InvalidJSON(t *testing.T) {
	s := testServer()
	sess, conn := testSession("s1")

	s.handleMessage(sess, []byte("{not json"))

	reply := conn.LastSent(t)
	if reply["type"] != network.MsgTypeError {
		t.Fatalf("Expected an error reply, got %v", reply)
	}
	if reply["message"] != "Invalid JSON format." {
		t.Errorf("Unexpected error text: %v", reply["message"])
	}
}

func TestHandleMessage_UnknownType(t *testing.T) {
	s := testServer()
	sess, conn := testSession("s1")

	s.handleMessage(sess, []byte(`{"type":"dance"}`))

	reply := conn.LastSent(t)
	if reply["message"] != "Unknown message type." {
		t.Errorf("Unexpected error text: %v", reply["message"])
	}
}

func TestHandleMessage_CreateRoom(t *testing.T) {
	s := testServer()
	sess, conn := testSession("s1")

	s.handleMessage(sess, []byte(`{"type":"create_room","player_count":2}`))

	reply := conn.LastSent(t)
	if reply["type"] != network.MsgTypeRoomCreated {
		t.Fatalf("Expected room_created, got %v", reply["type"])
	}
	if reply["player_number"] != float64(1) {
		t.Errorf("Creator should be player 1, got %v", reply["player_number"])
	}
	code, _ := reply["room_id"].(string)
	if len(code) != 6 {
		t.Errorf("Expected a 6-character room code, got %q", code)
	}
	if sess.RoomID != code {
		t.Errorf("Session should be bound to room %s, got %q", code, sess.RoomID)
	}
	if s.RoomCount() != 1 {
		t.Errorf("Expected one live room, got %d", s.RoomCount())
	}
}

func TestHandleMessage_CreateRoom_InvalidPlayerCount(t *testing.T) {
	s := testServer()
	sess, conn := testSession("s1")

	s.handleMessage(sess, []byte(`{"type":"create_room","player_count":7}`))

	reply := conn.LastSent(t)
	if reply["type"] != network.MsgTypeError {
		t.Fatalf("Expected an error reply, got %v", reply)
	}
	if s.RoomCount() != 0 {
		t.Errorf("No room should exist after a rejected create, got %d", s.RoomCount())
	}
}

func TestHandleMessage_JoinRoom_NotFound(t *testing.T) {
	s := testServer()
	sess, conn := testSession("s1")

	s.handleMessage(sess, []byte(`{"type":"join_room","room_id":"ZZZZZZ"}`))

	reply := conn.LastSent(t)
	if reply["message"] != "Room ID could not be found." {
		t.Errorf("Unexpected error text: %v", reply["message"])
	}
}

func TestHandleMessage_JoinRoom_StartsGameWhenFull(t *testing.T) {
	s := testServer()
	creator, creatorConn := testSession("s1")
	joiner, joinerConn := testSession("s2")

	s.handleMessage(creator, []byte(`{"type":"create_room","player_count":2}`))
	code := creator.RoomID

	s.handleMessage(joiner, []byte(fmt.Sprintf(`{"type":"join_room","room_id":%q}`, code)))

	// The joiner's last message is game_start, broadcast right after the
	// room_joined acknowledgment.
	reply := joinerConn.LastSent(t)
	if reply["type"] != network.MsgTypeGameStart {
		t.Fatalf("Expected game_start after the room fills, got %v", reply["type"])
	}
	if reply["current_player"] != float64(1) {
		t.Errorf("Player 1 should start, got %v", reply["current_player"])
	}
	if creatorReply := creatorConn.LastSent(t); creatorReply["type"] != network.MsgTypeGameStart {
		t.Errorf("Creator should see game_start too, got %v", creatorReply["type"])
	}
}

func TestHandleMessage_JoinAckPrecedesGameStart(t *testing.T) {
	s := testServer()
	creator, creatorConn := testSession("s1")
	joiner, joinerConn := testSession("s2")

	s.handleMessage(creator, []byte(`{"type":"create_room","player_count":2}`))
	code := creator.RoomID
	s.handleMessage(joiner, []byte(fmt.Sprintf(`{"type":"join_room","room_id":%q}`, code)))

	// Clients learn their player number from the acknowledgment, so the
	// player who fills the room must still see room_joined before game_start.
	joinerTypes := joinerConn.SentTypes(t)
	if len(joinerTypes) != 2 || joinerTypes[0] != network.MsgTypeRoomJoined || joinerTypes[1] != network.MsgTypeGameStart {
		t.Errorf("Expected [room_joined game_start] in order, got %v", joinerTypes)
	}
	creatorTypes := creatorConn.SentTypes(t)
	if len(creatorTypes) != 2 || creatorTypes[0] != network.MsgTypeRoomCreated || creatorTypes[1] != network.MsgTypeGameStart {
		t.Errorf("Expected [room_created game_start] in order, got %v", creatorTypes)
	}
}

func TestHandleMessage_JoinRoom_Full(t *testing.T) {
	s := testServer()
	creator, _ := testSession("s1")
	joiner, _ := testSession("s2")
	late, lateConn := testSession("s3")

	s.handleMessage(creator, []byte(`{"type":"create_room","player_count":2}`))
	code := creator.RoomID
	s.handleMessage(joiner, []byte(fmt.Sprintf(`{"type":"join_room","room_id":%q}`, code)))
	s.handleMessage(late, []byte(fmt.Sprintf(`{"type":"join_room","room_id":%q}`, code)))

	reply := lateConn.LastSent(t)
	if reply["message"] != "Room is already full." {
		t.Errorf("Unexpected error text: %v", reply["message"])
	}
}

func TestHandleMessage_AddCharacter_NoRoom(t *testing.T) {
	s := testServer()
	sess, conn := testSession("s1")

	s.handleMessage(sess, []byte(`{"type":"add_character","char":"c"}`))

	reply := conn.LastSent(t)
	if reply["message"] != "You are not part of any room." {
		t.Errorf("Unexpected error text: %v", reply["message"])
	}
}

func TestHandleMessage_AddCharacter_Turns(t *testing.T) {
	s := testServer()
	creator, creatorConn := testSession("s1")
	joiner, joinerConn := testSession("s2")

	s.handleMessage(creator, []byte(`{"type":"create_room","player_count":2}`))
	code := creator.RoomID
	s.handleMessage(joiner, []byte(fmt.Sprintf(`{"type":"join_room","room_id":%q}`, code)))

	// Out of turn.
	s.handleMessage(joiner, []byte(`{"type":"add_character","char":"c"}`))
	if reply := joinerConn.LastSent(t); reply["message"] != "Not your turn." {
		t.Fatalf("Expected a turn rejection, got %v", reply)
	}

	// In turn: every player receives the update.
	s.handleMessage(creator, []byte(`{"type":"add_character","char":"c"}`))
	reply := creatorConn.LastSent(t)
	if reply["type"] != network.MsgTypeGameUpdate {
		t.Fatalf("Expected game_update, got %v", reply["type"])
	}
	if reply["sequence"] != "c" {
		t.Errorf("Expected sequence \"c\", got %v", reply["sequence"])
	}
	if reply["current_player"] != float64(2) {
		t.Errorf("Turn should pass to player 2, got %v", reply["current_player"])
	}
	if joinerReply := joinerConn.LastSent(t); joinerReply["type"] != network.MsgTypeGameUpdate {
		t.Errorf("Joiner should receive the update too, got %v", joinerReply["type"])
	}
}

func TestHandleMessage_ExitEndsRoomForEveryone(t *testing.T) {
	s := testServer()
	creator, _ := testSession("s1")
	joiner, joinerConn := testSession("s2")

	s.handleMessage(creator, []byte(`{"type":"create_room","player_count":2}`))
	code := creator.RoomID
	s.handleMessage(joiner, []byte(fmt.Sprintf(`{"type":"join_room","room_id":%q}`, code)))

	exit := s.handleMessage(creator, []byte(`{"type":"exit"}`))
	if !exit {
		t.Fatal("Exit should wind the connection down")
	}
	s.endRoom(creator.RoomID, creator.PlayerNumber, "Player exited the game.")

	reply := joinerConn.LastSent(t)
	if reply["type"] != network.MsgTypeGameEnd {
		t.Fatalf("Expected game_end, got %v", reply["type"])
	}
	if reply["reason"] != "Player exited the game." {
		t.Errorf("Unexpected reason: %v", reply["reason"])
	}
	if s.RoomCount() != 0 {
		t.Errorf("Room should be deleted after ending, got %d live rooms", s.RoomCount())
	}
}

func TestHandleMessage_ExitWithoutRoom(t *testing.T) {
	s := testServer()
	sess, conn := testSession("s1")

	if exit := s.handleMessage(sess, []byte(`{"type":"exit"}`)); exit {
		t.Fatal("An unbound exit must not wind the connection down")
	}
	reply := conn.LastSent(t)
	if reply["message"] != "You are not part of any room." {
		t.Errorf("Unexpected error text: %v", reply["message"])
	}
}

func TestHandleMessage_CreateWhileInRoom(t *testing.T) {
	s := testServer()
	sess, conn := testSession("s1")

	s.handleMessage(sess, []byte(`{"type":"create_room","player_count":2}`))
	s.handleMessage(sess, []byte(`{"type":"create_room","player_count":2}`))

	reply := conn.LastSent(t)
	if reply["message"] != "You are already in a room." {
		t.Errorf("Unexpected error text: %v", reply["message"])
	}
	if s.RoomCount() != 1 {
		t.Errorf("Second create should be rejected, got %d rooms", s.RoomCount())
	}
}

func TestErrorText_Validation(t *testing.T) {
	_, err := network.DecodeClientMessage([]byte(`{"type":"add_character","char":"ab"}`))
	if err == nil {
		t.Fatal("Expected a validation error")
	}
	if got := errorText(err); got != "Invalid character input." {
		t.Errorf("Unexpected validation text: %q", got)
	}
}
