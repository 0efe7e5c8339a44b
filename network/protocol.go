package network

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Client-to-server message types.
const (
	MsgTypeCreateRoom   = "create_room"
	MsgTypeJoinRoom     = "join_room"
	MsgTypeAddCharacter = "add_character"
	MsgTypeExit         = "exit"
)

// Server-to-client message types.
const (
	MsgTypeRoomCreated = "room_created"
	MsgTypeRoomJoined  = "room_joined"
	MsgTypeGameStart   = "game_start"
	MsgTypeGameUpdate  = "game_update"
	MsgTypeGameEnd     = "game_end"
	MsgTypeError       = "error"
)

var roomIDPattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// allowedPunctuation lists the non-letter characters words may contain.
const allowedPunctuation = "-'/ ."

// ClientMessage is the decoded form of one request line. Type discriminates
// which of the remaining fields are meaningful; decoding once here keeps the
// dispatch table free of per-handler JSON handling.
type ClientMessage struct {
	Type        string `json:"type"`
	PlayerCount int    `json:"player_count,omitempty"`
	RoomID      string `json:"room_id,omitempty"`
	Char        string `json:"char,omitempty"`
}

// DecodeClientMessage parses a request line and validates the fields the
// message type requires, so handlers only ever see well-formed input.
func DecodeClientMessage(line []byte) (*ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(line, &msg); err != nil {
		return nil, ErrInvalidJSON
	}

	switch msg.Type {
	case MsgTypeCreateRoom:
		if msg.PlayerCount < 2 || msg.PlayerCount > 4 {
			return nil, fmt.Errorf("%w: invalid player count, must be between 2 and 4", ErrValidation)
		}
	case MsgTypeJoinRoom:
		if !roomIDPattern.MatchString(msg.RoomID) {
			return nil, fmt.Errorf("%w: invalid or missing room ID", ErrValidation)
		}
	case MsgTypeAddCharacter:
		msg.Char = strings.ToLower(msg.Char)
		if !validCharacter(msg.Char) {
			return nil, fmt.Errorf("%w: invalid character input", ErrValidation)
		}
	case MsgTypeExit:
	default:
		return nil, ErrUnknownType
	}
	return &msg, nil
}

func validCharacter(char string) bool {
	runes := []rune(char)
	if len(runes) != 1 {
		return false
	}
	r := runes[0]
	return (r >= 'a' && r <= 'z') || strings.ContainsRune(allowedPunctuation, r)
}

// RoomStatusMessage acknowledges room creation or joining.
type RoomStatusMessage struct {
	Type         string `json:"type"` // room_created or room_joined
	RoomID       string `json:"room_id"`
	PlayerNumber int    `json:"player_number"`
	PlayerCount  int    `json:"player_count"`
}

// GameStartMessage is broadcast once, the moment the room fills up.
type GameStartMessage struct {
	Type          string      `json:"type"`
	CurrentPlayer int         `json:"current_player"`
	Sequence      string      `json:"sequence"`
	Scores        map[int]int `json:"scores"`
	RoundCount    int         `json:"round_count"`
}

// GameUpdateMessage is broadcast after every accepted character.
type GameUpdateMessage struct {
	Type          string      `json:"type"`
	Player        int         `json:"player"`
	Char          string      `json:"char"`
	Messages      []string    `json:"messages"`
	CurrentPlayer int         `json:"current_player"`
	Sequence      string      `json:"sequence"`
	Scores        map[int]int `json:"scores"`
	RoundCount    int         `json:"round_count"`
}

// GameEndMessage is broadcast when any player leaves, ending the whole room.
type GameEndMessage struct {
	Type         string           `json:"type"`
	PlayerNumber int              `json:"player_number"`
	Reason       string           `json:"reason"`
	Scores       map[int]int      `json:"scores"`
	FoundWords   map[int][]string `json:"found_words"`
}

// ErrorMessage reports a rejected request to the offending connection only.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewError(message string) *ErrorMessage {
	return &ErrorMessage{Type: MsgTypeError, Message: message}
}
