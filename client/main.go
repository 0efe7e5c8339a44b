package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/wfunc/spellchain/dictionary"
	"github.com/wfunc/spellchain/game"
	"github.com/wfunc/spellchain/network"
)

func main() {
	addr := flag.String("addr", "localhost:44390", "server address for online play")
	local := flag.Bool("local", false, "play locally on one terminal, no server")
	dictPath := flag.String("dict", "oxford_english_dictionary.txt", "dictionary file for local play")
	dictFormat := flag.String("format", "text", "dictionary format for local play: text or json")
	players := flag.Int("players", 2, "player count for local play (2-4)")
	flag.Parse()

	display := NewDisplay()
	display.PrintBanner()

	if *local {
		if err := runLocal(display, *dictPath, *dictFormat, *players); err != nil {
			display.PrintError(err.Error())
			os.Exit(1)
		}
		return
	}

	if err := runOnline(display, *addr); err != nil {
		display.PrintError(err.Error())
		os.Exit(1)
	}
}

// runLocal drives the game engine directly, with every player sharing the
// terminal. Handy for trying the rules without a server.
func runLocal(display *Display, dictPath, dictFormat string, players int) error {
	if players < 2 || players > 4 {
		return fmt.Errorf("player count must be between 2 and 4, got %d", players)
	}

	display.PrintInfo(fmt.Sprintf("Loading dictionary from %s...", dictPath))
	dict, err := dictionary.Load(dictPath, dictFormat)
	if err != nil {
		return err
	}
	display.PrintInfo(fmt.Sprintf("Dictionary ready: %d words.", dict.Len()))

	engine := game.NewEngine(dict, players)
	reader := bufio.NewReader(os.Stdin)
	display.PrintInfo("Type one character per turn, or 'exit' to stop.")

	for {
		sequence := engine.Sequence()
		if sequence == "" {
			sequence = "(empty)"
		}
		fmt.Printf("\nSequence: %s | Player %d's turn: ", sequence, engine.CurrentPlayer())

		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		input := strings.ToLower(strings.TrimSpace(line))
		if input == "exit" {
			break
		}
		if !validChar(input) {
			display.PrintError("Invalid character input.")
			continue
		}

		result := engine.AddCharacter(engine.CurrentPlayer(), input)
		for _, m := range result.Messages {
			display.PrintInfo("  " + m)
		}
		printLocalScores(display, engine.Scores())
	}

	display.PrintInfo("\nFinal standings:")
	printLocalScores(display, engine.Scores())
	return nil
}

func printLocalScores(display *Display, scores map[int]int) {
	players := make([]int, 0, len(scores))
	for p := range scores {
		players = append(players, p)
	}
	sort.Ints(players)

	parts := make([]string, 0, len(players))
	for _, p := range players {
		parts = append(parts, fmt.Sprintf("P%d: %d", p, scores[p]))
	}
	display.PrintInfo("Scores: " + strings.Join(parts, " | "))
}

// validChar mirrors the server's input rule: one lowercase letter or one of
// the allowed word punctuation characters.
func validChar(input string) bool {
	runes := []rune(input)
	if len(runes) != 1 {
		return false
	}
	r := runes[0]
	return (r >= 'a' && r <= 'z') || strings.ContainsRune("-'/ .", r)
}

func runOnline(display *Display, addr string) error {
	netConn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("could not reach server at %s: %w", addr, err)
	}
	conn := network.NewTCPConnection(netConn)
	defer conn.Close()
	display.PrintServerStatus("Connected to " + addr)

	reader := bufio.NewReader(os.Stdin)
	if err := lobby(display, conn, reader); err != nil {
		return err
	}

	// Server frames can be far bigger than a request line: a game_end carries
	// every found word, an update can quote a whole definition. Read them with
	// a roomy buffer straight off the socket.
	serverReader := bufio.NewReaderSize(netConn, 64*1024)
	done := make(chan struct{})
	go readLoop(display, serverReader, done)

	for {
		select {
		case <-done:
			display.PrintInfo("Connection closed. Bye!")
			return nil
		default:
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			conn.Send(&network.ClientMessage{Type: network.MsgTypeExit})
			<-done
			return nil
		}
		input := strings.ToLower(strings.TrimSpace(line))
		if input == "" {
			continue
		}
		if input == "exit" {
			conn.Send(&network.ClientMessage{Type: network.MsgTypeExit})
			<-done
			return nil
		}
		if !validChar(input) {
			display.PrintError("Enter exactly one character, or 'exit'.")
			continue
		}
		if err := conn.Send(&network.ClientMessage{Type: network.MsgTypeAddCharacter, Char: input}); err != nil {
			<-done
			return nil
		}
	}
}

// lobby asks whether to create or join a room and sends the matching request.
func lobby(display *Display, conn network.Connection, reader *bufio.Reader) error {
	for {
		fmt.Print("Create a room or join one? [create/join]: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "create", "c":
			fmt.Print("Player count [2-4]: ")
			countLine, err := reader.ReadString('\n')
			if err != nil {
				return err
			}
			count, err := strconv.Atoi(strings.TrimSpace(countLine))
			if err != nil || count < 2 || count > 4 {
				display.PrintError("Player count must be between 2 and 4.")
				continue
			}
			return conn.Send(&network.ClientMessage{Type: network.MsgTypeCreateRoom, PlayerCount: count})
		case "join", "j":
			fmt.Print("Room ID: ")
			idLine, err := reader.ReadString('\n')
			if err != nil {
				return err
			}
			roomID := strings.ToUpper(strings.TrimSpace(idLine))
			return conn.Send(&network.ClientMessage{Type: network.MsgTypeJoinRoom, RoomID: roomID})
		default:
			display.PrintError("Please answer 'create' or 'join'.")
		}
	}
}

// readLoop prints every server message as it arrives. The player number from
// the first room status message personalizes the rendering.
func readLoop(display *Display, reader *bufio.Reader, done chan struct{}) {
	defer close(done)
	me := 0

	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			return
		}
		line = bytes.TrimRight(line, "\r\n")
		if len(line) == 0 {
			continue
		}

		var probe struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(line, &probe); err != nil {
			display.PrintError("Unreadable message from server.")
			continue
		}

		switch probe.Type {
		case network.MsgTypeRoomCreated, network.MsgTypeRoomJoined:
			var msg network.RoomStatusMessage
			if err := json.Unmarshal(line, &msg); err != nil {
				continue
			}
			me = msg.PlayerNumber
			display.PrintRoomStatus(&msg)
		case network.MsgTypeGameStart:
			var msg network.GameStartMessage
			if err := json.Unmarshal(line, &msg); err != nil {
				continue
			}
			display.PrintGameStart(&msg, me)
		case network.MsgTypeGameUpdate:
			var msg network.GameUpdateMessage
			if err := json.Unmarshal(line, &msg); err != nil {
				continue
			}
			display.PrintGameUpdate(&msg, me)
		case network.MsgTypeGameEnd:
			var msg network.GameEndMessage
			if err := json.Unmarshal(line, &msg); err != nil {
				continue
			}
			display.PrintGameEnd(&msg, me)
			return
		case network.MsgTypeError:
			var msg network.ErrorMessage
			if err := json.Unmarshal(line, &msg); err != nil {
				continue
			}
			display.PrintError(msg.Message)
		default:
			display.PrintInfo(string(line))
		}
	}
}
