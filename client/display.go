package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/wfunc/spellchain/network"
)

// Display renders game events to the terminal. All coloring lives client-side;
// the server only ever sends plain text.
type Display struct {
	bannerColor *color.Color
	serverColor *color.Color
	turnColor   *color.Color
	wordColor   *color.Color
	roundColor  *color.Color
	infoColor   *color.Color
	errorColor  *color.Color
	endColor    *color.Color
}

func NewDisplay() *Display {
	return &Display{
		bannerColor: color.New(color.FgYellow, color.Bold),
		serverColor: color.New(color.FgCyan, color.Bold),
		turnColor:   color.New(color.FgCyan),
		wordColor:   color.New(color.FgGreen, color.Bold),
		roundColor:  color.New(color.FgMagenta),
		infoColor:   color.New(color.FgWhite),
		errorColor:  color.New(color.FgRed, color.Bold),
		endColor:    color.New(color.FgGreen, color.Bold, color.BgBlack),
	}
}

func (d *Display) PrintBanner() {
	banner := `
╔═══════════════════════════════════════╗
║              SPELLCHAIN               ║
║      Build words, one letter each     ║
╚═══════════════════════════════════════╝
`
	d.bannerColor.Println(banner)
}

func (d *Display) PrintServerStatus(message string) {
	timestamp := time.Now().Format("15:04:05")
	d.serverColor.Printf("[%s] [SERVER] %s\n", timestamp, message)
}

func (d *Display) PrintRoomStatus(msg *network.RoomStatusMessage) {
	if msg.Type == network.MsgTypeRoomCreated {
		d.PrintServerStatus(fmt.Sprintf("Room %s created. You are player %d. Waiting for %d players total.",
			msg.RoomID, msg.PlayerNumber, msg.PlayerCount))
		return
	}
	d.PrintServerStatus(fmt.Sprintf("Joined room %s as player %d.", msg.RoomID, msg.PlayerNumber))
}

func (d *Display) PrintGameStart(msg *network.GameStartMessage, myNumber int) {
	d.wordColor.Println("\n[GAME START] All players are in. Good luck!")
	d.printTurn(msg.CurrentPlayer, msg.Sequence, myNumber)
}

func (d *Display) PrintGameUpdate(msg *network.GameUpdateMessage, myNumber int) {
	timestamp := time.Now().Format("15:04:05")
	who := fmt.Sprintf("Player %d", msg.Player)
	if msg.Player == myNumber {
		who = "You"
	}
	d.infoColor.Printf("[%s] %s played %q\n", timestamp, who, msg.Char)

	for _, m := range msg.Messages {
		switch {
		case strings.Contains(m, "completed"):
			d.wordColor.Printf("  %s\n", m)
		case strings.Contains(m, "No word can be formed"):
			d.roundColor.Printf("  %s\n", m)
		default:
			d.infoColor.Printf("  %s\n", m)
		}
	}

	d.printScores(msg.Scores, myNumber)
	d.printTurn(msg.CurrentPlayer, msg.Sequence, myNumber)
}

func (d *Display) PrintGameEnd(msg *network.GameEndMessage, myNumber int) {
	d.endColor.Println("\n[GAME OVER]")
	d.infoColor.Printf("Reason: player %d, %s\n", msg.PlayerNumber, msg.Reason)
	d.printScores(msg.Scores, myNumber)

	players := make([]int, 0, len(msg.FoundWords))
	for p := range msg.FoundWords {
		players = append(players, p)
	}
	sort.Ints(players)
	for _, p := range players {
		if len(msg.FoundWords[p]) == 0 {
			continue
		}
		d.wordColor.Printf("Player %d found: %s\n", p, strings.Join(msg.FoundWords[p], ", "))
	}
}

func (d *Display) PrintError(message string) {
	d.errorColor.Printf("[ERROR] %s\n", message)
}

func (d *Display) PrintInfo(message string) {
	d.infoColor.Println(message)
}

func (d *Display) printTurn(currentPlayer int, sequence string, myNumber int) {
	if sequence == "" {
		sequence = "(empty)"
	}
	if currentPlayer == myNumber {
		d.turnColor.Printf("Sequence: %s | YOUR TURN. Enter a character:\n", sequence)
		return
	}
	d.turnColor.Printf("Sequence: %s | Waiting for player %d.\n", sequence, currentPlayer)
}

func (d *Display) printScores(scores map[int]int, myNumber int) {
	players := make([]int, 0, len(scores))
	for p := range scores {
		players = append(players, p)
	}
	sort.Ints(players)

	parts := make([]string, 0, len(players))
	for _, p := range players {
		label := fmt.Sprintf("P%d: %d", p, scores[p])
		if p == myNumber {
			label += " (you)"
		}
		parts = append(parts, label)
	}
	d.infoColor.Printf("Scores: %s\n", strings.Join(parts, " | "))
}
