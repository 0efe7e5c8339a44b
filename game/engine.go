// Package game holds the turn rules of SpellChain, free of any networking or
// locking. room.Room drives an Engine under its lock for online play; the
// client binary drives one directly in local mode.
package game

import (
	"fmt"

	"github.com/wfunc/spellchain/dictionary"
)

// definitionMax caps the definition text embedded in turn messages.
const definitionMax = 600

// Engine is one game's rule state: the shared sequence, per-player scores and
// found words, the round counter and the turn pointer. Player numbers are
// 1-based and turns cycle 1..PlayerCount.
type Engine struct {
	dict          *dictionary.Trie
	playerCount   int
	sequence      string
	roundCount    int
	currentPlayer int
	scores        map[int]int
	foundWords    map[int]map[string]struct{}
}

// TurnResult describes everything a single accepted character changed.
type TurnResult struct {
	Player        int
	Char          string
	Messages      []string
	CompletedWord string
	Points        int
	RoundOver     bool
	CurrentPlayer int
	Sequence      string
	RoundCount    int
}

func NewEngine(dict *dictionary.Trie, playerCount int) *Engine {
	return &Engine{
		dict:          dict,
		playerCount:   playerCount,
		roundCount:    1,
		currentPlayer: 1,
		scores:        make(map[int]int),
		foundWords:    make(map[int]map[string]struct{}),
	}
}

func (e *Engine) PlayerCount() int   { return e.playerCount }
func (e *Engine) CurrentPlayer() int { return e.currentPlayer }
func (e *Engine) Sequence() string   { return e.sequence }
func (e *Engine) RoundCount() int    { return e.roundCount }

// Scores returns a copy of the score map with every player present,
// defaulting to zero, so broadcasts always carry the full table.
func (e *Engine) Scores() map[int]int {
	scores := make(map[int]int, e.playerCount)
	for p := 1; p <= e.playerCount; p++ {
		scores[p] = e.scores[p]
	}
	return scores
}

// FoundWords returns each player's completed words as unsorted sets.
func (e *Engine) FoundWords() map[int]map[string]struct{} {
	out := make(map[int]map[string]struct{}, len(e.foundWords))
	for p, words := range e.foundWords {
		set := make(map[string]struct{}, len(words))
		for w := range words {
			set[w] = struct{}{}
		}
		out[p] = set
	}
	return out
}

// Points awarded for completing a word of the given length.
func Points(length int) int {
	points := (length + 1) / 2
	if points < 1 {
		return 1
	}
	return points
}

// wordUsed reports whether any player has already completed the word.
// Reuse earns nothing, no matter who found it first.
func (e *Engine) wordUsed(word string) bool {
	for _, words := range e.foundWords {
		if _, ok := words[word]; ok {
			return true
		}
	}
	return false
}

// AddCharacter applies one turn: append the character, score a newly
// completed word, reset the round if the sequence stopped being a viable
// prefix, and advance the turn pointer. The caller has already verified that
// player holds the turn and that char is a single allowed character.
func (e *Engine) AddCharacter(player int, char string) TurnResult {
	e.sequence += char
	result := TurnResult{Player: player, Char: char}

	if e.dict.SearchWord(e.sequence) {
		if !e.wordUsed(e.sequence) {
			points := Points(len(e.sequence))
			e.scores[player] += points
			if e.foundWords[player] == nil {
				e.foundWords[player] = make(map[string]struct{})
			}
			e.foundWords[player][e.sequence] = struct{}{}

			result.CompletedWord = e.sequence
			result.Points = points
			plural := "s"
			if points == 1 {
				plural = ""
			}
			result.Messages = append(result.Messages, fmt.Sprintf(
				"*** Player %d completed %q! (%d Point%s) ***\nDefinition: %s",
				player, e.sequence, points, plural,
				truncate(e.dict.GetDefinition(e.sequence), definitionMax)))
		} else {
			result.Messages = append(result.Messages, fmt.Sprintf(
				"%q has already been used in the SpellChain. No points this round.",
				e.sequence))
		}
	}

	// Independent of word completion: a word with no longer extension also
	// ends the round.
	if !e.dict.SearchPrefix(e.sequence) {
		result.RoundOver = true
		result.Messages = append(result.Messages, fmt.Sprintf(
			"%q is not a valid prefix of any word.\nRound over. The sequence will reset.",
			e.sequence))
		e.sequence = ""
		e.roundCount++
	}

	e.currentPlayer = (e.currentPlayer % e.playerCount) + 1

	result.CurrentPlayer = e.currentPlayer
	result.Sequence = e.sequence
	result.RoundCount = e.roundCount
	return result
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
