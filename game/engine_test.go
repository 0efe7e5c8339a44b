package game

import (
	"strings"
	"testing"

	"github.com/wfunc/spellchain/dictionary"
)

func testDict() *dictionary.Trie {
	trie := dictionary.NewTrie()
	trie.Insert("cat", "a small domesticated feline")
	trie.Insert("cart", "a wheeled vehicle")
	trie.Insert("a", "the first letter")
	return trie
}

func TestPoints(t *testing.T) {
	cases := []struct{ length, want int }{
		{1, 1},
		{2, 1},
		{3, 2},
		{4, 2},
		{7, 4},
	}
	for _, c := range cases {
		if got := Points(c.length); got != c.want {
			t.Errorf("Points(%d) = %d, want %d", c.length, got, c.want)
		}
	}
}

func TestEngine_CompleteWordScores(t *testing.T) {
	e := NewEngine(testDict(), 2)

	e.AddCharacter(1, "c")
	e.AddCharacter(2, "a")
	result := e.AddCharacter(1, "t")

	if result.CompletedWord != "cat" {
		t.Fatalf("expected completed word 'cat', got %q", result.CompletedWord)
	}
	if result.Points != 2 {
		t.Errorf("cat is 3 letters, expected 2 points, got %d", result.Points)
	}
	if e.Scores()[1] != 2 || e.Scores()[2] != 0 {
		t.Errorf("unexpected scores: %v", e.Scores())
	}
	if _, ok := e.FoundWords()[1]["cat"]; !ok {
		t.Error("'cat' should be recorded for player 1")
	}
	if len(result.Messages) == 0 || !strings.Contains(result.Messages[0], "a small domesticated feline") {
		t.Errorf("completion message should carry the definition, got %v", result.Messages)
	}
}

func TestEngine_TurnOrderCycles(t *testing.T) {
	e := NewEngine(testDict(), 3)

	want := []int{2, 3, 1, 2}
	for i, expected := range want {
		result := e.AddCharacter(e.CurrentPlayer(), "c")
		if result.CurrentPlayer != expected {
			t.Fatalf("turn %d: expected next player %d, got %d", i, expected, result.CurrentPlayer)
		}
	}
}

func TestEngine_ReusedWordScoresNothing(t *testing.T) {
	e := NewEngine(testDict(), 2)

	// Player 1 completes "a" immediately; "a" stays a prefix of nothing in
	// this dictionary except itself, so the round ends too.
	first := e.AddCharacter(1, "a")
	if first.CompletedWord != "a" || first.Points != 1 {
		t.Fatalf("expected player 1 to score 1 point for 'a', got %+v", first)
	}

	// Player 2 spells "a" again in the new round: no points for anyone.
	second := e.AddCharacter(2, "a")
	if second.CompletedWord != "" || second.Points != 0 {
		t.Errorf("reused word must not score, got %+v", second)
	}
	if len(second.Messages) == 0 || !strings.Contains(second.Messages[0], "already been used") {
		t.Errorf("expected the reuse notice, got %v", second.Messages)
	}
	if e.Scores()[2] != 0 {
		t.Errorf("player 2 must stay at 0, got %d", e.Scores()[2])
	}
}

func TestEngine_RoundResetOnDeadPrefix(t *testing.T) {
	e := NewEngine(testDict(), 2)

	result := e.AddCharacter(1, "x")
	if !result.RoundOver {
		t.Fatal("'x' extends no word, the round must end")
	}
	if result.Sequence != "" {
		t.Errorf("sequence must reset, got %q", result.Sequence)
	}
	if result.RoundCount != 2 {
		t.Errorf("round count must increment to 2, got %d", result.RoundCount)
	}
}

func TestEngine_WordCompletionAndDeadEndTogether(t *testing.T) {
	e := NewEngine(testDict(), 2)

	// c-a-r-t: "cart" is a word and nothing extends it, so one turn both
	// scores and ends the round.
	e.AddCharacter(1, "c")
	e.AddCharacter(2, "a")
	e.AddCharacter(1, "r")
	result := e.AddCharacter(2, "t")

	if result.CompletedWord != "cart" {
		t.Fatalf("expected 'cart' completed, got %q", result.CompletedWord)
	}
	if !result.RoundOver {
		t.Error("'cart' has no extension, the round must end in the same turn")
	}
	if len(result.Messages) != 2 {
		t.Errorf("expected both the completion and the round-over message, got %v", result.Messages)
	}
	if e.Scores()[2] != Points(4) {
		t.Errorf("player 2 should hold %d points, got %d", Points(4), e.Scores()[2])
	}
	if result.RoundCount != 2 || result.Sequence != "" {
		t.Errorf("round must reset after the dead end, got %+v", result)
	}
}

func TestEngine_ScoresAlwaysCoverAllPlayers(t *testing.T) {
	e := NewEngine(testDict(), 4)
	scores := e.Scores()
	if len(scores) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(scores))
	}
	for p := 1; p <= 4; p++ {
		if scores[p] != 0 {
			t.Errorf("player %d should start at 0, got %d", p, scores[p])
		}
	}
}
