package dictionary

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

const (
	FormatText = "text"
	FormatJSON = "json"

	// jsonDefinitionMax caps formatted definitions built by the JSON loader.
	jsonDefinitionMax = 500
)

var (
	columnSplit    = regexp.MustCompile(`\s{2,}`)
	trailingDigits = regexp.MustCompile(`\d+$`)
)

// Load builds a trie from the dictionary file at path using the given format.
func Load(path, format string) (*Trie, error) {
	switch format {
	case FormatText:
		return LoadTextFile(path)
	case FormatJSON:
		return LoadJSONFile(path)
	default:
		return nil, fmt.Errorf("unknown dictionary format %q", format)
	}
}

// LoadTextFile reads a plain-text dictionary where each line holds a word and
// its definition separated by two or more spaces. Words are lowercased and a
// trailing homograph number is stripped, so "bank1" and "bank2" land on the
// same trie path and their definitions get joined by Insert.
func LoadTextFile(path string) (*Trie, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()

	trie := NewTrie()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		parts := columnSplit.Split(strings.TrimSpace(scanner.Text()), 2)
		if len(parts) < 2 {
			continue
		}
		word := trailingDigits.ReplaceAllString(strings.ToLower(parts[0]), "")
		if word == "" {
			continue
		}
		trie.Insert(word, strings.TrimSpace(parts[1]))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	return trie, nil
}

// jsonSense is one sense of a word within a part-of-speech bucket.
type jsonSense struct {
	Gloss string   `json:"gloss"`
	Tags  []string `json:"tags"`
}

// LoadJSONFile reads a structured dictionary: a root object mapping each word
// to part-of-speech buckets of senses. Every word appears exactly once, with
// the formatted definition truncated to a fixed cap.
func LoadJSONFile(path string) (*Trie, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}

	var entries map[string]map[string][]jsonSense
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse dictionary JSON: %w", err)
	}

	trie := NewTrie()
	for w, byPOS := range entries {
		word := strings.ToLower(strings.TrimSpace(w))
		if word == "" {
			continue
		}
		trie.Insert(word, truncate(formatDefinition(byPOS), jsonDefinitionMax))
	}
	return trie, nil
}

// formatDefinition renders the per-POS senses as
// "noun: 1. gloss [tags] ; 2. gloss | verb: ...".
func formatDefinition(byPOS map[string][]jsonSense) string {
	pos := make([]string, 0, len(byPOS))
	for p := range byPOS {
		pos = append(pos, p)
	}
	sort.Strings(pos)

	var parts []string
	for _, p := range pos {
		senses := byPOS[p]
		if len(senses) == 0 {
			continue
		}
		strs := make([]string, 0, len(senses))
		for i, s := range senses {
			piece := fmt.Sprintf("%d. %s", i+1, s.Gloss)
			if len(s.Tags) > 0 {
				piece += fmt.Sprintf(" [%s]", strings.Join(s.Tags, ", "))
			}
			strs = append(strs, piece)
		}
		parts = append(parts, p+": "+strings.Join(strs, " ; "))
	}
	if len(parts) == 0 {
		return NoDefinition
	}
	return strings.Join(parts, " | ")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
