package dictionary

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTrie_SearchWord(t *testing.T) {
	trie := NewTrie()
	trie.Insert("cat", "a small domesticated feline")
	trie.Insert("cart", "a wheeled vehicle")

	if !trie.SearchWord("cat") {
		t.Error("SearchWord should find an inserted word")
	}
	if trie.SearchWord("ca") {
		t.Error("SearchWord should not match a bare prefix")
	}
	if trie.SearchWord("dog") {
		t.Error("SearchWord should not match a word that was never inserted")
	}
	if trie.SearchWord("") {
		t.Error("The empty sequence is never a word")
	}
}

func TestTrie_SearchPrefix(t *testing.T) {
	trie := NewTrie()
	trie.Insert("car", "")
	trie.Insert("cart", "")

	if !trie.SearchPrefix("ca") {
		t.Error("'ca' extends to 'car' and 'cart'")
	}
	if !trie.SearchPrefix("car") {
		t.Error("'car' is a word but also extends to 'cart'")
	}
	// 'cart' is a complete word with no longer extension: SearchWord true,
	// SearchPrefix false. The game reads that combination as "round over".
	if !trie.SearchWord("cart") {
		t.Error("'cart' should be a complete word")
	}
	if trie.SearchPrefix("cart") {
		t.Error("'cart' has no extension, SearchPrefix must be false")
	}
	if trie.SearchPrefix("xyz") {
		t.Error("absent path should not be a prefix")
	}
}

func TestTrie_GetDefinition(t *testing.T) {
	trie := NewTrie()
	trie.Insert("cat", "a small domesticated feline")
	trie.Insert("car", "")

	if got := trie.GetDefinition("cat"); got != "a small domesticated feline" {
		t.Errorf("unexpected definition: %q", got)
	}
	if got := trie.GetDefinition("car"); got != NoDefinition {
		t.Errorf("word without definition should report the sentinel, got %q", got)
	}
	if got := trie.GetDefinition("ca"); got != NoDefinition {
		t.Errorf("prefix should report the sentinel, got %q", got)
	}
}

func TestTrie_DuplicateInsertAppendsDefinition(t *testing.T) {
	trie := NewTrie()
	trie.Insert("bank", "land beside a river")
	trie.Insert("bank", "a financial institution")

	want := "land beside a river OR a financial institution"
	if got := trie.GetDefinition("bank"); got != want {
		t.Errorf("expected joined definition %q, got %q", want, got)
	}
	if trie.Len() != 1 {
		t.Errorf("duplicate insert must not grow the word count, got %d", trie.Len())
	}
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestLoadTextFile(t *testing.T) {
	content := "Cat  a small domesticated feline\n" +
		"bank1  land beside a river\n" +
		"bank2  a financial institution\n" +
		"nodefinition\n" + // no two-space separator, skipped
		"cart  a wheeled vehicle\n"
	path := writeTempFile(t, "dict.txt", content)

	trie, err := LoadTextFile(path)
	if err != nil {
		t.Fatalf("LoadTextFile failed: %v", err)
	}

	if !trie.SearchWord("cat") {
		t.Error("words should be lowercased on load")
	}
	if trie.SearchWord("nodefinition") {
		t.Error("lines without a definition column must be skipped")
	}
	want := "land beside a river OR a financial institution"
	if got := trie.GetDefinition("bank"); got != want {
		t.Errorf("homograph numbers should merge into one entry, got %q", got)
	}
	if trie.Len() != 3 {
		t.Errorf("expected 3 words, got %d", trie.Len())
	}
}

func TestLoadJSONFile(t *testing.T) {
	content := `{
		"Cat": {
			"noun": [
				{"gloss": "a small domesticated feline"},
				{"gloss": "a spiteful woman", "tags": ["dated", "offensive"]}
			],
			"verb": [{"gloss": "to vomit", "tags": ["slang"]}]
		},
		"dog": {}
	}`
	path := writeTempFile(t, "dict.json", content)

	trie, err := LoadJSONFile(path)
	if err != nil {
		t.Fatalf("LoadJSONFile failed: %v", err)
	}

	want := "noun: 1. a small domesticated feline ; 2. a spiteful woman [dated, offensive] | verb: 1. to vomit [slang]"
	if got := trie.GetDefinition("cat"); got != want {
		t.Errorf("formatted definition mismatch:\n got %q\nwant %q", got, want)
	}
	if got := trie.GetDefinition("dog"); got != NoDefinition {
		t.Errorf("entry without senses should carry the sentinel, got %q", got)
	}
}

func TestLoad_UnknownFormat(t *testing.T) {
	if _, err := Load("whatever", "xml"); err == nil {
		t.Error("Load should reject an unknown format")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("strings under the cap must pass through, got %q", got)
	}
	got := truncate("abcdefghij", 5)
	if got != "abcd…" {
		t.Errorf("expected ellipsis truncation, got %q", got)
	}
}
