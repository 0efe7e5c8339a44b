// Package dictionary implements the word trie the game validates sequences
// against, plus the loaders that fill it from the two supported file formats.
package dictionary

// NoDefinition is returned by GetDefinition for words stored without one.
const NoDefinition = "No definition available."

// node children are keyed by rune; a node is a complete word iff isWord is
// set, independently of whether a definition was stored for it.
type node struct {
	children   map[rune]*node
	isWord     bool
	definition string
}

func newNode() *node {
	return &node{children: make(map[rune]*node)}
}

// Trie is the dictionary lookup engine. It is built once at startup and
// read-only afterwards, so lookups need no synchronization.
type Trie struct {
	root  *node
	words int
}

func NewTrie() *Trie {
	return &Trie{root: newNode()}
}

// Insert adds a word with its definition. Re-inserting an existing word
// appends the new definition with an " OR " separator, which is how the
// plain-text dictionary format encodes homographs. The JSON format lists
// every word once, so the append path is never taken for it.
func (t *Trie) Insert(word, definition string) {
	n := t.root
	for _, r := range word {
		child, ok := n.children[r]
		if !ok {
			child = newNode()
			n.children[r] = child
		}
		n = child
	}
	if n.isWord {
		if definition != "" {
			n.definition += " OR " + definition
		}
		return
	}
	n.isWord = true
	n.definition = definition
	t.words++
}

// Len reports the number of distinct words inserted.
func (t *Trie) Len() int {
	return t.words
}

func (t *Trie) find(sequence string) *node {
	n := t.root
	for _, r := range sequence {
		n = n.children[r]
		if n == nil {
			return nil
		}
	}
	return n
}

// SearchWord reports whether sequence is a complete word.
// The empty sequence is never a word.
func (t *Trie) SearchWord(sequence string) bool {
	if sequence == "" {
		return false
	}
	n := t.find(sequence)
	return n != nil && n.isWord
}

// SearchPrefix reports whether some strictly longer word extends sequence.
// A complete word with no longer extension returns false here even though
// SearchWord is true for it; the game reads that as "round over", not
// "word invalid".
func (t *Trie) SearchPrefix(sequence string) bool {
	n := t.find(sequence)
	return n != nil && len(n.children) > 0
}

// GetDefinition returns the stored definition for a complete word, or the
// NoDefinition sentinel.
func (t *Trie) GetDefinition(word string) string {
	n := t.find(word)
	if n == nil || !n.isWord || n.definition == "" {
		return NoDefinition
	}
	return n.definition
}
