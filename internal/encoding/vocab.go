package encoding

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Contractual constants for the claim classifier's input encoding. These are
// fixed properties of the trained model, not tunables.
const (
	// MaxSeqLength is the exact width of every encoded row.
	MaxSeqLength = 125
	// UnknownIndex is the sentinel index for words outside the vocabulary.
	// It is a fixed convention, not derived from the vocabulary's size.
	UnknownIndex = 399999
	// padValue fills the front of rows shorter than MaxSeqLength. It aliases
	// vocabulary index 0; the model was trained with that aliasing.
	padValue = 0
)

// Vocabulary is the immutable ordered word list the model was trained
// against. A word's index is its zero-based position in the source list.
// Safe for concurrent readers after load.
type Vocabulary struct {
	wordToIndex map[string]int64
	size        int
}

// LoadVocabulary reads a vocabulary file where each line is one word and the
// line number (0-indexed) is the word's index. The word→index map is built
// once here so per-token lookup is O(1).
func LoadVocabulary(path string) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vocabulary: %w", err)
	}
	defer f.Close()
	return ReadVocabulary(f)
}

// ReadVocabulary builds a Vocabulary from newline-delimited words.
func ReadVocabulary(r io.Reader) (*Vocabulary, error) {
	wordToIndex := make(map[string]int64, 400000)

	scanner := bufio.NewScanner(r)
	var n int64
	for scanner.Scan() {
		wordToIndex[scanner.Text()] = n
		n++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("vocabulary: read error: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("vocabulary: no words")
	}

	return &Vocabulary{wordToIndex: wordToIndex, size: int(n)}, nil
}

// Lookup returns the index for word, or UnknownIndex if the word is not in
// the vocabulary. Matching is exact; callers lowercase first.
func (v *Vocabulary) Lookup(word string) int64 {
	if idx, ok := v.wordToIndex[word]; ok {
		return idx
	}
	return UnknownIndex
}

// Contains reports whether word is in the vocabulary.
func (v *Vocabulary) Contains(word string) bool {
	_, ok := v.wordToIndex[word]
	return ok
}

// Size returns the number of words in the vocabulary.
func (v *Vocabulary) Size() int {
	return v.size
}
