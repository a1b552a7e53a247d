package encoding

import "strings"

// Encoder turns claim texts into vocabulary index sequences. It holds
// read-only references to the vocabulary and contraction table and is safe
// for concurrent use.
type Encoder struct {
	vocab        *Vocabulary
	contractions *Contractions
}

// NewEncoder creates an Encoder over a loaded vocabulary and contraction
// table.
func NewEncoder(vocab *Vocabulary, contractions *Contractions) *Encoder {
	return &Encoder{vocab: vocab, contractions: contractions}
}

// Encode converts a claim text into an ordered index sequence. Tokens are
// processed strictly left to right; nothing is reordered or deduplicated.
//
// Per token: lowercase first. A token matching a contraction expands into its
// phrase, and each phrase word resolves independently against the vocabulary
// by exact match (no further cleaning, no recursive expansion). Any other
// token is stripped of ASCII punctuation; if nothing remains it contributes
// no index, otherwise it resolves by exact match. Words outside the
// vocabulary always resolve to UnknownIndex rather than failing the text.
func (e *Encoder) Encode(text string) []int64 {
	var indices []int64
	for _, token := range strings.Fields(text) {
		lower := strings.ToLower(token)

		if phrase, ok := e.contractions.Expand(lower); ok {
			for _, word := range strings.Fields(phrase) {
				indices = append(indices, e.vocab.Lookup(word))
			}
			continue
		}

		cleaned, ok := normalizeToken(lower)
		if !ok {
			continue
		}
		indices = append(indices, e.vocab.Lookup(cleaned))
	}
	return indices
}

// EncodeRow encodes a claim text and fits the result to the model's fixed
// row width.
func (e *Encoder) EncodeRow(text string) []int64 {
	return FitRow(e.Encode(text), MaxSeqLength)
}
