package encoding

import "strings"

// normalizeToken lowercases a token and strips every ASCII punctuation
// character. It reports ok=false when nothing remains, meaning the token
// contributes no index at all (a pure-punctuation token disappears instead of
// becoming an unknown-word entry). No Unicode folding is performed; the
// vocabulary was built from ASCII-normalized text.
func normalizeToken(token string) (string, bool) {
	var b strings.Builder
	b.Grow(len(token))
	for _, r := range strings.ToLower(token) {
		if isASCIIPunctuation(r) {
			continue
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return "", false
	}
	return b.String(), true
}

// isASCIIPunctuation reports whether r is in the standard ASCII punctuation
// set: 33-47, 58-64, 91-96, 123-126.
func isASCIIPunctuation(r rune) bool {
	return (r >= '!' && r <= '/') ||
		(r >= ':' && r <= '@') ||
		(r >= '[' && r <= '`') ||
		(r >= '{' && r <= '~')
}
