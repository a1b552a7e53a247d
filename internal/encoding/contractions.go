package encoding

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed contractions.yaml
var defaultContractions []byte

// Contractions maps a lowercase contracted form ("can't") to its expansion
// phrase ("cannot"). Expansion phrases may contain multiple
// whitespace-separated words. Immutable after load.
type Contractions struct {
	expansions map[string]string
}

// LoadContractions parses a YAML mapping file of contraction → expansion.
// An empty path loads the embedded default table.
func LoadContractions(path string) (*Contractions, error) {
	data := defaultContractions
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("contractions: %w", err)
		}
		data = b
	}
	return ParseContractions(data)
}

// ParseContractions builds a Contractions table from YAML bytes.
func ParseContractions(data []byte) (*Contractions, error) {
	m := make(map[string]string)
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("contractions: parse: %w", err)
	}
	if len(m) == 0 {
		return nil, fmt.Errorf("contractions: no entries")
	}
	return &Contractions{expansions: m}, nil
}

// Expand returns the expansion phrase for a lowercase contracted form, and
// whether one exists.
func (c *Contractions) Expand(word string) (string, bool) {
	phrase, ok := c.expansions[word]
	return phrase, ok
}

// Len returns the number of contraction entries.
func (c *Contractions) Len() int {
	return len(c.expansions)
}
