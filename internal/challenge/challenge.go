package challenge

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nao1215/wikirace/internal/title"
)

//go:embed catalog.yaml
var builtinCatalog []byte

// ErrEmptyCatalog is returned when a catalog contains no usable challenges.
var ErrEmptyCatalog = errors.New("challenge catalog is empty")

// ErrInvalidChallenge is returned when a challenge has a blank start or end,
// or when start and end name the same article.
var ErrInvalidChallenge = errors.New("invalid challenge")

// Challenge is an immutable (start, destination) article pair.
type Challenge struct {
	// Start is the article the session begins on.
	Start string `yaml:"start" json:"start"`

	// End is the destination article that wins the session.
	End string `yaml:"end" json:"end"`
}

// String returns "Start -> End".
func (c Challenge) String() string {
	return c.Start + " -> " + c.End
}

// Validate checks that both titles are present and distinct.
func (c Challenge) Validate() error {
	if strings.TrimSpace(c.Start) == "" || strings.TrimSpace(c.End) == "" {
		return fmt.Errorf("%w: start and end are required (%q)", ErrInvalidChallenge, c.String())
	}
	if title.Equal(c.Start, c.End) {
		return fmt.Errorf("%w: start and end are the same article (%q)", ErrInvalidChallenge, c.Start)
	}
	return nil
}

// Source is the random source used to pick a challenge.
// *math/rand/v2.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

// Catalog is a non-empty, read-only list of challenges.
type Catalog struct {
	challenges []Challenge
}

// catalogFile is the YAML layout of catalog.yaml.
type catalogFile struct {
	Challenges []Challenge `yaml:"challenges"`
}

// New creates a Catalog from the given challenges.
// Every challenge is validated and the list must not be empty.
func New(challenges []Challenge) (*Catalog, error) {
	if len(challenges) == 0 {
		return nil, ErrEmptyCatalog
	}
	for i, c := range challenges {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("challenge %d: %w", i+1, err)
		}
	}

	copied := make([]Challenge, len(challenges))
	copy(copied, challenges)
	return &Catalog{challenges: copied}, nil
}

// Parse reads a catalog from YAML data in the catalog.yaml layout.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse challenge catalog: %w", err)
	}
	return New(f.Challenges)
}

// Builtin returns the catalog embedded in the binary.
// The embedded data is covered by tests, so a parse failure is a build defect.
func Builtin() *Catalog {
	c, err := Parse(builtinCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded challenge catalog is invalid: %v", err))
	}
	return c
}

// Len returns the number of challenges.
func (c *Catalog) Len() int {
	return len(c.challenges)
}

// At returns the challenge at index i (0-based).
func (c *Catalog) At(i int) (Challenge, bool) {
	if i < 0 || i >= len(c.challenges) {
		return Challenge{}, false
	}
	return c.challenges[i], true
}

// All returns a copy of every challenge in catalog order.
func (c *Catalog) All() []Challenge {
	out := make([]Challenge, len(c.challenges))
	copy(out, c.challenges)
	return out
}

// Random picks a challenge uniformly at random.
func (c *Catalog) Random(src Source) Challenge {
	return c.challenges[src.IntN(len(c.challenges))]
}
