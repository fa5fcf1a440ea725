package session

import (
	"fmt"
	"math"
	"time"

	"github.com/nao1215/wikirace/internal/challenge"
	"github.com/nao1215/wikirace/internal/outline"
	"github.com/nao1215/wikirace/internal/wiki"
)

// Snapshot is a read-only copy of a session's state. It shares nothing
// mutable with the session it was taken from.
type Snapshot struct {
	// ID names the playthrough. Empty before the first start.
	ID string `json:"id"`

	// Phase is the lifecycle state.
	Phase Phase `json:"phase"`

	// Challenge is the pair being played.
	Challenge challenge.Challenge `json:"challenge"`

	// CurrentTitle is the page being shown or loaded.
	CurrentTitle string `json:"current_title"`

	// DestinationTitle is the target page as given by the challenge.
	DestinationTitle string `json:"destination_title"`

	// CanonicalDestination is the redirect-resolved destination, when known.
	CanonicalDestination string `json:"canonical_destination,omitempty"`

	// History lists every loaded page in visiting order.
	History []string `json:"history"`

	// PageCount is always len(History).
	PageCount int `json:"page_count"`

	// Elapsed is the accumulated play time.
	Elapsed time.Duration `json:"elapsed"`

	// PendingTitle is the title being fetched, if any.
	PendingTitle string `json:"pending_title,omitempty"`

	// Generation is the generation of the latest request.
	Generation uint64 `json:"generation"`

	// Article is the content of the last loaded page.
	Article *wiki.Article `json:"-"`

	// Links is the navigable link set of Article.
	Links []wiki.Link `json:"-"`

	// Outline is the table of contents of Article with its expand state.
	Outline *outline.Outline `json:"-"`

	// LastError is the cause of the Error phase.
	LastError error `json:"-"`
}

// Snapshot returns a deep copy of the session state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		ID:                   s.id,
		Phase:                s.phase,
		Challenge:            s.challenge,
		CurrentTitle:         s.current,
		DestinationTitle:     s.destination,
		CanonicalDestination: s.canonical,
		History:              append([]string{}, s.history...),
		PageCount:            len(s.history),
		Elapsed:              s.elapsed,
		PendingTitle:         s.pending,
		Generation:           s.generation,
		Article:              s.article.Clone(),
		Outline:              s.outline.Clone(),
		LastError:            s.lastErr,
	}
	if s.links != nil {
		snap.Links = append([]wiki.Link{}, s.links...)
	}
	return snap
}

// ElapsedSeconds returns the elapsed time in seconds rounded to two
// decimal places.
func (s Snapshot) ElapsedSeconds() float64 {
	return math.Round(s.Elapsed.Seconds()*100) / 100
}

// FormatElapsed formats the elapsed time for display, e.g. "12.34s".
func (s Snapshot) FormatElapsed() string {
	return fmt.Sprintf("%.2fs", s.ElapsedSeconds())
}

// Won reports whether the snapshot is of a won playthrough.
func (s Snapshot) Won() bool {
	return s.Phase == PhaseWon
}
