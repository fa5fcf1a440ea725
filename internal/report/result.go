package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/nao1215/wikirace/internal/session"
)

// ErrNotWon is returned when a result is requested for an unfinished game.
var ErrNotWon = errors.New("game has not been won")

// Result is the final stats of a won game.
type Result struct {
	// SessionID names the playthrough.
	SessionID string `json:"session_id"`

	// Start is the first page visited.
	Start string `json:"start"`

	// Destination is the target page as given by the challenge.
	Destination string `json:"destination"`

	// CanonicalDestination is the redirect-resolved destination, when it
	// differs from Destination.
	CanonicalDestination string `json:"canonical_destination,omitempty"`

	// Path lists every page visited, in order.
	Path []string `json:"path"`

	// PageCount is len(Path).
	PageCount int `json:"page_count"`

	// ElapsedSeconds is the play time rounded to two decimal places.
	ElapsedSeconds float64 `json:"elapsed_seconds"`

	// CompletedAt is when the result was recorded.
	CompletedAt time.Time `json:"completed_at"`
}

// NewResult builds a Result from the snapshot of a won session.
func NewResult(snap session.Snapshot, completedAt time.Time) (*Result, error) {
	if !snap.Won() {
		return nil, fmt.Errorf("%w: phase %s", ErrNotWon, snap.Phase)
	}

	start := snap.Challenge.Start
	if len(snap.History) > 0 {
		start = snap.History[0]
	}

	r := &Result{
		SessionID:      snap.ID,
		Start:          start,
		Destination:    snap.DestinationTitle,
		Path:           append([]string{}, snap.History...),
		PageCount:      snap.PageCount,
		ElapsedSeconds: snap.ElapsedSeconds(),
		CompletedAt:    completedAt,
	}
	if snap.CanonicalDestination != snap.DestinationTitle {
		r.CanonicalDestination = snap.CanonicalDestination
	}
	return r, nil
}

// Hops returns the number of links followed, one less than the pages
// visited.
func (r *Result) Hops() int {
	if r.PageCount == 0 {
		return 0
	}
	return r.PageCount - 1
}

// ShareText returns the one-line brag for sharing a result.
func (r *Result) ShareText() string {
	return fmt.Sprintf("I completed the Wikipedia Adventure in %.2f seconds across %d pages! From %s to %s!",
		r.ElapsedSeconds, r.PageCount, r.Start, r.Destination)
}
