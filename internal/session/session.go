package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/wikirace/internal/challenge"
	"github.com/nao1215/wikirace/internal/outline"
	"github.com/nao1215/wikirace/internal/title"
	"github.com/nao1215/wikirace/internal/wiki"
)

// FetchRequest asks the caller to fetch an article and report the outcome
// with ContentLoaded or FetchFailed, passing Generation back unchanged.
type FetchRequest struct {
	Generation uint64
	Title      string
}

// Session holds the state of one playthrough.
// A Session is not safe for concurrent use; the Controller owns it from a
// single goroutine.
type Session struct {
	id          string
	challenge   challenge.Challenge
	current     string
	destination string

	// aliases holds the destination and its canonical (redirect-resolved)
	// title. Reaching any of them wins.
	aliases   *title.Set
	canonical string

	history []string
	elapsed time.Duration
	phase   Phase

	article *wiki.Article
	links   []wiki.Link
	outline *outline.Outline

	pending    string
	generation uint64
	startGen   uint64
	lastErr    error

	classifier *wiki.Classifier
	newID      func() string
}

// Option configures a Session.
type Option func(*Session)

// WithClassifier sets the classifier used for link activation and link
// extraction. The default is wiki.DefaultClassifier.
func WithClassifier(c *wiki.Classifier) Option {
	return func(s *Session) {
		if c != nil {
			s.classifier = c
		}
	}
}

// WithIDGenerator sets the function that names new sessions.
func WithIDGenerator(fn func() string) Option {
	return func(s *Session) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// New returns an idle session.
func New(opts ...Option) *Session {
	s := &Session{
		phase:      PhaseIdle,
		history:    []string{},
		aliases:    title.NewSet(),
		classifier: wiki.DefaultClassifier,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	return s.phase
}

// ID returns the id of the current playthrough.
func (s *Session) ID() string {
	return s.id
}

// Elapsed returns the accumulated play time.
func (s *Session) Elapsed() time.Duration {
	return s.elapsed
}

// Generation returns the generation of the latest request.
func (s *Session) Generation() uint64 {
	return s.generation
}

// Start begins a new playthrough of ch and requests its start article.
// Any previous state is discarded.
func (s *Session) Start(ch challenge.Challenge) FetchRequest {
	s.id = s.newID()
	s.challenge = ch
	s.current = ch.Start
	s.destination = ch.End
	s.aliases = title.NewSet(ch.End)
	s.canonical = ""
	s.history = []string{}
	s.elapsed = 0
	s.article = nil
	s.links = nil
	s.outline = nil
	s.lastErr = nil

	s.generation++
	s.startGen = s.generation

	return s.request(ch.Start)
}

// Restart is Start, legal from any phase. In-flight requests of the
// previous playthrough become stale.
func (s *Session) Restart(ch challenge.Challenge) FetchRequest {
	return s.Start(ch)
}

// request moves to Loading for t under the current generation.
func (s *Session) request(t string) FetchRequest {
	s.pending = t
	s.phase = PhaseLoading
	return FetchRequest{Generation: s.generation, Title: t}
}

// accepts reports whether a result for (gen, t) answers the pending request.
func (s *Session) accepts(gen uint64, t string) bool {
	return s.phase == PhaseLoading && gen == s.generation && title.Equal(t, s.pending)
}

// ContentLoaded records a fetched article for the pending request.
// It returns ErrStaleResult, leaving the session unchanged, when the
// result does not answer the latest request.
func (s *Session) ContentLoaded(gen uint64, t string, article *wiki.Article) error {
	if !s.accepts(gen, t) {
		return fmt.Errorf("%w: generation %d, title %q", ErrStaleResult, gen, t)
	}
	if article == nil {
		return s.FetchFailed(gen, t, wiki.ErrNoResult)
	}

	links, err := s.classifier.ExtractLinks(strings.NewReader(article.Markup))
	if err != nil {
		return s.FetchFailed(gen, t, fmt.Errorf("failed to extract links: %w", err))
	}
	toc, err := outline.Extract(article.Markup)
	if err != nil {
		return s.FetchFailed(gen, t, fmt.Errorf("failed to extract outline: %w", err))
	}

	s.history = append(s.history, t)
	s.article = article.Clone()
	s.links = links
	s.outline = toc
	s.pending = ""
	s.lastErr = nil
	s.phase = PhasePlaying

	s.checkWin()
	return nil
}

// FetchFailed records a failed fetch for the pending request and moves to
// the Error phase, which pauses the timer. Stale failures return
// ErrStaleResult.
func (s *Session) FetchFailed(gen uint64, t string, cause error) error {
	if !s.accepts(gen, t) {
		return fmt.Errorf("%w: generation %d, title %q", ErrStaleResult, gen, t)
	}
	if cause == nil {
		cause = wiki.ErrNoResult
	}
	s.lastErr = cause
	s.phase = PhaseError
	return nil
}

// ResolveDestination records the canonical title of the destination, as
// returned by redirect resolution for the playthrough started with
// generation gen. If the page on screen already matches it, the session
// is won.
func (s *Session) ResolveDestination(gen uint64, canonical string) error {
	if gen != s.startGen || s.phase == PhaseIdle {
		return fmt.Errorf("%w: destination for generation %d", ErrStaleResult, gen)
	}
	if strings.TrimSpace(canonical) == "" {
		return nil
	}
	s.canonical = canonical
	s.aliases.Add(canonical)
	if s.phase == PhasePlaying {
		s.checkWin()
	}
	return nil
}

// checkWin moves a Playing session to Won when the loaded page is the
// destination. The requested title and the article's canonical title are
// both compared so that arriving through a redirect counts.
func (s *Session) checkWin() {
	if s.phase != PhasePlaying {
		return
	}
	if s.aliases.Contains(s.current) ||
		(s.article != nil && s.aliases.Contains(s.article.Title)) {
		s.phase = PhaseWon
	}
}

// ActivateLink handles an activated anchor. A navigable article link moves
// the session to Loading for the link's title and returns the fetch
// request. Links to the current page are legal and add a history entry.
//
// Non-navigable links return an error wrapping wiki.ErrInvalidLinkTarget
// and change nothing; outside an active session ErrNoSession is returned.
func (s *Session) ActivateLink(href string) (FetchRequest, error) {
	if !s.phase.Active() {
		return FetchRequest{}, fmt.Errorf("%w: phase %s", ErrNoSession, s.phase)
	}

	target := s.classifier.Classify(href)
	if !target.Navigable() {
		return FetchRequest{}, &wiki.LinkError{Href: href, Kind: target.Kind}
	}

	s.current = target.Title
	s.lastErr = nil
	s.generation++
	return s.request(target.Title), nil
}

// Retry re-issues the failed request under a new generation.
func (s *Session) Retry() (FetchRequest, error) {
	if s.phase != PhaseError {
		return FetchRequest{}, fmt.Errorf("%w: phase %s", ErrNotRetryable, s.phase)
	}
	s.lastErr = nil
	s.generation++
	return s.request(s.pending), nil
}

// Cancel abandons the failed request. The session returns to the last
// loaded page, or to Idle when nothing was loaded yet.
func (s *Session) Cancel() error {
	if s.phase != PhaseError {
		return fmt.Errorf("%w: phase %s", ErrNotRetryable, s.phase)
	}
	s.generation++
	s.pending = ""
	s.lastErr = nil

	if len(s.history) == 0 {
		s.current = ""
		s.phase = PhaseIdle
		return nil
	}
	s.current = s.history[len(s.history)-1]
	s.phase = PhasePlaying
	return nil
}

// Tick adds d to the elapsed time while the session is Loading or Playing.
func (s *Session) Tick(d time.Duration) {
	if d <= 0 || !s.phase.timing() {
		return
	}
	s.elapsed += d
}

// ToggleOutlineSection flips the expanded flag of a section of the current
// page's outline and returns the new state.
func (s *Session) ToggleOutlineSection(id string) bool {
	if s.outline == nil {
		return false
	}
	return s.outline.Toggle(id)
}

// LastError returns the cause of the Error phase, if any.
func (s *Session) LastError() error {
	return s.lastErr
}

// IsStale reports whether err means a result was discarded as superseded.
func IsStale(err error) bool {
	return errors.Is(err, ErrStaleResult)
}
