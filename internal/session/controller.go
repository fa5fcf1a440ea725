package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/wikirace/internal/challenge"
	"github.com/nao1215/wikirace/internal/wiki"
)

// Default controller settings.
const (
	// DefaultFetchTimeout bounds a single article fetch.
	DefaultFetchTimeout = 15 * time.Second

	// DefaultTickInterval is the timer resolution.
	DefaultTickInterval = 10 * time.Millisecond

	// eventBuffer is the capacity of the event channel. Commands issued
	// before Run starts are queued here.
	eventBuffer = 32
)

// event is a unit of work executed by the event loop. It is the only
// code that touches the Session.
type event func(ctx context.Context)

// Controller drives a Session from a single event-loop goroutine.
//
// Design decision: Commands, fetch completions and timer ticks all travel
// through one channel and are applied one at a time, so the Session needs
// no locks and the elapsed-time accumulator cannot be corrupted by
// interleaving sources.
type Controller struct {
	// gateway fetches articles and resolves titles.
	gateway wiki.Gateway

	// catalog supplies random challenges.
	catalog *challenge.Catalog

	// rng picks challenges. Only the event loop uses it.
	rng challenge.Source

	// session is owned by the event loop.
	session *Session

	// sessionOpts configure the Session created by NewController.
	sessionOpts []Option

	fetchTimeout time.Duration
	tickInterval time.Duration

	// logger is the base logger; log carries the current session id.
	logger *slog.Logger
	log    *slog.Logger

	events  chan event
	updates chan Snapshot
	done    chan struct{}
	running atomic.Bool

	// cancelFetch and cancelResolve abandon the latest outstanding
	// requests. Owned by the event loop.
	cancelFetch   context.CancelFunc
	cancelResolve context.CancelFunc

	// inflight tracks request goroutines so Run can wait for them.
	inflight sync.WaitGroup

	// now reads the clock; lastTick is the instant elapsed time was last
	// measured from. Owned by the event loop.
	now      func() time.Time
	lastTick time.Time

	// latest is the last full snapshot published.
	latest Snapshot
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithFetchTimeout sets the deadline of each article fetch.
func WithFetchTimeout(d time.Duration) ControllerOption {
	return func(c *Controller) {
		if d > 0 {
			c.fetchTimeout = d
		}
	}
}

// WithTickInterval sets how often elapsed time is sampled.
func WithTickInterval(d time.Duration) ControllerOption {
	return func(c *Controller) {
		if d > 0 {
			c.tickInterval = d
		}
	}
}

// WithRand sets the source used to pick challenges.
func WithRand(src challenge.Source) ControllerOption {
	return func(c *Controller) {
		if src != nil {
			c.rng = src
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithSessionOptions passes options to the controlled Session.
func WithSessionOptions(opts ...Option) ControllerOption {
	return func(c *Controller) {
		c.sessionOpts = append(c.sessionOpts, opts...)
	}
}

// NewController creates a Controller over gateway and catalog.
// Call Run to start processing.
func NewController(gateway wiki.Gateway, catalog *challenge.Catalog, opts ...ControllerOption) *Controller {
	c := &Controller{
		gateway:      gateway,
		catalog:      catalog,
		rng:          rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), //nolint:gosec // game randomness
		fetchTimeout: DefaultFetchTimeout,
		tickInterval: DefaultTickInterval,
		events:       make(chan event, eventBuffer),
		updates:      make(chan Snapshot, 1),
		done:         make(chan struct{}),
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.log = c.logger
	c.session = New(c.sessionOpts...)

	return c
}

// Updates returns the channel on which snapshots are published. The
// channel holds only the latest snapshot; a slow reader skips
// intermediate states but always sees the newest one.
//
// Snapshots published for timer ticks share Article, Links and Outline
// with the snapshot before them; readers must not modify those.
func (c *Controller) Updates() <-chan Snapshot {
	return c.updates
}

// Run processes events until ctx is canceled. It returns after every
// request goroutine it started has finished.
func (c *Controller) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(c.done)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.loop(gctx)
	})
	g.Go(func() error {
		return c.tick(gctx)
	})

	err := g.Wait()
	c.inflight.Wait()
	return err
}

// loop applies events until ctx is done.
func (c *Controller) loop(ctx context.Context) error {
	defer func() {
		if c.cancelFetch != nil {
			c.cancelFetch()
		}
		if c.cancelResolve != nil {
			c.cancelResolve()
		}
	}()

	c.publish()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-c.events:
			ev(ctx)
		}
	}
}

// tick feeds ticker instants to the loop. The readings carry the
// monotonic clock, so wall clock jumps do not leak into elapsed time.
func (c *Controller) tick(ctx context.Context) error {
	ticker := time.NewTicker(c.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if !c.post(ctx, func(context.Context) { c.onTick(now) }) {
				return nil
			}
		}
	}
}

// post queues ev from a goroutine started by Run. It reports false when
// ctx ended first.
func (c *Controller) post(ctx context.Context, ev event) bool {
	select {
	case c.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// send queues ev from an outside caller. It reports false after Run returned.
func (c *Controller) send(ev event) bool {
	select {
	case c.events <- ev:
		return true
	case <-c.done:
		return false
	}
}

// publish replaces the pending snapshot with the current state.
// Only the event loop calls it, so the drain-then-send cannot race with
// another writer.
func (c *Controller) publish() {
	c.latest = c.session.Snapshot()
	c.offer(c.latest)
}

// publishElapsed republishes the latest snapshot with the current elapsed
// time. Ticks change nothing else, so Article, Links and Outline are
// shared with the previous snapshot instead of copied again.
func (c *Controller) publishElapsed() {
	snap := c.latest
	snap.Elapsed = c.session.Elapsed()
	c.offer(snap)
}

// offer replaces the pending snapshot with snap.
func (c *Controller) offer(snap Snapshot) {
	select {
	case <-c.updates:
	default:
	}
	select {
	case c.updates <- snap:
	default:
	}
}

// Start begins a playthrough of a random challenge from the catalog.
func (c *Controller) Start() {
	c.send(func(ctx context.Context) {
		c.begin(ctx, c.catalog.Random(c.rng), "start")
	})
}

// StartChallenge begins a playthrough of ch.
func (c *Controller) StartChallenge(ch challenge.Challenge) {
	c.send(func(ctx context.Context) {
		c.begin(ctx, ch, "start")
	})
}

// Restart abandons the current playthrough and starts a new random one.
func (c *Controller) Restart() {
	c.send(func(ctx context.Context) {
		c.begin(ctx, c.catalog.Random(c.rng), "restart")
	})
}

// ActivateLink follows href if it is a navigable article link.
func (c *Controller) ActivateLink(href string) {
	c.send(func(ctx context.Context) {
		req, err := c.session.ActivateLink(href)
		if err != nil {
			c.log.Debug("link ignored", "href", href, "error", err)
			return
		}
		c.log.Debug("link activated", "href", href, "title", req.Title, "generation", req.Generation)
		c.fetch(ctx, req)
		c.publish()
	})
}

// ToggleOutline flips the expanded state of an outline section.
func (c *Controller) ToggleOutline(id string) {
	c.send(func(context.Context) {
		c.session.ToggleOutlineSection(id)
		c.publish()
	})
}

// Retry re-issues a failed fetch.
func (c *Controller) Retry() {
	c.send(func(ctx context.Context) {
		req, err := c.session.Retry()
		if err != nil {
			c.log.Debug("retry ignored", "error", err)
			return
		}
		c.log.Info("retrying fetch", "title", req.Title)
		c.fetch(ctx, req)
		c.publish()
	})
}

// Cancel abandons a failed fetch.
func (c *Controller) Cancel() {
	c.send(func(context.Context) {
		if err := c.session.Cancel(); err != nil {
			c.log.Debug("cancel ignored", "error", err)
			return
		}
		c.publish()
	})
}

// Snapshot returns the current state, waiting for the event loop.
func (c *Controller) Snapshot(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	ev := func(context.Context) {
		reply <- c.session.Snapshot()
	}

	select {
	case c.events <- ev:
	case <-c.done:
		return Snapshot{}, ErrStopped
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}

	select {
	case snap := <-reply:
		return snap, nil
	case <-c.done:
		return Snapshot{}, ErrStopped
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// begin starts a playthrough of ch and issues its requests.
func (c *Controller) begin(ctx context.Context, ch challenge.Challenge, reason string) {
	req := c.session.Start(ch)
	c.lastTick = c.now()
	c.log = c.logger.With("session", c.session.ID())
	c.log.Info("session "+reason, "start", ch.Start, "destination", ch.End)

	c.fetch(ctx, req)
	c.resolve(ctx, req.Generation, ch.End)
	c.publish()
}

// fetch runs req in its own goroutine, canceling the previous fetch.
func (c *Controller) fetch(ctx context.Context, req FetchRequest) {
	if c.cancelFetch != nil {
		c.cancelFetch()
	}
	fctx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	c.cancelFetch = cancel

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		defer cancel()

		start := time.Now()
		article, err := c.gateway.FetchArticle(fctx, req.Title)
		if errors.Is(err, context.DeadlineExceeded) && fctx.Err() != nil {
			err = fmt.Errorf("fetch of %q timed out after %s: %w", req.Title, c.fetchTimeout, err)
		}
		elapsed := time.Since(start)

		c.post(ctx, func(context.Context) {
			c.onFetched(req, article, err, elapsed)
		})
	}()
}

// onFetched applies a fetch outcome.
func (c *Controller) onFetched(req FetchRequest, article *wiki.Article, err error, elapsed time.Duration) {
	if err != nil {
		if ferr := c.session.FetchFailed(req.Generation, req.Title, err); IsStale(ferr) {
			c.log.Debug("discarded fetch failure", "title", req.Title, "error", ferr)
			return
		}
		c.log.Warn("fetch failed", "title", req.Title, "error", err)
		c.publish()
		return
	}

	if lerr := c.session.ContentLoaded(req.Generation, req.Title, article); lerr != nil {
		c.log.Debug("discarded fetch result", "title", req.Title, "error", lerr)
		return
	}

	snap := c.session.Snapshot()
	c.log.Debug("page loaded",
		"title", req.Title,
		"canonical", article.Title,
		"page_count", snap.PageCount,
		"links", len(snap.Links),
		"fetch_time", elapsed,
	)
	if snap.Won() {
		c.log.Info("destination reached", "page_count", snap.PageCount, "elapsed", snap.FormatElapsed())
	}
	c.publish()
}

// resolve looks up the canonical destination title in the background.
func (c *Controller) resolve(ctx context.Context, gen uint64, destination string) {
	if c.cancelResolve != nil {
		c.cancelResolve()
	}
	rctx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	c.cancelResolve = cancel

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		defer cancel()

		canonical, err := c.gateway.ResolveTitle(rctx, destination)
		c.post(ctx, func(context.Context) {
			if err != nil {
				c.log.Debug("destination not resolved", "destination", destination, "error", err)
				return
			}
			if rerr := c.session.ResolveDestination(gen, canonical); rerr != nil {
				c.log.Debug("discarded destination alias", "canonical", canonical, "error", rerr)
				return
			}
			c.log.Debug("destination resolved", "destination", destination, "canonical", canonical)
			c.publish()
		})
	}()
}

// onTick advances the timer by the time since the previous measurement.
// Starting a session resets the measurement, so time spent before the
// start is never counted.
func (c *Controller) onTick(now time.Time) {
	last := c.lastTick
	c.lastTick = now
	if last.IsZero() || !c.session.Phase().timing() {
		return
	}
	c.session.Tick(now.Sub(last))
	c.publishElapsed()
}
