package session

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/wikirace/internal/challenge"
	"github.com/nao1215/wikirace/internal/outline"
	"github.com/nao1215/wikirace/internal/wiki"
)

// page builds an article whose markup links to each of links.
func page(canonical string, links ...string) *wiki.Article {
	markup := `<div class="mw-parser-output"><h2 id="Overview">Overview</h2><h3 id="Detail">Detail</h3><p>`
	for _, l := range links {
		markup += `<a href="/wiki/` + l + `">` + l + `</a> `
	}
	markup += `</p></div>`
	return &wiki.Article{Title: canonical, Markup: markup}
}

// fixedID names every session "test-session".
func fixedID() string {
	return "test-session"
}

// load answers req with article and fails the test on error.
func load(t *testing.T, s *Session, req FetchRequest, article *wiki.Article) {
	t.Helper()
	if err := s.ContentLoaded(req.Generation, req.Title, article); err != nil {
		t.Fatalf("ContentLoaded(%q) failed: %v", req.Title, err)
	}
}

// activate follows href and fails the test on error.
func activate(t *testing.T, s *Session, href string) FetchRequest {
	t.Helper()
	req, err := s.ActivateLink(href)
	if err != nil {
		t.Fatalf("ActivateLink(%q) failed: %v", href, err)
	}
	return req
}

// TestStart tests starting a session.
func TestStart(t *testing.T) {
	t.Parallel()

	t.Run("fresh session starts loading a catalog pair", func(t *testing.T) {
		t.Parallel()

		catalog := challenge.Builtin()
		for i := range catalog.Len() {
			ch, _ := catalog.At(i)
			s := New(WithIDGenerator(fixedID))
			req := s.Start(ch)

			snap := s.Snapshot()
			if snap.PageCount != 0 || len(snap.History) != 0 {
				t.Fatalf("expected empty history, got %v", snap.History)
			}
			if snap.Phase != PhaseLoading {
				t.Fatalf("expected loading, got %s", snap.Phase)
			}
			if snap.CurrentTitle != ch.Start || snap.DestinationTitle != ch.End {
				t.Fatalf("expected %s, got %q -> %q", ch, snap.CurrentTitle, snap.DestinationTitle)
			}
			if req.Title != ch.Start || req.Generation != snap.Generation {
				t.Fatalf("unexpected request %+v", req)
			}
		}
	})

	t.Run("restart resets a session in progress", func(t *testing.T) {
		t.Parallel()

		s := New()
		req := s.Start(challenge.Challenge{Start: "Banana", End: "Einstein"})
		load(t, s, req, page("Banana", "Fruit"))
		s.Tick(time.Second)
		req = activate(t, s, "/wiki/Fruit")
		load(t, s, req, page("Fruit"))

		req = s.Restart(challenge.Challenge{Start: "Jazz", End: "Chess"})
		snap := s.Snapshot()
		if snap.PageCount != 0 || snap.Elapsed != 0 || snap.Phase != PhaseLoading {
			t.Errorf("expected reset state, got %+v", snap)
		}
		if snap.Article != nil || snap.Outline != nil || snap.Links != nil {
			t.Error("expected previous content to be dropped")
		}
		if req.Title != "Jazz" {
			t.Errorf("expected request for Jazz, got %q", req.Title)
		}
	})

	t.Run("each start gets a new id", func(t *testing.T) {
		t.Parallel()

		s := New()
		s.Start(challenge.Challenge{Start: "A", End: "B"})
		first := s.Snapshot().ID
		s.Start(challenge.Challenge{Start: "A", End: "B"})
		if first == "" || first == s.Snapshot().ID {
			t.Errorf("expected distinct non-empty ids, got %q and %q", first, s.Snapshot().ID)
		}
	})
}

// TestContentLoaded tests loading pages and history bookkeeping.
func TestContentLoaded(t *testing.T) {
	t.Parallel()

	t.Run("page count tracks history after every load", func(t *testing.T) {
		t.Parallel()

		s := New()
		req := s.Start(challenge.Challenge{Start: "Banana", End: "Moon"})
		load(t, s, req, page("Banana", "Fruit", "Banana"))

		for _, href := range []string{"/wiki/Fruit", "/wiki/Banana", "/wiki/Banana"} {
			req = activate(t, s, href)
			load(t, s, req, page(req.Title, "Banana"))

			snap := s.Snapshot()
			if snap.PageCount != len(snap.History) {
				t.Fatalf("page count %d != history length %d", snap.PageCount, len(snap.History))
			}
		}

		want := []string{"Banana", "Fruit", "Banana", "Banana"}
		if diff := cmp.Diff(want, s.Snapshot().History); diff != "" {
			t.Errorf("history mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("stores links and outline of the page", func(t *testing.T) {
		t.Parallel()

		s := New()
		req := s.Start(challenge.Challenge{Start: "Banana", End: "Moon"})
		load(t, s, req, page("Banana", "Fruit", "Musa"))

		snap := s.Snapshot()
		if len(snap.Links) != 2 || snap.Links[0].Title != "Fruit" {
			t.Errorf("unexpected links %+v", snap.Links)
		}
		if snap.Outline == nil || snap.Outline.Len() != 1 {
			t.Fatalf("unexpected outline %+v", snap.Outline)
		}
		if snap.Phase != PhasePlaying {
			t.Errorf("expected playing, got %s", snap.Phase)
		}
	})

	t.Run("result for a different title is stale", func(t *testing.T) {
		t.Parallel()

		s := New()
		req := s.Start(challenge.Challenge{Start: "Banana", End: "Moon"})
		err := s.ContentLoaded(req.Generation, "Apple", page("Apple"))
		if !errors.Is(err, ErrStaleResult) {
			t.Errorf("expected ErrStaleResult, got %v", err)
		}
		if s.Snapshot().PageCount != 0 {
			t.Error("stale result changed history")
		}
	})

	t.Run("nil article is a failure", func(t *testing.T) {
		t.Parallel()

		s := New()
		req := s.Start(challenge.Challenge{Start: "Banana", End: "Moon"})
		if err := s.ContentLoaded(req.Generation, req.Title, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		snap := s.Snapshot()
		if snap.Phase != PhaseError || !errors.Is(snap.LastError, wiki.ErrNoResult) {
			t.Errorf("expected error phase with ErrNoResult, got %s %v", snap.Phase, snap.LastError)
		}
	})
}

// TestStaleFetch tests that superseded results never reach the history.
func TestStaleFetch(t *testing.T) {
	t.Parallel()

	s := New()
	req := s.Start(challenge.Challenge{Start: "Banana", End: "Moon"})
	load(t, s, req, page("Banana", "Fruit", "Plant"))

	slow := activate(t, s, "/wiki/Fruit")
	fast := activate(t, s, "/wiki/Plant")

	if err := s.ContentLoaded(slow.Generation, slow.Title, page("Fruit")); !errors.Is(err, ErrStaleResult) {
		t.Errorf("expected ErrStaleResult for superseded fetch, got %v", err)
	}
	if err := s.FetchFailed(slow.Generation, slow.Title, wiki.ErrNoResult); !errors.Is(err, ErrStaleResult) {
		t.Errorf("expected ErrStaleResult for superseded failure, got %v", err)
	}
	if diff := cmp.Diff([]string{"Banana"}, s.Snapshot().History); diff != "" {
		t.Errorf("stale fetch mutated history (-want +got):\n%s", diff)
	}

	load(t, s, fast, page("Plant"))

	// A late duplicate of an answered request is stale too.
	if err := s.ContentLoaded(fast.Generation, fast.Title, page("Plant")); !errors.Is(err, ErrStaleResult) {
		t.Errorf("expected ErrStaleResult for duplicate result, got %v", err)
	}
	if diff := cmp.Diff([]string{"Banana", "Plant"}, s.Snapshot().History); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}

	// Results of a previous playthrough are stale after a restart.
	old := activate(t, s, "/wiki/Banana")
	s.Restart(challenge.Challenge{Start: "Jazz", End: "Chess"})
	if err := s.ContentLoaded(old.Generation, old.Title, page("Banana")); !errors.Is(err, ErrStaleResult) {
		t.Errorf("expected ErrStaleResult after restart, got %v", err)
	}
}

// TestWinDetection tests the win condition.
func TestWinDetection(t *testing.T) {
	t.Parallel()

	t.Run("normalized match wins", func(t *testing.T) {
		t.Parallel()

		s := New()
		req := s.Start(challenge.Challenge{Start: "Mount Everest", End: "mount_everest "})
		load(t, s, req, page("Mount Everest"))

		if got := s.Phase(); got != PhaseWon {
			t.Errorf("expected won, got %s", got)
		}
	})

	t.Run("scenario through a redirected destination", func(t *testing.T) {
		t.Parallel()

		s := New()
		req := s.Start(challenge.Challenge{Start: "Banana", End: "Einstein"})
		if err := s.ResolveDestination(req.Generation, "Albert Einstein"); err != nil {
			t.Fatalf("ResolveDestination failed: %v", err)
		}
		load(t, s, req, page("Banana", "Fruit"))

		req = activate(t, s, "/wiki/Fruit")
		load(t, s, req, page("Fruit", "Albert_Einstein"))
		if s.Phase() != PhasePlaying {
			t.Fatalf("expected playing, got %s", s.Phase())
		}

		req = activate(t, s, "/wiki/Albert_Einstein")
		load(t, s, req, page("Albert Einstein", "Physics"))

		snap := s.Snapshot()
		if snap.Phase != PhaseWon {
			t.Fatalf("expected won, got %s", snap.Phase)
		}
		if diff := cmp.Diff([]string{"Banana", "Fruit", "Albert Einstein"}, snap.History); diff != "" {
			t.Errorf("history mismatch (-want +got):\n%s", diff)
		}
		if snap.PageCount != 3 {
			t.Errorf("expected page count 3, got %d", snap.PageCount)
		}
	})

	t.Run("late alias wins the page on screen", func(t *testing.T) {
		t.Parallel()

		s := New()
		start := s.Start(challenge.Challenge{Start: "Fruit", End: "Einstein"})
		load(t, s, start, page("Fruit", "Albert_Einstein"))
		req := activate(t, s, "/wiki/Albert_Einstein")
		load(t, s, req, page("Albert Einstein"))
		if s.Phase() != PhasePlaying {
			t.Fatalf("expected playing before resolution, got %s", s.Phase())
		}

		if err := s.ResolveDestination(start.Generation, "Albert Einstein"); err != nil {
			t.Fatalf("ResolveDestination failed: %v", err)
		}
		if s.Phase() != PhaseWon {
			t.Errorf("expected won after resolution, got %s", s.Phase())
		}
	})

	t.Run("redirect link to destination wins by canonical title", func(t *testing.T) {
		t.Parallel()

		s := New()
		req := s.Start(challenge.Challenge{Start: "Physics", End: "Albert Einstein"})
		load(t, s, req, page("Physics", "Einstein"))
		req = activate(t, s, "/wiki/Einstein")
		load(t, s, req, page("Albert Einstein"))

		if s.Phase() != PhaseWon {
			t.Errorf("expected won, got %s", s.Phase())
		}
	})

	t.Run("alias from another playthrough is stale", func(t *testing.T) {
		t.Parallel()

		s := New()
		first := s.Start(challenge.Challenge{Start: "A", End: "B"})
		s.Restart(challenge.Challenge{Start: "C", End: "D"})
		if err := s.ResolveDestination(first.Generation, "C"); !errors.Is(err, ErrStaleResult) {
			t.Errorf("expected ErrStaleResult, got %v", err)
		}
	})

	t.Run("won session ignores links", func(t *testing.T) {
		t.Parallel()

		s := New()
		req := s.Start(challenge.Challenge{Start: "Jazz", End: "Jazz"})
		load(t, s, req, page("Jazz", "Blues"))

		if _, err := s.ActivateLink("/wiki/Blues"); !errors.Is(err, ErrNoSession) {
			t.Errorf("expected ErrNoSession, got %v", err)
		}
		if s.Snapshot().PageCount != 1 {
			t.Error("won session changed")
		}
	})
}

// TestActivateLink tests link activation.
func TestActivateLink(t *testing.T) {
	t.Parallel()

	t.Run("article link requests fetch of decoded title", func(t *testing.T) {
		t.Parallel()

		s := New()
		req := s.Start(challenge.Challenge{Start: "Physics", End: "Moon"})
		load(t, s, req, page("Physics"))
		gen := s.Generation()

		req, err := s.ActivateLink("/wiki/Albert_Einstein#Early_life")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := FetchRequest{Generation: gen + 1, Title: "Albert Einstein"}
		if diff := cmp.Diff(want, req); diff != "" {
			t.Errorf("request mismatch (-want +got):\n%s", diff)
		}
		snap := s.Snapshot()
		if snap.Phase != PhaseLoading || snap.CurrentTitle != "Albert Einstein" || snap.PendingTitle != "Albert Einstein" {
			t.Errorf("unexpected state %s %q %q", snap.Phase, snap.CurrentTitle, snap.PendingTitle)
		}
	})

	t.Run("external link changes nothing", func(t *testing.T) {
		t.Parallel()

		s := New()
		req := s.Start(challenge.Challenge{Start: "Physics", End: "Moon"})
		load(t, s, req, page("Physics"))
		before := s.Snapshot()

		_, err := s.ActivateLink("https://example.com/external")
		if !errors.Is(err, wiki.ErrInvalidLinkTarget) {
			t.Errorf("expected ErrInvalidLinkTarget, got %v", err)
		}

		after := s.Snapshot()
		if diff := cmp.Diff(before, after, cmp.AllowUnexported(outline.Outline{}), cmp.Comparer(func(a, b error) bool { return a == b })); diff != "" {
			t.Errorf("state changed (-before +after):\n%s", diff)
		}
	})

	t.Run("fragment link changes nothing", func(t *testing.T) {
		t.Parallel()

		s := New()
		req := s.Start(challenge.Challenge{Start: "Physics", End: "Moon"})
		load(t, s, req, page("Physics"))
		gen := s.Generation()

		if _, err := s.ActivateLink("#History"); !errors.Is(err, wiki.ErrInvalidLinkTarget) {
			t.Errorf("expected ErrInvalidLinkTarget, got %v", err)
		}
		if s.Generation() != gen || s.Phase() != PhasePlaying {
			t.Error("fragment link changed state")
		}
	})

	t.Run("self link adds a history entry", func(t *testing.T) {
		t.Parallel()

		s := New()
		req := s.Start(challenge.Challenge{Start: "Physics", End: "Moon"})
		load(t, s, req, page("Physics", "Physics"))
		req = activate(t, s, "/wiki/physics")
		load(t, s, req, page("Physics"))

		if got := s.Snapshot().PageCount; got != 2 {
			t.Errorf("expected page count 2, got %d", got)
		}
	})

	t.Run("idle session ignores links", func(t *testing.T) {
		t.Parallel()

		s := New()
		if _, err := s.ActivateLink("/wiki/Fruit"); !errors.Is(err, ErrNoSession) {
			t.Errorf("expected ErrNoSession, got %v", err)
		}
		if s.Phase() != PhaseIdle {
			t.Errorf("expected idle, got %s", s.Phase())
		}
	})

	t.Run("custom classifier", func(t *testing.T) {
		t.Parallel()

		s := New(WithClassifier(wiki.NewClassifier("wiki.example.org", "/page/")))
		req := s.Start(challenge.Challenge{Start: "Home", End: "Away"})
		load(t, s, req, &wiki.Article{Title: "Home", Markup: `<a href="/page/Away">away</a>`})

		if len(s.Snapshot().Links) != 1 {
			t.Errorf("expected custom prefix link to be extracted, got %+v", s.Snapshot().Links)
		}
		req = activate(t, s, "/page/Away")
		if req.Title != "Away" {
			t.Errorf("expected Away, got %q", req.Title)
		}
	})
}

// TestErrorRecovery tests the Error phase with retry and cancel.
func TestErrorRecovery(t *testing.T) {
	t.Parallel()

	t.Run("retry reissues pending title", func(t *testing.T) {
		t.Parallel()

		s := New()
		req := s.Start(challenge.Challenge{Start: "Banana", End: "Moon"})
		if err := s.FetchFailed(req.Generation, req.Title, wiki.ErrNoResult); err != nil {
			t.Fatalf("FetchFailed failed: %v", err)
		}
		if s.Phase() != PhaseError || !errors.Is(s.LastError(), wiki.ErrNoResult) {
			t.Fatalf("expected error phase, got %s", s.Phase())
		}

		retry, err := s.Retry()
		if err != nil {
			t.Fatalf("Retry failed: %v", err)
		}
		if retry.Title != "Banana" || retry.Generation <= req.Generation {
			t.Errorf("unexpected retry request %+v", retry)
		}
		if err := s.ContentLoaded(req.Generation, req.Title, page("Banana")); !errors.Is(err, ErrStaleResult) {
			t.Errorf("expected original request to be stale, got %v", err)
		}
		load(t, s, retry, page("Banana"))
		if s.LastError() != nil {
			t.Errorf("expected error cleared, got %v", s.LastError())
		}
	})

	t.Run("cancel returns to the last page", func(t *testing.T) {
		t.Parallel()

		s := New()
		req := s.Start(challenge.Challenge{Start: "Banana", End: "Moon"})
		load(t, s, req, page("Banana", "Fruit"))
		req = activate(t, s, "/wiki/Fruit")
		if err := s.FetchFailed(req.Generation, req.Title, wiki.ErrNoResult); err != nil {
			t.Fatalf("FetchFailed failed: %v", err)
		}

		if err := s.Cancel(); err != nil {
			t.Fatalf("Cancel failed: %v", err)
		}
		snap := s.Snapshot()
		if snap.Phase != PhasePlaying || snap.CurrentTitle != "Banana" || snap.PageCount != 1 {
			t.Errorf("unexpected state after cancel: %s %q %d", snap.Phase, snap.CurrentTitle, snap.PageCount)
		}
		if snap.Article == nil || snap.Article.Title != "Banana" {
			t.Error("expected previous page content to remain")
		}
	})

	t.Run("cancel before first page returns to idle", func(t *testing.T) {
		t.Parallel()

		s := New()
		req := s.Start(challenge.Challenge{Start: "Banana", End: "Moon"})
		if err := s.FetchFailed(req.Generation, req.Title, nil); err != nil {
			t.Fatalf("FetchFailed failed: %v", err)
		}
		if err := s.Cancel(); err != nil {
			t.Fatalf("Cancel failed: %v", err)
		}
		if s.Phase() != PhaseIdle {
			t.Errorf("expected idle, got %s", s.Phase())
		}
	})

	t.Run("retry and cancel need the error phase", func(t *testing.T) {
		t.Parallel()

		s := New()
		if _, err := s.Retry(); !errors.Is(err, ErrNotRetryable) {
			t.Errorf("expected ErrNotRetryable, got %v", err)
		}
		if err := s.Cancel(); !errors.Is(err, ErrNotRetryable) {
			t.Errorf("expected ErrNotRetryable, got %v", err)
		}
	})
}

// TestTick tests elapsed time accounting.
func TestTick(t *testing.T) {
	t.Parallel()

	s := New()
	s.Tick(time.Second)
	if s.Snapshot().Elapsed != 0 {
		t.Error("idle session accumulated time")
	}

	req := s.Start(challenge.Challenge{Start: "Banana", End: "Fruit"})
	s.Tick(250 * time.Millisecond) // loading
	load(t, s, req, page("Banana", "Fruit"))
	s.Tick(250 * time.Millisecond) // playing
	s.Tick(-time.Second)

	req = activate(t, s, "/wiki/Fruit")
	if err := s.FetchFailed(req.Generation, req.Title, wiki.ErrNoResult); err != nil {
		t.Fatalf("FetchFailed failed: %v", err)
	}
	s.Tick(time.Hour) // error pauses the timer

	retry, err := s.Retry()
	if err != nil {
		t.Fatalf("Retry failed: %v", err)
	}
	s.Tick(500 * time.Millisecond)
	load(t, s, retry, page("Fruit"))

	if s.Phase() != PhaseWon {
		t.Fatalf("expected won, got %s", s.Phase())
	}
	frozen := s.Snapshot().Elapsed
	for range 100 {
		s.Tick(10 * time.Millisecond)
	}

	snap := s.Snapshot()
	if snap.Elapsed != frozen || frozen != time.Second {
		t.Errorf("expected elapsed frozen at 1s, got %s then %s", frozen, snap.Elapsed)
	}
}

func TestSnapshotElapsed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		elapsed time.Duration
		seconds float64
		text    string
	}{
		{0, 0, "0.00s"},
		{12346 * time.Millisecond, 12.35, "12.35s"},
		{12344 * time.Millisecond, 12.34, "12.34s"},
		{90 * time.Second, 90, "90.00s"},
	}

	for _, tt := range tests {
		snap := Snapshot{Elapsed: tt.elapsed}
		if got := snap.ElapsedSeconds(); got != tt.seconds {
			t.Errorf("ElapsedSeconds(%s) = %v, want %v", tt.elapsed, got, tt.seconds)
		}
		if got := snap.FormatElapsed(); got != tt.text {
			t.Errorf("FormatElapsed(%s) = %q, want %q", tt.elapsed, got, tt.text)
		}
	}
}

// TestSnapshotIsolation tests that snapshots share no mutable state.
func TestSnapshotIsolation(t *testing.T) {
	t.Parallel()

	s := New()
	req := s.Start(challenge.Challenge{Start: "Banana", End: "Moon"})
	load(t, s, req, page("Banana", "Fruit"))

	snap := s.Snapshot()
	snap.History[0] = "changed"
	snap.Links[0].Title = "changed"
	snap.Outline.Toggle("Overview")

	again := s.Snapshot()
	if again.History[0] != "Banana" || again.Links[0].Title != "Fruit" {
		t.Error("snapshot shares slices with session")
	}
	if again.Outline.Expanded("Overview") {
		t.Error("snapshot shares outline with session")
	}

	if !s.ToggleOutlineSection("Overview") || !s.Snapshot().Outline.Expanded("Overview") {
		t.Error("expected ToggleOutlineSection to expand")
	}
	if New().ToggleOutlineSection("Overview") {
		t.Error("expected toggle without outline to report false")
	}
}

func TestPhaseString(t *testing.T) {
	t.Parallel()

	phases := map[Phase]string{
		PhaseIdle:    "idle",
		PhaseLoading: "loading",
		PhasePlaying: "playing",
		PhaseWon:     "won",
		PhaseError:   "error",
	}
	for p, want := range phases {
		if got := p.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", p, got, want)
		}
	}
}
