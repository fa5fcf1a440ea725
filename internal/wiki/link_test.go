package wiki

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestClassifyHref tests link classification.
func TestClassifyHref(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		href string
		want LinkTarget
	}{
		{
			name: "article with fragment",
			href: "/wiki/Albert_Einstein#Early_life",
			want: LinkTarget{Kind: LinkArticle, Title: "Albert Einstein", Fragment: "Early_life"},
		},
		{
			name: "plain article",
			href: "/wiki/Fruit",
			want: LinkTarget{Kind: LinkArticle, Title: "Fruit"},
		},
		{
			name: "percent-encoded title",
			href: "/wiki/Rubik%27s_Cube",
			want: LinkTarget{Kind: LinkArticle, Title: "Rubik's Cube"},
		},
		{
			name: "encoded non-ascii title",
			href: "/wiki/Caf%C3%A9",
			want: LinkTarget{Kind: LinkArticle, Title: "Café"},
		},
		{
			name: "main namespace title with colon",
			href: "/wiki/Star_Wars:_Visions",
			want: LinkTarget{Kind: LinkArticle, Title: "Star Wars: Visions"},
		},
		{
			name: "absolute same-site link",
			href: "https://en.wikipedia.org/wiki/Jazz",
			want: LinkTarget{Kind: LinkArticle, Title: "Jazz"},
		},
		{
			name: "protocol-relative same-site link",
			href: "//en.wikipedia.org/wiki/Chess",
			want: LinkTarget{Kind: LinkArticle, Title: "Chess"},
		},
		{
			name: "external url",
			href: "https://example.com/external",
			want: LinkTarget{Kind: LinkExternal},
		},
		{
			name: "other language wiki",
			href: "https://de.wikipedia.org/wiki/Banane",
			want: LinkTarget{Kind: LinkExternal},
		},
		{
			name: "mailto",
			href: "mailto:someone@example.com",
			want: LinkTarget{Kind: LinkExternal},
		},
		{
			name: "javascript",
			href: "javascript:void(0)",
			want: LinkTarget{Kind: LinkExternal},
		},
		{
			name: "same-page fragment",
			href: "#History",
			want: LinkTarget{Kind: LinkFragment, Fragment: "History"},
		},
		{
			name: "citation anchor",
			href: "#cite_note-3",
			want: LinkTarget{Kind: LinkFragment, Fragment: "cite_note-3"},
		},
		{
			name: "file namespace",
			href: "/wiki/File:Banana.jpg",
			want: LinkTarget{Kind: LinkExcluded},
		},
		{
			name: "special namespace lowercase",
			href: "/wiki/special:Random",
			want: LinkTarget{Kind: LinkExcluded},
		},
		{
			name: "help namespace",
			href: "/wiki/Help:IPA/English",
			want: LinkTarget{Kind: LinkExcluded},
		},
		{
			name: "template talk namespace",
			href: "/wiki/Template_talk:Fruit",
			want: LinkTarget{Kind: LinkExcluded},
		},
		{
			name: "edit view",
			href: "/w/index.php?title=Banana&action=edit",
			want: LinkTarget{Kind: LinkExcluded},
		},
		{
			name: "article path with query",
			href: "/wiki/Banana?oldid=1",
			want: LinkTarget{Kind: LinkExcluded},
		},
		{
			name: "empty",
			href: "   ",
			want: LinkTarget{Kind: LinkInvalid},
		},
		{
			name: "bare prefix",
			href: "/wiki/",
			want: LinkTarget{Kind: LinkInvalid},
		},
		{
			name: "bad escape",
			href: "/wiki/%zz",
			want: LinkTarget{Kind: LinkInvalid},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ClassifyHref(tt.href)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ClassifyHref(%q) mismatch (-want +got):\n%s", tt.href, diff)
			}
		})
	}
}

// TestParseArticleHref tests the error-returning wrapper.
func TestParseArticleHref(t *testing.T) {
	t.Parallel()

	t.Run("returns title for article", func(t *testing.T) {
		t.Parallel()

		got, err := ParseArticleHref("/wiki/Albert_Einstein#Early_life")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "Albert Einstein" {
			t.Errorf("expected 'Albert Einstein', got %q", got)
		}
	})

	t.Run("returns ErrInvalidLinkTarget for external", func(t *testing.T) {
		t.Parallel()

		_, err := ParseArticleHref("https://example.com/external")
		if !errors.Is(err, ErrInvalidLinkTarget) {
			t.Errorf("expected ErrInvalidLinkTarget, got %v", err)
		}
		var linkErr *LinkError
		if !errors.As(err, &linkErr) || linkErr.Kind != LinkExternal {
			t.Errorf("expected LinkError with kind external, got %v", err)
		}
	})
}

func TestNewClassifier(t *testing.T) {
	t.Parallel()

	c := NewClassifier("Wiki.Example.org", "/w")
	got := c.Classify("http://wiki.example.org/w/Main_Page")
	want := LinkTarget{Kind: LinkArticle, Title: "Main Page"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Classify mismatch (-want +got):\n%s", diff)
	}

	if got := c.Classify("/wiki/Main_Page"); got.Kind != LinkExcluded {
		t.Errorf("expected default prefix to be excluded for custom classifier, got %v", got.Kind)
	}
}

// TestExtractLinks tests link set extraction from article markup.
func TestExtractLinks(t *testing.T) {
	t.Parallel()

	t.Run("keeps navigable links in order without duplicates", func(t *testing.T) {
		t.Parallel()

		markup := `<div class="mw-parser-output">
			<p>The <a href="/wiki/Banana">banana</a> is an elongated, edible
			<a href="/wiki/Fruit" title="Fruit">fruit</a><sup class="reference"><a href="#cite_note-1">[1]</a></sup>.
			See <a href="/wiki/File:Bananas.jpg"><img src="x.jpg"></a>,
			<a href="https://example.com/">elsewhere</a>,
			<a href="/wiki/fruit#Botany">fruits again</a> and
			<a href="/wiki/Musa_(genus)"><b>Musa</b> genus</a>.</p>
			<a href="/w/index.php?title=Banana&amp;action=edit">edit</a>
		</div>`

		links, err := ExtractLinks(markup)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []Link{
			{Href: "/wiki/Banana", Title: "Banana", Text: "banana"},
			{Href: "/wiki/Fruit", Title: "Fruit", Text: "fruit"},
			{Href: "/wiki/Musa_(genus)", Title: "Musa (genus)", Text: "Musa genus"},
		}
		if diff := cmp.Diff(want, links); diff != "" {
			t.Errorf("links mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty markup yields empty set", func(t *testing.T) {
		t.Parallel()

		links, err := ExtractLinks("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(links) != 0 {
			t.Errorf("expected no links, got %d", len(links))
		}
	})

	t.Run("image-only link falls back to title text", func(t *testing.T) {
		t.Parallel()

		links, err := ExtractLinks(`<a href="/wiki/Giraffe"><img src="g.png"></a>`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(links) != 1 || links[0].Text != "Giraffe" {
			t.Errorf("expected one link with text 'Giraffe', got %+v", links)
		}
	})
}

func TestLinkKindString(t *testing.T) {
	t.Parallel()

	kinds := map[LinkKind]string{
		LinkInvalid:  "invalid",
		LinkArticle:  "article",
		LinkFragment: "fragment",
		LinkExternal: "external",
		LinkExcluded: "excluded",
	}
	for k, want := range kinds {
		if got := k.String(); got != want {
			t.Errorf("LinkKind(%d).String() = %q, want %q", k, got, want)
		}
	}
}
