package wiki

import "context"

// Gateway is the content source consumed by the game core.
type Gateway interface {
	// FetchArticle returns the rendered article for a title.
	// It returns an error wrapping ErrNoResult when the article does not exist.
	FetchArticle(ctx context.Context, title string) (*Article, error)

	// ResolveTitle returns the canonical title that a title redirects to.
	// A title that is not a redirect resolves to its own canonical form.
	ResolveTitle(ctx context.Context, title string) (string, error)

	// SearchArticles returns up to limit article titles matching a query.
	SearchArticles(ctx context.Context, query string, limit int) ([]string, error)
}

// Article is the fetched content of a single page.
// It is held only for the page currently on screen.
type Article struct {
	// Title is the canonical title reported by the content API, after
	// redirects were followed.
	Title string `json:"title"`

	// RequestedTitle is the title the article was requested under.
	RequestedTitle string `json:"requested_title,omitempty"`

	// Markup is the rendered HTML body of the article.
	Markup string `json:"markup"`

	// Links are the main-namespace article titles linked from the page,
	// as reported by the content API.
	Links []string `json:"links,omitempty"`

	// Redirects are the titles that redirected to Title during the fetch.
	Redirects []string `json:"redirects,omitempty"`
}

// Clone returns a deep copy of the article.
func (a *Article) Clone() *Article {
	if a == nil {
		return nil
	}
	c := *a
	c.Links = append([]string(nil), a.Links...)
	c.Redirects = append([]string(nil), a.Redirects...)
	return &c
}
