package wiki

import (
	"context"
	"log/slog"

	"github.com/nao1215/wikirace/internal/title"
)

// ArticleStore persists fetched articles keyed by normalized title.
// Implementations decide expiry; a miss is reported as ok == false.
type ArticleStore interface {
	GetArticle(ctx context.Context, key string) (article *Article, ok bool, err error)
	PutArticle(ctx context.Context, key string, article *Article) error
}

// CachedGateway decorates a Gateway with an ArticleStore.
// Only FetchArticle is cached; title resolution and search always go to the
// wrapped Gateway.
//
// Design decision: Store failures never fail a fetch. A broken cache
// degrades to direct fetches and is reported through the logger, because
// the cache is an optimization and not part of the game state.
type CachedGateway struct {
	next   Gateway
	store  ArticleStore
	logger *slog.Logger
}

// NewCachedGateway wraps next with store. A nil logger uses slog.Default().
func NewCachedGateway(next Gateway, store ArticleStore, logger *slog.Logger) *CachedGateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedGateway{next: next, store: store, logger: logger}
}

// FetchArticle returns a cached article when present, otherwise fetches it
// from the wrapped Gateway and stores it under both the requested title and
// the canonical title.
func (g *CachedGateway) FetchArticle(ctx context.Context, t string) (*Article, error) {
	key := title.Normalize(t)

	cached, ok, err := g.store.GetArticle(ctx, key)
	if err != nil {
		g.logger.Warn("article cache read failed", "title", t, "error", err)
	} else if ok {
		g.logger.Debug("article cache hit", "title", t)
		a := cached.Clone()
		a.RequestedTitle = t
		return a, nil
	}

	article, err := g.next.FetchArticle(ctx, t)
	if err != nil {
		return nil, err
	}

	if err := g.store.PutArticle(ctx, key, article); err != nil {
		g.logger.Warn("article cache write failed", "title", t, "error", err)
		return article, nil
	}
	if canonical := title.Normalize(article.Title); canonical != "" && canonical != key {
		if err := g.store.PutArticle(ctx, canonical, article); err != nil {
			g.logger.Warn("article cache write failed", "title", article.Title, "error", err)
		}
	}

	return article, nil
}

// ResolveTitle delegates to the wrapped Gateway.
func (g *CachedGateway) ResolveTitle(ctx context.Context, t string) (string, error) {
	return g.next.ResolveTitle(ctx, t)
}

// SearchArticles delegates to the wrapped Gateway.
func (g *CachedGateway) SearchArticles(ctx context.Context, query string, limit int) ([]string, error) {
	return g.next.SearchArticles(ctx, query, limit)
}
