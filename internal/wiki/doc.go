// Package wiki is the content gateway between the game and the
// encyclopedia it is played on.
//
// # Components
//
//   - Client: a MediaWiki Action API client that fetches rendered article
//     markup, resolves redirects, and searches titles
//   - CachedGateway: a Gateway decorator backed by an ArticleStore
//   - ClassifyHref: the pure link classifier that decides which anchors in
//     fetched markup are navigable article links
//   - ExtractLinks: the navigable link set of a page
//
// Design decision: The game core depends only on the Gateway interface. The
// gateway is an external collaborator whose failures are values ("no
// result"), never panics, so a flaky network can stall a session but cannot
// crash it.
//
// # Usage
//
//	client := wiki.NewClient(wiki.WithUserAgent("wikirace/1.0"))
//	article, err := client.FetchArticle(ctx, "Banana")
//	links, err := wiki.ExtractLinks(article.Markup)
package wiki
