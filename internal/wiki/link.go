package wiki

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/nao1215/wikirace/internal/title"
)

// Default site settings for link classification.
const (
	// DefaultArticlePathPrefix is the path prefix of article links in
	// rendered markup.
	DefaultArticlePathPrefix = "/wiki/"

	// DefaultSiteHost is the host of the content site. Absolute links to this
	// host are treated like site-relative links.
	DefaultSiteHost = "en.wikipedia.org"
)

// LinkKind classifies the target of an anchor.
type LinkKind int

const (
	// LinkInvalid is an empty or unparsable href.
	LinkInvalid LinkKind = iota

	// LinkArticle is a navigable link to another article on the site.
	LinkArticle

	// LinkFragment is a same-page anchor ("#History"). It scrolls, it does
	// not navigate.
	LinkFragment

	// LinkExternal points off the site, or uses a non-HTTP scheme.
	LinkExternal

	// LinkExcluded is on the site but not a navigable article: special
	// namespaces, media files, edit and history views.
	LinkExcluded
)

// String returns the kind name.
func (k LinkKind) String() string {
	switch k {
	case LinkArticle:
		return "article"
	case LinkFragment:
		return "fragment"
	case LinkExternal:
		return "external"
	case LinkExcluded:
		return "excluded"
	default:
		return "invalid"
	}
}

// LinkTarget is the result of classifying an href.
type LinkTarget struct {
	// Kind is the classification.
	Kind LinkKind

	// Title is the decoded article title for LinkArticle targets, with
	// underscores turned into spaces. Empty for other kinds.
	Title string

	// Fragment is the decoded fragment, without the leading '#'.
	Fragment string
}

// Navigable reports whether activating the target should navigate.
func (t LinkTarget) Navigable() bool {
	return t.Kind == LinkArticle
}

// excludedNamespaces are namespace prefixes that never name a playable
// article. Keys are normalized (see title.Normalize).
var excludedNamespaces = map[string]bool{
	"file":          true,
	"image":         true,
	"media":         true,
	"special":       true,
	"help":          true,
	"category":      true,
	"template":      true,
	"template talk": true,
	"wikipedia":     true,
	"wp":            true,
	"portal":        true,
	"talk":          true,
	"user":          true,
	"user talk":     true,
	"draft":         true,
	"module":        true,
	"mediawiki":     true,
	"timedtext":     true,
	"book":          true,
	"gadget":        true,
	"topic":         true,
}

// Classifier decides which anchors are navigable for a given site.
// The zero value is not usable; use NewClassifier or DefaultClassifier.
type Classifier struct {
	host       string
	pathPrefix string
}

// NewClassifier creates a Classifier for a site host and article path
// prefix. An empty prefix falls back to DefaultArticlePathPrefix.
func NewClassifier(host, pathPrefix string) *Classifier {
	if pathPrefix == "" {
		pathPrefix = DefaultArticlePathPrefix
	}
	if !strings.HasSuffix(pathPrefix, "/") {
		pathPrefix += "/"
	}
	return &Classifier{host: strings.ToLower(host), pathPrefix: pathPrefix}
}

// DefaultClassifier classifies links for the English Wikipedia.
var DefaultClassifier = NewClassifier(DefaultSiteHost, DefaultArticlePathPrefix)

// ClassifyHref classifies an href with DefaultClassifier.
func ClassifyHref(href string) LinkTarget {
	return DefaultClassifier.Classify(href)
}

// ParseArticleHref returns the article title named by href, or an error
// wrapping ErrInvalidLinkTarget when href is not a navigable article link.
func ParseArticleHref(href string) (string, error) {
	t := ClassifyHref(href)
	if !t.Navigable() {
		return "", &LinkError{Href: href, Kind: t.Kind}
	}
	return t.Title, nil
}

// LinkError describes a rejected link.
type LinkError struct {
	Href string
	Kind LinkKind
}

// Error implements error.
func (e *LinkError) Error() string {
	return "link " + e.Href + " is " + e.Kind.String() + ": " + ErrInvalidLinkTarget.Error()
}

// Unwrap lets errors.Is match ErrInvalidLinkTarget.
func (e *LinkError) Unwrap() error {
	return ErrInvalidLinkTarget
}

// Classify classifies an href found in article markup.
//
// Design decision: Classification is a pure function of the href string
// rather than of a rendered node because:
//  1. It is trivially unit-testable
//  2. The same rules serve the link list, the terminal UI, and commands
//  3. Self-links are not special: a link to the current article is a
//     legal navigation and is recorded in history like any other
func (c *Classifier) Classify(href string) LinkTarget {
	href = strings.TrimSpace(href)
	if href == "" {
		return LinkTarget{Kind: LinkInvalid}
	}

	if strings.HasPrefix(href, "#") {
		frag, err := url.PathUnescape(href[1:])
		if err != nil {
			frag = href[1:]
		}
		return LinkTarget{Kind: LinkFragment, Fragment: frag}
	}

	lower := strings.ToLower(href)
	for _, scheme := range []string{"mailto:", "javascript:", "tel:", "data:", "ftp:"} {
		if strings.HasPrefix(lower, scheme) {
			return LinkTarget{Kind: LinkExternal}
		}
	}

	u, err := url.Parse(href)
	if err != nil {
		return LinkTarget{Kind: LinkInvalid}
	}

	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		return LinkTarget{Kind: LinkExternal}
	}
	if u.Host != "" && !strings.EqualFold(u.Hostname(), c.host) {
		return LinkTarget{Kind: LinkExternal}
	}

	if !strings.HasPrefix(u.Path, c.pathPrefix) {
		return LinkTarget{Kind: LinkExcluded}
	}

	// Query strings on article paths are views (edit, history, oldid).
	if u.RawQuery != "" {
		return LinkTarget{Kind: LinkExcluded}
	}

	name := title.Display(strings.TrimPrefix(u.Path, c.pathPrefix))
	if name == "" {
		return LinkTarget{Kind: LinkInvalid}
	}
	if inExcludedNamespace(name) {
		return LinkTarget{Kind: LinkExcluded}
	}

	return LinkTarget{Kind: LinkArticle, Title: name, Fragment: u.Fragment}
}

// inExcludedNamespace reports whether a title has an excluded namespace
// prefix. Main-namespace titles may contain colons ("Star Wars: Visions"),
// so only known prefixes are excluded.
func inExcludedNamespace(name string) bool {
	prefix, _, found := strings.Cut(name, ":")
	if !found {
		return false
	}
	return excludedNamespaces[title.Normalize(prefix)]
}

// Link is a navigable anchor found in article markup.
type Link struct {
	// Href is the raw href attribute.
	Href string

	// Title is the decoded article title the link points to.
	Title string

	// Text is the anchor's visible text.
	Text string
}

// ExtractLinks returns the navigable links in markup with DefaultClassifier.
func ExtractLinks(markup string) ([]Link, error) {
	return DefaultClassifier.ExtractLinks(strings.NewReader(markup))
}

// ExtractLinks walks markup and returns every navigable article link in
// document order, deduplicated by normalized title (the first occurrence
// wins).
//
// Design decision: We use golang.org/x/net/html for parsing rather than
// regex because rendered articles contain nested tables, templates, and
// malformed fragments that only a real HTML parser handles reliably.
func (c *Classifier) ExtractLinks(r io.Reader) ([]Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	links := make([]Link, 0)
	seen := title.NewSet()

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			target := c.Classify(getAttr(n, "href"))
			if target.Navigable() && !seen.Contains(target.Title) {
				seen.Add(target.Title)
				text := strings.Join(strings.Fields(textContent(n)), " ")
				if text == "" {
					text = target.Title
				}
				links = append(links, Link{
					Href:  getAttr(n, "href"),
					Title: target.Title,
					Text:  text,
				})
			}
			// Anchors do not nest; their children are text.
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return links, nil
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// textContent returns the concatenated text of n and its descendants.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}
