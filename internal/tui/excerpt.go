package tui

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// excerpt returns the text of the first non-empty paragraph of markup,
// clipped to maxRunes. Reference markers like "[1]" are dropped.
func excerpt(markup string, maxRunes int) string {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return ""
	}

	var found string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "p" {
			if text := paragraphText(n); text != "" {
				found = text
				return true
			}
			return false
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if walk(child) {
				return true
			}
		}
		return false
	}
	walk(doc)

	return clip(found, maxRunes)
}

// paragraphText collects the visible text of a paragraph, skipping
// citation superscripts and inline styles.
func paragraphText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "sup" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// clip shortens s to at most maxRunes runes, ending with an ellipsis when
// anything was removed.
func clip(s string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:maxRunes-1])) + "…"
}
