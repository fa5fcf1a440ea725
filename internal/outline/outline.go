package outline

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Heading is a single h2 or h3 heading.
type Heading struct {
	// ID is the in-page anchor id, or a positional fallback ("h2-3").
	ID string `json:"id"`

	// Text is the visible heading text.
	Text string `json:"text"`

	// Level is 2 or 3.
	Level int `json:"level"`
}

// Section is a top-level heading and the subsections nested under it.
type Section struct {
	Heading

	// Subsections are the h3 headings up to the next h2.
	Subsections []Heading `json:"subsections,omitempty"`
}

// Outline is the table of contents of one page together with its
// expand/collapse state.
type Outline struct {
	// Sections are the top-level sections in document order.
	Sections []Section `json:"sections"`

	expanded map[string]bool
}

// Empty returns an outline with no sections.
func Empty() *Outline {
	return &Outline{Sections: []Section{}, expanded: make(map[string]bool)}
}

// Extract parses markup and builds its outline.
// An h3 that appears before the first h2 becomes a top-level section of
// its own so that no heading is lost.
func Extract(markup string) (*Outline, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, err
	}

	o := Empty()
	usedIDs := make(map[string]bool)
	position := 0

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "h2" || n.Data == "h3") {
			level := 2
			if n.Data == "h3" {
				level = 3
			}

			id := headingID(n)
			if id == "" || usedIDs[id] {
				id = n.Data + "-" + strconv.Itoa(position)
			}
			usedIDs[id] = true
			position++

			h := Heading{ID: id, Text: headingText(n), Level: level}
			if level == 3 && len(o.Sections) > 0 && o.Sections[len(o.Sections)-1].Level == 2 {
				last := &o.Sections[len(o.Sections)-1]
				last.Subsections = append(last.Subsections, h)
			} else {
				o.Sections = append(o.Sections, Section{Heading: h})
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return o, nil
}

// headingID returns the heading's own id, or the id of a legacy
// <span class="mw-headline"> child.
func headingID(n *html.Node) string {
	if id := getAttr(n, "id"); id != "" {
		return id
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && hasClass(c, "mw-headline") {
			return getAttr(c, "id")
		}
	}
	return ""
}

// headingText returns the heading text without section-edit links.
func headingText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, "mw-editsection") {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// Len returns the number of top-level sections.
func (o *Outline) Len() int {
	return len(o.Sections)
}

// Section returns the top-level section with the given id.
func (o *Outline) Section(id string) (Section, bool) {
	for _, s := range o.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// Expandable reports whether the section has subsections to reveal.
func (o *Outline) Expandable(id string) bool {
	s, ok := o.Section(id)
	return ok && len(s.Subsections) > 0
}

// Expanded reports whether a top-level section is expanded.
// Sections are collapsed by default.
func (o *Outline) Expanded(id string) bool {
	return o.expanded[id]
}

// Toggle flips the expanded flag of a top-level section and returns the
// new state. Unknown ids are ignored and report false.
func (o *Outline) Toggle(id string) bool {
	if _, ok := o.Section(id); !ok {
		return false
	}
	if o.expanded == nil {
		o.expanded = make(map[string]bool)
	}
	o.expanded[id] = !o.expanded[id]
	return o.expanded[id]
}

// Clone returns a deep copy, including expand state.
func (o *Outline) Clone() *Outline {
	if o == nil {
		return nil
	}
	c := &Outline{
		Sections: make([]Section, len(o.Sections)),
		expanded: make(map[string]bool, len(o.expanded)),
	}
	for i, s := range o.Sections {
		c.Sections[i] = Section{
			Heading:     s.Heading,
			Subsections: append([]Heading(nil), s.Subsections...),
		}
	}
	for k, v := range o.expanded {
		c.expanded[k] = v
	}
	return c
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

// hasClass reports whether the node's class attribute contains class.
func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(getAttr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
