// Package outline derives a two-level table of contents from article markup.
//
// Top-level sections come from h2 headings and subsections from the h3
// headings that follow them. Each section carries an expand/collapse flag,
// collapsed by default, keyed by the section's anchor id or by a positional
// fallback id when the heading has none.
package outline
