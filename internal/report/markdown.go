package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
)

// MarkdownWriter outputs results in Markdown format.
// This format is designed for pasting into issues, chats and notes.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables and lists
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the result in Markdown format.
func (w *MarkdownWriter) Write(result *Result) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writePath(md, result)
	w.writeFooter(md, result)

	return len(md.String()), md.Build()
}

// writeHeader writes the title and the stats table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *Result) {
	md.H1("Wikipedia Adventure Challenge")
	md.PlainText("")

	destination := result.Destination
	if result.CanonicalDestination != "" {
		destination += " (" + result.CanonicalDestination + ")"
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"From", escapeCell(result.Start)},
			{"To", escapeCell(destination)},
			{"Time", strconv.FormatFloat(result.ElapsedSeconds, 'f', 2, 64) + "s"},
			{"Pages", strconv.Itoa(result.PageCount)},
			{"Links Followed", strconv.Itoa(result.Hops())},
			{"Completed", result.CompletedAt.Format("2006-01-02 15:04:05 MST")},
		},
	})
	md.PlainText("")

	md.Tip(result.ShareText())
	md.PlainText("")
}

// writePath writes the visited pages as an ordered list.
func (w *MarkdownWriter) writePath(md *markdown.Markdown, result *Result) {
	md.H2("Path")
	md.PlainText("")

	if len(result.Path) == 0 {
		md.PlainText("No pages visited.")
		md.PlainText("")
		return
	}

	md.OrderedList(result.Path...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown, result *Result) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Session `%s`, generated by [wikirace](https://github.com/nao1215/wikirace)*", result.SessionID)
}

// escapeCell escapes pipe characters that would break a table row.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
