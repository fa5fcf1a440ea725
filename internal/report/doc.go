// Package report renders the result of a won game.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Markdown for pasting into issues, chats and notes
//
// Design decision: We separate report writing from the session state to
// follow the single responsibility principle. A Result is built once from
// the final session snapshot, and any number of writers render it.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
