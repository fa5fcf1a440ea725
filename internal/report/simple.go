package report

import (
	"fmt"
	"io"
	"strings"
)

// SimpleWriter outputs results in human-readable text format.
// This is the default output format for terminal display.
type SimpleWriter struct {
	baseWriter

	// verbose adds the session id and completion time.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the result in human-readable format.
func (w *SimpleWriter) Write(result *Result) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, result)
	w.writePath(&sb, result)
	w.writeFooter(&sb, result)

	return io.WriteString(w.output, sb.String())
}

// writeHeader writes the banner and the headline numbers.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, result *Result) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                       DESTINATION REACHED\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("From:         %s\n", result.Start))
	if result.CanonicalDestination != "" {
		sb.WriteString(fmt.Sprintf("To:           %s (%s)\n", result.Destination, result.CanonicalDestination))
	} else {
		sb.WriteString(fmt.Sprintf("To:           %s\n", result.Destination))
	}
	sb.WriteString(fmt.Sprintf("Time:         %.2fs\n", result.ElapsedSeconds))
	sb.WriteString(fmt.Sprintf("Pages:        %d\n", result.PageCount))
	sb.WriteString(fmt.Sprintf("Links:        %d\n", result.Hops()))

	if w.verbose {
		sb.WriteString(fmt.Sprintf("Session:      %s\n", result.SessionID))
		sb.WriteString(fmt.Sprintf("Completed:    %s\n", result.CompletedAt.Format("2006-01-02 15:04:05 MST")))
	}

	sb.WriteString("\n")
}

// writePath writes the visited pages in order.
func (w *SimpleWriter) writePath(sb *strings.Builder, result *Result) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PATH\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for i, page := range result.Path {
		sb.WriteString(fmt.Sprintf("  %2d. %s\n", i+1, page))
	}
	sb.WriteString("\n")
}

// writeFooter writes the share line.
func (w *SimpleWriter) writeFooter(sb *strings.Builder, result *Result) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(result.ShareText())
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
