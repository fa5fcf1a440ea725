package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nao1215/wikirace/internal/session"
)

// View implements tea.Model.
func (m Model) View() string {
	sections := []string{m.headerView(), m.statusView()}

	switch m.snap.Phase {
	case session.PhaseIdle:
		sections = append(sections, "", m.styles.Muted.Render("Press r to start a challenge."))
	case session.PhaseWon:
		sections = append(sections, "", m.wonView())
	case session.PhaseError:
		sections = append(sections, "", m.errorView())
		if m.snap.PageCount > 0 {
			sections = append(sections, m.pageView())
		}
	case session.PhaseLoading:
		sections = append(sections, "", m.spinner.View()+" Loading "+m.snap.PendingTitle+"...")
		if m.snap.PageCount > 0 {
			sections = append(sections, m.pageView())
		}
	default:
		sections = append(sections, "", m.pageView())
	}

	if m.notice != "" {
		sections = append(sections, m.styles.Notice.Render(m.notice))
	}
	sections = append(sections, m.help.View(m.keys))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// headerView renders the title bar and the route of the challenge.
func (m Model) headerView() string {
	header := m.styles.Header.Render("wikirace")
	if m.snap.ID == "" {
		return header
	}
	route := m.styles.Route.Render(fmt.Sprintf("%s → %s", m.snap.Challenge.Start, m.snap.DestinationTitle))
	return lipgloss.JoinHorizontal(lipgloss.Center, header, "  ", route)
}

// statusView renders the timer, the page count and the destination.
func (m Model) statusView() string {
	destination := m.snap.DestinationTitle
	if m.snap.CanonicalDestination != "" && m.snap.CanonicalDestination != destination {
		destination += " (" + m.snap.CanonicalDestination + ")"
	}
	if destination == "" {
		destination = "-"
	}
	return m.styles.Status.Render(fmt.Sprintf("⏱ %s  •  %d pages  •  goal: %s  •  %s",
		m.snap.FormatElapsed(), m.snap.PageCount, destination, m.snap.Phase))
}

// pageView renders the current page: title, excerpt, outline and links.
func (m Model) pageView() string {
	var top strings.Builder
	top.WriteString(m.styles.PageTitle.Render(m.pageTitle()))
	if m.excerpt != "" {
		top.WriteString("\n")
		top.WriteString(m.styles.Excerpt.Width(m.width - 2).Render(m.excerpt))
	}

	linkPane := m.styles.Pane
	outlinePane := m.styles.Pane
	if m.focus == focusOutline {
		outlinePane = m.styles.FocusedPane
	} else {
		linkPane = m.styles.FocusedPane
	}

	var links string
	if len(m.snap.Links) == 0 {
		links = m.styles.Muted.Render("This page has no links. Press r for a new challenge.")
	} else {
		links = m.links.View()
	}

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		outlinePane.Width(outlineWidth).Render(m.outlineView()),
		linkPane.Render(links),
	)

	return lipgloss.JoinVertical(lipgloss.Left, top.String(), panes)
}

// pageTitle returns the title of the page on screen.
func (m Model) pageTitle() string {
	if m.snap.Article != nil && m.snap.Article.Title != "" {
		return m.snap.Article.Title
	}
	if n := len(m.snap.History); n > 0 {
		return m.snap.History[n-1]
	}
	return m.snap.CurrentTitle
}

// outlineView renders the table of contents with expand markers.
func (m Model) outlineView() string {
	if m.outlineLen() == 0 {
		return m.styles.Muted.Render("No sections")
	}

	var sb strings.Builder
	sb.WriteString("Contents\n")
	for i, s := range m.snap.Outline.Sections {
		marker := "  "
		if m.snap.Outline.Expandable(s.ID) {
			marker = "▸ "
			if m.snap.Outline.Expanded(s.ID) {
				marker = "▾ "
			}
		}

		style := m.styles.OutlineItem
		if m.focus == focusOutline && i == m.outlineCursor {
			style = m.styles.OutlineFocus
		}
		sb.WriteString(style.Render(clip(marker+s.Text, outlineWidth-2)))
		sb.WriteString("\n")

		if m.snap.Outline.Expanded(s.ID) {
			for _, sub := range s.Subsections {
				sb.WriteString(m.styles.Subsection.Render(clip(sub.Text, outlineWidth-4)))
				sb.WriteString("\n")
			}
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// errorView renders the failed fetch with its recovery keys.
func (m Model) errorView() string {
	cause := "unknown error"
	if m.snap.LastError != nil {
		cause = m.snap.LastError.Error()
	}
	return m.styles.ErrorBox.Render(fmt.Sprintf(
		"Could not load %s\n%s\n\nR retry  •  c cancel", m.snap.PendingTitle, cause))
}

// wonView renders the result banner.
func (m Model) wonView() string {
	return m.styles.WonBox.Render(fmt.Sprintf(
		"You reached %s!\n\n%s across %d pages\n%s\n\ns copy share text  •  r new challenge  •  q quit",
		m.pageTitle(),
		m.snap.FormatElapsed(),
		m.snap.PageCount,
		strings.Join(m.snap.History, " → "),
	))
}
