package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nao1215/wikirace/internal/report"
	"github.com/nao1215/wikirace/internal/session"
	"github.com/nao1215/wikirace/internal/wiki"
)

// clipboardWriteAll is a package-level variable to allow mocking in tests.
var clipboardWriteAll = clipboard.WriteAll

// Layout constants.
const (
	defaultWidth  = 100
	defaultHeight = 30
	outlineWidth  = 32
	excerptRunes  = 280

	// chromeHeight is the number of lines used by everything but the
	// link list: header, status, page title, excerpt, borders and help.
	chromeHeight = 12
)

// Driver is the part of the session controller the UI talks to.
type Driver interface {
	Updates() <-chan session.Snapshot
	Restart()
	ActivateLink(href string)
	ToggleOutline(id string)
	Retry()
	Cancel()
}

// focusArea is the pane that receives navigation keys.
type focusArea int

const (
	focusLinks focusArea = iota
	focusOutline
)

// snapshotMsg carries a published session snapshot.
type snapshotMsg session.Snapshot

// shareMsg reports the outcome of copying the share text.
type shareMsg struct {
	err error
}

// pageKey identifies the page whose links are in the list, so that timer
// updates do not reset selection and filter.
type pageKey struct {
	id    string
	pages int
}

// linkItem adapts a wiki.Link to list.Item.
type linkItem struct {
	link wiki.Link
}

// FilterValue implements list.Item.
func (i linkItem) FilterValue() string {
	if i.link.Text == i.link.Title {
		return i.link.Text
	}
	return i.link.Text + " " + i.link.Title
}

// Title implements list.DefaultItem.
func (i linkItem) Title() string {
	return i.link.Text
}

// Description implements list.DefaultItem.
func (i linkItem) Description() string {
	return "→ " + i.link.Title
}

// Model is the bubbletea model of the game screen.
type Model struct {
	ctx    context.Context
	driver Driver

	snap    session.Snapshot
	page    pageKey
	excerpt string

	links         list.Model
	spinner       spinner.Model
	help          help.Model
	keys          keyMap
	styles        styles
	focus         focusArea
	outlineCursor int

	width  int
	height int

	// notice is a transient status message.
	notice string
}

// New creates the game screen over driver. The driver's update channel is
// read until ctx is canceled.
func New(ctx context.Context, driver Driver) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(colorAccent).
		BorderForeground(colorAccent)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(colorMuted).
		BorderForeground(colorAccent)

	l := list.New([]list.Item{}, delegate, defaultWidth-outlineWidth, defaultHeight-chromeHeight)
	l.Title = "Links"
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:     ctx,
		driver:  driver,
		links:   l,
		spinner: sp,
		help:    help.New(),
		keys:    defaultKeyMap(),
		styles:  defaultStyles(),
		width:   defaultWidth,
		height:  defaultHeight,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForSnapshot(m.ctx, m.driver.Updates()), m.spinner.Tick)
}

// waitForSnapshot returns a command that delivers the next snapshot.
func waitForSnapshot(ctx context.Context, updates <-chan session.Snapshot) tea.Cmd {
	return func() tea.Msg {
		select {
		case snap := <-updates:
			return snapshotMsg(snap)
		case <-ctx.Done():
			return nil
		}
	}
}

// Snapshot returns the last snapshot the screen rendered.
func (m Model) Snapshot() session.Snapshot {
	return m.snap
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case snapshotMsg:
		cmd := m.applySnapshot(session.Snapshot(msg))
		return m, tea.Batch(cmd, waitForSnapshot(m.ctx, m.driver.Updates()))

	case shareMsg:
		if msg.err != nil {
			m.notice = "could not copy share text: " + msg.err.Error()
		} else {
			m.notice = "share text copied to clipboard"
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.links, cmd = m.links.Update(msg)
	return m, cmd
}

// applySnapshot stores snap and refreshes the link list when a new page
// was loaded.
func (m *Model) applySnapshot(snap session.Snapshot) tea.Cmd {
	m.snap = snap

	// A page load always grows the history, so the pair below changes
	// exactly when the link set does.
	key := pageKey{id: snap.ID, pages: snap.PageCount}
	if key == m.page {
		return nil
	}
	m.page = key

	m.excerpt = ""
	if snap.Article != nil {
		m.excerpt = excerpt(snap.Article.Markup, excerptRunes)
	}
	m.outlineCursor = 0
	if m.outlineLen() == 0 {
		m.focus = focusLinks
	}
	m.notice = ""

	items := make([]list.Item, 0, len(snap.Links))
	for _, l := range snap.Links {
		items = append(items, linkItem{link: l})
	}
	m.links.ResetFilter()
	cmd := m.links.SetItems(items)
	m.links.Select(0)
	return cmd
}

// handleKey dispatches a key press.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// While typing a filter, every key belongs to the list.
	if m.links.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.links, cmd = m.links.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Restart):
		m.notice = "starting a new challenge"
		m.driver.Restart()
		return m, nil

	case key.Matches(msg, m.keys.Retry):
		if m.snap.Phase == session.PhaseError {
			m.driver.Retry()
		}
		return m, nil

	case key.Matches(msg, m.keys.Cancel):
		if m.snap.Phase == session.PhaseError {
			m.driver.Cancel()
		}
		return m, nil

	case key.Matches(msg, m.keys.Share):
		if !m.snap.Won() {
			return m, nil
		}
		return m, m.copyShare()

	case key.Matches(msg, m.keys.Focus):
		if m.focus == focusLinks && m.outlineLen() > 0 {
			m.focus = focusOutline
		} else {
			m.focus = focusLinks
		}
		return m, nil
	}

	if m.focus == focusOutline {
		return m.handleOutlineKey(msg)
	}

	if key.Matches(msg, m.keys.Follow) {
		if item, ok := m.links.SelectedItem().(linkItem); ok && m.snap.Phase.Active() {
			m.driver.ActivateLink(item.link.Href)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.links, cmd = m.links.Update(msg)
	return m, cmd
}

// handleOutlineKey moves the outline cursor and toggles sections.
func (m Model) handleOutlineKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := m.outlineLen()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.outlineCursor > 0 {
			m.outlineCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.outlineCursor < n-1 {
			m.outlineCursor++
		}
	case key.Matches(msg, m.keys.Toggle), key.Matches(msg, m.keys.Follow):
		if m.outlineCursor < n {
			m.driver.ToggleOutline(m.snap.Outline.Sections[m.outlineCursor].ID)
		}
	}
	return m, nil
}

// copyShare returns a command that puts the share text on the clipboard.
func (m Model) copyShare() tea.Cmd {
	result, err := report.NewResult(m.snap, time.Now())
	if err != nil {
		return func() tea.Msg { return shareMsg{err: err} }
	}
	text := result.ShareText()
	return func() tea.Msg {
		if err := clipboardWriteAll(text); err != nil {
			return shareMsg{err: fmt.Errorf("clipboard unavailable: %w", err)}
		}
		return shareMsg{}
	}
}

// outlineLen returns the number of top-level outline sections.
func (m Model) outlineLen() int {
	if m.snap.Outline == nil {
		return 0
	}
	return m.snap.Outline.Len()
}

// resize fits the link list into the window.
func (m *Model) resize() {
	w := m.width - outlineWidth - 4
	if w < 20 {
		w = 20
	}
	h := m.height - chromeHeight
	if h < 4 {
		h = 4
	}
	m.links.SetSize(w, h)
	m.help.Width = m.width
}
