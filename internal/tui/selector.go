package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/heissler3/getnzbs/internal/newznab"
)

// LoadMoreFunc is a callback to load the next page of search results
type LoadMoreFunc func() ([]newznab.Release, error)

// loadMoreMsg is sent when more results are loaded
type loadMoreMsg struct {
	releases []newznab.Release
	err      error
}

// ReleaseItem wraps a Release for the list component
type ReleaseItem struct {
	Release newznab.Release
	Queued  bool
}

func (r ReleaseItem) Title() string { return r.Release.Title }

func (r ReleaseItem) Description() string {
	var parts []string

	if r.Release.Category != "" {
		parts = append(parts, r.Release.Category)
	}
	if r.Release.Size > 0 {
		parts = append(parts, humanize.IBytes(uint64(r.Release.Size)))
	}
	if !r.Release.PublishDate.IsZero() {
		parts = append(parts, r.Release.PublishDate.Format("02 Jan 2006"))
	}

	if len(parts) == 0 {
		return "no metadata"
	}
	return strings.Join(parts, " | ")
}

func (r ReleaseItem) FilterValue() string { return r.Release.Title }

// ReleaseDelegate handles rendering of release items
type ReleaseDelegate struct{}

func (d ReleaseDelegate) Height() int                             { return 2 }
func (d ReleaseDelegate) Spacing() int                            { return 0 }
func (d ReleaseDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d ReleaseDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	rel, ok := item.(ReleaseItem)
	if !ok {
		return
	}

	title := rel.Release.Title
	if len(title) > 70 {
		title = title[:67] + "..."
	}

	mark := " "
	style := NormalStyle
	if rel.Queued {
		mark = "-"
		style = QueuedStyle
	}
	if index == m.Index() {
		style = SelectedStyle
	}

	line := style.Render(fmt.Sprintf(" %4d [%s] %s", index+1, mark, title))
	line += "\n" + DimStyle.Render(fmt.Sprintf("          %s", rel.Description()))
	fmt.Fprint(w, line)
}

// SelectorModel is the Bubble Tea model for release selection.
// Space queues an item, enter confirms the queued set.
type SelectorModel struct {
	list          list.Model
	confirmed     bool
	quitting      bool
	loadMore      LoadMoreFunc
	loading       bool
	loadErr       error
	seenGUIDs     map[string]bool
	noMoreResults bool
}

// NewSelector creates a release selector TUI
func NewSelector(releases []newznab.Release, title string, loadMore LoadMoreFunc) SelectorModel {
	items := make([]list.Item, len(releases))
	seenGUIDs := make(map[string]bool)
	for i, rel := range releases {
		items[i] = ReleaseItem{Release: rel}
		seenGUIDs[rel.GUID] = true
	}

	l := list.New(items, ReleaseDelegate{}, 100, 30)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Styles.Title = TitleStyle

	return SelectorModel{
		list:      l,
		loadMore:  loadMore,
		seenGUIDs: seenGUIDs,
	}
}

func (m SelectorModel) Init() tea.Cmd {
	return nil
}

func (m SelectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case " ":
			if item, ok := m.list.SelectedItem().(ReleaseItem); ok {
				item.Queued = !item.Queued
				return m, m.list.SetItem(m.list.Index(), item)
			}
		case "enter":
			m.confirmed = true
			return m, tea.Quit
		case "m", "M":
			if m.loadMore != nil && !m.noMoreResults {
				m.loading = true
				return m, m.doLoadMore()
			}
		}
	case loadMoreMsg:
		m.loading = false
		m.loadErr = msg.err
		if msg.err != nil || len(msg.releases) == 0 {
			m.noMoreResults = true
			return m, nil
		}
		newItems := make([]list.Item, 0, len(msg.releases))
		for _, rel := range msg.releases {
			if !m.seenGUIDs[rel.GUID] {
				m.seenGUIDs[rel.GUID] = true
				newItems = append(newItems, ReleaseItem{Release: rel})
			}
		}
		if len(newItems) == 0 {
			m.noMoreResults = true
			return m, nil
		}
		m.list.SetItems(append(m.list.Items(), newItems...))
		return m, nil
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height - 4)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// doLoadMore returns a command that loads more results
func (m SelectorModel) doLoadMore() tea.Cmd {
	return func() tea.Msg {
		releases, err := m.loadMore()
		return loadMoreMsg{releases: releases, err: err}
	}
}

func (m SelectorModel) View() string {
	if m.confirmed {
		count := len(m.selections())
		return SuccessStyle.Render(fmt.Sprintf("\n  %d item(s) selected.\n", count))
	}

	if m.quitting {
		return DimStyle.Render("\n  Cancelled.\n")
	}

	if m.loading {
		return "\n" + m.list.View() + "\n" + WarningStyle.Render("  Loading more results...")
	}

	queued, total := m.queuedStats()
	status := ""
	if queued > 0 {
		status = QueuedStyle.Render(fmt.Sprintf("  %d queued, %s total", queued, humanize.IBytes(uint64(total))))
	}
	if m.loadErr != nil {
		status += "\n" + ErrorStyle.Render(fmt.Sprintf("  Could not load more results: %v", m.loadErr))
	}

	helpParts := []string{"↑/↓: navigate", "space: queue", "enter: retrieve"}
	if m.loadMore != nil && !m.noMoreResults {
		helpParts = append(helpParts, "m: more results")
	}
	helpParts = append(helpParts, "q/esc: quit")
	help := HelpStyle.Render("  " + strings.Join(helpParts, " • "))

	view := "\n" + m.list.View()
	if status != "" {
		view += "\n" + status
	}
	return view + "\n" + help
}

func (m SelectorModel) queuedStats() (count int, totalSize int64) {
	for _, item := range m.list.Items() {
		if rel, ok := item.(ReleaseItem); ok && rel.Queued {
			count++
			totalSize += rel.Release.Size
		}
	}
	return count, totalSize
}

// selections returns the queued releases, or the cursor item when
// nothing was queued.
func (m SelectorModel) selections() []newznab.Release {
	var out []newznab.Release
	for _, item := range m.list.Items() {
		if rel, ok := item.(ReleaseItem); ok && rel.Queued {
			out = append(out, rel.Release)
		}
	}
	if len(out) == 0 {
		if rel, ok := m.list.SelectedItem().(ReleaseItem); ok {
			out = append(out, rel.Release)
		}
	}
	return out
}

// RunSelector displays the TUI and returns the selected releases.
// A nil slice means the user cancelled.
func RunSelector(releases []newznab.Release, title string, loadMore LoadMoreFunc) ([]newznab.Release, error) {
	if len(releases) == 0 {
		return nil, fmt.Errorf("no releases to select from")
	}

	model := NewSelector(releases, title, loadMore)
	p := tea.NewProgram(model)

	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	selector := finalModel.(SelectorModel)
	if !selector.confirmed {
		return nil, nil
	}

	return selector.selections(), nil
}
