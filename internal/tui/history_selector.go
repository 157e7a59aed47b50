package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/heissler3/getnzbs/internal/db"
)

// HistoryItem wraps a past search for the list component
type HistoryItem struct {
	Entry *db.SearchHistory
}

func (h HistoryItem) Title() string { return h.Entry.Query }

func (h HistoryItem) Description() string {
	return fmt.Sprintf("%s • %d results • %s",
		h.Entry.Server, h.Entry.ResultCount, h.Entry.CreatedAt.Format("02 Jan 15:04"))
}

func (h HistoryItem) FilterValue() string { return h.Entry.Query }

type historyDelegate struct{}

func (d historyDelegate) Height() int                             { return 2 }
func (d historyDelegate) Spacing() int                            { return 0 }
func (d historyDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d historyDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	h, ok := item.(HistoryItem)
	if !ok {
		return
	}

	style := NormalStyle
	if index == m.Index() {
		style = SelectedStyle
	}

	line := style.Render(fmt.Sprintf("  %d. %s", index+1, h.Entry.Query))
	line += "\n" + DimStyle.Render("     "+h.Description())
	fmt.Fprint(w, line)
}

type historyModel struct {
	list     list.Model
	selected *db.SearchHistory
	quitting bool
}

func (m historyModel) Init() tea.Cmd { return nil }

func (m historyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			if item, ok := m.list.SelectedItem().(HistoryItem); ok {
				m.selected = item.Entry
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height - 4)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m historyModel) View() string {
	if m.selected != nil {
		return SuccessStyle.Render(fmt.Sprintf("\n  Repeating: %s\n", m.selected.Query))
	}
	if m.quitting {
		return DimStyle.Render("\n  Cancelled.\n")
	}

	help := HelpStyle.Render("  ↑/↓: navigate • enter: search again • q/esc: cancel")
	return "\n" + m.list.View() + "\n" + help
}

// RunHistorySelector lets the user pick a past search to repeat.
// Returns nil when cancelled.
func RunHistorySelector(entries []*db.SearchHistory) (*db.SearchHistory, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("no search history")
	}

	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = HistoryItem{Entry: e}
	}

	l := list.New(items, historyDelegate{}, 80, 24)
	l.Title = "Recent searches"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Styles.Title = TitleStyle

	p := tea.NewProgram(historyModel{list: l})
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	return finalModel.(historyModel).selected, nil
}
