package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/heissler3/getnzbs/internal/newznab"
)

// CategoryItem wraps a caps category for the list component
type CategoryItem struct {
	Category newznab.Category
}

func (c CategoryItem) Title() string       { return c.Category.Name }
func (c CategoryItem) Description() string { return c.Category.ID }
func (c CategoryItem) FilterValue() string { return c.Category.Name }

type categoryDelegate struct{}

func (d categoryDelegate) Height() int                             { return 1 }
func (d categoryDelegate) Spacing() int                            { return 0 }
func (d categoryDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d categoryDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	cat, ok := item.(CategoryItem)
	if !ok {
		return
	}

	indent := ""
	if cat.Category.Sub {
		indent = "    "
	}

	line := fmt.Sprintf("  %s%-5s  %s", indent, cat.Category.ID, cat.Category.Name)
	if index == m.Index() {
		fmt.Fprint(w, SelectedStyle.Render(line))
	} else {
		fmt.Fprint(w, NormalStyle.Render(line))
	}
}

type categoryModel struct {
	list     list.Model
	selected *newznab.Category
	quitting bool
}

func (m categoryModel) Init() tea.Cmd { return nil }

func (m categoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			if item, ok := m.list.SelectedItem().(CategoryItem); ok {
				cat := item.Category
				m.selected = &cat
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

func (m categoryModel) View() string {
	if m.selected != nil {
		return SuccessStyle.Render(fmt.Sprintf("\n  Category: %s (%s)\n", m.selected.Name, m.selected.ID))
	}
	if m.quitting {
		return DimStyle.Render("\n  Cancelled.\n")
	}

	help := HelpStyle.Render("  ↑/↓: navigate • enter: choose • q/esc: cancel")
	return "\n" + m.list.View() + "\n" + help
}

// RunCategorySelector displays the category list and returns the
// chosen category, or nil when the user cancelled.
func RunCategorySelector(categories []newznab.Category) (*newznab.Category, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("server returned no categories")
	}

	items := make([]list.Item, len(categories))
	for i, cat := range categories {
		items[i] = CategoryItem{Category: cat}
	}

	l := list.New(items, categoryDelegate{}, 60, 30)
	l.Title = "Browse categories"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Styles.Title = TitleStyle

	p := tea.NewProgram(categoryModel{list: l})
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	return finalModel.(categoryModel).selected, nil
}
