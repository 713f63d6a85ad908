package ui

// review.go lists scraped records and the fields flagged for manual verification.

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

// ReviewItem is one record in the review table
type ReviewItem struct {
	Make   string
	Name   string
	URL    string
	Verify []string
}

// =============================================================================
// Review model
// =============================================================================

type reviewModel struct {
	table    table.Model
	items    []ReviewItem
	layout   Layout
	filter   bool // only records with fields to verify
	quitting bool
}

func reviewColumns(layout Layout) []table.Column {
	verifyWidth := 8
	makeWidth := 16
	nameWidth := 36
	urlWidth := layout.InnerWidth - verifyWidth - makeWidth - nameWidth - 10
	if urlWidth < 10 {
		urlWidth = 10
	}
	return []table.Column{
		{Title: "Make", Width: makeWidth},
		{Title: "Name", Width: nameWidth},
		{Title: "Verify", Width: verifyWidth},
		{Title: "URL", Width: urlWidth},
	}
}

func (m reviewModel) visible() []ReviewItem {
	if !m.filter {
		return m.items
	}
	var out []ReviewItem
	for _, it := range m.items {
		if len(it.Verify) > 0 {
			out = append(out, it)
		}
	}
	return out
}

func (m reviewModel) rows() []table.Row {
	items := m.visible()
	rows := make([]table.Row, len(items))
	for i, it := range items {
		rows[i] = table.Row{it.Make, it.Name, strconv.Itoa(len(it.Verify)), it.URL}
	}
	return rows
}

func newReviewModel(items []ReviewItem) reviewModel {
	m := reviewModel{items: items, layout: DefaultLayout()}
	t := table.New(
		table.WithColumns(reviewColumns(m.layout)),
		table.WithRows(m.rows()),
		table.WithFocused(true),
		table.WithHeight(TableHeight),
	)
	ApplyTableStyles(&t)
	m.table = t
	return m
}

func (m reviewModel) Init() tea.Cmd {
	return tea.WindowSize()
}

// selected returns the item under the cursor
func (m reviewModel) selected() (ReviewItem, bool) {
	items := m.visible()
	c := m.table.Cursor()
	if c < 0 || c >= len(items) {
		return ReviewItem{}, false
	}
	return items[c], true
}

func (m reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = NewLayout(msg.Width)
		m.table.SetColumns(reviewColumns(m.layout))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "f":
			m.filter = !m.filter
			m.table.SetRows(m.rows())
			m.table.GotoTop()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m reviewModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("Records (%d)", len(m.visible()))))
	b.WriteString("\n")
	b.WriteString(BorderedBox(m.layout).Render(m.table.View()))
	b.WriteString("\n")

	detail := HintStyle.Render("No record selected")
	if it, ok := m.selected(); ok {
		if len(it.Verify) == 0 {
			detail = SuccessStyle.Render("Nothing to verify")
		} else {
			detail = AccentStyle.Render("Verify manually: ") + RenderNormal(strings.Join(it.Verify, ", "))
		}
	}
	b.WriteString(BorderedBox(m.layout).Render(detail))
	b.WriteString("\n")
	b.WriteString(HintStyle.Render("↑/↓ navigate • f toggle records needing review • q quit"))
	return b.String()
}

// RunReview shows the review table until the operator quits
func RunReview(items []ReviewItem) error {
	if _, err := tea.NewProgram(newReviewModel(items), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("review TUI error: %w", err)
	}
	return nil
}
