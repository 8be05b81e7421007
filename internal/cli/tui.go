package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gridpress/gridpress/pkg/page"
)

// List styles
var (
	listHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listCellStyle   = lipgloss.NewStyle().Foreground(colorWhite).PaddingRight(2)
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// watchModel - Live document view
// =============================================================================

// docUpdateMsg carries a committed document write into the TUI.
type docUpdateMsg struct {
	doc page.Document
}

// watchModel is the bubbletea model for the live page view. It displays the
// current section list and reflects every committed write as it arrives.
type watchModel struct {
	pageID  string
	doc     page.Document
	updates int
	width   int
}

// newWatchModel creates a watch model seeded with the current document.
func newWatchModel(pageID string, doc page.Document) watchModel {
	return watchModel{pageID: pageID, doc: doc}
}

func (m watchModel) Init() tea.Cmd {
	return nil
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case docUpdateMsg:
		m.doc = msg.doc
		m.updates++
	}
	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Watching " + m.pageID))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("rev %d · %d updates · q quit", m.doc.Rev, m.updates)))
	b.WriteString("\n\n")

	if title := m.doc.Meta.Title; title != "" {
		b.WriteString(StyleValue.Render(title))
		b.WriteString("\n\n")
	}

	if len(m.doc.Sections) == 0 {
		b.WriteString(listDimStyle.Render("(no sections)"))
		b.WriteString("\n")
		return b.String()
	}

	rows := [][]string{}
	for i, s := range m.doc.Sections {
		rows = append(rows, []string{fmt.Sprintf("%d", i), s.ID, s.Type, layoutString(s.Layout)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Section", "Type", "Layout").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return listHeaderStyle
			}
			return listCellStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	return b.String()
}
