// Package tui provides the interactive remediation prompt shown when a
// dependency check fails during watch mode.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/depwatch/depwatch/internal/checker"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	detailStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	choiceStyle   = lipgloss.NewStyle().PaddingLeft(2)
	selectedStyle = lipgloss.NewStyle().PaddingLeft(0).Foreground(lipgloss.Color("6"))
)

const (
	choiceReinstall = iota
	choiceIgnore
)

type promptModel struct {
	details []string
	cursor  int
	chosen  int
	done    bool
}

func (m promptModel) Init() tea.Cmd { return nil }

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < choiceIgnore {
			m.cursor++
		}
	case "enter":
		m.chosen = m.cursor
		m.done = true
		return m, tea.Quit
	case "esc", "q", "ctrl+c":
		m.chosen = choiceIgnore
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m promptModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Dependency check failed") + "\n\n")
	for _, line := range m.details {
		b.WriteString(detailStyle.Render("  "+line) + "\n")
	}
	b.WriteString("\n")

	choices := []string{"Run clean install", "Ignore"}
	for i, choice := range choices {
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("› ") + selectedStyle.Render(choice) + "\n")
		} else {
			b.WriteString(choiceStyle.Render(choice) + "\n")
		}
	}
	b.WriteString("\n" + detailStyle.Render("enter to confirm, esc to dismiss") + "\n")
	return b.String()
}

// Prompter implements watchd.Prompter with an interactive terminal menu.
type Prompter struct{}

func (Prompter) ConfirmReinstall(result *checker.Result) (bool, error) {
	model := promptModel{details: promptDetails(result)}

	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(promptModel)
	if !ok {
		return false, nil
	}
	return m.chosen == choiceReinstall, nil
}

func promptDetails(result *checker.Result) []string {
	var details []string
	if len(result.Missing) > 0 {
		details = append(details, fmt.Sprintf("missing: %s", strings.Join(result.Missing, ", ")))
	}
	for _, entry := range result.Outdated {
		details = append(details, "outdated: "+entry)
	}
	details = append(details, result.Errors...)
	return details
}
