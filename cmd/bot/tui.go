package main

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const maxStatusLines = 16

var (
	colorProfile = termenv.ColorProfile()

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("219")).
			Padding(0, 1)

	lineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// tuiModel is a scrolling status panel fed by the client's emitted
// lines, rendered with whatever color profile the terminal supports.
type tuiModel struct {
	status <-chan string
	lines  []string
}

type statusMsg string

func newTUIProgram(status <-chan string) *tea.Program {
	m := tuiModel{status: status}
	return tea.NewProgram(m, tea.WithAltScreen())
}

func (m tuiModel) Init() tea.Cmd {
	return waitForStatus(m.status)
}

func waitForStatus(status <-chan string) tea.Cmd {
	return func() tea.Msg {
		line, ok := <-status
		if !ok {
			return nil
		}
		return statusMsg(line)
	}
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}
	case statusMsg:
		m.lines = append(m.lines, string(msg))
		if len(m.lines) > maxStatusLines {
			m.lines = m.lines[len(m.lines)-maxStatusLines:]
		}
		return m, waitForStatus(m.status)
	}
	return m, nil
}

func (m tuiModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("heads-up hold'em bot"))
	b.WriteString("\n\n")
	for _, line := range m.lines {
		b.WriteString(lineStyle.Render(line))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("q to quit · color profile: " + colorProfileName()))
	return b.String()
}

func colorProfileName() string {
	switch colorProfile {
	case termenv.TrueColor:
		return "truecolor"
	case termenv.ANSI256:
		return "ansi256"
	case termenv.ANSI:
		return "ansi"
	default:
		return "ascii"
	}
}
