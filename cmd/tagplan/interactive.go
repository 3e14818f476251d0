package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/QuarticCat/enum-ptr/witplan"
)

type interactiveModel struct {
	filter   textinput.Model
	source   string
	results  []witplan.Result
	visible  []witplan.Result
	selected int
	state    modelState
}

type modelState int

const (
	stateBrowse modelState = iota
	stateFilter
	stateDetail
)

func newInteractiveModel(source string, results []witplan.Result) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "type name"
	ti.Prompt = "/ "
	ti.Width = 40
	return &interactiveModel{
		filter:  ti,
		source:  source,
		results: results,
		visible: results,
		state:   stateBrowse,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateFilter {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateBrowse && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateBrowse && m.selected < len(m.visible)-1 {
				m.selected++
			}

		case "/":
			if m.state == stateBrowse {
				m.state = stateFilter
				return m, m.filter.Focus()
			}

		case "enter":
			switch m.state {
			case stateBrowse:
				if len(m.visible) > 0 {
					m.state = stateDetail
				}
			case stateFilter:
				m.filter.Blur()
				m.state = stateBrowse
			case stateDetail:
				m.state = stateBrowse
			}
			return m, nil

		case "esc":
			switch m.state {
			case stateFilter:
				m.filter.Blur()
				m.filter.SetValue("")
				m.applyFilter()
				m.state = stateBrowse
			case stateDetail:
				m.state = stateBrowse
			}
			return m, nil
		}
	}

	if m.state == stateFilter {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		m.applyFilter()
		return m, cmd
	}
	return m, nil
}

func (m *interactiveModel) applyFilter() {
	m.visible = filter(m.results, m.filter.Value(), false)
	if m.selected >= len(m.visible) {
		m.selected = max(len(m.visible)-1, 0)
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder
	p := painter(true)

	b.WriteString(titleStyle.Render("Tag Plans"))
	b.WriteString(" ")
	b.WriteString(m.source)
	b.WriteString("\n\n")

	switch m.state {
	case stateBrowse, stateFilter:
		if m.state == stateFilter || m.filter.Value() != "" {
			b.WriteString(m.filter.View())
			b.WriteString("\n\n")
		}
		if len(m.visible) == 0 {
			b.WriteString("no matching variant types\n")
		}
		for i, r := range m.visible {
			line := fmt.Sprintf("%s  %s", r.Name, summary(r, p))
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		if m.state == stateFilter {
			b.WriteString(helpStyle.Render("enter keep filter • esc clear"))
		} else {
			b.WriteString(helpStyle.Render("↑/↓ select • enter details • / filter • q quit"))
		}

	case stateDetail:
		r := m.visible[m.selected]
		b.WriteString(fmt.Sprintf("%s  %s\n\n", nameStyle.Render(r.Name), summary(r, p)))
		details(&b, r, p)
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter back • q quit"))
	}

	return b.String()
}

func runInteractive(source string, results []witplan.Result) error {
	p := tea.NewProgram(newInteractiveModel(source, results), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
