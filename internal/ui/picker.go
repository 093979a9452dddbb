package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/pleimann/marionette/internal/macro"
)

// pickerModel wraps a huh form in Bubble Tea for escape handling
type pickerModel struct {
	form    *huh.Form
	aborted bool
}

func (m pickerModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc", "q":
			m.aborted = true
			return m, tea.Quit
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, tea.Quit
	}

	return m, cmd
}

func (m pickerModel) View() string {
	if m.form.State == huh.StateCompleted {
		return ""
	}
	return m.form.View()
}

func macroOptions(macros []macro.Macro) []huh.Option[int] {
	options := make([]huh.Option[int], len(macros))
	for i, m := range macros {
		label := NameStyle.Render(m.Name)
		if m.Description != "" {
			label += "  " + DescriptionStyle.Render(m.Description)
		}
		options[i] = huh.NewOption(label, i)
	}
	return options
}

// SelectMacro presents an interactive macro picker. It returns nil when
// the user cancels.
func SelectMacro(macros []macro.Macro) (*macro.Macro, error) {
	if len(macros) == 0 {
		return nil, fmt.Errorf("no macros to select from")
	}

	var selected int

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Run macro").
				Description("Choose a macro to execute (esc to cancel)").
				Options(macroOptions(macros)...).
				Value(&selected),
		),
	).WithTheme(customTheme()).WithShowHelp(false)

	finalModel, err := tea.NewProgram(pickerModel{form: form}).Run()
	if err != nil {
		return nil, err
	}

	if finalModel.(pickerModel).aborted {
		return nil, nil
	}

	return &macros[selected], nil
}

// customTheme returns a huh theme matching our style palette
func customTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = t.Focused.Title.Foreground(ColorPrimary).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(ColorMuted)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(ColorPrimary)
	t.Focused.UnselectedOption = t.Focused.UnselectedOption.Foreground(lipgloss.Color("#F9FAFB"))
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(ColorPrimary)

	return t
}
