package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/blaziumdev/abb2apk/internal/aab2apk/domain"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			// The conversion sees the cancellation and cleans up after the view exits.
			if m.cancel != nil {
				m.cancel()
			}
			m.Cancelled = true
			return m, tea.Quit
		}

	case domain.StepStartedMsg:
		i := m.stepIndex(msg.Step)
		m.Steps[i].Status = domain.StatusRunning

	case domain.StepFinishedMsg:
		i := m.stepIndex(msg.Step)
		if msg.Err != nil {
			m.Steps[i].Status = domain.StatusFailed
			m.Steps[i].Err = msg.Err
		} else {
			m.Steps[i].Status = domain.StatusSuccess
		}

	case domain.ConversionFinishedMsg:
		m.Done = true
		m.Result = msg.Result
		m.Err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}
