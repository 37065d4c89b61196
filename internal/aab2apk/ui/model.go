// Package ui is the interactive progress view shown while a conversion runs
// on a terminal.
package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/blaziumdev/abb2apk/internal/aab2apk/domain"
)

// StepState is one row of the progress list.
type StepState struct {
	Step   domain.Step
	Status domain.StepStatus
	Err    error
}

type Model struct {
	Title string
	Steps []StepState

	// Set once the conversion has returned
	Done   bool
	Result *domain.Result
	Err    error

	Cancelled bool

	spinner spinner.Model
	cancel  context.CancelFunc
}

// Steps lists the steps a conversion will go through.
func Steps(signing bool) []domain.Step {
	steps := []domain.Step{
		domain.StepPrepare,
		domain.StepBuildApks,
		domain.StepExtract,
		domain.StepCollect,
	}
	if signing {
		steps = append(steps, domain.StepSign)
	}
	return steps
}

func NewModel(title string, steps []domain.Step, cancel context.CancelFunc) Model {
	m := Model{
		Title:   title,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(statusRunningStyle)),
		cancel:  cancel,
	}
	for _, s := range steps {
		m.Steps = append(m.Steps, StepState{Step: s, Status: domain.StatusPending})
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// stepIndex returns the row for step, adding one if the step was not announced up front.
func (m *Model) stepIndex(step domain.Step) int {
	for i := range m.Steps {
		if m.Steps[i].Step == step {
			return i
		}
	}
	m.Steps = append(m.Steps, StepState{Step: step, Status: domain.StatusPending})
	return len(m.Steps) - 1
}
