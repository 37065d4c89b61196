package ui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"

	"github.com/blaziumdev/abb2apk/internal/aab2apk/conversion"
	"github.com/blaziumdev/abb2apk/internal/aab2apk/domain"
)

// programReporter forwards converter progress into the running program.
type programReporter struct {
	p *tea.Program
}

func (r programReporter) StepStarted(step domain.Step) {
	r.p.Send(domain.StepStartedMsg{Step: step})
}

func (r programReporter) StepFinished(step domain.Step, err error) {
	r.p.Send(domain.StepFinishedMsg{Step: step, Err: err})
}

// Work runs the conversion, reporting progress through r.
type Work func(r conversion.Reporter) (*domain.Result, error)

// Run shows the progress view on out while work executes in the background.
// It returns once both the view has closed and work has returned, so the
// conversion always finishes its cleanup before the caller moves on. opts are
// appended to the program's own options.
func Run(ctx context.Context, cancel context.CancelFunc, out io.Writer, title string, steps []domain.Step, work Work, opts ...tea.ProgramOption) (*domain.Result, error) {
	opts = append([]tea.ProgramOption{tea.WithOutput(out), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(NewModel(title, steps, cancel), opts...)

	var (
		result  *domain.Result
		workErr error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		result, workErr = work(programReporter{p: p})
		p.Send(domain.ConversionFinishedMsg{Result: result, Err: workErr})
	}()

	if _, err := p.Run(); err != nil {
		// Killed or interrupted: stop the conversion and wait for its cleanup.
		cancel()
		<-done
		if workErr != nil {
			return nil, workErr
		}
		// The APKs were already written; losing the view does not undo that.
		if result != nil {
			return result, nil
		}
		return nil, errors.Wrap(err, "run progress view")
	}

	<-done
	return result, workErr
}
