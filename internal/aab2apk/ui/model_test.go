package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/blaziumdev/abb2apk/internal/aab2apk/domain"
)

func TestUpdate_Steps(t *testing.T) {
	m := NewModel("aab2apk", Steps(false), nil)

	// 1. Step starts
	newM, _ := m.Update(domain.StepStartedMsg{Step: domain.StepBuildApks})
	newModel := newM.(Model)

	if newModel.Steps[1].Status != domain.StatusRunning {
		t.Errorf("Expected status Running, got %s", newModel.Steps[1].Status)
	}

	// 2. Step succeeds
	newM, _ = newModel.Update(domain.StepFinishedMsg{Step: domain.StepBuildApks})
	newModel = newM.(Model)

	if newModel.Steps[1].Status != domain.StatusSuccess {
		t.Errorf("Expected status Success, got %s", newModel.Steps[1].Status)
	}

	// 3. Step fails
	newM, _ = newModel.Update(domain.StepFinishedMsg{Step: domain.StepExtract, Err: errors.New("bad zip")})
	newModel = newM.(Model)

	if newModel.Steps[2].Status != domain.StatusFailed {
		t.Errorf("Expected status Failed, got %s", newModel.Steps[2].Status)
	}
	if !strings.Contains(newModel.View(), "✗") {
		t.Error("Expected failed marker in view")
	}

	// 4. Unannounced step is appended
	newM, _ = newModel.Update(domain.StepStartedMsg{Step: domain.StepSign})
	newModel = newM.(Model)

	if len(newModel.Steps) != 5 || newModel.Steps[4].Step != domain.StepSign {
		t.Errorf("Expected sign step appended, got %+v", newModel.Steps)
	}
}

func TestUpdate_Finished(t *testing.T) {
	m := NewModel("aab2apk", Steps(true), nil)
	result := &domain.Result{OutputDir: "/out", APKs: []string{"/out/app.apk"}}

	newM, cmd := m.Update(domain.ConversionFinishedMsg{Result: result})
	newModel := newM.(Model)

	if !newModel.Done || newModel.Result != result {
		t.Errorf("Expected done with result, got %+v", newModel)
	}
	if cmd == nil {
		t.Fatal("Expected quit cmd, got nil")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
	if !strings.Contains(newModel.View(), "1 APK(s) written to /out") {
		t.Errorf("Unexpected view: %s", newModel.View())
	}
}

func TestUpdate_Cancel(t *testing.T) {
	cancelled := false
	m := NewModel("aab2apk", Steps(false), func() { cancelled = true })

	newM, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	newModel := newM.(Model)

	if !cancelled {
		t.Error("Expected cancel to be called")
	}
	if !newModel.Cancelled {
		t.Error("Expected model marked cancelled")
	}
	if cmd == nil {
		t.Error("Expected cmd to be returned, got nil")
	}
}
