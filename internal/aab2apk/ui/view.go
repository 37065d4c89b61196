package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/blaziumdev/abb2apk/internal/aab2apk/domain"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	itemStyle = lipgloss.NewStyle().PaddingLeft(2)

	statusPendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	statusRunningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	statusSuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	statusFailStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			PaddingTop(1)
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.Title) + "\n\n")

	for _, s := range m.Steps {
		var icon string
		switch s.Status {
		case domain.StatusRunning:
			icon = m.spinner.View()
		case domain.StatusSuccess:
			icon = statusSuccessStyle.Render("✓")
		case domain.StatusFailed:
			icon = statusFailStyle.Render("✗")
		default:
			icon = statusPendingStyle.Render("·")
		}
		b.WriteString(itemStyle.Render(fmt.Sprintf("%s %s", icon, s.Step)) + "\n")
	}

	switch {
	case m.Cancelled:
		b.WriteString(footerStyle.Render("Cancelling..."))
	case m.Done && m.Err != nil:
		b.WriteString(footerStyle.Render(statusFailStyle.Render("Conversion failed")))
	case m.Done && m.Result != nil:
		b.WriteString(footerStyle.Render(fmt.Sprintf("%d APK(s) written to %s", len(m.Result.APKs), m.Result.OutputDir)))
	default:
		b.WriteString(footerStyle.Render("Ctrl+C to cancel"))
	}

	return b.String() + "\n"
}
