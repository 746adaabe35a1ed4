package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// View renders the current state of the reconciliation.
func (m Model) View() string {
	var sections []string

	sections = append(sections, titleStyle.Render("envpod • "+m.project))
	sections = append(sections, sectionStyle.Render("Actions"), m.renderEntries())

	if summary := m.renderSummary(); summary != "" {
		sections = append(sections, summaryStyle.Render(summary))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderEntries() string {
	lines := make([]string, 0, len(m.entries))
	for _, entry := range m.entries {
		line := fmt.Sprintf(" %s %s", m.stateIcon(entry.state), entry.action.Describe())
		if entry.action.Detail != "" {
			line += detailStyle.Render(" (" + entry.action.Detail + ")")
		}
		if entry.state == stateFailed && entry.result.Reason != "" {
			line += "\n   " + failureStyle.Render(entry.result.Reason)
		}
		if entry.result.Duration > 0 {
			line += fmt.Sprintf(" (%s)", entry.result.Duration.Truncate(10*time.Millisecond))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderSummary() string {
	switch {
	case m.cancelled && !m.finished:
		return warningStyle.Render("cancelling… completed actions are kept")
	case !m.finished:
		return ""
	case m.err != nil:
		return failureStyle.Render("✗ " + m.err.Error())
	default:
		return successStyle.Render("✓ environment up to date")
	}
}

func (m Model) stateIcon(state actionState) string {
	switch state {
	case stateSucceeded:
		return successStyle.Render("✓")
	case stateRunning:
		return m.spinner.View()
	case stateFailed:
		return failureStyle.Render("✗")
	case stateSkipped:
		return skippedStyle.Render("⊘")
	default:
		return pendingStyle.Render("…")
	}
}
