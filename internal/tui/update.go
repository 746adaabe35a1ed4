package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/anikchand461/envpod/internal/engine"
)

// Update handles Bubbletea messages and advances the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ActionStartMsg:
		if i := m.entryIndex(msg.Action.Type); i >= 0 {
			m.entries[i].state = stateRunning
		}
		return m, nil

	case ActionDoneMsg:
		if i := m.entryIndex(msg.Result.Action.Type); i >= 0 {
			m.entries[i].result = msg.Result
			m.entries[i].state = outcomeState(msg.Result.Outcome)
		}
		return m, nil

	case ReconcileDoneMsg:
		m.finished = true
		m.err = msg.Err
		return m, tea.Quit

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancelled = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
	}

	return m, nil
}

func outcomeState(outcome engine.Outcome) actionState {
	switch outcome {
	case engine.OutcomeSucceeded:
		return stateSucceeded
	case engine.OutcomeFailed:
		return stateFailed
	case engine.OutcomeSkipped:
		return stateSkipped
	default:
		return statePending
	}
}
