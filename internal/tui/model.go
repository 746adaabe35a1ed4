package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/anikchand461/envpod/internal/engine"
	"github.com/anikchand461/envpod/internal/plan"
)

// ActionStartMsg indicates a reconciliation action has started executing.
type ActionStartMsg struct {
	Action plan.Action
}

// ActionDoneMsg reports that an action has finished.
type ActionDoneMsg struct {
	Result engine.ActionResult
}

// ReconcileDoneMsg carries the final outcome of the reconciliation pass.
type ReconcileDoneMsg struct {
	Outcome engine.ReconcileOutcome
	Err     error
}

type actionState string

const (
	statePending   actionState = "pending"
	stateRunning   actionState = "running"
	stateSucceeded actionState = "succeeded"
	stateFailed    actionState = "failed"
	stateSkipped   actionState = "skipped"
)

type actionEntry struct {
	action plan.Action
	state  actionState
	result engine.ActionResult
}

// Model holds the Bubbletea state for the reconciliation progress display.
type Model struct {
	project   string
	entries   []actionEntry
	spinner   spinner.Model
	finished  bool
	cancelled bool
	err       error

	// cancel stops the in-flight reconciliation when the user hits ctrl+c.
	// Raw terminal mode swallows SIGINT, so the key event is the only signal.
	cancel func()
}

// NewModel constructs the progress model for a planned reconciliation.
func NewModel(project string, p plan.Plan) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = runningStyle

	entries := make([]actionEntry, 0, len(p.Actions))
	for _, action := range p.Actions {
		entries = append(entries, actionEntry{action: action, state: statePending})
	}

	return Model{
		project: project,
		entries: entries,
		spinner: sp,
	}
}

// WithCancel attaches the function invoked when the user interrupts.
func (m Model) WithCancel(cancel func()) Model {
	m.cancel = cancel
	return m
}

// Init starts the spinner tick loop.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// IsFinished reports whether the reconciliation has completed.
func (m Model) IsFinished() bool {
	return m.finished
}

// Err returns the reconciliation error, if any.
func (m Model) Err() error {
	return m.err
}

// entryIndex finds the entry matching an action by type; the plan never
// carries duplicate action types.
func (m Model) entryIndex(actionType plan.ActionType) int {
	for i := range m.entries {
		if m.entries[i].action.Type == actionType {
			return i
		}
	}
	return -1
}
