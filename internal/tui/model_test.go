package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/anikchand461/envpod/internal/engine"
	"github.com/anikchand461/envpod/internal/plan"
)

func testPlan() plan.Plan {
	return plan.Plan{Actions: []plan.Action{
		{Type: plan.ActionCreateEnvironment, Detail: "environment missing"},
		{Type: plan.ActionInstallDependencies},
		{Type: plan.ActionSetEnvVars, EnvVars: map[string]string{"DEBUG": "1"}},
	}}
}

func TestNewModelTracksPlanOrder(t *testing.T) {
	m := NewModel("api", testPlan())

	require.Len(t, m.entries, 3)
	require.Equal(t, plan.ActionCreateEnvironment, m.entries[0].action.Type)
	require.Equal(t, statePending, m.entries[0].state)
	require.False(t, m.IsFinished())
}

func TestUpdateActionLifecycle(t *testing.T) {
	m := NewModel("api", testPlan())

	next, _ := m.Update(ActionStartMsg{Action: plan.Action{Type: plan.ActionCreateEnvironment}})
	m = next.(Model)
	require.Equal(t, stateRunning, m.entries[0].state)

	next, _ = m.Update(ActionDoneMsg{Result: engine.ActionResult{
		Action:  plan.Action{Type: plan.ActionCreateEnvironment},
		Outcome: engine.OutcomeSucceeded,
	}})
	m = next.(Model)
	require.Equal(t, stateSucceeded, m.entries[0].state)
	require.Equal(t, statePending, m.entries[1].state)
}

func TestUpdateFailureAndSkip(t *testing.T) {
	m := NewModel("api", testPlan())

	next, _ := m.Update(ActionDoneMsg{Result: engine.ActionResult{
		Action:  plan.Action{Type: plan.ActionInstallDependencies},
		Outcome: engine.OutcomeFailed,
		Reason:  "pip exploded",
	}})
	m = next.(Model)
	next, _ = m.Update(ActionDoneMsg{Result: engine.ActionResult{
		Action:  plan.Action{Type: plan.ActionSetEnvVars},
		Outcome: engine.OutcomeSkipped,
	}})
	m = next.(Model)

	require.Equal(t, stateFailed, m.entries[1].state)
	require.Equal(t, stateSkipped, m.entries[2].state)
}

func TestUpdateReconcileDoneQuits(t *testing.T) {
	m := NewModel("api", testPlan())
	wantErr := errors.New("boom")

	next, cmd := m.Update(ReconcileDoneMsg{Err: wantErr})
	m = next.(Model)

	require.True(t, m.IsFinished())
	require.Equal(t, wantErr, m.Err())
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestUpdateCtrlCCancels(t *testing.T) {
	cancelled := false
	m := NewModel("api", testPlan()).WithCancel(func() { cancelled = true })

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = next.(Model)

	require.True(t, cancelled)
	require.True(t, m.cancelled)
	require.False(t, m.IsFinished())
}
