package questscale

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ZanzyTHEbar/questscale/internal/eventbus"
	"github.com/google/uuid"
)

// RunState represents the current state of a query run.
type RunState string

const (
	// StateInit is the initial state of the run
	StateInit RunState = "init"
	// StatePlanning represents the planning phase
	StatePlanning RunState = "planning"
	// StateExecuting represents the per-task tool execution phase
	StateExecuting RunState = "executing"
	// StateValidating represents the per-task completion check phase
	StateValidating RunState = "validating"
	// StateAnswering represents the answer synthesis phase
	StateAnswering RunState = "answering"
	// StateError represents an error state
	StateError RunState = "error"
	// StateComplete represents the completed state
	StateComplete RunState = "complete"
	// StateCancelled represents the cancelled state
	StateCancelled RunState = "cancelled"
)

// RunContext carries all data for one query's processing. A run context and
// everything it owns (plan, session log) live for exactly one query.
type RunContext struct {
	// Input parameters
	SessionID string
	Query     string

	// Plan execution state
	Plan      []Task
	TaskIndex int
	Steps     int // executing-state entries consumed against the global budget
	Log       *SessionLog

	// Result
	FinalAnswer string

	// Error handling
	LastError  error
	ErrorStage string

	// State management
	CurrentState RunState

	// Timestamp tracking
	StartTime       time.Time
	EndTime         time.Time
	StateStartTimes map[RunState]time.Time
}

// NewRunContext creates a new run context for the given query.
func NewRunContext(query string) *RunContext {
	return &RunContext{
		SessionID:       uuid.New().String(),
		Query:           query,
		Log:             NewSessionLog(),
		CurrentState:    StateInit,
		StartTime:       time.Now(),
		StateStartTimes: make(map[RunState]time.Time),
	}
}

// CurrentTask returns the task under the cursor, or nil when the cursor has
// moved past the last task.
func (rc *RunContext) CurrentTask() *Task {
	if rc.TaskIndex < 0 || rc.TaskIndex >= len(rc.Plan) {
		return nil
	}
	return &rc.Plan[rc.TaskIndex]
}

// IsTerminal checks if the current state is a terminal state (Complete, Error, Cancelled).
func (rc *RunContext) IsTerminal() bool {
	return rc.CurrentState == StateComplete || rc.CurrentState == StateError || rc.CurrentState == StateCancelled
}

// SetError sets the last error and error stage, transitioning to StateError.
func (rc *RunContext) SetError(err error, stage string) {
	rc.LastError = err
	rc.ErrorStage = stage
	rc.CurrentState = StateError
	rc.StateStartTimes[StateError] = time.Now()
}

// SetCancelled sets the state to Cancelled and records the cancellation error.
func (rc *RunContext) SetCancelled(err error, stage string) {
	rc.LastError = err
	rc.ErrorStage = stage
	rc.CurrentState = StateCancelled
	rc.StateStartTimes[StateCancelled] = time.Now()
}

// Complete marks the run as complete and sets the end time.
func (rc *RunContext) Complete() {
	rc.CurrentState = StateComplete
	rc.EndTime = time.Now()
	rc.StateStartTimes[StateComplete] = rc.EndTime
}

// GetTotalDuration returns the total duration of the run so far.
func (rc *RunContext) GetTotalDuration() time.Duration {
	if rc.CurrentState == StateComplete {
		return rc.EndTime.Sub(rc.StartTime)
	}
	return time.Since(rc.StartTime)
}

// StateTransition defines a transition function for the state machine.
type StateTransition func(ctx context.Context, eventBus eventbus.EventBus, rCtx *RunContext) (RunState, error)

// StateMachine is the table-driven finite state machine that sequences a
// run: planning, per-task execution and validation, answer synthesis.
type StateMachine struct {
	transitions map[RunState]StateTransition
	eventBus    eventbus.EventBus
}

// NewStateMachine creates a new state machine with no transitions registered.
func NewStateMachine(eventBus eventbus.EventBus) *StateMachine {
	return &StateMachine{
		transitions: make(map[RunState]StateTransition),
		eventBus:    eventBus,
	}
}

// RegisterTransition registers a state transition function.
func (sm *StateMachine) RegisterTransition(state RunState, transition StateTransition) {
	sm.transitions[state] = transition
}

// Execute runs the state machine until a terminal state is reached. It
// returns the final answer and any terminal error (cancellation included).
func (sm *StateMachine) Execute(ctx context.Context, rCtx *RunContext) (string, error) {
	for !rCtx.IsTerminal() {
		// Check for context cancellation before executing the next state
		select {
		case <-ctx.Done():
			err := ctx.Err()
			rCtx.SetCancelled(err, string(rCtx.CurrentState))
			return "", err
		default:
		}

		transition, exists := sm.transitions[rCtx.CurrentState]
		if !exists {
			err := fmt.Errorf("no transition defined for state: %s", rCtx.CurrentState)
			rCtx.SetError(err, string(rCtx.CurrentState))
			return "", err
		}

		nextState, err := transition(ctx, sm.eventBus, rCtx)
		if err != nil {
			currentStage := string(rCtx.CurrentState)
			// Transitions may wrap the cancellation cause, so unwrap.
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				rCtx.SetCancelled(err, currentStage)
			} else if !rCtx.IsTerminal() {
				// Transitions normally swallow their own failures into safe
				// defaults; an error here means something unrecoverable.
				rCtx.SetError(err, currentStage)
			}
			continue
		}

		if !rCtx.IsTerminal() {
			rCtx.CurrentState = nextState
			rCtx.StateStartTimes[nextState] = time.Now()
		}
	}

	return rCtx.FinalAnswer, rCtx.LastError
}
