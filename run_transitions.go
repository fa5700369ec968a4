package questscale

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ZanzyTHEbar/questscale/internal/eventbus"
	"go.uber.org/zap"
)

// FallbackAnswer is returned when answer synthesis itself fails. The run
// still completes: a degraded answer is always preferred over a crash.
const FallbackAnswer = "Unable to generate an answer due to an internal error."

// AgentComponents holds references to the core components needed for state
// transitions.
type AgentComponents struct {
	Gateway  Gateway
	Registry *ToolRegistry
	Executor TaskExecutor
	Config   Config
	Logger   *zap.Logger
}

// CreateRunStateMachine builds a complete state machine for the
// plan -> execute -> validate -> answer workflow.
func CreateRunStateMachine(components AgentComponents, eventBus eventbus.EventBus) *StateMachine {
	sm := NewStateMachine(eventBus)

	sm.RegisterTransition(StateInit, createInitTransition(components))
	sm.RegisterTransition(StatePlanning, createPlanningTransition(components))
	sm.RegisterTransition(StateExecuting, createExecutingTransition(components))
	sm.RegisterTransition(StateValidating, createValidatingTransition(components))
	sm.RegisterTransition(StateAnswering, createAnsweringTransition(components))
	sm.RegisterTransition(StateError, createErrorTransition(components))
	sm.RegisterTransition(StateComplete, createCompleteTransition(components))
	sm.RegisterTransition(StateCancelled, createCancelledTransition(components))

	return sm
}

// createInitTransition handles the initialization state.
func createInitTransition(components AgentComponents) StateTransition {
	return func(ctx context.Context, eb eventbus.EventBus, rCtx *RunContext) (RunState, error) {
		if eb != nil {
			eb.Publish(ctx, eventbus.NewEvent(
				eventbus.EventRunStarted,
				rCtx.Query,
				"StateMachine.Init",
				map[string]interface{}{
					"session_id": rCtx.SessionID,
					"timestamp":  time.Now().Format(time.RFC3339),
				},
			))
		}
		return StatePlanning, nil
	}
}

// createPlanningTransition turns the query into an ordered task plan. A
// gateway failure degrades to a single-task plan of the verbatim query; an
// explicit empty plan short-circuits straight to answering.
func createPlanningTransition(components AgentComponents) StateTransition {
	return func(ctx context.Context, eb eventbus.EventBus, rCtx *RunContext) (RunState, error) {
		if eb != nil {
			eb.Publish(ctx, eventbus.NewEvent(
				eventbus.EventPlanStarted, rCtx.Query, "StateMachine.Planning", nil))
		}

		taskList, err := components.Gateway.Plan(ctx, rCtx.Query, components.Registry.Descriptors())
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return StateError, err
			}
			components.Logger.Warn("planning failed, falling back to single-task plan",
				zap.String("session_id", rCtx.SessionID),
				zap.Error(err))
			if eb != nil {
				eb.Publish(ctx, eventbus.NewEvent(
					eventbus.EventPlanFailure, err.Error(), "StateMachine.Planning",
					map[string]interface{}{"error": err.Error()}))
			}
			taskList = TaskList{Tasks: []Task{{Description: rCtx.Query}}}
		}

		// Re-sequence IDs regardless of what the model emitted: stable ids
		// starting at 1, done=false.
		plan := make([]Task, len(taskList.Tasks))
		for i, task := range taskList.Tasks {
			plan[i] = Task{ID: i + 1, Description: task.Description}
		}
		rCtx.Plan = plan
		rCtx.TaskIndex = 0

		if eb != nil {
			eb.Publish(ctx, eventbus.NewEvent(
				eventbus.EventPlanReady, plan, "StateMachine.Planning",
				map[string]interface{}{"task_count": len(plan)}))
		}

		if len(plan) == 0 {
			// No tool-based work is needed; answer directly from the query.
			return StateAnswering, nil
		}
		return StateExecuting, nil
	}
}

// createExecutingTransition runs the tool sub-loop for the task under the
// cursor. Already-done tasks are skipped without executing; a sub-loop
// failure force-marks the task done so the run always makes progress.
func createExecutingTransition(components AgentComponents) StateTransition {
	return func(ctx context.Context, eb eventbus.EventBus, rCtx *RunContext) (RunState, error) {
		task := rCtx.CurrentTask()
		if task == nil {
			return StateAnswering, nil
		}

		if task.Done {
			if eb != nil {
				eb.Publish(ctx, eventbus.NewEvent(
					eventbus.EventTaskSkipped, task.Description, "StateMachine.Executing",
					map[string]interface{}{"task_id": task.ID}))
			}
			rCtx.TaskIndex++
			if rCtx.CurrentTask() == nil {
				return StateAnswering, nil
			}
			return StateExecuting, nil
		}

		// Global circuit breaker, independent of the per-task ceiling.
		if components.Config.MaxSteps > 0 && rCtx.Steps >= components.Config.MaxSteps {
			components.Logger.Warn("global step budget exhausted",
				zap.String("session_id", rCtx.SessionID),
				zap.Int("max_steps", components.Config.MaxSteps))
			if eb != nil {
				eb.Publish(ctx, eventbus.NewEvent(
					eventbus.EventBudgetExhausted, rCtx.Query, "StateMachine.Executing",
					map[string]interface{}{"steps": rCtx.Steps}))
			}
			return StateAnswering, nil
		}
		rCtx.Steps++

		if eb != nil {
			eb.Publish(ctx, eventbus.NewEvent(
				eventbus.EventTaskStarted, task.Description, "StateMachine.Executing",
				map[string]interface{}{"task_id": task.ID}))
		}

		records, err := components.Executor.Execute(ctx, *task, rCtx.Log)
		for _, record := range records {
			rCtx.Log.Append(record.Render())
			if eb != nil {
				eb.Publish(ctx, eventbus.NewEvent(
					eventbus.EventToolInvoked, truncate(record.Render(), 100), "StateMachine.Executing",
					map[string]interface{}{"task_id": task.ID, "tool": record.Tool}))
			}
		}
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return StateError, err
			}
			// Force-done so a failing task cannot stall the run. The error
			// is captured for observers only; it never aborts the session.
			components.Logger.Warn("task execution failed, forcing completion",
				zap.String("session_id", rCtx.SessionID),
				zap.Int("task_id", task.ID),
				zap.Error(err))
			task.Done = true
			if eb != nil {
				eb.Publish(ctx, eventbus.NewEvent(
					eventbus.EventTaskForced, task.Description, "StateMachine.Executing",
					map[string]interface{}{"task_id": task.ID, "error": err.Error()}))
			}
		}

		return StateValidating, nil
	}
}

// createValidatingTransition asks the gateway whether the current task is
// complete. Validation failure defaults to done: a false positive is cheaper
// than an endless retry of an already-served task. The cursor advances
// either way.
func createValidatingTransition(components AgentComponents) StateTransition {
	return func(ctx context.Context, eb eventbus.EventBus, rCtx *RunContext) (RunState, error) {
		task := rCtx.CurrentTask()
		if task == nil {
			return StateAnswering, nil
		}

		if !task.Done {
			verdict, err := components.Gateway.Validate(ctx, task.Description, rCtx.Log.RenderAll())
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return StateError, err
				}
				components.Logger.Warn("validation failed, forcing completion",
					zap.String("session_id", rCtx.SessionID),
					zap.Int("task_id", task.ID),
					zap.Error(err))
				task.Done = true
				if eb != nil {
					eb.Publish(ctx, eventbus.NewEvent(
						eventbus.EventTaskForced, task.Description, "StateMachine.Validating",
						map[string]interface{}{"task_id": task.ID, "error": err.Error()}))
				}
			} else {
				task.Done = verdict.Done
			}
		}

		if eb != nil {
			eb.Publish(ctx, eventbus.NewEvent(
				eventbus.EventTaskValidated, task.Description, "StateMachine.Validating",
				map[string]interface{}{"task_id": task.ID, "done": task.Done}))
		}

		rCtx.TaskIndex++
		if rCtx.CurrentTask() == nil {
			return StateAnswering, nil
		}
		return StateExecuting, nil
	}
}

// createAnsweringTransition synthesizes the final answer from the full
// session log. The run completes with a fixed fallback string when the
// gateway fails; it never ends without an answer.
func createAnsweringTransition(components AgentComponents) StateTransition {
	return func(ctx context.Context, eb eventbus.EventBus, rCtx *RunContext) (RunState, error) {
		if eb != nil {
			eb.Publish(ctx, eventbus.NewEvent(
				eventbus.EventSynthesisStarted, rCtx.Query, "StateMachine.Answering",
				map[string]interface{}{"log_entries": rCtx.Log.Len()}))
		}

		answer, err := components.Gateway.Synthesize(ctx, rCtx.Query, rCtx.Log.RenderAll())
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return StateError, err
			}
			components.Logger.Error("answer synthesis failed",
				zap.String("session_id", rCtx.SessionID),
				zap.Error(err))
			if eb != nil {
				eb.Publish(ctx, eventbus.NewEvent(
					eventbus.EventSynthesisFailure, err.Error(), "StateMachine.Answering",
					map[string]interface{}{"error": err.Error()}))
			}
			rCtx.FinalAnswer = FallbackAnswer
			rCtx.Complete()
			return StateComplete, nil
		}

		rCtx.FinalAnswer = strings.TrimSpace(answer.Answer)
		if rCtx.FinalAnswer == "" {
			rCtx.FinalAnswer = FallbackAnswer
		}

		if eb != nil {
			eb.Publish(ctx, eventbus.NewEvent(
				eventbus.EventSynthesisSuccess, rCtx.FinalAnswer, "StateMachine.Answering",
				map[string]interface{}{"answer_length": len(rCtx.FinalAnswer)}))
			eb.Publish(ctx, eventbus.NewEvent(
				eventbus.EventRunSuccess, rCtx.Query, "StateMachine.Answering",
				map[string]interface{}{
					"session_id":  rCtx.SessionID,
					"duration_ms": rCtx.GetTotalDuration().Milliseconds(),
				}))
		}

		rCtx.Complete()
		return StateComplete, nil
	}
}

// createErrorTransition handles error states.
func createErrorTransition(_ AgentComponents) StateTransition {
	return func(ctx context.Context, eb eventbus.EventBus, rCtx *RunContext) (RunState, error) {
		// The error is already recorded in the run context; surface it
		// through the terminal state.
		return StateComplete, rCtx.LastError
	}
}

// createCompleteTransition handles the complete state.
func createCompleteTransition(_ AgentComponents) StateTransition {
	return func(ctx context.Context, eb eventbus.EventBus, rCtx *RunContext) (RunState, error) {
		return StateComplete, nil
	}
}

// createCancelledTransition handles the cancelled state.
func createCancelledTransition(_ AgentComponents) StateTransition {
	return func(ctx context.Context, eb eventbus.EventBus, rCtx *RunContext) (RunState, error) {
		return StateCancelled, rCtx.LastError
	}
}

// truncate bounds s to max bytes without splitting a UTF-8 rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
