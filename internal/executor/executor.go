// Package executor drives the bounded tool sub-loop for a single task: ask
// the gateway for at most one tool call, invoke it through the registry,
// fold the outcome into the rolling context, and repeat until the gateway
// declines to act or the per-task budget runs out.
package executor

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ZanzyTHEbar/questscale"
)

// contextWindowSize bounds how many recent log entries the gateway sees when
// deciding the next action. The synthesizer reads the full log; only action
// decisions are windowed.
const contextWindowSize = 5

const emptyContextPlaceholder = "No previous context."

// Executor implements questscale.TaskExecutor.
type Executor struct {
	gateway         questscale.Gateway
	registry        *questscale.ToolRegistry
	maxStepsPerTask int
	logger          *zap.Logger
}

// New creates a task executor. maxStepsPerTask values below one fall back to
// a single step so the sub-loop always terminates.
func New(gateway questscale.Gateway, registry *questscale.ToolRegistry, maxStepsPerTask int, logger *zap.Logger) *Executor {
	if maxStepsPerTask < 1 {
		maxStepsPerTask = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		gateway:         gateway,
		registry:        registry,
		maxStepsPerTask: maxStepsPerTask,
		logger:          logger,
	}
}

// Execute runs the sub-loop for one task and returns the invocation records
// it produced. A non-nil error reports a gateway failure mid-loop; records
// gathered before the failure are still returned so the session log keeps
// everything that actually happened.
func (e *Executor) Execute(ctx context.Context, task questscale.Task, log *questscale.SessionLog) ([]questscale.InvocationRecord, error) {
	recent := log.Window(contextWindowSize)
	records := make([]questscale.InvocationRecord, 0, e.maxStepsPerTask)

	for step := 0; step < e.maxStepsPerTask; step++ {
		if err := ctx.Err(); err != nil {
			return records, questscale.NewCancelledError("executing", err)
		}

		call, err := e.gateway.DecideAction(ctx, task.Description, renderContext(recent), e.registry.Descriptors())
		if err != nil {
			e.logger.Warn("action decision failed",
				zap.Int("task_id", task.ID),
				zap.Int("step", step),
				zap.Error(err))
			return records, questscale.NewDecisionError(err)
		}
		if call == nil {
			// The model elected not to act; the task is as done as it gets.
			break
		}

		output := e.registry.Invoke(ctx, call.Name, call.Args)
		record := questscale.InvocationRecord{
			Tool:   call.Name,
			Input:  call.Args,
			Output: output,
		}
		records = append(records, record)
		recent = slideWindow(recent, record.Render())

		e.logger.Debug("tool invoked",
			zap.Int("task_id", task.ID),
			zap.Int("step", step),
			zap.String("tool", call.Name))
	}

	return records, nil
}

// renderContext joins the window entries for the action prompt. An empty
// window renders as the explicit placeholder so the model cannot mistake a
// fresh task for missing input.
func renderContext(entries []string) string {
	if len(entries) == 0 {
		return emptyContextPlaceholder
	}
	return strings.Join(entries, "\n\n")
}

// slideWindow appends an entry and keeps the window bounded.
func slideWindow(entries []string, entry string) []string {
	entries = append(entries, entry)
	if len(entries) > contextWindowSize {
		entries = entries[len(entries)-contextWindowSize:]
	}
	return entries
}

var _ questscale.TaskExecutor = (*Executor)(nil)
