package questscale

import "context"

// Gateway is the seam to the language-model backend. Each call is
// synchronous, performs no caching and no internal retries, and may fail;
// callers catch the failure and substitute their safe default.
type Gateway interface {
	// Plan breaks a user query into an ordered task list. An empty list is
	// a valid signal that no tool-based work is needed.
	Plan(ctx context.Context, query string, tools []ToolDescriptor) (TaskList, error)

	// DecideAction selects at most one tool call that makes progress on the
	// task given the accumulated context. A nil call with a nil error means
	// the model elected not to use any tool.
	DecideAction(ctx context.Context, taskDescription string, execContext string, tools []ToolDescriptor) (*ToolCall, error)

	// Validate judges whether the task is complete given the accumulated
	// tool output.
	Validate(ctx context.Context, taskDescription string, results string) (IsDone, error)

	// Synthesize produces the final answer from the original query and the
	// full session log, grounded only in that log.
	Synthesize(ctx context.Context, query string, results string) (Answer, error)
}

// Tool represents an executable capability that the executor may invoke.
type Tool interface {
	// Execute performs the tool's action. Internal failures are returned as
	// errors here; the registry converts them to structured error payloads
	// so they never propagate as faults.
	Execute(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error)

	// Schema returns the tool's input schema, used in gateway prompts.
	Schema() map[string]interface{}

	// Validate checks if the provided input is valid for this tool.
	Validate(input map[string]interface{}) error

	// Name returns the tool's name.
	Name() string

	// Description returns the natural-language description consumed by the
	// planner and executor prompts.
	Description() string
}

// TaskExecutor drives the bounded per-task tool sub-loop. It is the only
// component that invokes tools.
type TaskExecutor interface {
	// Execute runs the sub-loop for one task. It returns the records
	// produced during this task's execution (already appended nowhere; the
	// orchestrator owns the session log) plus any captured error for
	// diagnostics. A non-nil error never aborts the session.
	Execute(ctx context.Context, task Task, log *SessionLog) ([]InvocationRecord, error)
}
