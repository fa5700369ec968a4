package questscale

import (
	"fmt"
	"strings"
)

// Task is a single unit of research work inside one session's plan.
type Task struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
	Done        bool   `json:"done"`
}

// TaskList is the structured envelope the gateway must produce for planning.
// An empty list is a valid result and means no tool-based work is needed.
type TaskList struct {
	Tasks []Task `json:"tasks"`
}

// IsDone is the structured envelope the gateway must produce for validation.
type IsDone struct {
	Done bool `json:"done"`
}

// Answer is the structured envelope the gateway must produce for synthesis.
type Answer struct {
	Answer string `json:"answer"`
}

// ToolDescriptor is the planner/executor-facing description of a registered
// tool: its name, what it does, and the shape of its input.
type ToolDescriptor struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Schema      map[string]interface{} `json:"schema,omitempty"`
}

// ToolCall is a single tool invocation request produced by the gateway's
// action decision. The gateway returns at most one per decision.
type ToolCall struct {
	Name string                 `json:"tool"`
	Args map[string]interface{} `json:"args"`
}

// InvocationRecord captures one tool invocation's outcome. Records are
// rendered as text before entering the session log.
type InvocationRecord struct {
	Tool   string
	Input  map[string]interface{}
	Output map[string]interface{}
}

// Render flattens the record into the session log's text form.
func (r InvocationRecord) Render() string {
	return fmt.Sprintf("Tool: %s\nInput: %v\nOutput: %v", r.Tool, r.Input, r.Output)
}

// SessionLog is the append-only record of every tool invocation outcome
// during one query's processing. It has a single writer (the executing
// transition) and is read within the same flow, so no locking is required.
type SessionLog struct {
	entries []string
}

// NewSessionLog creates an empty session log.
func NewSessionLog() *SessionLog {
	return &SessionLog{}
}

// Append adds a rendered record to the end of the log.
func (l *SessionLog) Append(entry string) {
	l.entries = append(l.entries, entry)
}

// Len returns the number of entries appended so far.
func (l *SessionLog) Len() int {
	return len(l.entries)
}

// Window returns the most recent n entries, in order. The executor builds
// task context from a bounded window; the synthesizer never does.
func (l *SessionLog) Window(n int) []string {
	if n <= 0 || len(l.entries) == 0 {
		return nil
	}
	if len(l.entries) <= n {
		out := make([]string, len(l.entries))
		copy(out, l.entries)
		return out
	}
	out := make([]string, n)
	copy(out, l.entries[len(l.entries)-n:])
	return out
}

// RenderAll joins the entire log for the answer synthesizer. An empty log
// renders as the explicit no-data framing so the synthesizer cannot mistake
// an empty session for missing input.
func (l *SessionLog) RenderAll() string {
	if len(l.entries) == 0 {
		return "No data was collected."
	}
	return strings.Join(l.entries, "\n\n")
}
