package gateway

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/ZanzyTHEbar/questscale"
)

// extractJSON digs the single JSON object out of raw model output. Models
// wrap structured replies in markdown fences or surrounding prose often
// enough that decoding the raw text directly is not reliable.
func extractJSON(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", fmt.Errorf("empty model output")
	}

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	if gjson.Valid(text) && strings.HasPrefix(text, "{") {
		return text, nil
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON object in model output")
	}
	candidate := text[start : end+1]
	if !gjson.Valid(candidate) {
		return "", fmt.Errorf("malformed JSON in model output")
	}
	return candidate, nil
}

// coerceTaskList decodes a planning reply. An empty tasks array is valid.
func coerceTaskList(raw string) (questscale.TaskList, error) {
	doc, err := extractJSON(raw)
	if err != nil {
		return questscale.TaskList{}, err
	}

	tasks := gjson.Get(doc, "tasks")
	if !tasks.Exists() || !tasks.IsArray() {
		return questscale.TaskList{}, fmt.Errorf("planning output missing 'tasks' array")
	}

	var list questscale.TaskList
	if err := json.Unmarshal([]byte(doc), &list); err != nil {
		return questscale.TaskList{}, fmt.Errorf("planning output does not decode: %w", err)
	}
	for _, task := range list.Tasks {
		if strings.TrimSpace(task.Description) == "" {
			return questscale.TaskList{}, fmt.Errorf("planning output contains a task without a description")
		}
	}
	return list, nil
}

// coerceDecision decodes an action reply into at most one tool call. A null
// or absent tool field means the model elected not to act.
func coerceDecision(raw string) (*questscale.ToolCall, error) {
	doc, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	tool := gjson.Get(doc, "tool")
	if !tool.Exists() || tool.Type == gjson.Null {
		return nil, nil
	}
	if tool.IsArray() || tool.IsObject() {
		return nil, fmt.Errorf("action output requested more than one tool call")
	}
	if tool.Type != gjson.String || strings.TrimSpace(tool.String()) == "" {
		return nil, fmt.Errorf("action output has a non-string tool name")
	}

	call := &questscale.ToolCall{
		Name: tool.String(),
		Args: map[string]interface{}{},
	}

	args := gjson.Get(doc, "args")
	if args.Exists() && args.Type != gjson.Null {
		if !args.IsObject() {
			return nil, fmt.Errorf("action output has non-object args")
		}
		if err := json.Unmarshal([]byte(args.Raw), &call.Args); err != nil {
			return nil, fmt.Errorf("action output args do not decode: %w", err)
		}
	}
	return call, nil
}

// coerceIsDone decodes a validation reply.
func coerceIsDone(raw string) (questscale.IsDone, error) {
	doc, err := extractJSON(raw)
	if err != nil {
		return questscale.IsDone{}, err
	}

	done := gjson.Get(doc, "done")
	if done.Type != gjson.True && done.Type != gjson.False {
		return questscale.IsDone{}, fmt.Errorf("validation output missing boolean 'done'")
	}
	return questscale.IsDone{Done: done.Bool()}, nil
}

// coerceAnswer decodes a synthesis reply.
func coerceAnswer(raw string) (questscale.Answer, error) {
	doc, err := extractJSON(raw)
	if err != nil {
		return questscale.Answer{}, err
	}

	answer := gjson.Get(doc, "answer")
	if !answer.Exists() || answer.Type != gjson.String {
		return questscale.Answer{}, fmt.Errorf("synthesis output missing string 'answer'")
	}
	return questscale.Answer{Answer: answer.String()}, nil
}
