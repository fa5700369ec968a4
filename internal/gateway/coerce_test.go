package gateway

import (
	"testing"
)

func TestCoerceTaskList(t *testing.T) {
	list, err := coerceTaskList(`{"tasks": [{"id": 1, "description": "look it up"}]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list.Tasks) != 1 || list.Tasks[0].Description != "look it up" {
		t.Errorf("unexpected list: %+v", list)
	}
}

func TestCoerceTaskListFromFencedOutput(t *testing.T) {
	raw := "```json\n{\"tasks\": [{\"id\": 1, \"description\": \"a\"}, {\"id\": 2, \"description\": \"b\"}]}\n```"
	list, err := coerceTaskList(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list.Tasks) != 2 {
		t.Errorf("expected 2 tasks, got %d", len(list.Tasks))
	}
}

func TestCoerceTaskListFromProseWrappedOutput(t *testing.T) {
	raw := `Here is the plan you asked for: {"tasks": []} hope that helps!`
	list, err := coerceTaskList(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list.Tasks) != 0 {
		t.Errorf("expected empty plan, got %d tasks", len(list.Tasks))
	}
}

func TestCoerceTaskListRejectsMissingTasks(t *testing.T) {
	if _, err := coerceTaskList(`{"plan": []}`); err == nil {
		t.Fatal("expected error for missing tasks array")
	}
}

func TestCoerceTaskListRejectsBlankDescription(t *testing.T) {
	if _, err := coerceTaskList(`{"tasks": [{"id": 1, "description": "  "}]}`); err == nil {
		t.Fatal("expected error for blank description")
	}
}

func TestCoerceTaskListRejectsNonJSON(t *testing.T) {
	if _, err := coerceTaskList("I could not produce a plan, sorry."); err == nil {
		t.Fatal("expected error for prose-only output")
	}
}

func TestCoerceDecision(t *testing.T) {
	call, err := coerceDecision(`{"tool": "search_web", "args": {"query": "golang", "max_results": 3}}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if call == nil || call.Name != "search_web" {
		t.Fatalf("unexpected call: %+v", call)
	}
	if call.Args["query"] != "golang" {
		t.Errorf("unexpected args: %v", call.Args)
	}
}

func TestCoerceDecisionNullToolMeansNoAction(t *testing.T) {
	call, err := coerceDecision(`{"tool": null}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if call != nil {
		t.Errorf("expected nil call, got %+v", call)
	}
}

func TestCoerceDecisionAbsentToolMeansNoAction(t *testing.T) {
	call, err := coerceDecision(`{}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if call != nil {
		t.Errorf("expected nil call, got %+v", call)
	}
}

func TestCoerceDecisionRejectsMultipleCalls(t *testing.T) {
	if _, err := coerceDecision(`{"tool": ["search_web", "calculator"]}`); err == nil {
		t.Fatal("expected error for multiple tool calls")
	}
}

func TestCoerceDecisionRejectsNonObjectArgs(t *testing.T) {
	if _, err := coerceDecision(`{"tool": "calculator", "args": "1+1"}`); err == nil {
		t.Fatal("expected error for string args")
	}
}

func TestCoerceDecisionMissingArgsDefaultsEmpty(t *testing.T) {
	call, err := coerceDecision(`{"tool": "current_date"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if call == nil || call.Args == nil || len(call.Args) != 0 {
		t.Errorf("expected empty args map, got %+v", call)
	}
}

func TestCoerceIsDone(t *testing.T) {
	verdict, err := coerceIsDone(`{"done": true}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !verdict.Done {
		t.Error("expected done verdict")
	}

	if _, err := coerceIsDone(`{"done": "yes"}`); err == nil {
		t.Fatal("expected error for non-boolean done")
	}
	if _, err := coerceIsDone(`{"finished": true}`); err == nil {
		t.Fatal("expected error for missing done field")
	}
}

func TestCoerceAnswer(t *testing.T) {
	answer, err := coerceAnswer(`{"answer": "the price rose 4%"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer.Answer != "the price rose 4%" {
		t.Errorf("unexpected answer: %q", answer.Answer)
	}

	if _, err := coerceAnswer(`{"answer": 42}`); err == nil {
		t.Fatal("expected error for non-string answer")
	}
	if _, err := coerceAnswer(``); err == nil {
		t.Fatal("expected error for empty output")
	}
}
