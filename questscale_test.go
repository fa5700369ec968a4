package questscale

import (
	"context"
	"testing"
)

func TestNewRequiresGateway(t *testing.T) {
	_, err := New(
		WithExecutor(&stubExecutor{}),
		WithTools(&noopTool{}),
	)
	if err == nil {
		t.Fatal("expected error when gateway is missing")
	}
}

func TestNewRequiresExecutor(t *testing.T) {
	_, err := New(
		WithGateway(&stubGateway{}),
		WithTools(&noopTool{}),
	)
	if err == nil {
		t.Fatal("expected error when executor is missing")
	}
}

func TestNewBuildsRegistryFromTools(t *testing.T) {
	agent, err := New(
		WithGateway(&stubGateway{plan: TaskList{}, answer: "ok"}),
		WithExecutor(&stubExecutor{}),
		WithTools(&noopTool{}),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer agent.Close()

	if agent.Registry() == nil {
		t.Fatal("expected registry built from staged tools")
	}
	if names := agent.Registry().Names(); len(names) != 1 || names[0] != "noop" {
		t.Errorf("unexpected registry contents: %v", names)
	}
}

func TestAgentRunEndToEnd(t *testing.T) {
	agent, err := New(
		WithGateway(&stubGateway{plan: TaskList{}, answer: "direct answer"}),
		WithExecutor(&stubExecutor{}),
		WithTools(&noopTool{}),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer agent.Close()

	answer, err := agent.Run(context.Background(), "a conversational query")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "direct answer" {
		t.Errorf("unexpected answer: %q", answer)
	}
}
