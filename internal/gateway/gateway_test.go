package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/ZanzyTHEbar/questscale"
)

// chatServer fakes an OpenAI-compatible chat completions endpoint that
// replies with a fixed message body.
func chatServer(t *testing.T, reply string, capture *map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header: %q", got)
		}
		if capture != nil {
			if err := json.NewDecoder(r.Body).Decode(capture); err != nil {
				t.Errorf("failed to decode request body: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]interface{}{"content": reply}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func newTestGateway(t *testing.T, baseURL string) *Gateway {
	t.Helper()
	gw, err := New(context.Background(), questscale.GatewayConfig{
		Provider: "openai",
		Model:    "gpt-test",
		BaseURL:  baseURL,
		APIKey:   "test-key",
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create gateway: %v", err)
	}
	return gw
}

func TestGatewayPlan(t *testing.T) {
	var captured map[string]interface{}
	server := chatServer(t, `{"tasks": [{"id": 1, "description": "search for the figure"}]}`, &captured)
	defer server.Close()

	gw := newTestGateway(t, server.URL)
	tools := []questscale.ToolDescriptor{{Name: "search_web", Description: "searches the web"}}

	list, err := gw.Plan(context.Background(), "what is the figure?", tools)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list.Tasks) != 1 || list.Tasks[0].Description != "search for the figure" {
		t.Errorf("unexpected plan: %+v", list)
	}

	if captured["model"] != "gpt-test" {
		t.Errorf("unexpected model in request: %v", captured["model"])
	}
	messages, ok := captured["messages"].([]interface{})
	if !ok || len(messages) != 2 {
		t.Fatalf("expected system+user messages, got %v", captured["messages"])
	}
}

func TestGatewayPlanRejectsMalformedReply(t *testing.T) {
	server := chatServer(t, "I think we should search first, then calculate.", nil)
	defer server.Close()

	gw := newTestGateway(t, server.URL)
	if _, err := gw.Plan(context.Background(), "q", nil); err == nil {
		t.Fatal("expected error for unparseable plan reply")
	}
}

func TestGatewayDecideAction(t *testing.T) {
	server := chatServer(t, "```json\n{\"tool\": \"calculator\", \"args\": {\"expression\": \"2*3\"}}\n```", nil)
	defer server.Close()

	gw := newTestGateway(t, server.URL)
	call, err := gw.DecideAction(context.Background(), "compute", "No previous context.", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if call == nil || call.Name != "calculator" {
		t.Fatalf("unexpected call: %+v", call)
	}
	if call.Args["expression"] != "2*3" {
		t.Errorf("unexpected args: %v", call.Args)
	}
}

func TestGatewayValidate(t *testing.T) {
	server := chatServer(t, `{"done": false}`, nil)
	defer server.Close()

	gw := newTestGateway(t, server.URL)
	verdict, err := gw.Validate(context.Background(), "task", "results")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.Done {
		t.Error("expected not-done verdict")
	}
}

func TestGatewaySynthesize(t *testing.T) {
	server := chatServer(t, `{"answer": "grounded answer"}`, nil)
	defer server.Close()

	gw := newTestGateway(t, server.URL)
	answer, err := gw.Synthesize(context.Background(), "query", "No data was collected.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer.Answer != "grounded answer" {
		t.Errorf("unexpected answer: %q", answer.Answer)
	}
}

func TestGatewaySurfacesHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	gw := newTestGateway(t, server.URL)
	if _, err := gw.Plan(context.Background(), "q", nil); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	_, err := New(context.Background(), questscale.GatewayConfig{Provider: "cohere"}, zap.NewNop())
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
