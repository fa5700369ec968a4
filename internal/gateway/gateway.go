// Package gateway implements the questscale.Gateway seam over language-model
// backends. Every call is a single attempt with no caching; a reply that
// cannot be coerced into its structured envelope is an error, never a
// partially filled object.
package gateway

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/ZanzyTHEbar/questscale"
	"github.com/ZanzyTHEbar/questscale/internal/prompt"
)

// completer is the provider seam: one system+user exchange in, raw text out.
type completer interface {
	complete(ctx context.Context, system, user string, temperature float64) (string, error)
}

// Gateway adapts a completion backend to the four structured operations.
type Gateway struct {
	backend completer
	logger  *zap.Logger
}

// New builds a gateway for the configured provider.
func New(ctx context.Context, cfg questscale.GatewayConfig, logger *zap.Logger) (*Gateway, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var backend completer
	switch cfg.Provider {
	case "openai", "":
		backend = newOpenAIBackend(cfg)
	case "gemini":
		gemini, err := newGeminiBackend(ctx, cfg)
		if err != nil {
			return nil, err
		}
		backend = gemini
	default:
		return nil, questscale.NewConfigurationError(
			fmt.Sprintf("unknown gateway provider '%s'", cfg.Provider), nil)
	}

	return &Gateway{backend: backend, logger: logger}, nil
}

// Plan implements questscale.Gateway.
func (g *Gateway) Plan(ctx context.Context, query string, tools []questscale.ToolDescriptor) (questscale.TaskList, error) {
	raw, err := g.backend.complete(ctx, prompt.PlanningSystem(tools), prompt.PlanningUser(query), 0.2)
	if err != nil {
		return questscale.TaskList{}, questscale.NewGatewayError("planning", "completion failed", err)
	}

	list, err := coerceTaskList(raw)
	if err != nil {
		g.logger.Warn("plan reply rejected", zap.Error(err), zap.String("raw", truncateRaw(raw)))
		return questscale.TaskList{}, questscale.NewGatewayError("planning", "reply does not match task list envelope", err)
	}
	return list, nil
}

// DecideAction implements questscale.Gateway.
func (g *Gateway) DecideAction(ctx context.Context, taskDescription string, execContext string, tools []questscale.ToolDescriptor) (*questscale.ToolCall, error) {
	raw, err := g.backend.complete(ctx, prompt.ActionSystem(tools), prompt.ActionUser(taskDescription, execContext), 0)
	if err != nil {
		return nil, questscale.NewGatewayError("executing", "completion failed", err)
	}

	call, err := coerceDecision(raw)
	if err != nil {
		g.logger.Warn("action reply rejected", zap.Error(err), zap.String("raw", truncateRaw(raw)))
		return nil, questscale.NewGatewayError("executing", "reply does not match tool call envelope", err)
	}
	return call, nil
}

// Validate implements questscale.Gateway.
func (g *Gateway) Validate(ctx context.Context, taskDescription string, results string) (questscale.IsDone, error) {
	raw, err := g.backend.complete(ctx, prompt.ValidationSystem(), prompt.ValidationUser(taskDescription, results), 0)
	if err != nil {
		return questscale.IsDone{}, questscale.NewGatewayError("validating", "completion failed", err)
	}

	verdict, err := coerceIsDone(raw)
	if err != nil {
		g.logger.Warn("validation reply rejected", zap.Error(err), zap.String("raw", truncateRaw(raw)))
		return questscale.IsDone{}, questscale.NewGatewayError("validating", "reply does not match verdict envelope", err)
	}
	return verdict, nil
}

// Synthesize implements questscale.Gateway.
func (g *Gateway) Synthesize(ctx context.Context, query string, results string) (questscale.Answer, error) {
	raw, err := g.backend.complete(ctx, prompt.AnswerSystem(), prompt.AnswerUser(query, results), 0.3)
	if err != nil {
		return questscale.Answer{}, questscale.NewGatewayError("answering", "completion failed", err)
	}

	answer, err := coerceAnswer(raw)
	if err != nil {
		g.logger.Warn("synthesis reply rejected", zap.Error(err), zap.String("raw", truncateRaw(raw)))
		return questscale.Answer{}, questscale.NewGatewayError("answering", "reply does not match answer envelope", err)
	}
	return answer, nil
}

// Close releases backend resources for providers that hold connections.
func (g *Gateway) Close() error {
	if closer, ok := g.backend.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func truncateRaw(s string) string {
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}

var _ questscale.Gateway = (*Gateway)(nil)
