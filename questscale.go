// Package questscale provides the core runtime for a task-oriented research
// agent: a query is planned into discrete tasks, each task is executed by
// selecting and invoking tools, completion is validated, and a final answer
// is synthesized strictly from the collected tool output.
package questscale

import (
	"context"

	"github.com/ZanzyTHEbar/questscale/internal/eventbus"
	"go.uber.org/zap"
)

// Agent is the main entry point into the questscale runtime. It processes
// one query to completion at a time.
type Agent struct {
	// Core components
	gateway  Gateway
	registry *ToolRegistry
	executor TaskExecutor
	eventBus eventbus.EventBus
	logger   *zap.Logger

	// Tools staged before registry construction
	pendingTools []Tool

	// Configuration
	config Config
}

// Option is a function that configures an Agent instance.
type Option func(*Agent)

// WithConfig sets the configuration for the agent.
func WithConfig(config Config) Option {
	return func(a *Agent) {
		a.config = config
	}
}

// WithGateway sets the reasoning gateway component.
func WithGateway(gateway Gateway) Option {
	return func(a *Agent) {
		a.gateway = gateway
	}
}

// WithExecutor sets the task executor component.
func WithExecutor(executor TaskExecutor) Option {
	return func(a *Agent) {
		a.executor = executor
	}
}

// WithRegistry sets a pre-built tool registry.
func WithRegistry(registry *ToolRegistry) Option {
	return func(a *Agent) {
		a.registry = registry
	}
}

// WithTools stages tools for registry construction, in order.
func WithTools(tools ...Tool) Option {
	return func(a *Agent) {
		a.pendingTools = append(a.pendingTools, tools...)
	}
}

// WithLogger sets the structured logger. Logging never drives control
// decisions; the default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

// New creates a new Agent instance with the provided options.
func New(options ...Option) (*Agent, error) {
	a := &Agent{
		config: DefaultConfig(),
		logger: zap.NewNop(),
	}

	for _, option := range options {
		option(a)
	}

	if a.gateway == nil {
		return nil, NewConfigurationError("a reasoning gateway is required", nil)
	}
	if a.registry == nil {
		registry, err := NewToolRegistry(a.pendingTools, a.logger)
		if err != nil {
			return nil, err
		}
		a.registry = registry
	}
	if a.executor == nil {
		return nil, NewConfigurationError("a task executor is required", nil)
	}

	if a.config.EnableEventBus && a.eventBus == nil {
		a.eventBus = eventbus.NewChannelEventBus(
			eventbus.WithBufferSize(a.config.EventBusBufferSize),
			eventbus.WithWorkerCount(a.config.EventBusWorkerCount),
		)
	}

	return a, nil
}

// Registry exposes the agent's tool registry.
func (a *Agent) Registry() *ToolRegistry {
	return a.registry
}

// EventBus exposes the agent's event bus, if one is configured.
func (a *Agent) EventBus() eventbus.EventBus {
	return a.eventBus
}

// Run processes one query end-to-end through the state machine and returns
// the synthesized answer. It always terminates; every component failure
// short of context cancellation degrades into a fallback rather than an
// aborted session, so the returned string is never empty on a nil error.
func (a *Agent) Run(ctx context.Context, query string) (string, error) {
	stateMachine := a.createStateMachine()
	runContext := NewRunContext(query)

	a.logger.Info("run started",
		zap.String("session_id", runContext.SessionID),
		zap.String("query", query))

	answer, err := stateMachine.Execute(ctx, runContext)

	a.logger.Info("run finished",
		zap.String("session_id", runContext.SessionID),
		zap.String("state", string(runContext.CurrentState)),
		zap.Duration("duration", runContext.GetTotalDuration()),
		zap.Error(err))

	return answer, err
}

// Close releases runtime resources (the event bus workers).
func (a *Agent) Close() error {
	if a.eventBus != nil {
		return a.eventBus.Close()
	}
	return nil
}

// createStateMachine builds a state machine wired to this agent's components.
func (a *Agent) createStateMachine() *StateMachine {
	var bus eventbus.EventBus
	if a.config.EnableEventBus {
		bus = a.eventBus
	}

	components := AgentComponents{
		Gateway:  a.gateway,
		Registry: a.registry,
		Executor: a.executor,
		Config:   a.config,
		Logger:   a.logger,
	}

	return CreateRunStateMachine(components, bus)
}
