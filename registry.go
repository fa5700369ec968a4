package questscale

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ToolRegistry holds the fixed, ordered set of tools available to a session.
// The set is immutable after construction; order is significant because it
// is the order tools are presented to the gateway prompts.
type ToolRegistry struct {
	order  []string
	tools  map[string]Tool
	logger *zap.Logger
}

// NewToolRegistry builds a registry from an ordered tool list. Duplicate
// names are a configuration error.
func NewToolRegistry(tools []Tool, logger *zap.Logger) (*ToolRegistry, error) {
	if len(tools) == 0 {
		return nil, NewConfigurationError("at least one tool is required", nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &ToolRegistry{
		order:  make([]string, 0, len(tools)),
		tools:  make(map[string]Tool, len(tools)),
		logger: logger,
	}
	for _, tool := range tools {
		name := tool.Name()
		if _, exists := r.tools[name]; exists {
			return nil, NewConfigurationError(fmt.Sprintf("tool with name '%s' registered twice", name), nil)
		}
		r.order = append(r.order, name)
		r.tools[name] = tool
	}
	return r, nil
}

// Descriptors returns the ordered tool descriptors consumed by the gateway
// prompts.
func (r *ToolRegistry) Descriptors() []ToolDescriptor {
	descriptors := make([]ToolDescriptor, 0, len(r.order))
	for _, name := range r.order {
		tool := r.tools[name]
		descriptors = append(descriptors, ToolDescriptor{
			Name:        name,
			Description: tool.Description(),
			Schema:      tool.Schema(),
		})
	}
	return descriptors
}

// Names returns the registered tool names in registration order.
func (r *ToolRegistry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Get returns a tool by its name, or an error if not found.
func (r *ToolRegistry) Get(name string) (Tool, error) {
	if tool, exists := r.tools[name]; exists {
		return tool, nil
	}
	return nil, NewToolNotFoundError("executing", name)
}

// Invoke runs the named tool with the given input. It never lets a failure
// escape as a fault: unknown tools, invalid input, tool errors, and panics
// all come back as an {"error": message} payload so downstream components
// can treat every call as "succeeded with output" or "failed with message".
func (r *ToolRegistry) Invoke(ctx context.Context, name string, input map[string]interface{}) (output map[string]interface{}) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("tool panicked",
				zap.String("tool", name),
				zap.Any("panic", rec))
			output = errorPayload(fmt.Sprintf("tool '%s' failed: %v", name, rec))
		}
	}()

	tool, exists := r.tools[name]
	if !exists {
		return errorPayload(fmt.Sprintf("tool '%s' not found", name))
	}
	if input == nil {
		input = map[string]interface{}{}
	}
	if err := tool.Validate(input); err != nil {
		return errorPayload(fmt.Sprintf("invalid input for tool '%s': %v", name, err))
	}

	result, err := tool.Execute(ctx, input)
	if err != nil {
		r.logger.Warn("tool execution failed",
			zap.String("tool", name),
			zap.Error(err))
		return errorPayload(err.Error())
	}
	if result == nil {
		result = map[string]interface{}{}
	}
	return result
}

func errorPayload(message string) map[string]interface{} {
	return map[string]interface{}{"error": message}
}
