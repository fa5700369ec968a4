package questscale

import "fmt"

// Error codes for specific failure types
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeToolNotFound  = "TOOL_NOT_FOUND"
	ErrCodeToolExecution = "TOOL_EXECUTION_ERROR"
	ErrCodeQuotaExceeded = "QUOTA_EXCEEDED"
	ErrCodePlanning      = "PLANNING_ERROR"
	ErrCodeDecision      = "ACTION_DECISION_ERROR"
	ErrCodeTaskCheck     = "TASK_VALIDATION_ERROR"
	ErrCodeSynthesis     = "SYNTHESIS_ERROR"
	ErrCodeGateway       = "GATEWAY_ERROR"
	ErrCodeConfiguration = "CONFIGURATION_ERROR"
	ErrCodeCancelled     = "EXECUTION_CANCELLED"
	ErrCodeInternal      = "INTERNAL_ERROR"
)

// AgentError is a custom error type for questscale specific errors.
type AgentError struct {
	Code    string // A machine-readable error code (e.g., ErrCodeToolNotFound)
	Message string // A human-readable message
	Stage   string // The stage where the error occurred (e.g., "planning", "executing")
	Cause   error  // The underlying error, if any
}

// Error implements the error interface.
func (e *AgentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Stage, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Stage, e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error, allowing for error chaining.
func (e *AgentError) Unwrap() error {
	return e.Cause
}

// NewError creates a new AgentError.
func NewError(code, stage, message string, cause error) *AgentError {
	return &AgentError{
		Code:    code,
		Message: message,
		Stage:   stage,
		Cause:   cause,
	}
}

// Specific error constructors

func NewValidationError(stage, message string, cause error) *AgentError {
	return NewError(ErrCodeValidation, stage, message, cause)
}

func NewToolNotFoundError(stage, toolName string) *AgentError {
	return NewError(ErrCodeToolNotFound, stage, fmt.Sprintf("tool '%s' not found", toolName), nil)
}

func NewToolExecutionError(stage, toolName string, cause error) *AgentError {
	return NewError(ErrCodeToolExecution, stage, fmt.Sprintf("execution failed for tool '%s'", toolName), cause)
}

func NewQuotaExceededError(toolName string, used, limit int) *AgentError {
	msg := fmt.Sprintf("session quota for tool '%s' exhausted (%d/%d)", toolName, used, limit)
	return NewError(ErrCodeQuotaExceeded, "executing", msg, nil)
}

func NewPlanningError(cause error) *AgentError {
	return NewError(ErrCodePlanning, "planning", "failed to generate task plan", cause)
}

func NewDecisionError(cause error) *AgentError {
	return NewError(ErrCodeDecision, "executing", "failed to decide next tool action", cause)
}

func NewTaskCheckError(cause error) *AgentError {
	return NewError(ErrCodeTaskCheck, "validating", "failed to validate task completion", cause)
}

func NewSynthesisError(cause error) *AgentError {
	return NewError(ErrCodeSynthesis, "answering", "failed to synthesize final answer", cause)
}

func NewGatewayError(stage, message string, cause error) *AgentError {
	return NewError(ErrCodeGateway, stage, message, cause)
}

func NewConfigurationError(message string, cause error) *AgentError {
	return NewError(ErrCodeConfiguration, "initialization", message, cause)
}

func NewCancelledError(stage string, cause error) *AgentError {
	msg := "execution cancelled"
	if cause != nil && cause.Error() != "" && cause.Error() != "context canceled" {
		msg = fmt.Sprintf("execution cancelled: %v", cause)
	}
	return NewError(ErrCodeCancelled, stage, msg, cause)
}

func NewInternalError(stage, message string, cause error) *AgentError {
	return NewError(ErrCodeInternal, stage, message, cause)
}
