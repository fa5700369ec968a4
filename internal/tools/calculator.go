package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/Knetic/govaluate"
)

const calculatorCharset = "0123456789+-*/(). "

// calculate evaluates a basic arithmetic expression. The charset check runs
// before any evaluation so the evaluator only ever sees numbers, the four
// operators, and parentheses.
func calculate(_ context.Context, input map[string]interface{}) (map[string]interface{}, error) {
	raw, ok := input["expression"].(string)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("'expression' must be a non-empty string")
	}

	for _, r := range raw {
		if !strings.ContainsRune(calculatorCharset, r) {
			return nil, fmt.Errorf("invalid characters in expression: only numbers and basic operators (+, -, *, /, parentheses) are allowed")
		}
	}

	expr, err := govaluate.NewEvaluableExpression(raw)
	if err != nil {
		return nil, fmt.Errorf("error calculating '%s': %v", raw, err)
	}
	value, err := expr.Evaluate(nil)
	if err != nil {
		return nil, fmt.Errorf("error calculating '%s': %v", raw, err)
	}

	return map[string]interface{}{
		"result": fmt.Sprintf("%s = %v", raw, value),
	}, nil
}
