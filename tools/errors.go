package tools

import (
	"encoding/json"
	"fmt"
)

// Error codes carried by ToolError.
const (
	CodeValidation  = "ERR_VALIDATION"
	CodeComputation = "ERR_COMPUTATION"
	CodeUnknownTool = "ERR_UNKNOWN_TOOL"
)

// ToolError is a machine-readable error body for surfacing back to the model as JSON.
type ToolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// Error returns a compact, single-line JSON string to keep tool_result payloads small.
func (e ToolError) Error() string {
	b, _ := json.Marshal(e)
	return string(b)
}

func validationError(field, format string, args ...any) ToolError {
	return ToolError{Code: CodeValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

func computationError(format string, args ...any) ToolError {
	return ToolError{Code: CodeComputation, Message: fmt.Sprintf(format, args...)}
}
