package types

import "fmt"

// EngineError provides structured error information for generation issues
type EngineError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewEngineError creates a new structured engine error
func NewEngineError(code string, message string, details map[string]interface{}) *EngineError {
	return &EngineError{
		Code:    code,
		Message: message,
		Details: details,
	}
}
