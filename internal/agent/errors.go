package agent

import "fmt"

// APICallError represents a failed call to the LLM collaborator. Agents
// absorb it into the fallback path; it surfaces only through Result fields
// so callers can log the degradation.
type APICallError struct {
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("API call failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("API call failed: %s", e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// InputError represents invalid caller-supplied input, such as a missing
// contact address. Unlike LLM failures this is fatal to the call.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid input in %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid input: %s", e.Message)
}
