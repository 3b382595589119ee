package review

import "fmt"

// InvalidCandidateLevelError is returned when candidate_level is not junior,
// middle or senior.
type InvalidCandidateLevelError struct {
	Level string
}

// Error implements the error interface.
func (e InvalidCandidateLevelError) Error() string {
	return fmt.Sprintf("invalid candidate level %q: must be 'junior', 'middle', or 'senior'", e.Level)
}

// AnalysisError is returned when the model call fails or its reply is not a
// JSON object.
type AnalysisError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e AnalysisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("analyze code: %s: %v", e.Reason, e.Err)
	}
	return "analyze code: " + e.Reason
}

// Unwrap returns the underlying cause, if any.
func (e AnalysisError) Unwrap() error { return e.Err }
