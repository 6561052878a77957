package errs

import "strings"

// Issue is a single field-level validation problem.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError carries a human message and the issues behind it.
// errors.Is(err, ErrValidation) reports true for it.
type ValidationError struct {
	Message string
	Issues  []Issue
}

// Validation builds a ValidationError with optional issues.
func Validation(msg string, issues ...Issue) *ValidationError {
	return &ValidationError{Message: msg, Issues: issues}
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, is.Path+": "+is.Message)
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// Is makes ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Issues accumulates validation problems.
type Issues []Issue

// Add records an issue for path.
func (is *Issues) Add(path, msg string) { *is = append(*is, Issue{Path: path, Message: msg}) }

// Check records msg for path when ok is false.
func (is *Issues) Check(ok bool, path, msg string) {
	if !ok {
		is.Add(path, msg)
	}
}

// Err returns a ValidationError when any issue was recorded, nil otherwise.
func (is Issues) Err(msg string) error {
	if len(is) == 0 {
		return nil
	}
	return Validation(msg, is...)
}
