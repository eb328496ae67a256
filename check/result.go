package check

import "fmt"

// Result is the outcome of running a Check on a device. It is either a
// Success or a Failure.
type Result interface {
	// IsSuccess returns true for a Success and false for a Failure.
	IsSuccess() bool

	String() string
}

// Success is the Result of a check that passed.
type Success struct{}

// IsSuccess always returns true.
func (Success) IsSuccess() bool {
	return true
}

func (Success) String() string {
	return "SUCCESS"
}

// Failure is the Result of a check that failed.
type Failure struct {
	// Cause is the underlying error, nil when the check itself decided
	// the device is unhealthy.
	Cause error

	// Message describes the failure for humans.
	Message string
}

// Fail returns a Failure with the given cause and message.
func Fail(cause error, format string, args ...interface{}) Failure {
	return Failure{Cause: cause, Message: fmt.Sprintf(format, args...)}
}

// IsSuccess always returns false.
func (Failure) IsSuccess() bool {
	return false
}

func (f Failure) String() string {
	return "FAILURE: " + f.Message
}

// Unwrap returns the cause of the failure.
func (f Failure) Unwrap() error {
	return f.Cause
}

// Error makes a Failure usable as an error, including the cause if any.
func (f Failure) Error() string {
	if f.Cause == nil {
		return f.Message
	}

	return fmt.Sprintf("%s: %s", f.Message, f.Cause)
}

// AllPassed is the logical AND of IsSuccess over results. It returns true for
// an empty list.
func AllPassed(results ...Result) bool {
	for _, r := range results {
		if !r.IsSuccess() {
			return false
		}
	}

	return true
}
