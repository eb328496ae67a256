package check

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrUnknownCheck is returned when a check type is not registered.
	ErrUnknownCheck = errors.New("unknown check type")

	// ErrNoMountPoint is the cause of a writable check failure on a device
	// that has nothing mounted.
	ErrNoMountPoint = errors.New("no mount point")

	// ErrContentMismatch is the cause of a read step failure when the probe
	// file does not contain what was written.
	ErrContentMismatch = errors.New("probe file content mismatch")
)

// ProbeStep is a step of the writable probe.
type ProbeStep string

// The probe steps, in execution order.
const (
	StepCreate ProbeStep = "create"
	StepWrite  ProbeStep = "write"
	StepRead   ProbeStep = "read"
	StepRemove ProbeStep = "remove"
)

// ProbeError is returned by a failing step of the writable probe.
type ProbeError struct {
	Step ProbeStep
	Path string
	Err  error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Step, e.Path, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}
