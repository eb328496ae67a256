package runner

import (
	"time"

	"machinerun.io/blkdiag"
	"machinerun.io/blkdiag/check"
)

// Process exit codes.
const (
	// ExitOK - no check ran or every check passed.
	ExitOK = 0

	// ExitFailed - at least one check failed.
	ExitFailed = 1

	// ExitConfig - the run could not start, bad flags or check names.
	ExitConfig = 2
)

// Entry is the result of one check on one device.
type Entry struct {
	Device    blkdiag.Device
	CheckType string
	Result    check.Result
	Duration  time.Duration
}

// Report is the outcome of a run. Entries are appended in execution order.
type Report struct {
	// ID identifies the run in logs and metrics.
	ID string

	Started time.Time

	// Checks are the check types in the order they ran on each device.
	Checks []string

	Entries []Entry

	// Skipped are the devices that did not match the filter. They are not
	// part of the pass/fail outcome.
	Skipped blkdiag.DeviceSet

	// Stopped is set when the run was cut short by a failure with
	// ExitOnFail.
	Stopped bool
}

// Ran returns true if at least one check ran.
func (r *Report) Ran() bool {
	return len(r.Entries) != 0
}

// AllPassed returns true if every check that ran passed. It is true for a
// report where nothing ran, use Ran to tell the two apart.
func (r *Report) AllPassed() bool {
	results := make([]check.Result, len(r.Entries))
	for i, e := range r.Entries {
		results[i] = e.Result
	}

	return check.AllPassed(results...)
}

// Failures returns the entries whose result is a failure.
func (r *Report) Failures() []Entry {
	failed := []Entry{}

	for _, e := range r.Entries {
		if !e.Result.IsSuccess() {
			failed = append(failed, e)
		}
	}

	return failed
}

// ExitCode returns the process exit code for the report.
func (r *Report) ExitCode() int {
	if !r.Ran() || r.AllPassed() {
		return ExitOK
	}

	return ExitFailed
}

func (r *Report) add(e Entry) {
	r.Entries = append(r.Entries, e)
}
