package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"machinerun.io/blkdiag"
	"machinerun.io/blkdiag/runner"
)

// Progress is a runner.Observer that prints a line as each check runs.
type Progress struct {
	w io.Writer
}

// NewProgress returns a Progress writing to w.
func NewProgress(w io.Writer) *Progress {
	return &Progress{w: w}
}

// Skipped prints that the device was not checked.
func (p *Progress) Skipped(d blkdiag.Device) {
	fmt.Fprintf(p.w, "Skipping %s\n", d)
}

// Started prints the start of a progress line, Finished completes it.
func (p *Progress) Started(d blkdiag.Device, checkType string) {
	fmt.Fprintf(p.w, "Checking %s for %s... ", checkType, d)
}

// Finished completes the progress line, failures are followed by their
// result.
func (p *Progress) Finished(e runner.Entry) {
	if e.Result.IsSuccess() {
		fmt.Fprintln(p.w, color.GreenString("Passed"))
		return
	}

	fmt.Fprintln(p.w, color.RedString("Failed"))
	fmt.Fprintf(p.w, "%s %s: %s\n", e.Device, e.CheckType, e.Result.String())
}
