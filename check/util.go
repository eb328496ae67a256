package check

import (
	"bytes"
	"os/exec"
	"syscall"

	"github.com/pkg/errors"
)

const noCommandRC = 127

func getCommandErrorRCDefault(err error, rcError int) int {
	if err == nil {
		return 0
	}

	var exitError *exec.ExitError
	if errors.As(err, &exitError) {
		if status, ok := exitError.Sys().(syscall.WaitStatus); ok {
			return status.ExitStatus()
		}
	}

	return rcError
}

// runCommandCombined runs args and returns stdout and stderr interleaved as
// the command wrote them. started is false if the command could not be run
// at all, in which case err says why.
func runCommandCombined(args ...string) (out []byte, rc int, started bool, err error) {
	cmd := exec.Command(args[0], args[1:]...) //nolint:gosec
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err = cmd.Run()

	var exitError *exec.ExitError
	started = err == nil || errors.As(err, &exitError)

	return buf.Bytes(), getCommandErrorRCDefault(err, noCommandRC), started, err
}
