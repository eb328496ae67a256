package check

import (
	"strings"

	"github.com/rs/zerolog"
	"machinerun.io/blkdiag"
)

// btrfs check prints this when the filesystem is consistent. The exit code is
// not used, only the output.
const btrfsNoError = "no error found"

const defaultChecker = "btrfs"

type fsChecker struct {
	bin string
	log zerolog.Logger
}

func newFSChecker(bin string, log zerolog.Logger) fsChecker {
	if bin == "" {
		bin = defaultChecker
	}

	return fsChecker{bin: bin, log: log}
}

func (fc fsChecker) checkDevice(d blkdiag.Device, force bool) Result {
	args := []string{fc.bin, "check"}
	if force {
		args = append(args, "--force")
	}

	args = append(args, d.Path())

	fc.log.Debug().Str("device", d.Name).Str("serial", d.Serial).
		Strs("cmd", args).Msg("running filesystem check")

	out, rc, started, err := runCommandCombined(args...)
	if !started {
		return Fail(err, "failed to run %s check on %s", fc.bin, d.Name)
	}

	if strings.Contains(string(out), btrfsNoError) {
		fc.log.Debug().Str("device", d.Name).Int("rc", rc).Msg("no errors found")
		return Success{}
	}

	fc.log.Debug().Str("device", d.Name).Int("rc", rc).Msg("errors found")

	return Fail(err, "errors found on %s\n%s", d.Name, out)
}

// UnmountCheck unmounts the device then runs btrfs check on it.
type UnmountCheck struct {
	fs      fsChecker
	mounter blkdiag.Mounter
}

// Type returns TypeBtrfs.
func (c *UnmountCheck) Type() string {
	return TypeBtrfs
}

// Unmounts returns true, the device is left unmounted.
func (c *UnmountCheck) Unmounts() bool {
	return true
}

// Run unmounts d and checks its filesystem. The filesystem check is not run
// if unmounting fails.
func (c *UnmountCheck) Run(d blkdiag.Device) Result {
	if err := c.mounter.Unmount(d); err != nil {
		return Fail(err, "failed to unmount %s", d.Name)
	}

	return c.fs.checkDevice(d, false)
}

// ReadOnlyForceCheck runs btrfs check with --force, which allows checking a
// mounted filesystem read-only.
type ReadOnlyForceCheck struct {
	fs fsChecker
}

// Type returns TypeBtrfsRO.
func (c *ReadOnlyForceCheck) Type() string {
	return TypeBtrfsRO
}

// Unmounts returns false.
func (c *ReadOnlyForceCheck) Unmounts() bool {
	return false
}

// Run checks the filesystem of d without unmounting it.
func (c *ReadOnlyForceCheck) Run(d blkdiag.Device) Result {
	return c.fs.checkDevice(d, true)
}
