package check

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"machinerun.io/blkdiag"
)

type recordingMounter struct {
	calls []string
	err   error
}

func (m *recordingMounter) Unmount(d blkdiag.Device) error {
	m.calls = append(m.calls, d.Name)
	return m.err
}

// fakeChecker writes a shell script standing in for the btrfs binary. The
// script logs its arguments to a file next to it, prints output and exits rc.
func fakeChecker(t *testing.T, output string, rc int) (string, string) {
	t.Helper()

	tmpd := t.TempDir()
	bin := filepath.Join(tmpd, "btrfs")
	argsLog := filepath.Join(tmpd, "args")
	script := "#!/bin/sh\n" +
		"echo \"$@\" >> " + argsLog + "\n" +
		"printf '%s\\n' '" + output + "'\n" +
		"echo 'stderr line' 1>&2\n" +
		"exit " + strconv.Itoa(rc) + "\n"

	if err := os.WriteFile(bin, []byte(script), 0755); err != nil { //nolint:gosec
		t.Fatalf("Failed to write fake checker: %s", err)
	}

	return bin, argsLog
}

func readArgs(t *testing.T, argsLog string) string {
	t.Helper()

	content, err := os.ReadFile(argsLog)
	if err != nil {
		return ""
	}

	return string(content)
}

func TestReadOnlyForceCheckSuccess(t *testing.T) {
	assert := assert.New(t)
	bin, argsLog := fakeChecker(t, "found 1234 bytes used, no error found", 0)

	c := &ReadOnlyForceCheck{fs: newFSChecker(bin, zerolog.Nop())}
	r := c.Run(blkdiag.Device{Name: "sdb"})

	assert.True(r.IsSuccess(), r.String())
	assert.Equal("check --force /dev/sdb\n", readArgs(t, argsLog))
}

func TestFSCheckIgnoresExitCode(t *testing.T) {
	assert := assert.New(t)
	bin, _ := fakeChecker(t, "no error found", 1)

	r := newFSChecker(bin, zerolog.Nop()).checkDevice(blkdiag.Device{Name: "sdb"}, false)
	assert.True(r.IsSuccess(), r.String())
}

func TestFSCheckErrorsFound(t *testing.T) {
	assert := assert.New(t)
	bin, _ := fakeChecker(t, "ERROR: errors found in extent allocation tree", 1)

	r := newFSChecker(bin, zerolog.Nop()).checkDevice(blkdiag.Device{Name: "sdb"}, false)
	assert.False(r.IsSuccess())

	f, ok := r.(Failure)
	assert.True(ok)
	assert.Contains(f.Message, "errors found on sdb\n")
	assert.Contains(f.Message, "extent allocation tree")
	assert.Contains(f.Message, "stderr line")
}

func TestFSCheckCannotRun(t *testing.T) {
	assert := assert.New(t)

	bin := filepath.Join(t.TempDir(), "no-such-btrfs")
	r := newFSChecker(bin, zerolog.Nop()).checkDevice(blkdiag.Device{Name: "sdb"}, true)

	f, ok := r.(Failure)
	assert.True(ok)
	assert.NotNil(f.Cause)
	assert.Equal("failed to run "+bin+" check on sdb", f.Message)
}

func TestNewFSCheckerDefaultBinary(t *testing.T) {
	assert.Equal(t, "btrfs", newFSChecker("", zerolog.Nop()).bin)
}

func TestUnmountCheckUnmountsFirst(t *testing.T) {
	assert := assert.New(t)
	bin, argsLog := fakeChecker(t, "no error found", 0)
	mounter := &recordingMounter{}

	c := &UnmountCheck{fs: newFSChecker(bin, zerolog.Nop()), mounter: mounter}
	r := c.Run(blkdiag.Device{Name: "sdc", MountPoints: []string{"/srv"}})

	assert.True(r.IsSuccess(), r.String())
	assert.Equal([]string{"sdc"}, mounter.calls)
	assert.Equal("check /dev/sdc\n", readArgs(t, argsLog))
}

func TestUnmountCheckUnmountFails(t *testing.T) {
	assert := assert.New(t)
	bin, argsLog := fakeChecker(t, "no error found", 0)
	busy := errors.New("target is busy")
	mounter := &recordingMounter{err: busy}

	c := &UnmountCheck{fs: newFSChecker(bin, zerolog.Nop()), mounter: mounter}
	r := c.Run(blkdiag.Device{Name: "sdc", MountPoints: []string{"/srv"}})

	f, ok := r.(Failure)
	assert.True(ok)
	assert.True(errors.Is(f, busy))
	assert.Equal("failed to unmount sdc", f.Message)
	assert.Equal("", readArgs(t, argsLog), "checker must not run")
}
