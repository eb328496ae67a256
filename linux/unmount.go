//go:build linux
// +build linux

package linux

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
	"machinerun.io/blkdiag"
)

// ErrStillMounted is returned when a mount point is still in the mount table
// after it was unmounted.
var ErrStillMounted = errors.New("still mounted")

// UnmountMethod selects how mount points are unmounted.
type UnmountMethod string

const (
	// UmountCommand runs umount(8) for every mount point.
	UmountCommand UnmountMethod = "umount"

	// UmountSyscall calls umount(2) directly.
	UmountSyscall UnmountMethod = "syscall"
)

// ParseUnmountMethod validates an unmount method name.
func ParseUnmountMethod(s string) (UnmountMethod, error) {
	switch m := UnmountMethod(s); m {
	case UmountCommand, UmountSyscall:
		return m, nil
	}

	return "", errors.Errorf("unknown unmount method '%s' (valid: %s, %s)", s, UmountCommand, UmountSyscall)
}

// Unmounter is a blkdiag.Mounter that unmounts every mount point of a device
// and then checks with the mount table that they are gone.
type Unmounter struct {
	umount func(mountPoint string) error

	// Table is used to verify the device is unmounted, nil skips the
	// verification.
	Table MountTable

	log zerolog.Logger
}

// NewUnmounter returns an Unmounter using the given method.
func NewUnmounter(method UnmountMethod, log zerolog.Logger) (*Unmounter, error) {
	u := &Unmounter{Table: ProcMountTable(), log: log}

	switch method {
	case UmountCommand:
		u.umount = umountCommand
	case UmountSyscall:
		u.umount = umountSyscall
	default:
		return nil, errors.Errorf("unknown unmount method '%s'", method)
	}

	return u, nil
}

func umountCommand(mountPoint string) error {
	return runCommand("umount", mountPoint)
}

func umountSyscall(mountPoint string) error {
	return unix.Unmount(mountPoint, 0)
}

// unmountOrder returns the mount points deepest first so nested mounts are
// released before their parents.
func unmountOrder(mps []string) []string {
	ordered := append([]string{}, mps...)

	sort.SliceStable(ordered, func(i, j int) bool {
		return strings.Count(ordered[i], "/") > strings.Count(ordered[j], "/")
	})

	return ordered
}

// Unmount unmounts every active mount point of d.
func (u *Unmounter) Unmount(d blkdiag.Device) error {
	mps := d.ActiveMountPoints()
	if len(mps) == 0 {
		return nil
	}

	for _, mp := range unmountOrder(mps) {
		u.log.Info().Str("device", d.Name).Str("mountpoint", mp).Msg("unmounting")

		if err := u.umount(mp); err != nil {
			return errors.Wrapf(err, "failed to unmount %s", mp)
		}
	}

	if u.Table == nil {
		return nil
	}

	still, err := mountedAt(u.Table, d.Path(), mps)
	if err != nil {
		return err
	}

	if len(still) != 0 {
		return errors.Wrapf(ErrStillMounted, "%s at %s", d.Path(), strings.Join(still, ", "))
	}

	return nil
}
