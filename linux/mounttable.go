//go:build linux
// +build linux

package linux

import (
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/disk"
)

// Mount is an entry of the kernel mount table.
type Mount struct {
	Device     string
	MountPoint string
	FSType     string
}

// MountTable reads the mounts currently active on the system.
type MountTable interface {
	Mounts() ([]Mount, error)
}

type procMountTable struct{}

// ProcMountTable returns the MountTable of the running kernel.
func ProcMountTable() MountTable {
	return procMountTable{}
}

func (procMountTable) Mounts() ([]Mount, error) {
	parts, err := disk.Partitions(true)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read mount table")
	}

	mounts := make([]Mount, 0, len(parts))
	for _, p := range parts {
		mounts = append(mounts, Mount{Device: p.Device, MountPoint: p.Mountpoint, FSType: p.Fstype})
	}

	return mounts, nil
}

// mountedAt returns the mount points in mps where devPath is still mounted.
func mountedAt(table MountTable, devPath string, mps []string) ([]string, error) {
	mounts, err := table.Mounts()
	if err != nil {
		return nil, err
	}

	want := map[string]bool{}
	for _, mp := range mps {
		want[mp] = true
	}

	still := []string{}

	for _, m := range mounts {
		if m.Device == devPath && want[m.MountPoint] {
			still = append(still, m.MountPoint)
			want[m.MountPoint] = false
		}
	}

	return still, nil
}
