package blkdiag

import (
	"fmt"
	"path"
)

// Device is a snapshot of a block device or partition as reported by the
// system at the start of a run.
type Device struct {
	// Name is the kernel name of the device (sda, nvme0n1p2).
	Name string `json:"name" yaml:"name"`

	// Size is the size of the device in bytes.
	Size uint64 `json:"size" yaml:"size"`

	// FSType is the filesystem signature found on the device, empty if none.
	FSType string `json:"fstype" yaml:"fstype"`

	// Serial is the device serial number. It may be empty, partitions
	// usually do not report one.
	Serial string `json:"serial" yaml:"serial"`

	// MountPoints are the mount points of the device in the order the
	// system reports them. An empty entry is a slot with nothing mounted.
	MountPoints []string `json:"mountpoints" yaml:"mountpoints"`
}

// DeviceSet is a list of devices in enumeration order.
type DeviceSet []Device

// Path returns the device node path of the device.
func (d Device) Path() string {
	return path.Join("/dev", d.Name)
}

// ActiveMountPoints returns the mount points that have something mounted.
func (d Device) ActiveMountPoints() []string {
	mps := []string{}

	for _, mp := range d.MountPoints {
		if mp == "" {
			continue
		}

		mps = append(mps, mp)
	}

	return mps
}

// IsMounted returns true if the device has at least one active mount point.
func (d Device) IsMounted() bool {
	return len(d.ActiveMountPoints()) != 0
}

func (d Device) String() string {
	return fmt.Sprintf("%s (%s)", d.Name, d.Serial)
}

// Names returns the names of the devices in the set.
func (ds DeviceSet) Names() []string {
	names := make([]string, len(ds))
	for i, d := range ds {
		names[i] = d.Name
	}

	return names
}

// Find returns the device with the given name.
func (ds DeviceSet) Find(name string) (Device, bool) {
	for _, d := range ds {
		if d.Name == name {
			return d, true
		}
	}

	return Device{}, false
}
