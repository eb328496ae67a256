// Package mockos provides a blkdiag.System backed by a JSON layout file, for
// tests and dry runs on machines without the disks.
package mockos

import (
	"encoding/json"
	"fmt"
	"os"

	"machinerun.io/blkdiag"
)

// System returns a mock os implementation of the blkdiag.System interface
// read from the layout file. It panics if the layout cannot be read.
func System(layout string) *Sys {
	sys, err := Load(layout)
	if err != nil {
		panic(err)
	}

	return sys
}

// Load reads a mock system from the layout file.
func Load(layout string) (*Sys, error) {
	file, err := os.ReadFile(layout)
	if err != nil {
		return nil, err
	}

	sys := &Sys{}

	if err := json.Unmarshal(file, sys); err != nil {
		return nil, fmt.Errorf("bad layout %s: %w", layout, err)
	}

	if sys.UnmountErrors == nil {
		sys.UnmountErrors = map[string]string{}
	}

	return sys, nil
}

// NewSystem returns a mock system with the given devices.
func NewSystem(devices ...blkdiag.Device) *Sys {
	return &Sys{Devices: devices, UnmountErrors: map[string]string{}}
}

// Sys is the mock system. Unmount calls update the mount points of the
// listed devices the way a real system would.
type Sys struct {
	Devices blkdiag.DeviceSet `json:"devices"`

	// UnmountErrors maps a device name to the error Unmount returns for it.
	UnmountErrors map[string]string `json:"unmountErrors"`

	// ListError makes ListDevices fail when not empty.
	ListError string `json:"listError"`

	unmounted []string
}

// ListDevices returns a copy of the devices in the layout.
func (ms *Sys) ListDevices() (blkdiag.DeviceSet, error) {
	if ms.ListError != "" {
		return nil, fmt.Errorf("%s", ms.ListError)
	}

	devices := make(blkdiag.DeviceSet, len(ms.Devices))

	for i, d := range ms.Devices {
		d.MountPoints = append([]string{}, d.MountPoints...)
		devices[i] = d
	}

	return devices, nil
}

// Unmount clears the mount points of the device with the same name.
func (ms *Sys) Unmount(d blkdiag.Device) error {
	if msg, ok := ms.UnmountErrors[d.Name]; ok {
		return fmt.Errorf("umount %s: %s", d.Name, msg)
	}

	for i := range ms.Devices {
		if ms.Devices[i].Name != d.Name {
			continue
		}

		if ms.Devices[i].IsMounted() {
			ms.unmounted = append(ms.unmounted, d.Name)
		}

		ms.Devices[i].MountPoints = []string{}

		return nil
	}

	return fmt.Errorf("device %s not found", d.Name)
}

// Unmounted returns the names of the devices that were unmounted, in order.
func (ms *Sys) Unmounted() []string {
	return append([]string{}, ms.unmounted...)
}
