package blkdiag

// Directory enumerates the block devices of a system.
type Directory interface {
	// ListDevices returns every block device on the system, partitions
	// included, in the order the system reports them.
	ListDevices() (DeviceSet, error)
}

// Mounter changes the mount state of devices.
type Mounter interface {
	// Unmount unmounts every active mount point of the device. A device
	// with nothing mounted is not an error.
	Unmount(d Device) error
}

// System interface provides the device enumeration and mount operations
// that are implemented by the specific system.
type System interface {
	Directory
	Mounter
}

type system struct {
	Directory
	Mounter
}

// NewSystem combines a Directory and a Mounter into a System.
func NewSystem(dir Directory, mounter Mounter) System {
	return &system{Directory: dir, Mounter: mounter}
}
