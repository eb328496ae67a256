// Package check implements the device checks run by blkcheck and the
// registry used to look them up by type name.
package check

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"machinerun.io/blkdiag"
)

// Check types.
const (
	TypeBtrfs    = "BTRFS"
	TypeBtrfsRO  = "BTRFS_RO"
	TypeWritable = "WRITABLE"
)

// Check verifies a single device. A Check holds no state between runs and
// may be reused across devices.
type Check interface {
	// Type returns the check type name used to select the check.
	Type() string

	// Unmounts returns true if running the check unmounts the device.
	// Such checks must run after every check that does not.
	Unmounts() bool

	// Run runs the check on the device.
	Run(d blkdiag.Device) Result
}

// Constructor returns a new instance of a Check.
type Constructor func() Check

// Deps are the collaborators the built-in checks need.
type Deps struct {
	// Mounter is used by checks that unmount the device.
	Mounter blkdiag.Mounter

	// Checker is the btrfs binary, "btrfs" if empty.
	Checker string

	Logger zerolog.Logger
}

// Default returns a registry with the built-in checks.
func Default(deps Deps) (*Registry, error) {
	if deps.Mounter == nil {
		return nil, errors.New("check dependencies are missing a Mounter")
	}

	fs := newFSChecker(deps.Checker, deps.Logger)
	reg := NewRegistry()

	ctors := map[string]Constructor{
		TypeBtrfs: func() Check {
			return &UnmountCheck{fs: fs, mounter: deps.Mounter}
		},
		TypeBtrfsRO: func() Check {
			return &ReadOnlyForceCheck{fs: fs}
		},
		TypeWritable: func() Check {
			return &WritableCheck{log: deps.Logger}
		},
	}

	for _, name := range []string{TypeBtrfsRO, TypeBtrfs, TypeWritable} {
		if err := reg.Register(name, ctors[name]); err != nil {
			return nil, err
		}
	}

	return reg, nil
}
