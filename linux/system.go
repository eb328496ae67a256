//go:build linux
// +build linux

package linux

import (
	"github.com/rs/zerolog"
	"machinerun.io/blkdiag"
)

// System returns a linux specific implementation of the blkdiag.System
// interface. Devices are listed once with lsblk and cached for the life of
// the process.
func System(method UnmountMethod, log zerolog.Logger) (blkdiag.System, error) {
	unmounter, err := NewUnmounter(method, log)
	if err != nil {
		return nil, err
	}

	return blkdiag.NewSystem(CachingDirectory(NewLsblk()), unmounter), nil
}
