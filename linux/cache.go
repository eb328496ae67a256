//go:build linux
// +build linux

package linux

import (
	"time"

	"github.com/patrickmn/go-cache"
	"machinerun.io/blkdiag"
)

const devicesCacheKey = "devices"

type cachingDirectory struct {
	dir   blkdiag.Directory
	cache *cache.Cache
}

// CachingDirectory - a cache in front of a Directory so that every caller in
// a run sees the same device snapshot. Errors are not cached.
func CachingDirectory(dir blkdiag.Directory) blkdiag.Directory {
	const longTime = 24 * time.Hour

	return &cachingDirectory{
		dir:   dir,
		cache: cache.New(longTime, longTime),
	}
}

func (cd *cachingDirectory) ListDevices() (blkdiag.DeviceSet, error) {
	if cached, found := cd.cache.Get(devicesCacheKey); found {
		return copyDevices(cached.(blkdiag.DeviceSet)), nil
	}

	devices, err := cd.dir.ListDevices()
	if err != nil {
		return nil, err
	}

	cd.cache.Set(devicesCacheKey, copyDevices(devices), cache.DefaultExpiration)

	return devices, nil
}

func copyDevices(ds blkdiag.DeviceSet) blkdiag.DeviceSet {
	cp := make(blkdiag.DeviceSet, len(ds))

	for i, d := range ds {
		d.MountPoints = append([]string{}, d.MountPoints...)
		cp[i] = d
	}

	return cp
}
