package blkdiag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"machinerun.io/blkdiag"
)

func TestDevicePathAndString(t *testing.T) {
	assert := assert.New(t)

	d := blkdiag.Device{Name: "sdb", Serial: "ZA1B2C3"}
	assert.Equal("/dev/sdb", d.Path())
	assert.Equal("sdb (ZA1B2C3)", d.String())
	assert.Equal("sdb1 ()", blkdiag.Device{Name: "sdb1"}.String())
}

func TestActiveMountPoints(t *testing.T) {
	assert := assert.New(t)

	d := blkdiag.Device{Name: "sdb", MountPoints: []string{"", "/srv/data", "", "/mnt"}}
	assert.Equal([]string{"/srv/data", "/mnt"}, d.ActiveMountPoints())
	assert.True(d.IsMounted())

	d = blkdiag.Device{Name: "sdc", MountPoints: []string{""}}
	assert.Equal([]string{}, d.ActiveMountPoints())
	assert.False(d.IsMounted())

	assert.False(blkdiag.Device{Name: "sdd"}.IsMounted())
}

func TestDeviceSetFind(t *testing.T) {
	assert := assert.New(t)

	ds := blkdiag.DeviceSet{{Name: "sda"}, {Name: "sdb", Size: 10}}
	d, ok := ds.Find("sdb")
	assert.True(ok)
	assert.Equal(uint64(10), d.Size)

	_, ok = ds.Find("sdz")
	assert.False(ok)
	assert.Equal([]string{"sda", "sdb"}, ds.Names())
}
