//go:build linux
// +build linux

package linux

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"machinerun.io/blkdiag"
	"machinerun.io/blkdiag/check"
	"machinerun.io/blkdiag/runner"
)

type countingDirectory struct {
	calls   int
	devices blkdiag.DeviceSet
	err     error
}

func (c *countingDirectory) ListDevices() (blkdiag.DeviceSet, error) {
	c.calls++
	return c.devices, c.err
}

func TestCachingDirectory(t *testing.T) {
	assert := assert.New(t)

	inner := &countingDirectory{devices: blkdiag.DeviceSet{
		{Name: "sdb", FSType: "btrfs", MountPoints: []string{"/srv/data"}},
	}}
	dir := CachingDirectory(inner)

	first, err := dir.ListDevices()
	assert.Nil(err)

	first[0].MountPoints[0] = "/changed"

	second, err := dir.ListDevices()
	assert.Nil(err)
	assert.Equal(1, inner.calls)
	assert.Equal([]string{"/srv/data"}, second[0].MountPoints)
}

func TestCachingDirectoryError(t *testing.T) {
	assert := assert.New(t)

	inner := &countingDirectory{err: errors.New("lsblk exploded")}
	dir := CachingDirectory(inner)

	_, err := dir.ListDevices()
	assert.NotNil(err)

	inner.err = nil
	inner.devices = blkdiag.DeviceSet{{Name: "sda"}}

	found, err := dir.ListDevices()
	assert.Nil(err)
	assert.Equal(blkdiag.DeviceSet{{Name: "sda"}}, found)
	assert.Equal(2, inner.calls)
}

type seenCheck struct {
	seen *[]string
}

func (seenCheck) Type() string   { return "SEEN" }
func (seenCheck) Unmounts() bool { return false }

func (c seenCheck) Run(d blkdiag.Device) check.Result {
	*c.seen = append(*c.seen, d.Name)
	return check.Success{}
}

func TestCachingDirectoryOneSnapshotPerRun(t *testing.T) {
	assert := assert.New(t)

	inner := &countingDirectory{devices: blkdiag.DeviceSet{
		{Name: "sdb", FSType: "btrfs", Size: 4 * blkdiag.Tebibyte},
	}}
	dir := CachingDirectory(inner)

	// the skip list is validated against the first listing.
	validated, err := dir.ListDevices()
	assert.Nil(err)
	assert.Equal([]string{"sdb"}, validated.Names())

	// a device showing up later is not part of this run.
	inner.devices = append(inner.devices, blkdiag.Device{Name: "sdc", FSType: "btrfs", Size: 4 * blkdiag.Tebibyte})

	seen := []string{}
	reg := check.NewRegistry()
	assert.Nil(reg.Register("SEEN", func() check.Check { return seenCheck{seen: &seen} }))

	cfg := runner.Config{Filter: blkdiag.FilterConfig{
		FSTypes:     blkdiag.NewStringSet("btrfs"),
		SkipDevices: blkdiag.NewStringSet(),
	}}

	r, rc, err := runner.New(reg, zerolog.Nop()).Run(dir, []string{"SEEN"}, cfg)
	assert.Nil(err)
	assert.Equal(runner.ExitOK, rc)
	assert.Equal(1, len(r.Entries))
	assert.Equal([]string{"sdb"}, seen)
	assert.Equal(1, inner.calls)
}
