//go:build linux
// +build linux

package linux

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"machinerun.io/blkdiag"
)

// ErrNoLsblk is returned when the lsblk binary cannot be run.
var ErrNoLsblk = errors.New("lsblk not found")

const lsblkColumns = "NAME,SIZE,FSTYPE,SERIAL,MOUNTPOINTS"

// util-linux before 2.37 has no MOUNTPOINTS column and rejects it.
const lsblkLegacyColumns = "NAME,SIZE,FSTYPE,SERIAL,MOUNTPOINT"

type lsblkReport struct {
	BlockDevices []lsblkDevice `json:"blockdevices"`
}

type lsblkDevice struct {
	Name        string
	Size        uint64
	FSType      string
	Serial      string
	MountPoints []string
	Children    []lsblkDevice
}

// UnmarshalJSON accepts the size as a number (--bytes) or a decimal string,
// and the single "mountpoint" of lsblkLegacyColumns.
func (d *lsblkDevice) UnmarshalJSON(b []byte) error {
	var raw struct {
		Name        string          `json:"name"`
		Size        json.RawMessage `json:"size"`
		FSType      string          `json:"fstype"`
		Serial      string          `json:"serial"`
		MountPoints []string        `json:"mountpoints"`
		MountPoint  *string         `json:"mountpoint"`
		Children    []lsblkDevice   `json:"children"`
	}

	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	size, err := readReportSize(raw.Size)
	if err != nil {
		return errors.Wrapf(err, "device %s", raw.Name)
	}

	d.Name = raw.Name
	d.Size = size
	d.FSType = raw.FSType
	d.Serial = strings.TrimSpace(raw.Serial)
	d.MountPoints = raw.MountPoints
	d.Children = raw.Children

	if d.MountPoints == nil {
		d.MountPoints = []string{}
		if raw.MountPoint != nil {
			d.MountPoints = append(d.MountPoints, *raw.MountPoint)
		}
	}

	return nil
}

func readReportSize(raw json.RawMessage) (uint64, error) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return 0, nil
	}

	num, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "bad size '%s'", s)
	}

	return num, nil
}

func (d lsblkDevice) device() blkdiag.Device {
	return blkdiag.Device{
		Name:        d.Name,
		Size:        d.Size,
		FSType:      d.FSType,
		Serial:      d.Serial,
		MountPoints: d.MountPoints,
	}
}

// parseLsblkReport returns the devices in the report, each followed by its
// children.
func parseLsblkReport(report []byte) (blkdiag.DeviceSet, error) {
	var r lsblkReport
	if err := json.Unmarshal(report, &r); err != nil {
		return nil, errors.Wrap(err, "failed to parse lsblk output")
	}

	devices := blkdiag.DeviceSet{}

	var walk func(lsblkDevice)
	walk = func(d lsblkDevice) {
		devices = append(devices, d.device())
		for _, c := range d.Children {
			walk(c)
		}
	}

	for _, d := range r.BlockDevices {
		walk(d)
	}

	return devices, nil
}

// Lsblk is a blkdiag.Directory that asks lsblk for the block devices.
type Lsblk struct {
	// Bin is the lsblk binary.
	Bin string
}

// NewLsblk returns a Directory using lsblk from PATH.
func NewLsblk() *Lsblk {
	return &Lsblk{Bin: "lsblk"}
}

// ListDevices runs lsblk and returns every device and partition it reports.
// An lsblk that does not know the MOUNTPOINTS column is asked for MOUNTPOINT.
func (l *Lsblk) ListDevices() (blkdiag.DeviceSet, error) {
	out, err := l.run(lsblkColumns)
	if err != nil && strings.Contains(err.Error(), "unknown column") {
		out, err = l.run(lsblkLegacyColumns)
	}

	if err != nil {
		return nil, err
	}

	return parseLsblkReport(out)
}

func (l *Lsblk) run(columns string) ([]byte, error) {
	args := []string{l.Bin, "--bytes", "--json", "--output", columns}

	out, stderr, rc := runCommandWithOutputErrorRc(args...)
	if rc == noCommandRC {
		return nil, ErrNoLsblk
	}

	if rc != 0 {
		return nil, cmdError(args, out, stderr, rc)
	}

	return out, nil
}
