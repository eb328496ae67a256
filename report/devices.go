package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"machinerun.io/blkdiag"
)

func writeTextTable(w io.Writer, data [][]string) error {
	var lengths = make([]int, len(data[0]))

	for _, line := range data {
		for i, field := range line {
			if len(field) > lengths[i] {
				lengths[i] = len(field)
			}
		}
	}

	fmts := make([]string, len(lengths))

	for i, l := range lengths {
		fmts[i] = fmt.Sprintf("%%-%ds", l)
	}

	pfmt := strings.Join(fmts, " | ") + " |\n"

	for _, line := range data {
		s := make([]interface{}, len(line))
		for i, v := range line {
			s[i] = v
		}

		if _, err := fmt.Fprintf(w, pfmt, s...); err != nil {
			return err
		}
	}

	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}

// WriteDevices writes a table of the devices and whether fc selects them.
func WriteDevices(w io.Writer, devices blkdiag.DeviceSet, fc blkdiag.FilterConfig) error {
	data := [][]string{{"NAME", "SERIAL", "SIZE", "FSTYPE", "MOUNTPOINTS", "CHECK"}}

	for _, d := range devices {
		data = append(data, []string{
			d.Name,
			d.Serial,
			humanize.IBytes(d.Size),
			d.FSType,
			strings.Join(d.ActiveMountPoints(), ","),
			yesNo(fc.IsCheckable(d)),
		})
	}

	return writeTextTable(w, data)
}
