package check

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"machinerun.io/blkdiag"
)

// ProbeFileName is the name of the file the writable check creates at the
// root of the mount point.
const ProbeFileName = "geoffrey-check-file.txt"

const probeText = "test"

// WritableCheck writes a probe file on the first mount point of the device,
// reads it back and removes it.
//
// If a step fails the remaining ones are skipped, so the probe file can be
// left behind. A leftover file is tolerated on the next run.
type WritableCheck struct {
	log zerolog.Logger
}

// Type returns TypeWritable.
func (c *WritableCheck) Type() string {
	return TypeWritable
}

// Unmounts returns false.
func (c *WritableCheck) Unmounts() bool {
	return false
}

// Run runs the probe on d.
func (c *WritableCheck) Run(d blkdiag.Device) Result {
	if err := c.probe(d); err != nil {
		return Fail(err, "failed writable check for %s", d.Name)
	}

	return Success{}
}

func (c *WritableCheck) probe(d blkdiag.Device) error {
	mps := d.ActiveMountPoints()
	if len(mps) == 0 {
		return ErrNoMountPoint
	}

	fpath := filepath.Join(mps[0], ProbeFileName)

	if err := c.createFile(fpath); err != nil {
		return err
	}

	if err := writeFile(fpath, []byte(probeText)); err != nil {
		return err
	}

	if err := readFile(fpath, []byte(probeText)); err != nil {
		return err
	}

	if err := os.Remove(fpath); err != nil {
		return &ProbeError{Step: StepRemove, Path: fpath, Err: err}
	}

	return nil
}

func (c *WritableCheck) createFile(fpath string) error {
	fp, err := os.OpenFile(fpath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644) //nolint:gosec
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			c.log.Warn().Str("path", fpath).Msg("probe file already exists")
			return nil
		}

		return &ProbeError{Step: StepCreate, Path: fpath, Err: err}
	}

	if err := fp.Close(); err != nil {
		return &ProbeError{Step: StepCreate, Path: fpath, Err: err}
	}

	return nil
}

func writeFile(fpath string, data []byte) (rerr error) {
	fp, err := os.OpenFile(fpath, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return &ProbeError{Step: StepWrite, Path: fpath, Err: err}
	}

	defer func() {
		if err := fp.Close(); err != nil && rerr == nil {
			rerr = &ProbeError{Step: StepWrite, Path: fpath, Err: err}
		}
	}()

	if _, err := fp.Write(data); err != nil {
		return &ProbeError{Step: StepWrite, Path: fpath, Err: err}
	}

	if err := fp.Sync(); err != nil {
		return &ProbeError{Step: StepWrite, Path: fpath, Err: err}
	}

	return nil
}

func readFile(fpath string, expected []byte) error {
	content, err := os.ReadFile(fpath)
	if err != nil {
		return &ProbeError{Step: StepRead, Path: fpath, Err: err}
	}

	if !bytes.Equal(content, expected) {
		return &ProbeError{
			Step: StepRead,
			Path: fpath,
			Err:  errors.Wrapf(ErrContentMismatch, "read %q, wrote %q", content, expected),
		}
	}

	return nil
}
