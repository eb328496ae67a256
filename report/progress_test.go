package report

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"machinerun.io/blkdiag/check"
	"machinerun.io/blkdiag/runner"
)

func TestProgress(t *testing.T) {
	assert := assert.New(t)
	buf := &bytes.Buffer{}
	p := NewProgress(buf)

	p.Skipped(sda)
	p.Started(sdb, check.TypeBtrfsRO)
	p.Finished(runner.Entry{Device: sdb, CheckType: check.TypeBtrfsRO, Result: check.Success{}})
	p.Started(sdc, check.TypeBtrfs)
	p.Finished(runner.Entry{
		Device: sdc, CheckType: check.TypeBtrfs,
		Result: check.Fail(errors.New("exit status 1"), "errors found on sdc"),
	})

	assert.Equal(
		"Skipping sda ()\n"+
			"Checking BTRFS_RO for sdb (ZL2B1X)... Passed\n"+
			"Checking BTRFS for sdc (ZL2B2Y)... Failed\n"+
			"sdc (ZL2B2Y) BTRFS: FAILURE: errors found on sdc\n",
		buf.String())
	assert.NotContains(buf.String(), "exit status 1")
}
