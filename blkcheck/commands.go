package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"machinerun.io/blkdiag"
	"machinerun.io/blkdiag/check"
	"machinerun.io/blkdiag/report"
)

func devicesCommand() *cli.Command {
	return &cli.Command{
		Name:  "devices",
		Usage: "Show block devices and whether they would be checked",
		Flags: append(append(filterFlags(), systemFlags()...),
			&cli.BoolFlag{
				Name:  "checkable",
				Usage: "only show the devices that would be checked",
			}),
		Action: showDevices,
	}
}

func checksCommand() *cli.Command {
	return &cli.Command{
		Name:   "checks",
		Usage:  "List the available check types",
		Action: listChecks,
	}
}

type nopMounter struct{}

func (nopMounter) Unmount(blkdiag.Device) error { return nil }

func showDevices(c *cli.Context) error {
	log, err := newLogger(c.String("log-level"))
	if err != nil {
		return configError(err)
	}

	fc, err := filterConfig(c)
	if err != nil {
		return configError(err)
	}

	sys, err := newSystem(c, log)
	if err != nil {
		return configError(err)
	}

	devices, err := sys.ListDevices()
	if err != nil {
		return configError(err)
	}

	if c.Bool("checkable") {
		devices = devices.Select(fc.Filter())
	}

	return report.WriteDevices(c.App.Writer, devices, fc)
}

func listChecks(c *cli.Context) error {
	reg, err := check.Default(check.Deps{Mounter: nopMounter{}, Logger: zerolog.Nop()})
	if err != nil {
		return err
	}

	for _, t := range reg.Types() {
		fmt.Fprintln(c.App.Writer, t)
	}

	return nil
}
