package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"machinerun.io/blkdiag"
	"machinerun.io/blkdiag/check"
	"machinerun.io/blkdiag/linux"
	"machinerun.io/blkdiag/mockos"
	"machinerun.io/blkdiag/report"
	"machinerun.io/blkdiag/runner"
)

var version string

const defaultCheck = check.TypeBtrfsRO

func filterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "skip-devices",
			Usage:   "comma separated device names never to check",
			EnvVars: []string{"SKIP_DEVICES"},
		},
		&cli.StringFlag{
			Name:    "min-size",
			Usage:   "smallest device to check (1T, 500G, ...)",
			Value:   "1T",
			EnvVars: []string{"MIN_SIZE"},
		},
		&cli.StringFlag{
			Name:    "fstypes",
			Usage:   "comma separated filesystem types to check",
			Value:   "btrfs",
			EnvVars: []string{"FSTYPES"},
		},
	}
}

func systemFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "unmount-method",
			Usage:   "how to unmount devices: umount or syscall",
			Value:   string(linux.UmountCommand),
			EnvVars: []string{"UNMOUNT_METHOD"},
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "log level (debug, info, warn, error)",
			Value:   "info",
			EnvVars: []string{"LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:   "mock-layout",
			Usage:  "read devices from a json layout instead of the system",
			Hidden: true,
		},
	}
}

func newApp() *cli.App {
	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:    "exit-on-fail",
			Usage:   "stop at the first failed check",
			EnvVars: []string{"EXIT_ON_FAIL"},
		},
		&cli.StringFlag{
			Name:    "btrfs-bin",
			Usage:   "btrfs binary used to check filesystems",
			Value:   "btrfs",
			EnvVars: []string{"BTRFS_BIN"},
		},
		&cli.StringFlag{
			Name:  "format",
			Usage: "report format: text, json or yaml",
			Value: string(report.FormatText),
		},
		&cli.StringFlag{
			Name:  "metrics-file",
			Usage: "write prometheus metrics for the run to this file",
		},
	}

	flags = append(flags, filterFlags()...)
	flags = append(flags, systemFlags()...)

	return &cli.App{
		Name:      "blkcheck",
		Version:   version,
		Usage:     "Run health checks on block devices",
		ArgsUsage: "[CHECK...] (flags go before the check names)",
		Flags:     flags,
		Action:    runChecks,
		Commands: []*cli.Command{
			devicesCommand(),
			checksCommand(),
		},
	}
}

func main() {
	app := newApp()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(runner.ExitConfig)
	}
}

func configError(err error) error {
	return cli.Exit(err.Error(), runner.ExitConfig)
}

func runChecks(c *cli.Context) error {
	log, err := newLogger(c.String("log-level"))
	if err != nil {
		return configError(err)
	}

	format, err := report.ParseFormat(c.String("format"))
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

	reg, err := check.Default(check.Deps{Mounter: sys, Checker: c.String("btrfs-bin"), Logger: log})
	if err != nil {
		return configError(err)
	}

	observers := []runner.Observer{report.NewProgress(c.App.Writer)}

	var metrics *report.Metrics
	if c.String("metrics-file") != "" {
		metrics = report.NewMetrics()
		observers = append(observers, metrics)
	}

	orch := runner.New(reg, log, observers...)

	types, err := checkTypes(c)
	if err != nil {
		return configError(err)
	}

	if _, err := orch.Plan(types); err != nil {
		return configError(err)
	}

	devices, err := sys.ListDevices()
	if err != nil {
		return configError(err)
	}

	warnUnknownSkips(log, devices, fc.SkipDevices)

	// the directory is cached, the run sees the devices validated above.
	r, rc, err := orch.Run(sys, types, runner.Config{Filter: fc, ExitOnFail: c.Bool("exit-on-fail")})
	if err != nil {
		return configError(err)
	}

	if err := report.Render(c.App.Writer, r, format); err != nil {
		return err
	}

	if metrics != nil {
		if err := metrics.Write(c.String("metrics-file"), r); err != nil {
			log.Error().Err(err).Msg("failed to write metrics")
		}
	}

	if rc != runner.ExitOK {
		return cli.Exit("", rc)
	}

	return nil
}

// checkTypes returns the positional check names, else the CHECK environment
// variable, else the default check. Flag parsing stops at the first check
// name, so a flag found among them is an error.
func checkTypes(c *cli.Context) ([]string, error) {
	if c.Args().Present() {
		for _, arg := range c.Args().Slice() {
			if strings.HasPrefix(arg, "-") {
				return nil, errors.Errorf("flags must precede check names, found '%s' after them", arg)
			}
		}

		return c.Args().Slice(), nil
	}

	if env := blkdiag.SplitList(os.Getenv("CHECK")); len(env) != 0 {
		return env, nil
	}

	return []string{defaultCheck}, nil
}

func filterConfig(c *cli.Context) (blkdiag.FilterConfig, error) {
	minSize, err := blkdiag.BytesFromHuman(c.String("min-size"))
	if err != nil {
		return blkdiag.FilterConfig{}, err
	}

	return blkdiag.FilterConfig{
		FSTypes:     blkdiag.NewStringSet(blkdiag.SplitList(c.String("fstypes"))...),
		MinSize:     minSize,
		SkipDevices: blkdiag.NewStringSet(blkdiag.SplitList(c.String("skip-devices"))...),
	}, nil
}

func newSystem(c *cli.Context, log zerolog.Logger) (blkdiag.System, error) {
	if layout := c.String("mock-layout"); layout != "" {
		log.Warn().Str("layout", layout).Msg("using mock system")

		sys, err := mockos.Load(layout)
		if err != nil {
			return nil, err
		}

		return blkdiag.NewSystem(linux.CachingDirectory(sys), sys), nil
	}

	method, err := linux.ParseUnmountMethod(c.String("unmount-method"))
	if err != nil {
		return nil, err
	}

	return linux.System(method, log)
}

func newLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), err
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger(), nil
}

// warnUnknownSkips logs the skip names that match no device, usually a typo.
func warnUnknownSkips(log zerolog.Logger, devices blkdiag.DeviceSet, skipped blkdiag.StringSet) {
	unknown := []string{}

	for name := range skipped {
		if _, ok := devices.Find(name); !ok {
			unknown = append(unknown, name)
		}
	}

	sort.Strings(unknown)

	if len(unknown) != 0 {
		log.Warn().Strs("devices", unknown).Msg("skipped devices not found")
	}
}
