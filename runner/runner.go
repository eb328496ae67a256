// Package runner runs the selected checks over the devices of a system and
// collects the results into a Report.
package runner

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	uuid "github.com/satori/go.uuid"
	"machinerun.io/blkdiag"
	"machinerun.io/blkdiag/check"
)

// ErrNoChecks is returned when a run is started without any check selected.
var ErrNoChecks = errors.New("no check selected")

// Config controls which devices are checked and how failures are handled.
type Config struct {
	Filter blkdiag.FilterConfig

	// ExitOnFail stops the run at the first failing check.
	ExitOnFail bool
}

// Observer is notified as the run progresses.
type Observer interface {
	// Skipped is called for a device that does not match the filter.
	Skipped(d blkdiag.Device)

	// Started is called before a check runs on a device.
	Started(d blkdiag.Device, checkType string)

	// Finished is called with the result of a check.
	Finished(e Entry)
}

// Planned is a resolved check ready to run.
type Planned struct {
	Type     string
	Unmounts bool
	New      check.Constructor
}

// Orchestrator runs checks from a registry over a list of devices.
type Orchestrator struct {
	registry  *check.Registry
	log       zerolog.Logger
	observers []Observer
	now       func() time.Time
}

// New returns an Orchestrator that resolves checks in registry.
func New(registry *check.Registry, log zerolog.Logger, observers ...Observer) *Orchestrator {
	return &Orchestrator{
		registry:  registry,
		log:       log,
		observers: observers,
		now:       time.Now,
	}
}

// Plan resolves the check types and orders them so that checks which unmount
// the device run last. Duplicate types are only run once.
func (o *Orchestrator) Plan(types []string) ([]Planned, error) {
	if len(types) == 0 {
		return nil, ErrNoChecks
	}

	seen := map[string]bool{}
	planned := []Planned{}

	for _, name := range types {
		if seen[name] {
			continue
		}

		seen[name] = true

		ctor, err := o.registry.Resolve(name)
		if err != nil {
			return nil, err
		}

		planned = append(planned, Planned{Type: name, Unmounts: ctor().Unmounts(), New: ctor})
	}

	return Order(planned), nil
}

// Order returns the checks that leave the device mounted followed by those
// that unmount it. Relative order within each group is kept.
func Order(planned []Planned) []Planned {
	ordered := make([]Planned, 0, len(planned))
	last := []Planned{}

	for _, p := range planned {
		if p.Unmounts {
			last = append(last, p)
			continue
		}

		ordered = append(ordered, p)
	}

	return append(ordered, last...)
}

// Run lists the devices of dir and runs the checks named by types on them,
// see RunAll. The check names are resolved before any device is listed.
func (o *Orchestrator) Run(dir blkdiag.Directory, types []string, cfg Config) (Report, int, error) {
	if _, err := o.Plan(types); err != nil {
		return Report{}, ExitConfig, err
	}

	devices, err := dir.ListDevices()
	if err != nil {
		return Report{}, ExitConfig, errors.Wrap(err, "failed to list devices")
	}

	return o.RunAll(devices, types, cfg)
}

// RunAll runs the checks named by types on every device accepted by the
// filter, in device order. It returns the report and the process exit code.
// An error is only returned when the run could not start, in which case no
// device was touched.
func (o *Orchestrator) RunAll(devices blkdiag.DeviceSet, types []string, cfg Config) (Report, int, error) {
	report := Report{
		ID:      uuid.NewV4().String(),
		Started: o.now(),
		Entries: []Entry{},
		Skipped: blkdiag.DeviceSet{},
	}

	planned, err := o.Plan(types)
	if err != nil {
		return report, ExitConfig, err
	}

	for _, p := range planned {
		report.Checks = append(report.Checks, p.Type)
	}

	log := o.log.With().Str("run", report.ID).Logger()
	log.Info().Strs("checks", report.Checks).Int("devices", len(devices)).Msg("starting run")

	filter := cfg.Filter.Filter()

deviceLoop:
	for _, d := range devices {
		if !filter(d) {
			log.Debug().Str("device", d.Name).Str("fstype", d.FSType).Uint64("size", d.Size).
				Msg("skipping device")
			report.Skipped = append(report.Skipped, d)
			o.notifySkipped(d)

			continue
		}

		for _, p := range planned {
			o.notifyStarted(d, p.Type)

			start := o.now()
			result := p.New().Run(d)
			entry := Entry{Device: d, CheckType: p.Type, Result: result, Duration: o.now().Sub(start)}

			report.add(entry)
			o.notifyFinished(entry)

			if result.IsSuccess() {
				log.Info().Str("device", d.Name).Str("check", p.Type).Msg("check passed")
				continue
			}

			log.Warn().Str("device", d.Name).Str("check", p.Type).Str("result", result.String()).
				Msg("check failed")

			if cfg.ExitOnFail {
				report.Stopped = true

				log.Warn().Msg("stopping at first failure")

				break deviceLoop
			}
		}
	}

	log.Info().Int("ran", len(report.Entries)).Int("failed", len(report.Failures())).
		Int("skipped", len(report.Skipped)).Msg("run finished")

	return report, report.ExitCode(), nil
}

func (o *Orchestrator) notifySkipped(d blkdiag.Device) {
	for _, obs := range o.observers {
		obs.Skipped(d)
	}
}

func (o *Orchestrator) notifyStarted(d blkdiag.Device, checkType string) {
	for _, obs := range o.observers {
		obs.Started(d, checkType)
	}
}

func (o *Orchestrator) notifyFinished(e Entry) {
	for _, obs := range o.observers {
		obs.Finished(e)
	}
}
