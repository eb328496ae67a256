// Package report renders a runner.Report for humans and machines and writes
// run metrics for the node exporter textfile collector.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"machinerun.io/blkdiag/check"
	"machinerun.io/blkdiag/runner"
)

// Format is an output format of Render.
type Format string

const (
	// FormatText is the human summary.
	FormatText Format = "text"

	// FormatJSON is the full report as JSON.
	FormatJSON Format = "json"

	// FormatYAML is the full report as YAML.
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	}

	return "", errors.Errorf("unknown format '%s' (valid: %s, %s, %s)", s, FormatText, FormatJSON, FormatYAML)
}

// Render writes the report to w in the given format.
func Render(w io.Writer, r runner.Report, format Format) error {
	switch format {
	case FormatText:
		return renderText(w, r)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return errors.Wrap(enc.Encode(newReportView(r)), "failed to encode report")
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(newReportView(r)); err != nil {
			return errors.Wrap(err, "failed to encode report")
		}

		return enc.Close()
	}

	return errors.Errorf("unknown format '%s'", format)
}

func renderText(w io.Writer, r runner.Report) error {
	var err error

	switch {
	case !r.Ran():
		_, err = fmt.Fprintln(w, "No check ran")
	case r.AllPassed():
		_, err = fmt.Fprintf(w, "Ran %d checks, %s\n", len(r.Entries), color.GreenString("all passed"))
	default:
		lines := []string{color.RedString("Some checks failed:")}
		for _, e := range r.Entries {
			lines = append(lines, entryLine(e))
		}

		_, err = fmt.Fprintln(w, strings.Join(lines, "\n"))
	}

	return err
}

func entryLine(e runner.Entry) string {
	result := e.Result.String()
	if e.Result.IsSuccess() {
		result = color.GreenString(result)
	} else {
		result = color.RedString(result)
	}

	return fmt.Sprintf("%s %s: %s", e.Device, e.CheckType, result)
}

type resultView struct {
	Status  string `json:"status" yaml:"status"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
	Cause   string `json:"cause,omitempty" yaml:"cause,omitempty"`
}

type entryView struct {
	Device   string     `json:"device" yaml:"device"`
	Serial   string     `json:"serial,omitempty" yaml:"serial,omitempty"`
	Check    string     `json:"check" yaml:"check"`
	Result   resultView `json:"result" yaml:"result"`
	Duration string     `json:"duration" yaml:"duration"`
}

type reportView struct {
	ID       string      `json:"id" yaml:"id"`
	Started  time.Time   `json:"started" yaml:"started"`
	Checks   []string    `json:"checks" yaml:"checks"`
	Passed   bool        `json:"passed" yaml:"passed"`
	Stopped  bool        `json:"stopped" yaml:"stopped"`
	Entries  []entryView `json:"entries" yaml:"entries"`
	Skipped  []string    `json:"skipped" yaml:"skipped"`
	ExitCode int         `json:"exitCode" yaml:"exitCode"`
}

func newResultView(r check.Result) resultView {
	if r.IsSuccess() {
		return resultView{Status: "success"}
	}

	v := resultView{Status: "failure", Message: r.String()}

	if f, ok := r.(check.Failure); ok {
		v.Message = f.Message
		if f.Cause != nil {
			v.Cause = f.Cause.Error()
		}
	}

	return v
}

func newReportView(r runner.Report) reportView {
	v := reportView{
		ID:       r.ID,
		Started:  r.Started,
		Checks:   append([]string{}, r.Checks...),
		Passed:   r.AllPassed(),
		Stopped:  r.Stopped,
		Entries:  []entryView{},
		Skipped:  append([]string{}, r.Skipped.Names()...),
		ExitCode: r.ExitCode(),
	}

	for _, e := range r.Entries {
		v.Entries = append(v.Entries, entryView{
			Device:   e.Device.Name,
			Serial:   e.Device.Serial,
			Check:    e.CheckType,
			Result:   newResultView(e.Result),
			Duration: e.Duration.String(),
		})
	}

	return v
}
