package upgrade

import (
	"fmt"
	"io"
	"strings"

	udiff "github.com/aymanbagabas/go-udiff"
	"github.com/fatih/color"

	"github.com/safepip/safe-pip-upgrade/internal/messages"
)

// Report summarizes one run.
type Report struct {
	RunID      string
	BackupPath string
	Outcomes   []Outcome
	// Original and Final are the manifest lines before and after the run.
	Original []string
	Final    []string
	Probes   int
	Aborted  bool
}

// Counts tallies the outcomes of a run.
type Counts struct {
	Upgraded  int
	Unchanged int
	Skipped   int
}

// Counts returns the number of upgraded, unchanged, and skipped requirements.
func (r *Report) Counts() Counts {
	var c Counts
	for _, o := range r.Outcomes {
		switch {
		case o.Kind == OutcomeRecoverable:
			c.Skipped++
		case o.Upgraded():
			c.Upgraded++
		case o.Kind == OutcomeOK:
			c.Unchanged++
		}
	}
	return c
}

// Halted returns the outcome that stopped the run, if any.
func (r *Report) Halted() (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Kind == OutcomeFatal {
			return o, true
		}
	}
	return Outcome{}, false
}

// Diff returns a unified diff of the manifest before and after the run, or ""
// when nothing changed.
func (r *Report) Diff(name string) string {
	before := strings.Join(r.Original, "")
	after := strings.Join(r.Final, "")
	if before == after {
		return ""
	}
	return udiff.Unified(name, name, before, after)
}

// Render writes a human-readable summary of r to out.
func Render(out io.Writer, r *Report, manifestName string) error {
	if r == nil {
		return nil
	}
	for _, o := range r.Outcomes {
		var line string
		switch {
		case o.Kind == OutcomeFatal:
			line = color.RedString(messages.ReportFatalFmt, o.LineNumber, o.Package, o.Err)
		case o.Kind == OutcomeRecoverable:
			line = color.YellowString(messages.ReportSkippedFmt, o.LineNumber, o.Err)
		case o.Upgraded():
			line = color.GreenString(messages.ReportUpgradedFmt, o.Package, o.From(), o.To(), o.Probes)
		default:
			line = fmt.Sprintf(messages.ReportUnchangedFmt, o.Package, o.To(), o.Probes)
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}

	if diff := r.Diff(manifestName); diff != "" {
		if _, err := fmt.Fprintln(out); err != nil {
			return err
		}
		if _, err := fmt.Fprint(out, diff); err != nil {
			return err
		}
	}

	c := r.Counts()
	summary := fmt.Sprintf(messages.ReportSummaryFmt, c.Upgraded, c.Unchanged, c.Skipped, r.Probes)
	if r.BackupPath != "" {
		if _, err := fmt.Fprintf(out, messages.ReportBackupFmt, r.BackupPath); err != nil {
			return err
		}
	}
	if r.Aborted {
		if halted, ok := r.Halted(); ok {
			_, err := fmt.Fprintln(out, color.RedString(messages.ReportAbortedFmt, halted.Package, summary))
			return err
		}
	}
	_, err := fmt.Fprintln(out, color.GreenString(messages.ReportDoneFmt, summary))
	return err
}
