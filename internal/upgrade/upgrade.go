// Package upgrade walks a requirements manifest top to bottom and advances
// every requirement to the newest release its tests still pass with.
//
// The manifest is persisted before every probe, so a killed process leaves a
// manifest whose annotations resume the same search on the next run.
package upgrade

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/safepip/safe-pip-upgrade/internal/bisect"
	"github.com/safepip/safe-pip-upgrade/internal/registry"
	"github.com/safepip/safe-pip-upgrade/internal/requirement"
	"github.com/safepip/safe-pip-upgrade/internal/runner"
)

// DefaultIgnorePrefixes are the line prefixes copied through without parsing.
var DefaultIgnorePrefixes = []string{"#", "-r", "https://", "http://", "git+"}

// Store persists the manifest.
type Store interface {
	ReadLines() ([]string, error)
	WriteLines(lines []string) error
	// Backup copies the manifest to a new numbered backup and returns its path.
	Backup() (string, error)
	// SnapshotLastPass copies the manifest to the last-known-good snapshot.
	SnapshotLastPass() error
}

// Prefetcher warms release lists ahead of the sequential search.
// registry.Cache implements it.
type Prefetcher interface {
	Prefetch(ctx context.Context, pkgs []string, concurrency int, logger *slog.Logger) error
}

// Options configures an Orchestrator.
type Options struct {
	IgnorePrefixes []string
	Logger         *slog.Logger
	RunID          string
	// PrefetchConcurrency enables release prefetching when positive and the
	// registry implements Prefetcher.
	PrefetchConcurrency int
}

// Orchestrator sequences the per-requirement searches of one run.
type Orchestrator struct {
	store          Store
	tests          runner.TestRunner
	engine         *bisect.Engine
	prefetcher     Prefetcher
	prefetch       int
	ignorePrefixes []string
	logger         *slog.Logger
	runID          string
}

// New returns an Orchestrator. reg is consulted for release lists; wrap it in
// a registry.Cache so each package is fetched once per run.
func New(store Store, tests runner.TestRunner, reg bisect.Registry, opts Options) *Orchestrator {
	prefixes := opts.IgnorePrefixes
	if prefixes == nil {
		prefixes = DefaultIgnorePrefixes
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	prefetcher, _ := reg.(Prefetcher)
	return &Orchestrator{
		store:          store,
		tests:          tests,
		engine:         bisect.New(reg),
		prefetcher:     prefetcher,
		prefetch:       opts.PrefetchConcurrency,
		ignorePrefixes: prefixes,
		logger:         logger,
		runID:          opts.RunID,
	}
}

// run holds the in-memory manifest and what was last written to storage.
type run struct {
	store     Store
	lines     []string
	persisted []string
}

func (r *run) persist() error {
	if err := r.store.WriteLines(r.lines); err != nil {
		return err
	}
	r.persisted = append(r.persisted[:0], r.lines...)
	return nil
}

// persistLine writes the manifest when line i differs from storage.
func (r *run) persistLine(i int) error {
	if r.lines[i] == r.persisted[i] {
		return nil
	}
	return r.persist()
}

// Run upgrades every requirement line in manifest order. It returns the
// report together with an error wrapping ErrRunAborted when the run stopped
// early; every entry finished before the failure stays persisted.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	lines, err := o.store.ReadLines()
	if err != nil {
		return nil, err
	}
	report := &Report{
		RunID:    o.runID,
		Original: append([]string(nil), lines...),
	}
	backup, err := o.store.Backup()
	if err != nil {
		return nil, err
	}
	report.BackupPath = backup
	o.logger.Info("manifest backed up", slog.String("backup", backup))

	state := &run{
		store:     o.store,
		lines:     lines,
		persisted: append([]string(nil), lines...),
	}
	defer func() {
		report.Final = append([]string(nil), state.lines...)
	}()

	if err := o.warmReleases(ctx, lines); err != nil {
		report.Aborted = true
		return report, fmt.Errorf("%w: %w", ErrRunAborted, err)
	}

	for i, raw := range lines {
		if o.ignored(raw) {
			continue
		}
		outcome := o.upgradeLine(ctx, state, i)
		report.Probes += outcome.Probes

		switch outcome.Kind {
		case OutcomeRecoverable:
			o.logger.Info("skipping requirement",
				slog.Int("line", outcome.LineNumber),
				slog.String("reason", outcome.Err.Error()))
		case OutcomeFatal:
			report.Aborted = true
			state.lines[i] = raw
			if err := state.persistLine(i); err != nil {
				outcome.Err = fmt.Errorf("%w; restore line: %w", outcome.Err, err)
			}
			report.Outcomes = append(report.Outcomes, outcome)
			o.logger.Error("run aborted",
				slog.String("package", outcome.Package),
				slog.Int("line", outcome.LineNumber),
				slog.String("error", outcome.Err.Error()))
			return report, fmt.Errorf("%w at %s (line %d): %w", ErrRunAborted, outcome.Package, outcome.LineNumber, outcome.Err)
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	if !slices.Equal(state.lines, state.persisted) {
		if err := state.persist(); err != nil {
			return report, fmt.Errorf("%w: %w", ErrRunAborted, err)
		}
	}
	o.logger.Info("All done!", slog.Int("probes", report.Probes))
	return report, nil
}

// warmReleases prefetches the release lists of every requirement line.
func (o *Orchestrator) warmReleases(ctx context.Context, lines []string) error {
	if o.prefetcher == nil || o.prefetch <= 0 {
		return nil
	}
	var names []string
	for _, raw := range lines {
		if o.ignored(raw) {
			continue
		}
		if entry, err := requirement.Parse(raw); err == nil {
			names = append(names, entry.Name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	o.logger.Debug("prefetching releases", slog.Int("packages", len(names)))
	return o.prefetcher.Prefetch(ctx, names, o.prefetch, o.logger)
}

func (o *Orchestrator) ignored(raw string) bool {
	return IsIgnored(raw, o.ignorePrefixes)
}

// IsIgnored reports whether raw is blank or starts with one of prefixes.
// Ignored lines are copied through a run untouched.
func IsIgnored(raw string, prefixes []string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return true
	}
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

// upgradeLine runs the search for line i. On a recoverable failure the line
// is put back to its original text; a fatal failure is restored by the caller.
func (o *Orchestrator) upgradeLine(ctx context.Context, state *run, i int) Outcome {
	raw := state.lines[i]
	outcome := Outcome{LineNumber: i + 1, Before: trimLineEnding(raw), After: trimLineEnding(raw)}

	entry, err := requirement.Parse(raw)
	if err != nil {
		outcome.Kind = OutcomeRecoverable
		outcome.Err = err
		return outcome
	}
	outcome.Package = entry.Name
	logger := o.logger.With(slog.String("package", entry.Name))

	recoverOrFail := func(err error) Outcome {
		outcome.Err = err
		outcome.Kind = classify(ctx, err)
		if outcome.Kind == OutcomeRecoverable && state.lines[i] != raw {
			state.lines[i] = raw
			if perr := state.persistLine(i); perr != nil {
				outcome.Kind = OutcomeFatal
				outcome.Err = fmt.Errorf("%w; restore line: %w", err, perr)
			}
		}
		return outcome
	}

	if err := o.engine.Prepare(ctx, entry); err != nil {
		return recoverOrFail(err)
	}

	for {
		step, err := o.engine.Advance(ctx, entry)
		if err != nil {
			return recoverOrFail(err)
		}
		if step.Done {
			break
		}

		state.lines[i] = render(raw, entry)
		if err := state.persist(); err != nil {
			outcome.Kind = OutcomeFatal
			outcome.Err = err
			return outcome
		}
		outcome.Probes++

		probe := logger.With(slog.String("candidate", step.Candidate))
		probe.Info("try upgrade requirements", slog.Int("probe", outcome.Probes))
		passed, err := o.tests.RunTests(ctx)
		if err != nil {
			outcome.Kind = OutcomeFatal
			outcome.Err = err
			return outcome
		}
		if passed {
			probe.Info("requirements was upgraded")
			if err := o.store.SnapshotLastPass(); err != nil {
				probe.Warn("last pass snapshot failed", slog.String("error", err.Error()))
			}
			continue
		}
		probe.Info("upgrade failed")
		o.engine.RecordResult(entry, false)
	}

	state.lines[i] = render(raw, entry)
	if err := state.persistLine(i); err != nil {
		outcome.Kind = OutcomeFatal
		outcome.Err = err
		return outcome
	}
	outcome.Kind = OutcomeOK
	outcome.After = trimLineEnding(state.lines[i])
	logger.Info("requirement finished",
		slog.String("line", outcome.After),
		slog.Int("probes", outcome.Probes))
	return outcome
}

// classify separates per-entry failures from failures that must stop the run.
func classify(ctx context.Context, err error) OutcomeKind {
	if ctx.Err() != nil {
		return OutcomeFatal
	}
	if requirement.IsRecognizeError(err) || registry.IsError(err) {
		return OutcomeRecoverable
	}
	return OutcomeFatal
}

func trimLineEnding(line string) string {
	return strings.TrimRight(line, "\r\n")
}

// render returns the manifest text of entry for the line that read raw. raw is
// kept when it already describes entry; otherwise raw's line ending is reused,
// so a last line without a newline stays without one.
func render(raw string, entry *requirement.Entry) string {
	line := entry.Line()
	if original, err := requirement.Parse(raw); err == nil && original.Line() == line {
		return raw
	}
	return trimLineEnding(line) + raw[len(trimLineEnding(raw)):]
}

func versionOf(line string) string {
	entry, err := requirement.Parse(line)
	if err != nil {
		return ""
	}
	return entry.Version
}
