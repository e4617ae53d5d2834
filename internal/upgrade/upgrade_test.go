package upgrade

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safepip/safe-pip-upgrade/internal/registry"
	"github.com/safepip/safe-pip-upgrade/internal/runner"
)

func TestRunAllProbesFail(t *testing.T) {
	store := newMemStore("ppci~=0.5")
	tests := &maxVersionTests{store: store, max: map[string]string{"ppci": "0.5"}}

	report, err := New(store, tests, packagesRegistry(), Options{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "ppci==0.5 # the latest working version\n", store.text())
	assert.Equal(t, []string{
		"ppci==0.5.7\n",
		"ppci==0.5.3 # error on the version 0.5.7\n",
		"ppci==0.5.1 # error on the version 0.5.3\n",
		"ppci==0.5 # the latest working version\n",
	}, store.writtenLine(0))
	assert.Equal(t, 3, tests.calls)
	assert.Equal(t, 3, report.Probes)
	assert.Equal(t, 0, store.snapshots)
	assert.Equal(t, 1, store.backups)
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, OutcomeOK, report.Outcomes[0].Kind)
	assert.False(t, report.Outcomes[0].Upgraded())
}

func TestRunFirstProbePasses(t *testing.T) {
	store := newMemStore("ppci~=0.5")
	tests := &maxVersionTests{store: store}

	report, err := New(store, tests, packagesRegistry(), Options{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "ppci==0.5.7\n", store.text())
	assert.Len(t, store.writes, 1)
	assert.Equal(t, 1, tests.calls)
	assert.Equal(t, 1, store.snapshots)
	require.Len(t, report.Outcomes, 1)
	assert.True(t, report.Outcomes[0].Upgraded())
	assert.Equal(t, "0.5", report.Outcomes[0].From())
	assert.Equal(t, "0.5.7", report.Outcomes[0].To())
}

func TestRunBisectsToBoundary(t *testing.T) {
	store := newMemStore("ppci==0.5")
	tests := &maxVersionTests{store: store, max: map[string]string{"ppci": "0.5.4"}}

	_, err := New(store, tests, packagesRegistry(), Options{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "ppci==0.5.4 # the latest working version\n", store.text())
	assert.LessOrEqual(t, tests.calls, 4)
}

func TestRunAlreadyLatest(t *testing.T) {
	store := newMemStore("ppci==0.5.7")
	tests := &maxVersionTests{store: store}

	report, err := New(store, tests, packagesRegistry(), Options{}).Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, store.writes)
	assert.Zero(t, tests.calls)
	assert.Equal(t, "ppci==0.5.7\n", store.text())
	require.Len(t, report.Outcomes, 1)
	assert.Zero(t, report.Outcomes[0].Probes)
}

func TestRunResumesMixedManifest(t *testing.T) {
	store := newMemStore(
		"p-1==0.0.2",
		"p-2==0.0.2",
		"p-3==0.0.1 # error on the version 0.0.3  ",
		"p-4==0.0.4",
	)
	tests := &maxVersionTests{store: store, max: map[string]string{
		"p-1": "0.0.3",
		"p-2": "0.0.4",
		"p-3": "0.0.3",
		"p-4": "0.0.4",
	}}

	report, err := New(store, tests, packagesRegistry(), Options{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "p-1==0.0.3 # the latest working version\n"+
		"p-2==0.0.4\n"+
		"p-3==0.0.2 # the latest working version\n"+
		"p-4==0.0.4\n", store.text())
	assert.Equal(t, 4, tests.calls)
	assert.Equal(t, Counts{Upgraded: 3, Unchanged: 1}, report.Counts())
}

func TestRunIsIdempotent(t *testing.T) {
	reg := packagesRegistry()
	store := newMemStore(
		"p-1==0.0.3 # the latest working version",
		"p-2==0.0.4",
		"p-3==0.0.2 # the latest working version",
		"p-4==0.0.4",
	)
	tests := &maxVersionTests{store: store}

	report, err := New(store, tests, reg, Options{}).Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, store.writes)
	assert.Zero(t, tests.calls)
	assert.Zero(t, report.Probes)
	assert.Empty(t, report.Diff("requirements.txt"))
	assert.ElementsMatch(t, []string{"p-2", "p-2", "p-4", "p-4"}, reg.lookups)
}

func TestRunLeavesFinishedLinesByteForByte(t *testing.T) {
	store := &memStore{lines: []string{
		"p-2==0.0.4\r\n",
		"p-3==0.0.2   #  the latest working version\n",
		"p-4==0.0.4",
	}}
	tests := &maxVersionTests{store: store}

	report, err := New(store, tests, packagesRegistry(), Options{}).Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, store.writes)
	assert.Zero(t, tests.calls)
	assert.Equal(t, "p-2==0.0.4\r\np-3==0.0.2   #  the latest working version\np-4==0.0.4", store.text())
	assert.Equal(t, Counts{Unchanged: 3}, report.Counts())
}

func TestRunKeepsMissingFinalNewline(t *testing.T) {
	store := &memStore{lines: []string{"p-1==0.0.1\r\n", "p-2==0.0.1"}}
	tests := &maxVersionTests{store: store, max: map[string]string{"p-1": "0.0.4", "p-2": "0.0.2"}}

	_, err := New(store, tests, packagesRegistry(), Options{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "p-1==0.0.4\r\np-2==0.0.2 # the latest working version", store.text())
	for _, w := range store.writes {
		assert.NotContains(t, w[1], "\n")
	}
}

func TestRunAbortsOnRunnerFailure(t *testing.T) {
	store := newMemStore(
		"p-1==0.0.2",
		"p-2==0.0.2",
		"p-3==0.0.1 # error on the version 0.0.3",
		"p-4==0.0.2",
	)
	infra := &runner.Error{Op: "run tests", Err: runner.ErrTimeout}
	tests := &maxVersionTests{store: store, max: map[string]string{"p-1": "0.0.3"}, failOn: 4, err: infra}

	report, err := New(store, tests, packagesRegistry(), Options{}).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRunAborted)
	assert.ErrorIs(t, err, runner.ErrTimeout)
	assert.Contains(t, err.Error(), "p-3 (line 3)")

	assert.Equal(t, "p-1==0.0.3 # the latest working version\n"+
		"p-2==0.0.4\n"+
		"p-3==0.0.1 # error on the version 0.0.3\n"+
		"p-4==0.0.2\n", store.text())
	assert.True(t, report.Aborted)
	halted, ok := report.Halted()
	require.True(t, ok)
	assert.Equal(t, "p-3", halted.Package)
	assert.Equal(t, 3, halted.LineNumber)
	assert.Len(t, report.Outcomes, 3)
	assert.Equal(t, store.lines, report.Final)
}

func TestRunSkipsRecoverableLines(t *testing.T) {
	store := newMemStore(
		"# pinned by ops",
		"",
		"-r base.txt",
		"git+https://example.com/repo.git",
		"missing==1.0",
		"ppci==0.5 # keep until the migration lands",
		"p-1==9.9",
		"p-2==0.0.3",
	)
	tests := &maxVersionTests{store: store}

	report, err := New(store, tests, packagesRegistry(), Options{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "# pinned by ops\n"+
		"\n"+
		"-r base.txt\n"+
		"git+https://example.com/repo.git\n"+
		"missing==1.0\n"+
		"ppci==0.5 # keep until the migration lands\n"+
		"p-1==9.9\n"+
		"p-2==0.0.4\n", store.text())
	require.Len(t, report.Outcomes, 4)
	assert.Equal(t, Counts{Upgraded: 1, Skipped: 3}, report.Counts())
	for _, o := range report.Outcomes[:3] {
		assert.Equal(t, OutcomeRecoverable, o.Kind)
		assert.Error(t, o.Err)
	}
	assert.True(t, registry.IsError(report.Outcomes[0].Err))
	assert.Equal(t, 5, report.Outcomes[0].LineNumber)
}

func TestRunCustomIgnorePrefixes(t *testing.T) {
	store := newMemStore("p-1==0.0.1", "p-2==0.0.1")
	tests := &maxVersionTests{store: store}

	report, err := New(store, tests, packagesRegistry(), Options{IgnorePrefixes: []string{"p-2"}}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "p-1==0.0.4\np-2==0.0.1\n", store.text())
	assert.Len(t, report.Outcomes, 1)
}

func TestRunCanceledContextIsFatal(t *testing.T) {
	store := newMemStore("p-1==0.0.1")
	tests := &maxVersionTests{store: store}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := New(store, tests, packagesRegistry(), Options{}).Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRunAborted)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, report.Aborted)
	assert.Equal(t, "p-1==0.0.1\n", store.text())
	assert.Zero(t, tests.calls)
}

func TestRunWriteFailureIsFatal(t *testing.T) {
	store := newMemStore("p-1==0.0.1")
	store.writeErr = errors.New("disk full")
	tests := &maxVersionTests{store: store}

	report, err := New(store, tests, packagesRegistry(), Options{}).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRunAborted)
	assert.Contains(t, err.Error(), "disk full")
	assert.Zero(t, tests.calls)
	assert.True(t, report.Aborted)
}

func TestRunPrefetchesReleases(t *testing.T) {
	reg := &prefetchingRegistry{fakeRegistry: packagesRegistry()}
	store := newMemStore("# header", "p-1==0.0.4", "bad line # ???", "p-2==0.0.4")
	tests := &maxVersionTests{store: store}

	_, err := New(store, tests, reg, Options{PrefetchConcurrency: 3}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"p-1", "p-2"}, reg.prefetched)
	assert.Equal(t, 3, reg.concurrency)
}

func TestRunPrefetchDisabled(t *testing.T) {
	reg := &prefetchingRegistry{fakeRegistry: packagesRegistry()}
	store := newMemStore("p-1==0.0.4")

	_, err := New(store, &maxVersionTests{store: store}, reg, Options{}).Run(context.Background())
	require.NoError(t, err)
	assert.Nil(t, reg.prefetched)
}

func TestRunPrefetchFailureAborts(t *testing.T) {
	reg := &prefetchingRegistry{fakeRegistry: packagesRegistry(), err: context.DeadlineExceeded}
	store := newMemStore("p-1==0.0.1")
	tests := &maxVersionTests{store: store}

	report, err := New(store, tests, reg, Options{PrefetchConcurrency: 1}).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRunAborted)
	assert.True(t, report.Aborted)
	assert.Empty(t, store.writes)
	assert.Equal(t, []string{"p-1==0.0.1\n"}, report.Final)
}
