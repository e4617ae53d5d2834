package upgrade

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/safepip/safe-pip-upgrade/internal/registry"
	"github.com/safepip/safe-pip-upgrade/internal/requirement"
	"github.com/safepip/safe-pip-upgrade/internal/version"
)

// memStore keeps the manifest in memory and records every write.
type memStore struct {
	lines     []string
	writes    [][]string
	backups   int
	snapshots int
	writeErr  error
}

func newMemStore(lines ...string) *memStore {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, line+"\n")
	}
	return &memStore{lines: out}
}

func (s *memStore) ReadLines() ([]string, error) {
	return slices.Clone(s.lines), nil
}

func (s *memStore) WriteLines(lines []string) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.lines = slices.Clone(lines)
	s.writes = append(s.writes, slices.Clone(lines))
	return nil
}

func (s *memStore) Backup() (string, error) {
	s.backups++
	return "requirements_backup_1.txt", nil
}

func (s *memStore) SnapshotLastPass() error {
	s.snapshots++
	return nil
}

func (s *memStore) text() string {
	return strings.Join(s.lines, "")
}

// writtenLine returns line i of every write.
func (s *memStore) writtenLine(i int) []string {
	out := make([]string, 0, len(s.writes))
	for _, w := range s.writes {
		out = append(out, w[i])
	}
	return out
}

// maxVersionTests passes when every pinned package in the manifest on disk is
// at or below its highest working version.
type maxVersionTests struct {
	store *memStore
	max   map[string]string
	calls int
	// failOn makes the nth call (1-based) return err.
	failOn int
	err    error
}

func (m *maxVersionTests) RunTests(ctx context.Context) (bool, error) {
	m.calls++
	if m.failOn > 0 && m.calls == m.failOn {
		return false, m.err
	}
	for _, line := range m.store.lines {
		entry, err := requirement.Parse(line)
		if err != nil || !entry.Pinned() {
			continue
		}
		limit, ok := m.max[entry.Name]
		if !ok {
			continue
		}
		if version.MustParse(limit).Less(version.MustParse(entry.Version)) {
			return false, nil
		}
	}
	return true, nil
}

// fakeRegistry serves fixed release lists.
type fakeRegistry struct {
	releases map[string][]string
	mu       sync.Mutex
	lookups  []string
}

func (f *fakeRegistry) Releases(ctx context.Context, pkg string) (registry.Releases, error) {
	if err := ctx.Err(); err != nil {
		return registry.Releases{}, err
	}
	f.mu.Lock()
	f.lookups = append(f.lookups, pkg)
	f.mu.Unlock()
	raw, ok := f.releases[pkg]
	if !ok {
		return registry.Releases{}, &registry.Error{Package: pkg, Err: errors.New("not found")}
	}
	versions := make([]version.Version, 0, len(raw))
	for _, r := range raw {
		versions = append(versions, version.MustParse(r))
	}
	return registry.NewReleases(pkg, versions), nil
}

// prefetchingRegistry records Prefetch calls.
type prefetchingRegistry struct {
	*fakeRegistry
	prefetched  []string
	concurrency int
	err         error
}

func (p *prefetchingRegistry) Prefetch(_ context.Context, pkgs []string, concurrency int, _ *slog.Logger) error {
	p.prefetched = slices.Clone(pkgs)
	p.concurrency = concurrency
	return p.err
}

var fourReleases = []string{"0.0.1", "0.0.2", "0.0.3", "0.0.4"}

func packagesRegistry() *fakeRegistry {
	return &fakeRegistry{releases: map[string][]string{
		"ppci": {"0.5", "0.5.1", "0.5.2", "0.5.3", "0.5.4", "0.5.5", "0.5.6", "0.5.7"},
		"p-1":  fourReleases,
		"p-2":  fourReleases,
		"p-3":  fourReleases,
		"p-4":  fourReleases,
	}}
}
