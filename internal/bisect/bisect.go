// Package bisect drives the per-requirement version search.
//
// The first probe jumps straight to the newest release. When a probe fails the
// failed version becomes the exclusive upper bound and the search halves the
// interval between it and the last passing version until no release is left
// between them.
package bisect

import (
	"context"

	"github.com/safepip/safe-pip-upgrade/internal/registry"
	"github.com/safepip/safe-pip-upgrade/internal/requirement"
	"github.com/safepip/safe-pip-upgrade/internal/version"
)

// Registry provides ordered release lists.
type Registry interface {
	Releases(ctx context.Context, pkg string) (registry.Releases, error)
}

// Step is the result of one Advance call.
type Step struct {
	// Candidate is the version to probe; empty when Done.
	Candidate string
	// Done reports that the search for the entry is finished.
	Done bool
}

// Engine decides which version to probe next.
type Engine struct {
	registry Registry
}

// New returns an Engine backed by reg.
func New(reg Registry) *Engine {
	return &Engine{registry: reg}
}

// Prepare checks that entry can be searched against the published releases.
// An unpinned entry is pinned to the newest release. A pinned or failed version
// that is not a published release is a RecognizeError.
func (e *Engine) Prepare(ctx context.Context, entry *requirement.Entry) error {
	if entry.State == requirement.StateFinalLatestVersion && entry.Pinned() {
		return nil
	}
	releases, err := e.registry.Releases(ctx, entry.Name)
	if err != nil {
		return err
	}
	latest, ok := releases.Latest()
	if !ok {
		return &requirement.RecognizeError{Line: entry.Line(), Reason: requirement.ReasonUnknownVersion}
	}
	if !entry.Pinned() {
		entry.Version = latest.String()
	}
	if _, ok := releases.IndexOf(entry.Version); !ok {
		return &requirement.RecognizeError{Line: entry.Line(), Reason: requirement.ReasonUnknownVersion}
	}
	if entry.State == requirement.StateNotLatestVersion {
		if _, ok := releases.IndexOf(entry.ErrorVersion); !ok {
			return &requirement.RecognizeError{Line: entry.Line(), Reason: requirement.ReasonUnknownVersion}
		}
	}
	return nil
}

// Advance performs one state transition on entry and proposes the next
// version to probe. When it returns a candidate, entry.Version already holds it
// and entry.PreviousVersion holds the version to roll back to.
func (e *Engine) Advance(ctx context.Context, entry *requirement.Entry) (Step, error) {
	if entry.State == requirement.StateFinalLatestVersion {
		return Step{Done: true}, nil
	}
	releases, err := e.registry.Releases(ctx, entry.Name)
	if err != nil {
		return Step{}, err
	}

	var candidate version.Version
	if entry.State == requirement.StateNotLatestVersion {
		lower, err := parseIn(releases, entry, entry.Version)
		if err != nil {
			return Step{}, err
		}
		upper, err := parseIn(releases, entry, entry.ErrorVersion)
		if err != nil {
			return Step{}, err
		}
		middle, ok := releases.Middle(lower, upper)
		if !ok {
			entry.State = requirement.StateFinalLatestVersion
			return Step{Done: true}, nil
		}
		candidate = middle
	} else {
		latest, ok := releases.Latest()
		if !ok {
			return Step{Done: true}, nil
		}
		if entry.Pinned() {
			current, err := version.Parse(entry.Version)
			if err == nil && current.Equal(latest) {
				return Step{Done: true}, nil
			}
		}
		candidate = latest
	}

	entry.PreviousVersion = entry.Version
	entry.Version = candidate.String()
	return Step{Candidate: entry.Version}, nil
}

// RecordResult applies the outcome of probing entry.Version. A pass keeps the
// state so the next Advance keeps climbing; a failure records the version as
// the new upper bound and rolls back to the last passing version.
func (e *Engine) RecordResult(entry *requirement.Entry, passed bool) {
	if passed {
		return
	}
	entry.State = requirement.StateNotLatestVersion
	entry.ErrorVersion = entry.Version
	entry.Version = entry.PreviousVersion
}

func parseIn(releases registry.Releases, entry *requirement.Entry, raw string) (version.Version, error) {
	v, err := version.Parse(raw)
	if err != nil {
		return version.Version{}, &requirement.RecognizeError{Line: entry.Line(), Reason: requirement.ReasonUnknownVersion}
	}
	if _, ok := releases.Index(v); !ok {
		return version.Version{}, &requirement.RecognizeError{Line: entry.Line(), Reason: requirement.ReasonUnknownVersion}
	}
	return v, nil
}
