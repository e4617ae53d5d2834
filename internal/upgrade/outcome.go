package upgrade

import (
	"errors"
	"fmt"

	"github.com/safepip/safe-pip-upgrade/internal/messages"
)

// ErrRunAborted reports that the run stopped before the end of the manifest
// because the test environment or the manifest storage failed.
var ErrRunAborted = errors.New(messages.UpgradeRunAborted)

// OutcomeKind classifies how the search for one requirement line ended.
type OutcomeKind int

const (
	// OutcomeOK means the search ran to completion and the line holds its result.
	OutcomeOK OutcomeKind = iota
	// OutcomeRecoverable means the line was left untouched and the run moved on.
	OutcomeRecoverable
	// OutcomeFatal means the line was restored and the run stopped.
	OutcomeFatal
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "ok"
	case OutcomeRecoverable:
		return "skipped"
	case OutcomeFatal:
		return "fatal"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is the result of processing one requirement line.
type Outcome struct {
	Kind OutcomeKind
	// LineNumber is 1-based.
	LineNumber int
	Package    string
	// Before and After are the line text without its line ending.
	Before string
	After  string
	Probes int
	Err    error
}

// Upgraded reports whether the pinned version moved.
func (o Outcome) Upgraded() bool {
	return o.Kind == OutcomeOK && o.From() != o.To()
}

// From returns the version pinned before the search, or "" when unpinned.
func (o Outcome) From() string {
	return versionOf(o.Before)
}

// To returns the version pinned after the search.
func (o Outcome) To() string {
	return versionOf(o.After)
}
