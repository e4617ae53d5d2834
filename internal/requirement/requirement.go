// Package requirement parses and renders requirement manifest lines.
//
// The trailing comment of a rendered line records how far the upgrade search
// for that package got, so a manifest written mid-run can be parsed again to
// resume the same search:
//
//	ppci==0.5.7                                  newest release, nothing to try
//	ppci==0.5 # the latest working version       search finished
//	ppci==0.5.1 # error on the version 0.5.3     0.5.3 failed; try between them
package requirement

import (
	"fmt"
	"regexp"
	"strings"
)

// State is the search progress recorded for a requirement.
type State int

const (
	// StateLatestVersion means no failure is recorded; the next probe is the newest release.
	StateLatestVersion State = iota
	// StateFinalLatestVersion means the search concluded; the entry is never probed again.
	StateFinalLatestVersion
	// StateNotLatestVersion means ErrorVersion failed and versions between it and Version remain.
	StateNotLatestVersion
)

func (s State) String() string {
	switch s {
	case StateLatestVersion:
		return "latest"
	case StateFinalLatestVersion:
		return "final"
	case StateNotLatestVersion:
		return "bisecting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Annotation texts written after "# ".
const (
	FinalLatestMarker  = "the latest working version"
	errorVersionPrefix = "error on the version"
)

var (
	packageSeparators = regexp.MustCompile(`[>=<~\s,]+`)
	errorAnnotation   = regexp.MustCompile(`error on the version (\S+)`)
)

// Entry is one parsed requirement.
type Entry struct {
	// Name is the package name as written in the manifest.
	Name string
	// Version is the version currently written for the entry; empty for an unpinned line.
	Version string
	// PreviousVersion is the last version confirmed to pass, used to roll back a failed probe.
	PreviousVersion string
	// ErrorVersion is a version known to fail; set only in StateNotLatestVersion.
	ErrorVersion string
	State        State
}

// Parse reads one manifest line.
func Parse(line string) (*Entry, error) {
	pkg, comment := SplitLine(line)
	if pkg == "" {
		return nil, &RecognizeError{Line: line, Reason: ReasonMissingPackage}
	}
	entry := &Entry{}
	entry.Name, entry.Version = splitPackage(pkg)
	if entry.Name == "" {
		return nil, &RecognizeError{Line: line, Reason: ReasonMissingPackage}
	}
	if err := entry.recognizeComment(line, comment); err != nil {
		return nil, err
	}
	return entry, nil
}

// SplitLine separates the package clause from the comment clause at the first
// unescaped "#". Both parts are trimmed.
func SplitLine(line string) (pkg string, comment string) {
	for i := 0; i < len(line); i++ {
		if line[i] != '#' {
			continue
		}
		if i > 0 && line[i-1] == '\\' {
			continue
		}
		return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:])
	}
	return strings.TrimSpace(line), ""
}

// splitPackage tokenizes "name>=1.0,<2" into name and the first version token.
func splitPackage(pkg string) (name string, version string) {
	tokens := packageSeparators.Split(pkg, -1)
	name = tokens[0]
	if len(tokens) > 1 {
		version = tokens[1]
	}
	return name, version
}

func (e *Entry) recognizeComment(line string, comment string) error {
	switch {
	case comment == "":
		e.State = StateLatestVersion
	case strings.Contains(comment, FinalLatestMarker):
		e.State = StateFinalLatestVersion
	default:
		match := errorAnnotation.FindStringSubmatch(comment)
		if match == nil {
			return &RecognizeError{Line: line, Reason: ReasonUnknownAnnotation}
		}
		e.State = StateNotLatestVersion
		e.ErrorVersion = match[1]
	}
	return nil
}

// Line renders the entry as a manifest line ending in a single newline.
func (e *Entry) Line() string {
	var b strings.Builder
	b.WriteString(e.Name)
	b.WriteString("==")
	b.WriteString(e.Version)
	switch e.State {
	case StateFinalLatestVersion:
		b.WriteString(" # ")
		b.WriteString(FinalLatestMarker)
	case StateNotLatestVersion:
		b.WriteString(" # ")
		b.WriteString(errorVersionPrefix)
		b.WriteString(" ")
		b.WriteString(e.ErrorVersion)
	}
	b.WriteString("\n")
	return b.String()
}

// Pinned reports whether the line names a version.
func (e *Entry) Pinned() bool {
	return e.Version != ""
}
