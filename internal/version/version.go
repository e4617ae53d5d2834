// Package version parses release identifiers published by a package index and
// orders them.
package version

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	goversion "github.com/hashicorp/go-version"

	"github.com/safepip/safe-pip-upgrade/internal/messages"
)

// pep440 matches the public version scheme used by Python package indexes:
// [N!]N(.N)*[{a|b|rc}N][.postN][.devN][+local], with the alternate spellings
// the index accepts.
var pep440 = regexp.MustCompile(`^v?` +
	`(?:(?P<epoch>[0-9]+)!)?` +
	`(?P<release>[0-9]+(?:\.[0-9]+)*)` +
	`(?P<pre>[-_.]?(?P<pre_l>alpha|beta|preview|pre|a|b|c|rc)[-_.]?(?P<pre_n>[0-9]+)?)?` +
	`(?P<post>-(?P<post_n1>[0-9]+)|[-_.]?(?P<post_l>post|rev|r)[-_.]?(?P<post_n2>[0-9]+)?)?` +
	`(?P<dev>[-_.]?dev[-_.]?(?P<dev_n>[0-9]+)?)?` +
	`(?:\+(?P<local>[a-z0-9]+(?:[-_.][a-z0-9]+)*))?$`)

var localSeparators = regexp.MustCompile(`[-_.]`)

var errSyntax = errors.New(messages.VersionSyntaxInvalid)

// preLabels maps every pre-release spelling to its rank.
var preLabels = map[string]int{
	"a": 0, "alpha": 0,
	"b": 1, "beta": 1,
	"c": 2, "rc": 2, "pre": 2, "preview": 2,
}

type preRelease struct {
	rank int
	num  int
}

// Version is a parsed release identifier. String returns the text it was
// parsed from, so a manifest keeps the spelling the index publishes.
type Version struct {
	raw     string
	epoch   int
	release *goversion.Version
	pre     *preRelease
	// post and dev are -1 when absent.
	post  int
	dev   int
	local []string
}

// Parse converts raw into a Version.
func Parse(raw string) (Version, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Version{}, errors.New(messages.VersionRequired)
	}
	m := pep440.FindStringSubmatch(strings.ToLower(trimmed))
	if m == nil {
		return Version{}, fmt.Errorf(messages.VersionInvalidFmt, raw, errSyntax)
	}
	group := func(name string) string {
		return m[pep440.SubexpIndex(name)]
	}

	release, err := goversion.NewVersion(group("release"))
	if err != nil {
		return Version{}, fmt.Errorf(messages.VersionInvalidFmt, raw, err)
	}
	v := Version{raw: trimmed, release: release, post: -1, dev: -1}

	if v.epoch, err = number(group("epoch"), 0); err != nil {
		return Version{}, fmt.Errorf(messages.VersionInvalidFmt, raw, err)
	}
	if label := group("pre_l"); label != "" {
		n, err := number(group("pre_n"), 0)
		if err != nil {
			return Version{}, fmt.Errorf(messages.VersionInvalidFmt, raw, err)
		}
		v.pre = &preRelease{rank: preLabels[label], num: n}
	}
	if group("post") != "" {
		if v.post, err = number(group("post_n1")+group("post_n2"), 0); err != nil {
			return Version{}, fmt.Errorf(messages.VersionInvalidFmt, raw, err)
		}
	}
	if group("dev") != "" {
		if v.dev, err = number(group("dev_n"), 0); err != nil {
			return Version{}, fmt.Errorf(messages.VersionInvalidFmt, raw, err)
		}
	}
	if local := group("local"); local != "" {
		v.local = localSeparators.Split(local, -1)
	}
	return v, nil
}

func number(s string, fallback int) (int, error) {
	if s == "" {
		return fallback, nil
	}
	return strconv.Atoi(s)
}

// MustParse is like Parse but panics on invalid input. Intended for tests and constants.
func MustParse(raw string) Version {
	v, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the original release identifier.
func (v Version) String() string {
	return v.raw
}

// IsZero reports whether v was never parsed.
func (v Version) IsZero() bool {
	return v.release == nil
}

// IsPrerelease reports whether v is an alpha, beta, release candidate, or dev
// build. Post-releases are stable.
func (v Version) IsPrerelease() bool {
	return v.pre != nil || v.dev >= 0
}

// Compare returns -1, 0, or 1 when v is older than, equal to, or newer than other.
// Zero values sort before everything else.
func (v Version) Compare(other Version) int {
	switch {
	case v.release == nil && other.release == nil:
		return 0
	case v.release == nil:
		return -1
	case other.release == nil:
		return 1
	}
	if c := compareInts(v.epoch, other.epoch); c != 0 {
		return c
	}
	if c := v.release.Compare(other.release); c != 0 {
		return c
	}
	if c := comparePre(v.preKey(), other.preKey()); c != 0 {
		return c
	}
	if c := compareInts(v.post, other.post); c != 0 {
		return c
	}
	if c := compareInts(v.devKey(), other.devKey()); c != 0 {
		return c
	}
	return compareLocal(v.local, other.local)
}

// preKey orders a bare dev release below every pre-release of the same
// release, and a final release above them.
func (v Version) preKey() [3]int {
	switch {
	case v.pre == nil && v.post < 0 && v.dev >= 0:
		return [3]int{0, 0, 0}
	case v.pre != nil:
		return [3]int{1, v.pre.rank, v.pre.num}
	default:
		return [3]int{2, 0, 0}
	}
}

func (v Version) devKey() int {
	if v.dev < 0 {
		return math.MaxInt
	}
	return v.dev
}

// Equal reports whether v and other denote the same release ("0.5" equals "0.5.0").
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}

// Less reports whether v is older than other.
func (v Version) Less(other Version) bool {
	return v.Compare(other) < 0
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func comparePre(a, b [3]int) int {
	for i := range a {
		if c := compareInts(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

// compareLocal orders local labels: none sorts first, numeric parts compare
// as numbers and sort above alphanumeric parts.
func compareLocal(a, b []string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		an, aErr := strconv.Atoi(a[i])
		bn, bErr := strconv.Atoi(b[i])
		switch {
		case aErr == nil && bErr == nil:
			if c := compareInts(an, bn); c != 0 {
				return c
			}
		case aErr == nil:
			return 1
		case bErr == nil:
			return -1
		default:
			if c := strings.Compare(a[i], b[i]); c != 0 {
				return c
			}
		}
	}
	return compareInts(len(a), len(b))
}
