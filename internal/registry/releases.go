package registry

import (
	"sort"

	"github.com/safepip/safe-pip-upgrade/internal/version"
)

// Releases is the ascending list of stable releases of one package.
type Releases struct {
	Package  string
	versions []version.Version
}

// NewReleases builds a Releases list from versions. Pre-releases and duplicates
// are dropped and the remainder is sorted ascending.
func NewReleases(pkg string, versions []version.Version) Releases {
	stable := make([]version.Version, 0, len(versions))
	for _, v := range versions {
		if v.IsZero() || v.IsPrerelease() {
			continue
		}
		stable = append(stable, v)
	}
	sort.SliceStable(stable, func(i, j int) bool {
		return stable[i].Less(stable[j])
	})
	out := stable[:0]
	for i, v := range stable {
		if i > 0 && v.Equal(out[len(out)-1]) {
			continue
		}
		out = append(out, v)
	}
	return Releases{Package: pkg, versions: out}
}

// Len returns the number of releases.
func (r Releases) Len() int {
	return len(r.versions)
}

// Latest returns the newest release. ok is false when the package has no releases.
func (r Releases) Latest() (version.Version, bool) {
	if len(r.versions) == 0 {
		return version.Version{}, false
	}
	return r.versions[len(r.versions)-1], true
}

// Index returns the position of v, or false when v is not a published release.
func (r Releases) Index(v version.Version) (int, bool) {
	i := sort.Search(len(r.versions), func(i int) bool {
		return !r.versions[i].Less(v)
	})
	if i < len(r.versions) && r.versions[i].Equal(v) {
		return i, true
	}
	return -1, false
}

// IndexOf parses raw and returns its position.
func (r Releases) IndexOf(raw string) (int, bool) {
	v, err := version.Parse(raw)
	if err != nil {
		return -1, false
	}
	return r.Index(v)
}

// Next returns the release directly after v. ok is false when v is the newest
// release or is not published.
func (r Releases) Next(v version.Version) (version.Version, bool) {
	i, found := r.Index(v)
	if !found || i+1 >= len(r.versions) {
		return version.Version{}, false
	}
	return r.versions[i+1], true
}

// Middle returns the release halfway between lower and upper (exclusive). A
// zero upper means "past the newest release". ok is false when fewer than two
// positions separate the bounds or either bound is not published.
func (r Releases) Middle(lower version.Version, upper version.Version) (version.Version, bool) {
	lo, found := r.Index(lower)
	if !found {
		return version.Version{}, false
	}
	hi := len(r.versions)
	if !upper.IsZero() {
		if hi, found = r.Index(upper); !found {
			return version.Version{}, false
		}
	}
	if hi-lo <= 1 {
		return version.Version{}, false
	}
	return r.versions[(lo+hi)/2], true
}
