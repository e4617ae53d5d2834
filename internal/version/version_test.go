package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw        string
		prerelease bool
	}{
		{"1.0", false},
		{"0.5.7", false},
		{"2.31.0", false},
		{"v1.2.3", false},
		{"1.0a1", true},
		{"2.0b3", true},
		{"4.2rc1", true},
		{"3.1.dev4", true},
		{"1.0.0-alpha.1", true},
		{"1.2.3.4", false},
		{"2020.1.1.1", false},
		{"2.0.post1", false},
		{"1.0-1", false},
		{"1!2.0", false},
		{"1.0+local.7", false},
		{"2.0.post1.dev2", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v, err := Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.raw, v.String())
			assert.Equal(t, tt.prerelease, v.IsPrerelease())
			assert.False(t, v.IsZero())
		})
	}
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("  ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version is required")

	for _, raw := range []string{"not-a-version", "1.0.foo", "1..2", "1.0+", "!1.0"} {
		_, err := Parse(raw)
		require.Error(t, err, raw)
		assert.Contains(t, err.Error(), "invalid version")
	}
}

func TestMustParsePanics(t *testing.T) {
	assert.Panics(t, func() { MustParse("bogus") })
	assert.NotPanics(t, func() { MustParse("1.2.3") })
}

func TestCompare(t *testing.T) {
	assert.True(t, MustParse("0.5").Equal(MustParse("0.5.0")))
	assert.True(t, MustParse("0.5.1").Less(MustParse("0.5.10")))
	assert.True(t, MustParse("1.0rc1").Less(MustParse("1.0")))
	assert.Equal(t, 1, MustParse("2.0").Compare(MustParse("1.9.9")))
	assert.Equal(t, 0, MustParse("1.0").Compare(MustParse("1.0")))
	assert.True(t, MustParse("1.2.3").Less(MustParse("1.2.3.4")))
	assert.True(t, MustParse("1.2.3.4").Equal(MustParse("1.2.3.4.0")))
	assert.False(t, MustParse("1.0").Equal(MustParse("1.0.0-alpha.1")))
	assert.True(t, MustParse("1.0alpha1").Equal(MustParse("1.0a1")))
	assert.True(t, MustParse("1.0-1").Equal(MustParse("1.0.post1")))
}

func TestCompareOrdering(t *testing.T) {
	ordered := []string{
		"1.0.dev0",
		"1.0a1.dev1",
		"1.0a1",
		"1.0b2",
		"1.0rc1",
		"1.0",
		"1.0+abc",
		"1.0+5",
		"1.0.post1.dev0",
		"1.0.post1",
		"1.0.post2",
		"1.0.1",
		"1.2.3.4",
		"2020.1.1.1",
		"1!0.1",
	}
	for i := 1; i < len(ordered); i++ {
		prev, cur := MustParse(ordered[i-1]), MustParse(ordered[i])
		if !prev.Less(cur) {
			t.Fatalf("expected %s < %s", prev, cur)
		}
		if cur.Compare(prev) != 1 {
			t.Fatalf("expected %s > %s", cur, prev)
		}
	}
}

func TestCompareZero(t *testing.T) {
	var zero Version
	assert.True(t, zero.IsZero())
	assert.Equal(t, 0, zero.Compare(Version{}))
	assert.Equal(t, -1, zero.Compare(MustParse("0.0.1")))
	assert.Equal(t, 1, MustParse("0.0.1").Compare(zero))
	assert.False(t, zero.IsPrerelease())
}
