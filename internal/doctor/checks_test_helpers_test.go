package doctor

import (
	"testing"

	"github.com/safepip/safe-pip-upgrade/internal/upgrade"
)

func requireResultByCheckName(t *testing.T, results []Result, checkName string) Result {
	t.Helper()
	var found *Result
	for _, result := range results {
		if result.CheckName == checkName {
			if found != nil {
				t.Fatalf("multiple %s results in %#v", checkName, results)
			}
			copyResult := result
			found = &copyResult
		}
	}
	if found == nil {
		t.Fatalf("missing %s result in %#v", checkName, results)
	}
	return *found
}

func upgradeDefaults() []string {
	return upgrade.DefaultIgnorePrefixes
}
