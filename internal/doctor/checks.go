// Package doctor runs read-only health checks before an upgrade run.
package doctor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/safepip/safe-pip-upgrade/internal/config"
	"github.com/safepip/safe-pip-upgrade/internal/manifest"
	"github.com/safepip/safe-pip-upgrade/internal/messages"
	"github.com/safepip/safe-pip-upgrade/internal/registry"
	"github.com/safepip/safe-pip-upgrade/internal/requirement"
	"github.com/safepip/safe-pip-upgrade/internal/upgrade"
)

// Status is the severity of a check result.
type Status string

const (
	StatusOK   Status = "OK"
	StatusWarn Status = "WARN"
	StatusFail Status = "FAIL"
)

// Result is one reported check.
type Result struct {
	Status         Status
	CheckName      string
	Message        string
	Recommendation string
}

var lookPathFunc = exec.LookPath

// registryTimeout bounds the single lookup made by CheckRegistry.
const registryTimeout = 30 * time.Second

// CheckConfig loads and validates the config at path. The returned config is
// nil when it cannot be used by the remaining checks.
func CheckConfig(path string, required bool, overrides config.Overrides) ([]Result, *config.Config) {
	cfg, err := config.Load(path, required)
	if err != nil {
		return []Result{{
			Status:         StatusFail,
			CheckName:      messages.DoctorCheckNameConfig,
			Message:        fmt.Sprintf(messages.DoctorConfigLoadFailedFmt, err),
			Recommendation: messages.DoctorConfigLoadRecommend,
		}}, nil
	}
	cfg.Apply(overrides)
	if err := cfg.Validate(path); err != nil {
		return []Result{{
			Status:         StatusFail,
			CheckName:      messages.DoctorCheckNameConfig,
			Message:        fmt.Sprintf(messages.DoctorConfigInvalidFmt, err),
			Recommendation: messages.DoctorConfigInvalidHint,
		}}, nil
	}

	message := fmt.Sprintf(messages.DoctorConfigLoadedFmt, path)
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		message = messages.DoctorConfigDefaults
	}
	return []Result{{Status: StatusOK, CheckName: messages.DoctorCheckNameConfig, Message: message}}, cfg
}

// CheckManifest parses every line of the requirements file the way a run
// would. It returns the names of the requirements that a run would search.
func CheckManifest(path string, ignorePrefixes []string) ([]Result, []string) {
	lines, err := manifest.New(path).ReadLines()
	if err != nil {
		return []Result{{
			Status:         StatusFail,
			CheckName:      messages.DoctorCheckNameManifest,
			Message:        fmt.Sprintf(messages.DoctorManifestMissingFmt, err),
			Recommendation: messages.DoctorManifestMissingRecommend,
		}}, nil
	}

	var results []Result
	var pending []string
	ignored, finished := 0, 0
	for i, line := range lines {
		if upgrade.IsIgnored(line, ignorePrefixes) {
			ignored++
			continue
		}
		entry, err := requirement.Parse(line)
		if err != nil {
			results = append(results, Result{
				Status:         StatusWarn,
				CheckName:      messages.DoctorCheckNameManifest,
				Message:        fmt.Sprintf(messages.DoctorManifestLineFmt, i+1, err),
				Recommendation: messages.DoctorManifestLineRecommend,
			})
			continue
		}
		if entry.State == requirement.StateFinalLatestVersion && entry.Pinned() {
			finished++
			continue
		}
		pending = append(pending, entry.Name)
	}

	if len(pending) == 0 && finished == 0 {
		results = append(results, Result{Status: StatusWarn, CheckName: messages.DoctorCheckNameManifest, Message: messages.DoctorManifestEmpty})
		return results, pending
	}
	results = append(results, Result{
		Status:    StatusOK,
		CheckName: messages.DoctorCheckNameManifest,
		Message:   fmt.Sprintf(messages.DoctorManifestSummaryFmt, len(pending), ignored),
	})
	if finished > 0 {
		results = append(results, Result{
			Status:    StatusOK,
			CheckName: messages.DoctorCheckNameManifest,
			Message:   fmt.Sprintf(messages.DoctorManifestFinishedFmt, finished),
		})
	}
	return results, pending
}

// CheckRunner verifies that the executables the configured runner starts are on PATH.
func CheckRunner(cfg *config.Config) []Result {
	var tools []string
	switch cfg.Main.Runner {
	case config.RunnerLocal:
		tools = []string{"sh"}
	default:
		tools = []string{"docker"}
		if len(cfg.Compose.Command) > 0 && cfg.Compose.Command[0] != "docker" {
			tools = append(tools, cfg.Compose.Command[0])
		}
	}

	results := make([]Result, 0, len(tools))
	for _, tool := range tools {
		path, err := lookPathFunc(tool)
		if err != nil {
			results = append(results, Result{
				Status:         StatusFail,
				CheckName:      messages.DoctorCheckNameRunner,
				Message:        fmt.Sprintf(messages.DoctorToolMissingFmt, tool),
				Recommendation: messages.DoctorToolMissingRecommend,
			})
			continue
		}
		results = append(results, Result{
			Status:    StatusOK,
			CheckName: messages.DoctorCheckNameRunner,
			Message:   fmt.Sprintf(messages.DoctorToolFoundFmt, tool, path),
		})
	}
	return results
}

// CheckRegistry looks up the first pending requirement to confirm the package
// index is reachable.
func CheckRegistry(ctx context.Context, source registry.Source, pkgs []string) Result {
	if len(pkgs) == 0 {
		return Result{Status: StatusOK, CheckName: messages.DoctorCheckNameRegistry, Message: messages.DoctorRegistryNothing}
	}
	ctx, cancel := context.WithTimeout(ctx, registryTimeout)
	defer cancel()

	releases, err := source.Releases(ctx, pkgs[0])
	if err != nil {
		return Result{
			Status:         StatusFail,
			CheckName:      messages.DoctorCheckNameRegistry,
			Message:        fmt.Sprintf(messages.DoctorRegistryFailedFmt, pkgs[0], err),
			Recommendation: messages.DoctorRegistryFailedRecommend,
		}
	}
	return Result{
		Status:    StatusOK,
		CheckName: messages.DoctorCheckNameRegistry,
		Message:   fmt.Sprintf(messages.DoctorRegistryOKFmt, pkgs[0], releases.Len()),
	}
}
