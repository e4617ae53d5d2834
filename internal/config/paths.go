package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"

	"github.com/safepip/safe-pip-upgrade/internal/messages"
)

// Paths holds the resolved absolute paths of a run.
type Paths struct {
	WorkingDirectory string
	RequirementsFile string
	LogFile          string
	ComposeProject   string
	// ComposeRequirements is the requirements path inside the container.
	ComposeRequirements string
}

// ResolvePaths expands "~" and resolves relative paths against the working directory.
func (c *Config) ResolvePaths() (Paths, error) {
	workDir, err := absPath(c.Main.WorkingDirectory, "")
	if err != nil {
		return Paths{}, err
	}
	requirements, err := absPath(c.Main.RequirementsFile, workDir)
	if err != nil {
		return Paths{}, err
	}
	paths := Paths{
		WorkingDirectory:    workDir,
		RequirementsFile:    requirements,
		ComposeProject:      workDir,
		ComposeRequirements: c.Main.RequirementsFile,
	}
	if strings.TrimSpace(c.Main.LogFile) != "" {
		if paths.LogFile, err = absPath(c.Main.LogFile, workDir); err != nil {
			return Paths{}, err
		}
	}
	if strings.TrimSpace(c.Compose.ProjectDirectory) != "" {
		if paths.ComposeProject, err = absPath(c.Compose.ProjectDirectory, workDir); err != nil {
			return Paths{}, err
		}
	}
	if strings.TrimSpace(c.Compose.RequirementsFile) != "" {
		paths.ComposeRequirements = c.Compose.RequirementsFile
	}
	return paths, nil
}

func absPath(path string, base string) (string, error) {
	expanded, err := homedir.Expand(strings.TrimSpace(path))
	if err != nil {
		return "", fmt.Errorf(messages.ConfigExpandPathFmt, path, err)
	}
	if expanded == "" {
		expanded = "."
	}
	if !filepath.IsAbs(expanded) && base != "" {
		expanded = filepath.Join(base, expanded)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf(messages.ConfigResolvePathFmt, path, err)
	}
	return abs, nil
}

// Timeouts converts the configured second counts into durations.
type Timeouts struct {
	Registry       time.Duration
	ComposeUp      time.Duration
	ComposeExec    time.Duration
	LocalExecution time.Duration
}

// Timeouts returns the configured timeouts.
func (c *Config) Timeouts() Timeouts {
	return Timeouts{
		Registry:       seconds(c.Registry.TimeoutSeconds),
		ComposeUp:      seconds(c.Compose.UpTimeoutSeconds),
		ComposeExec:    seconds(c.Compose.ExecTimeoutSeconds),
		LocalExecution: seconds(c.Local.TimeoutSeconds),
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
