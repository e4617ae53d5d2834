package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/safepip/safe-pip-upgrade/internal/doctor"
	"github.com/safepip/safe-pip-upgrade/internal/logging"
	"github.com/safepip/safe-pip-upgrade/internal/messages"
	"github.com/safepip/safe-pip-upgrade/internal/terminal"
)

func newDoctorCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   messages.DoctorUse,
		Short: messages.DoctorShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			color.NoColor = !terminal.SupportsColor(out)

			path, required := opts.configFile()
			configResults, cfg := doctor.CheckConfig(path, required, opts.overrides)
			allResults := configResults

			if cfg != nil {
				paths, err := cfg.ResolvePaths()
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(out, messages.DoctorHealthCheckFmt, paths.WorkingDirectory)

				manifestResults, pending := doctor.CheckManifest(paths.RequirementsFile, cfg.Main.IgnoreLineStarts)
				allResults = append(allResults, manifestResults...)
				allResults = append(allResults, doctor.CheckRunner(cfg)...)
				source := newRegistrySource(cfg, logging.Discard())
				allResults = append(allResults, doctor.CheckRegistry(cmd.Context(), source, pending))
			}

			hasFail, hasWarn := false, false
			for _, r := range allResults {
				printResult(out, r)
				switch r.Status {
				case doctor.StatusFail:
					hasFail = true
				case doctor.StatusWarn:
					hasWarn = true
				}
			}

			_, _ = fmt.Fprintln(out)
			switch {
			case hasFail:
				_, _ = fmt.Fprintln(out, color.RedString(messages.DoctorFailureSummary))
				return &SilentExitError{Code: exitFailed}
			case hasWarn:
				_, _ = fmt.Fprintln(out, color.YellowString(messages.DoctorWarnSummary))
			default:
				_, _ = fmt.Fprintln(out, color.GreenString(messages.DoctorSuccessSummary))
			}
			return nil
		},
	}
}

func printResult(out io.Writer, r doctor.Result) {
	var status string
	switch r.Status {
	case doctor.StatusOK:
		status = color.GreenString(messages.DoctorStatusOKLabel)
	case doctor.StatusWarn:
		status = color.YellowString(messages.DoctorStatusWarnLabel)
	case doctor.StatusFail:
		status = color.RedString(messages.DoctorStatusFailLabel)
	}

	_, _ = fmt.Fprintf(out, messages.DoctorResultLineFmt, status, r.CheckName, r.Message)
	if r.Recommendation != "" {
		_, _ = fmt.Fprintf(out, "%s%s\n", messages.DoctorRecommendationPrefix, r.Recommendation)
	}
}
