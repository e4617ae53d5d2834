package main

import (
	"github.com/spf13/cobra"

	"github.com/safepip/safe-pip-upgrade/internal/config"
	"github.com/safepip/safe-pip-upgrade/internal/messages"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	overrides  config.Overrides
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           messages.RootUse,
		Short:         messages.RootShort,
		Long:          messages.RootLong,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpgrade(cmd, opts)
		},
	}
	cmd.Flags().BoolP("version", "v", false, messages.RootVersionFlag)

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "f", "", messages.FlagConfigFile)
	flags.StringVarP(&opts.overrides.WorkingDirectory, "work-directory", "d", "", messages.FlagWorkingDirectory)
	flags.StringVarP(&opts.overrides.RequirementsFile, "requirement", "r", "", messages.FlagRequirementsFile)
	flags.StringVarP(&opts.overrides.Runner, "runner", "u", "", messages.FlagRunner)
	flags.StringVar(&opts.overrides.TestCommand, "test-command", "", messages.FlagTestCommand)
	flags.StringVar(&opts.overrides.ComposeProjectDirectory, "compose-project-directory", "", messages.FlagComposeProjectDir)
	flags.StringVar(&opts.overrides.ComposeRequirementsFile, "compose-requirements", "", messages.FlagComposeRequirement)
	flags.StringVar(&opts.overrides.ComposeService, "compose-service", "", messages.FlagComposeService)
	flags.StringVar(&opts.overrides.ComposeWorkDir, "compose-work-dir", "", messages.FlagComposeWorkDir)
	flags.StringVar(&opts.overrides.LogLevel, "log-level", "", messages.FlagLogLevel)

	cmd.AddCommand(newUpgradeCmd(opts), newConfigCmd(opts), newDoctorCmd(opts))
	return cmd
}

// loadConfig reads the config file and applies the command-line overrides.
// The default file is optional; a file named with --config must exist.
func (o *rootOptions) loadConfig() (*config.Config, string, error) {
	path, required := o.configFile()
	cfg, err := config.Load(path, required)
	if err != nil {
		return nil, path, err
	}
	cfg.Apply(o.overrides)
	return cfg, path, nil
}

// configFile returns the config path to read and whether it must exist.
func (o *rootOptions) configFile() (string, bool) {
	if o.configPath != "" {
		return o.configPath, true
	}
	return config.DefaultFileName, false
}
