package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/safepip/safe-pip-upgrade/internal/config"
	"github.com/safepip/safe-pip-upgrade/internal/messages"
	"github.com/safepip/safe-pip-upgrade/internal/wizard"
)

var newWizardUI = func() wizard.UI { return wizard.NewHuhUI() }

func newConfigCmd(opts *rootOptions) *cobra.Command {
	var output string
	var force bool
	var interactive bool

	cmd := &cobra.Command{
		Use:   messages.ConfigUse,
		Short: messages.ConfigShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := output
			if target == "" {
				target = opts.configPath
			}
			if target == "" {
				target = config.DefaultFileName
			}

			cfg := config.Default()
			cfg.Apply(opts.overrides)
			if interactive {
				if err := wizard.Run(newWizardUI(), cfg, target); err != nil {
					if errors.Is(err, wizard.ErrCancelled) {
						return nil
					}
					return fmt.Errorf(messages.CLIWizardFailedFmt, err)
				}
			}
			if err := cfg.Validate(target); err != nil {
				return err
			}
			if err := config.WriteExample(target, cfg, force); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), messages.ConfigWrittenFmt, target)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", messages.ConfigFlagOutput)
	cmd.Flags().BoolVar(&force, "force", false, messages.ConfigFlagForce)
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, messages.ConfigFlagInteractive)
	return cmd
}
