package cmd

import (
	"github.com/spf13/cobra"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect profile_data configuration",
		Args:  cobra.NoArgs,
	}

	configShowCmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := opts.cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}

	configCmd.AddCommand(configShowCmd)
	return configCmd
}
