package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

func newCmdConfig() *cobra.Command {
	cmd := &cobra.Command{
		Use:                "config",
		Short:              "Inspect the resolved configuration",
		RunE:               func(cmd *cobra.Command, args []string) error { return fmt.Errorf("invalid command") },
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableSuggestions: true,
	}
	cmd.AddCommand(newCmdConfigShow())
	return cmd
}

func newCmdConfigShow() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved environment with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := buildEnvironment(cmd)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(env)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
