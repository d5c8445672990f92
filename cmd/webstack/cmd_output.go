package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kompox/webstack/usecase/output"
)

func newCmdOutput() *cobra.Command {
	var stackName string
	cmd := &cobra.Command{
		Use:   "output [key]",
		Short: "Print values exported by the last successful up",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if stackName == "" {
				env, err := buildEnvironment(cmd)
				if err != nil {
					return err
				}
				stackName = env.Stack
			}
			u, err := buildOutputUseCase(cmd)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(args) == 1 {
				out, err := u.Get(cmd.Context(), &output.GetInput{Stack: stackName, Key: args[0]})
				if err != nil {
					return err
				}
				fmt.Fprintln(w, out.Output.Value)
				return nil
			}
			out, err := u.List(cmd.Context(), &output.ListInput{Stack: stackName})
			if err != nil {
				return err
			}
			for _, o := range out.Outputs {
				fmt.Fprintf(w, "%s=%s\n", o.Key, o.Value)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&stackName, "stack", "", "Stack name (defaults to the resolved configuration)")
	return cmd
}
