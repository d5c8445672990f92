package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kompox/webstack/usecase/stack"
)

func newCmdDestroy() *cobra.Command {
	var deprovision bool
	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Remove the deployed stack, optionally deprovisioning the cluster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			env, err := buildEnvironment(cmd)
			if err != nil {
				return err
			}
			u, err := buildStackUseCase(cmd)
			if err != nil {
				return err
			}
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "destroy", env.Stack)
			defer func() { cleanup(err) }()

			out, err := u.Destroy(ctx, &stack.DestroyInput{Env: env, Deprovision: deprovision})
			if out != nil {
				for _, id := range out.Removed {
					fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", id)
				}
				if out.Deprovisioned {
					fmt.Fprintln(cmd.OutOrStdout(), "cluster deprovisioned")
				}
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&deprovision, "deprovision", false, "Also delete the cluster")
	return cmd
}
