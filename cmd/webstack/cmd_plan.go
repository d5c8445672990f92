package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kompox/webstack/usecase/stack"
)

func newCmdPlan() *cobra.Command {
	var levelsOnly bool
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Compose the deployment plan and print it without submitting anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := buildEnvironment(cmd)
			if err != nil {
				return err
			}
			u, err := buildStackUseCase(cmd)
			if err != nil {
				return err
			}
			out, err := u.Plan(cmd.Context(), &stack.PlanInput{Env: env})
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if levelsOnly {
				for i, level := range out.Levels {
					fmt.Fprintf(w, "%d: %s\n", i, strings.Join(level, " "))
				}
				return nil
			}
			doc, err := out.Plan.Render()
			if err != nil {
				return err
			}
			_, err = w.Write(doc)
			return err
		},
	}
	cmd.Flags().BoolVar(&levelsOnly, "levels", false, "Print only the submission levels")
	return cmd
}
