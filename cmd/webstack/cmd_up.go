package main

import (
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/kompox/webstack/usecase/stack"
)

const defaultEdgeTimeout = stack.DefaultEdgeTimeout

func newCmdUp() *cobra.Command {
	var forceProvision bool
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Provision the cluster and deploy the stack",
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
			timeout, _ := cmd.Flags().GetDuration("edge-timeout")

			ctx, cleanup := withCmdRunLogger(cmd.Context(), "up", env.Stack)
			defer func() { cleanup(err) }()

			out, err := u.Up(ctx, &stack.UpInput{Env: env, EdgeTimeout: timeout, ForceProvision: forceProvision})
			if err != nil {
				return err
			}
			summary := map[string]any{
				"hostname":  out.Hostname,
				"platform":  out.Handle.Platform,
				"steps":     out.Steps,
				"dnsAction": out.DNSAction,
			}
			if !out.EdgeAddress.Empty() {
				summary["edgeAddress"] = out.EdgeAddress.String()
			}
			doc, err := yaml.Marshal(summary)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(doc)
			return err
		},
	}
	cmd.Flags().BoolVar(&forceProvision, "force-provision", false, "Resubmit the cluster deployment even when it already succeeded")
	return cmd
}
