package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/kompox/webstack/usecase/cluster"
)

func newCmdCluster() *cobra.Command {
	cmd := &cobra.Command{
		Use:                "cluster",
		Short:              "Manage the stack's Kubernetes cluster",
		RunE:               func(cmd *cobra.Command, args []string) error { return fmt.Errorf("invalid command") },
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableSuggestions: true,
	}
	cmd.AddCommand(newCmdClusterStatus(), newCmdClusterProvision(), newCmdClusterDeprovision(), newCmdClusterKubeconfig())
	return cmd
}

func newCmdClusterStatus() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show cluster status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := buildEnvironment(cmd)
			if err != nil {
				return err
			}
			u, err := buildClusterUseCase(cmd)
			if err != nil {
				return err
			}
			out, err := u.Status(cmd.Context(), &cluster.StatusInput{Env: env})
			if err != nil {
				return err
			}
			doc, err := yaml.Marshal(out)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(doc)
			return err
		},
	}
}

func newCmdClusterProvision() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Provision the cluster without deploying the stack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			env, err := buildEnvironment(cmd)
			if err != nil {
				return err
			}
			u, err := buildClusterUseCase(cmd)
			if err != nil {
				return err
			}
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "cluster.provision", env.Stack)
			defer func() { cleanup(err) }()
			return u.Provision(ctx, &cluster.ProvisionInput{Env: env, Force: force})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Resubmit the deployment even when it already succeeded")
	return cmd
}

func newCmdClusterDeprovision() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "deprovision",
		Short: "Delete the cluster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			env, err := buildEnvironment(cmd)
			if err != nil {
				return err
			}
			u, err := buildClusterUseCase(cmd)
			if err != nil {
				return err
			}
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "cluster.deprovision", env.Stack)
			defer func() { cleanup(err) }()
			return u.Deprovision(ctx, &cluster.DeprovisionInput{Env: env, Force: force})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Ignore errors while deleting")
	return cmd
}

func newCmdClusterKubeconfig() *cobra.Command {
	in := &cluster.KubeconfigInput{}
	cmd := &cobra.Command{
		Use:   "kubeconfig",
		Short: "Print or merge cluster credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := buildEnvironment(cmd)
			if err != nil {
				return err
			}
			u, err := buildClusterUseCase(cmd)
			if err != nil {
				return err
			}
			in.Env = env
			out, err := u.Kubeconfig(cmd.Context(), in)
			if err != nil {
				return err
			}
			if out.Merged != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "merged context %q into %s (current=%t)\n", out.Merged.Context, out.Merged.Path, out.Merged.Current)
				return nil
			}
			_, err = cmd.OutOrStdout().Write(out.Data)
			return err
		},
	}
	f := cmd.Flags()
	f.BoolVar(&in.Merge, "merge", false, "Merge into the kubeconfig file instead of printing")
	f.StringVar(&in.Path, "kubeconfig", "", "Kubeconfig file for --merge (default $KUBECONFIG or ~/.kube/config)")
	f.StringVar(&in.Context, "context", "", "Context name (default: stack name)")
	f.StringVarP(&in.Namespace, "namespace", "n", "", "Default namespace of the context")
	f.BoolVar(&in.Overwrite, "force", false, "Replace entries with the same name instead of suffixing")
	f.BoolVar(&in.SetCurrent, "set-current", false, "Select the merged context")
	f.StringVarP(&in.Format, "output", "o", "yaml", "Output format when printing (yaml|json)")
	return cmd
}
