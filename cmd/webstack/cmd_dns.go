package main

import (
	"fmt"

	"github.com/spf13/cobra"

	dnsuc "github.com/kompox/webstack/usecase/dns"
	"github.com/kompox/webstack/usecase/stack"
)

func newCmdDNS() *cobra.Command {
	cmd := &cobra.Command{
		Use:                "dns",
		Short:              "Manage the public hostname record",
		RunE:               func(cmd *cobra.Command, args []string) error { return fmt.Errorf("invalid command") },
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableSuggestions: true,
	}
	cmd.AddCommand(newCmdDNSBind(), newCmdDNSUnbind())
	return cmd
}

func newCmdDNSBind() *cobra.Command {
	return &cobra.Command{
		Use:   "bind",
		Short: "Point the hostname at the deployed load balancer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			env, err := buildEnvironment(cmd)
			if err != nil {
				return err
			}
			h, err := stack.SelectPlatform(env)
			if err != nil {
				return err
			}
			u, err := buildDNSUseCase(cmd)
			if err != nil {
				return err
			}
			timeout, _ := cmd.Flags().GetDuration("edge-timeout")

			ctx, cleanup := withCmdRunLogger(cmd.Context(), "dns.bind", env.Stack)
			defer func() { cleanup(err) }()

			out, err := u.Bind(ctx, &dnsuc.BindInput{Env: env, Handle: h, Timeout: timeout})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %v (%s)\n", out.Record.FQDN, out.Record.Type, out.Record.RData, out.Action)
			return nil
		},
	}
}

func newCmdDNSUnbind() *cobra.Command {
	return &cobra.Command{
		Use:   "unbind",
		Short: "Remove the hostname record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			env, err := buildEnvironment(cmd)
			if err != nil {
				return err
			}
			h, err := stack.SelectPlatform(env)
			if err != nil {
				return err
			}
			u, err := buildDNSUseCase(cmd)
			if err != nil {
				return err
			}
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "dns.unbind", env.Stack)
			defer func() { cleanup(err) }()
			return u.Unbind(ctx, &dnsuc.UnbindInput{Env: env, Handle: h})
		},
	}
}
