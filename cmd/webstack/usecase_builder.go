package main

import (
	"github.com/spf13/cobra"

	dnsdrv "github.com/kompox/webstack/adapters/drivers/dns"
	providerdrv "github.com/kompox/webstack/adapters/drivers/provider"
	"github.com/kompox/webstack/usecase/cluster"
	dnsuc "github.com/kompox/webstack/usecase/dns"
	"github.com/kompox/webstack/usecase/output"
	"github.com/kompox/webstack/usecase/stack"
)

// buildStackUseCase creates the stack use case with the output store and driver ports.
func buildStackUseCase(cmd *cobra.Command) (*stack.UseCase, error) {
	repo, err := buildOutputRepository(cmd)
	if err != nil {
		return nil, err
	}
	return &stack.UseCase{
		Repos:       &stack.Repos{Output: repo},
		ClusterPort: providerdrv.GetClusterPort(),
		DNSPort:     dnsdrv.GetDNSPort(),
	}, nil
}

// buildDNSUseCase creates the DNS binding use case.
func buildDNSUseCase(cmd *cobra.Command) (*dnsuc.UseCase, error) {
	repo, err := buildOutputRepository(cmd)
	if err != nil {
		return nil, err
	}
	return &dnsuc.UseCase{
		Repos:       &dnsuc.Repos{Output: repo},
		ClusterPort: providerdrv.GetClusterPort(),
		DNSPort:     dnsdrv.GetDNSPort(),
	}, nil
}

// buildOutputUseCase creates the output reader.
func buildOutputUseCase(cmd *cobra.Command) (*output.UseCase, error) {
	repo, err := buildOutputRepository(cmd)
	if err != nil {
		return nil, err
	}
	return &output.UseCase{Repos: &output.Repos{Output: repo}}, nil
}

// buildClusterUseCase creates the cluster use case.
func buildClusterUseCase(*cobra.Command) (*cluster.UseCase, error) {
	return &cluster.UseCase{ClusterPort: providerdrv.GetClusterPort()}, nil
}
