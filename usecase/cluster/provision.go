package cluster

import (
	"context"
	"fmt"

	"github.com/kompox/webstack/domain/model"
	"github.com/kompox/webstack/usecase/stack"
)

// ProvisionInput represents a command to provision the cluster alone.
type ProvisionInput struct {
	Env   *model.Environment `json:"env"`
	Force bool               `json:"force,omitempty"`
}

// Provision brings up the environment's cluster without installing the stack.
func (u *UseCase) Provision(ctx context.Context, in *ProvisionInput) error {
	if in == nil || in.Env == nil {
		return fmt.Errorf("ProvisionInput.Env is required")
	}
	h, err := stack.SelectPlatform(in.Env)
	if err != nil {
		return err
	}
	var opts []model.ClusterProvisionOption
	if in.Force {
		opts = append(opts, model.WithClusterProvisionForce())
	}
	return u.ClusterPort.Provision(ctx, h, opts...)
}

// DeprovisionInput represents a command to remove the cluster.
type DeprovisionInput struct {
	Env   *model.Environment `json:"env"`
	Force bool               `json:"force,omitempty"`
}

// Deprovision removes the environment's cluster.
func (u *UseCase) Deprovision(ctx context.Context, in *DeprovisionInput) error {
	if in == nil || in.Env == nil {
		return fmt.Errorf("DeprovisionInput.Env is required")
	}
	h, err := stack.SelectPlatform(in.Env)
	if err != nil {
		return err
	}
	var opts []model.ClusterDeprovisionOption
	if in.Force {
		opts = append(opts, model.WithClusterDeprovisionForce())
	}
	return u.ClusterPort.Deprovision(ctx, h, opts...)
}
