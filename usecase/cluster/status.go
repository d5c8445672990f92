package cluster

import (
	"context"
	"fmt"

	"github.com/kompox/webstack/domain/model"
	"github.com/kompox/webstack/usecase/stack"
)

// StatusInput represents a command to get cluster status.
type StatusInput struct {
	Env *model.Environment `json:"env"`
}

// StatusOutput represents the response of cluster status.
type StatusOutput struct {
	model.ClusterStatus
	ClusterName string         `json:"clusterName"`
	Platform    model.Platform `json:"platform"`
}

// Status returns the status of the environment's cluster.
func (u *UseCase) Status(ctx context.Context, in *StatusInput) (*StatusOutput, error) {
	if in == nil || in.Env == nil {
		return nil, fmt.Errorf("StatusInput.Env is required")
	}
	h, err := stack.SelectPlatform(in.Env)
	if err != nil {
		return nil, err
	}
	st, err := u.ClusterPort.Status(ctx, h)
	if err != nil {
		return nil, err
	}
	return &StatusOutput{ClusterStatus: *st, ClusterName: h.ClusterName, Platform: h.Platform}, nil
}
