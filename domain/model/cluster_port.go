package model

import "context"

// Operation-scoped options and functional option types.
type ClusterProvisionOptions struct{ Force bool }
type ClusterDeprovisionOptions struct{ Force bool }

type ClusterProvisionOption func(*ClusterProvisionOptions)
type ClusterDeprovisionOption func(*ClusterDeprovisionOptions)

func WithClusterProvisionForce() ClusterProvisionOption {
	return func(o *ClusterProvisionOptions) { o.Force = true }
}
func WithClusterDeprovisionForce() ClusterDeprovisionOption {
	return func(o *ClusterDeprovisionOptions) { o.Force = true }
}

// ClusterPort is the domain port for cluster lifecycle operations.
type ClusterPort interface {
	Status(ctx context.Context, h *ComputeHandle) (*ClusterStatus, error)
	Provision(ctx context.Context, h *ComputeHandle, opts ...ClusterProvisionOption) error
	Deprovision(ctx context.Context, h *ComputeHandle, opts ...ClusterDeprovisionOption) error
	Kubeconfig(ctx context.Context, h *ComputeHandle) ([]byte, error)
}

// ClusterStatus represents the status of a cluster.
type ClusterStatus struct {
	Driver      string `json:"driver"`
	Provisioned bool   `json:"provisioned"`       // True when the Kubernetes cluster exists
	Ready       bool   `json:"ready"`             // True when the API server answers
	Version     string `json:"version,omitempty"` // Kubernetes server version when known
	Detail      string `json:"detail,omitempty"`
}
