package providerdrv

import (
	"context"
	"fmt"

	"github.com/kompox/webstack/domain/model"
)

// clusterPortAdapter implements model.ClusterPort backed by provider drivers.
type clusterPortAdapter struct{}

// driverFor instantiates the driver named by h with the handle's settings.
func driverFor(h *model.ComputeHandle) (Driver, error) {
	if h == nil {
		return nil, fmt.Errorf("compute handle is nil")
	}
	factory, exists := GetDriverFactory(h.Driver)
	if !exists {
		return nil, fmt.Errorf("%w: %q", model.ErrDriverNotFound, h.Driver)
	}
	driver, err := factory(h.Settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create driver %s: %w", h.Driver, err)
	}
	return driver, nil
}

func (a *clusterPortAdapter) Status(ctx context.Context, h *model.ComputeHandle) (*model.ClusterStatus, error) {
	driver, err := driverFor(h)
	if err != nil {
		return nil, err
	}
	st, err := driver.ClusterStatus(ctx, h)
	if err != nil {
		return nil, err
	}
	if st.Driver == "" {
		st.Driver = driver.ID()
	}
	return st, nil
}

func (a *clusterPortAdapter) Provision(ctx context.Context, h *model.ComputeHandle, opts ...model.ClusterProvisionOption) error {
	driver, err := driverFor(h)
	if err != nil {
		return err
	}
	return driver.ClusterProvision(ctx, h, opts...)
}

func (a *clusterPortAdapter) Deprovision(ctx context.Context, h *model.ComputeHandle, opts ...model.ClusterDeprovisionOption) error {
	driver, err := driverFor(h)
	if err != nil {
		return err
	}
	return driver.ClusterDeprovision(ctx, h, opts...)
}

func (a *clusterPortAdapter) Kubeconfig(ctx context.Context, h *model.ComputeHandle) ([]byte, error) {
	driver, err := driverFor(h)
	if err != nil {
		return nil, err
	}
	return driver.ClusterKubeconfig(ctx, h)
}

// GetClusterPort returns a model.ClusterPort implemented via provider drivers.
func GetClusterPort() model.ClusterPort {
	return &clusterPortAdapter{}
}
