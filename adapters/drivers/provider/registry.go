package providerdrv

import (
	"context"
	"sort"

	"github.com/kompox/webstack/domain/model"
)

// Driver abstracts platform-specific cluster lifecycle behavior.
// Implementations live under adapters/drivers/provider/<name> and return a
// driver identifier such as "aks" via ID().
type Driver interface {
	// ID returns the driver identifier (e.g., "aks").
	ID() string

	// ClusterProvision makes the cluster described by h exist. It must be idempotent.
	ClusterProvision(ctx context.Context, h *model.ComputeHandle, opts ...model.ClusterProvisionOption) error

	// ClusterDeprovision removes the cluster described by h.
	ClusterDeprovision(ctx context.Context, h *model.ComputeHandle, opts ...model.ClusterDeprovisionOption) error

	// ClusterStatus returns the status of the cluster.
	ClusterStatus(ctx context.Context, h *model.ComputeHandle) (*model.ClusterStatus, error)

	// ClusterKubeconfig returns kubeconfig bytes for a single context targeting the cluster.
	ClusterKubeconfig(ctx context.Context, h *model.ComputeHandle) ([]byte, error)
}

// driverFactory is a constructor function for a provider driver.
type driverFactory func(settings map[string]string) (Driver, error)

// registry holds registered drivers by name.
var registry = map[string]driverFactory{}

// Register makes a driver available by the given name. Drivers should call
// this from their init() function.
func Register(name string, factory driverFactory) {
	registry[name] = factory
}

// GetDriverFactory returns the driver factory function for the given name.
func GetDriverFactory(name string) (driverFactory, bool) {
	factory, exists := registry[name]
	return factory, exists
}

// Names returns the registered driver names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
