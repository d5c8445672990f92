package stack

import (
	"fmt"

	"github.com/kompox/webstack/domain/model"
)

// Platform driver names.
const (
	DriverLocal = "local"
	DriverAKS   = "aks"
)

// SelectPlatform resolves env into the compute handle every composer targets.
// The cloud handle carries the fixed sizing and network layout. Changing either
// after the first provisioning may replace the node pool; the driver only warns.
func SelectPlatform(env *model.Environment) (*model.ComputeHandle, error) {
	if env == nil {
		return nil, fmt.Errorf("environment is nil")
	}
	settings := env.PlatformSettings
	if settings == nil {
		settings = map[string]string{}
	}
	switch env.Platform {
	case model.PlatformLocal:
		return &model.ComputeHandle{
			Platform:    model.PlatformLocal,
			Driver:      DriverLocal,
			ClusterName: env.Stack,
			Settings:    settings,
		}, nil
	case model.PlatformCloud:
		sizing := model.CloudNodeSizing()
		if err := sizing.Validate(); err != nil {
			return nil, err
		}
		network := model.CloudNetwork()
		return &model.ComputeHandle{
			Platform:    model.PlatformCloud,
			Driver:      DriverAKS,
			ClusterName: env.Stack,
			Sizing:      &sizing,
			Network:     &network,
			Settings:    settings,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownPlatform, env.Platform)
	}
}
