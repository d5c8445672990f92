package cluster

import (
	"github.com/kompox/webstack/domain/model"
)

// UseCase wires the cluster port used by cluster use cases. The handle of
// every operation is selected from the environment.
type UseCase struct {
	ClusterPort model.ClusterPort
}
