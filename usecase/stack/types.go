package stack

import (
	"context"
	"time"

	"github.com/kompox/webstack/adapters/kube"
	"github.com/kompox/webstack/domain"
	"github.com/kompox/webstack/domain/model"
	"k8s.io/apimachinery/pkg/runtime"
)

// Repos holds repositories needed for stack use cases.
type Repos struct {
	Output domain.OutputRepository
}

// Target is the cluster-side submission surface the executor drives.
type Target interface {
	Apply(ctx context.Context, objs []runtime.Object) error
	Delete(ctx context.Context, objs []runtime.Object) error
	InstallRelease(ctx context.Context, rel *kube.Release) error
	UninstallRelease(ctx context.Context, rel *kube.Release) error
	EdgeAddress(ctx context.Context, namespace, name string) (model.EdgeAddress, error)
}

// TargetFactory connects to the cluster described by kubeconfig.
type TargetFactory func(ctx context.Context, kubeconfig []byte) (Target, error)

// KubeTarget is the TargetFactory backed by adapters/kube.
func KubeTarget(ctx context.Context, kubeconfig []byte) (Target, error) {
	return kube.NewTarget(ctx, kubeconfig)
}

// DefaultEdgeTimeout bounds how long DNS binding waits for the edge address.
const DefaultEdgeTimeout = 10 * time.Minute

// DefaultEdgePollInterval is the interval between edge Service status reads.
const DefaultEdgePollInterval = 5 * time.Second

// UseCase wires repositories and ports needed for stack use cases.
type UseCase struct {
	Repos       *Repos
	ClusterPort model.ClusterPort
	DNSPort     model.DNSPort
	NewTarget   TargetFactory
	// EdgePollInterval overrides DefaultEdgePollInterval when positive.
	EdgePollInterval time.Duration
}

func (u *UseCase) pollInterval() time.Duration {
	if u.EdgePollInterval > 0 {
		return u.EdgePollInterval
	}
	return DefaultEdgePollInterval
}
