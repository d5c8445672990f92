package dns

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kompox/webstack/adapters/kube"
	"github.com/kompox/webstack/domain/model"
	"github.com/kompox/webstack/internal/logging"
	"k8s.io/apimachinery/pkg/util/wait"
)

// WatchEdge polls the edge controller Service until the load balancer reports
// an address, then resolves edge. It is the single producer of edge; read
// errors are retried until ctx ends, which rejects edge.
func WatchEdge(ctx context.Context, reader EdgeReader, interval time.Duration, edge *model.Deferred[model.EdgeAddress]) {
	logger := logging.FromContext(ctx)
	name := kube.EdgeServiceName(kube.EdgeReleaseName)
	var addr model.EdgeAddress
	err := wait.PollUntilContextCancel(ctx, interval, true, func(ctx context.Context) (bool, error) {
		a, err := reader.EdgeAddress(ctx, kube.EdgeNamespace, name)
		if err != nil {
			logger.Debug(ctx, "edge address not readable yet", "service", name, "err", err)
			return false, nil
		}
		if a.Empty() {
			return false, nil
		}
		addr = a
		return true, nil
	})
	if err != nil {
		edge.Reject(err)
		return
	}
	logger.Info(ctx, "edge address assigned", "address", addr.String())
	edge.Resolve(addr)
}

// AwaitEdge waits up to timeout for edge. Expiry is reported as ErrEdgeAddressTimeout.
func AwaitEdge(ctx context.Context, edge *model.Deferred[model.EdgeAddress], timeout time.Duration) (model.EdgeAddress, error) {
	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	addr, err := edge.Await(wctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return model.EdgeAddress{}, fmt.Errorf("%w: no load balancer address after %s", model.ErrEdgeAddressTimeout, timeout)
		}
		return model.EdgeAddress{}, err
	}
	return addr, nil
}
