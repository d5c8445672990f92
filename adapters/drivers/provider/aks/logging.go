package aks

import (
	"context"
	"time"

	"github.com/kompox/webstack/domain/model"
	"github.com/kompox/webstack/internal/logging"
)

// maxLoggedErr bounds the error text attached to END:FAILED lines. Azure
// response errors carry the full HTTP dump.
const maxLoggedErr = 64

// withMethodLogger implements the Span pattern for AKS driver logging.
// It emits AKS:<method>:START and returns a context carrying driver and
// cluster attributes, plus a cleanup function emitting AKS:<method>:END:OK or
// AKS:<method>:END:FAILED with elapsed seconds.
//
//	ctx, cleanup := d.withMethodLogger(ctx, "ClusterProvision", h)
//	defer func() { cleanup(err) }()
func (d *driver) withMethodLogger(ctx context.Context, method string, h *model.ComputeHandle) (context.Context, func(err error)) {
	startAt := time.Now()

	logger := logging.FromContext(ctx).With("driver", "AKS."+method)
	if h != nil {
		logger = logger.With("cluster", h.ClusterName)
	}
	ctx = logging.WithLogger(ctx, logger)
	logger.Info(ctx, "AKS:"+method+":START")

	cleanup := func(err error) {
		elapsed := time.Since(startAt).Seconds()
		if err == nil {
			logger.Info(ctx, "AKS:"+method+":END:OK", "elapsed", elapsed)
			return
		}
		errStr := azureShorterErrorString(err)
		if len(errStr) > maxLoggedErr {
			errStr = errStr[:maxLoggedErr] + "..."
		}
		logger.Warn(ctx, "AKS:"+method+":END:FAILED", "err", errStr, "elapsed", elapsed)
	}
	return ctx, cleanup
}
