package main

import (
	"context"
	"time"

	"github.com/kompox/webstack/internal/logging"
)

// withCmdRunLogger emits the CMD:<operation>/S line and returns a context
// whose logger carries the stack name, plus a cleanup that emits /EOK or
// /EFAIL with the elapsed seconds. All span lines are INFO.
//
//	ctx, cleanup := withCmdRunLogger(ctx, "up", env.Stack)
//	defer func() { cleanup(err) }()
func withCmdRunLogger(ctx context.Context, operation, stack string) (context.Context, func(err error)) {
	startAt := time.Now()
	logger := logging.FromContext(ctx).With("stack", stack)
	ctx = logging.WithLogger(ctx, logger)
	logger.Info(ctx, "CMD:"+operation+"/S")

	return ctx, func(err error) {
		elapsed := time.Since(startAt).Seconds()
		if err == nil {
			logger.Info(ctx, "CMD:"+operation+"/EOK", "err", "", "elapsed", elapsed)
			return
		}
		msg := err.Error()
		if len(msg) > 32 {
			msg = msg[:32] + "..."
		}
		logger.Info(ctx, "CMD:"+operation+"/EFAIL", "err", msg, "elapsed", elapsed)
	}
}
