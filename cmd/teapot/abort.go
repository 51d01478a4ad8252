package main

import (
	"context"

	"go.abhg.dev/teapot/internal/silog"
	"go.abhg.dev/teapot/internal/teapot/engine"
)

type abortCmd struct{}

func (*abortCmd) Run(ctx context.Context, log *silog.Logger) error {
	eng, err := buildEngine(ctx, log)
	if err != nil {
		return err
	}

	if _, err := eng.Abort(ctx); err != nil {
		return describeEngineErr(log, err)
	}
	log.Info("rebase aborted")
	return nil
}

// reportResult logs a Result the same way for every operation that
// drives the executor (Confirm, Continue, Skip).
func reportResult(log *silog.Logger, res *engine.Result) error {
	if res.Suspended {
		log.Infof("paused: %d file(s) have conflicts", len(res.Conflicts))
		for _, f := range res.Conflicts {
			log.Infof("  %s", f)
		}
		log.Info("resolve them, then run 'teapot continue'")
		return nil
	}
	log.Info("rebase complete")
	return nil
}
