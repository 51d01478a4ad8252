package main

import (
	"context"

	"go.abhg.dev/teapot/internal/silog"
)

type cancelCmd struct{}

func (*cancelCmd) Run(ctx context.Context, log *silog.Logger) error {
	eng, err := buildEngine(ctx, log)
	if err != nil {
		return err
	}

	if err := eng.Cancel(ctx); err != nil {
		return describeEngineErr(log, err)
	}
	log.Info("cancelled pending rebase")
	return nil
}
