package main

import (
	"context"

	"go.abhg.dev/teapot/internal/silog"
)

type continueCmd struct{}

func (*continueCmd) Run(ctx context.Context, log *silog.Logger) error {
	eng, err := buildEngine(ctx, log)
	if err != nil {
		return err
	}

	res, err := eng.Continue(ctx)
	if err != nil {
		return describeEngineErr(log, err)
	}
	return reportResult(log, res)
}
