package main

import (
	"context"

	"go.abhg.dev/teapot/internal/silog"
)

type confirmCmd struct{}

func (*confirmCmd) Run(ctx context.Context, log *silog.Logger) error {
	eng, err := buildEngine(ctx, log)
	if err != nil {
		return err
	}

	res, err := eng.Confirm(ctx)
	if err != nil {
		return describeEngineErr(log, err)
	}
	return reportResult(log, res)
}
