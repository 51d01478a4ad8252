package main

import (
	"context"

	"go.abhg.dev/teapot/internal/silog"
)

type skipCmd struct{}

func (*skipCmd) Run(ctx context.Context, log *silog.Logger) error {
	eng, err := buildEngine(ctx, log)
	if err != nil {
		return err
	}

	res, err := eng.Skip(ctx)
	if err != nil {
		return describeEngineErr(log, err)
	}
	return reportResult(log, res)
}
