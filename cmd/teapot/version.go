package main

import (
	"context"

	"go.abhg.dev/teapot/internal/silog"
)

type versionCmd struct{}

func (*versionCmd) Run(_ context.Context, log *silog.Logger) error {
	log.Infof("teapot %s", _version)
	return nil
}
