package main

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"

	"go.abhg.dev/teapot/internal/silog"
)

type statusCmd struct{}

func (*statusCmd) Run(ctx context.Context, log *silog.Logger) error {
	eng, err := buildEngine(ctx, log)
	if err != nil {
		return err
	}

	res, err := eng.Status(ctx)
	if err != nil {
		return describeEngineErr(log, err)
	}

	if !res.HasSession {
		if res.IsRebasing {
			log.Info("a rebase is in progress, but not one teapot started")
		} else {
			log.Info("no rebase in progress")
		}
		return nil
	}

	started := time.UnixMilli(res.StartedAt)
	log.Infof("%s, started %s", res.State, humanize.RelTime(started, time.Now(), "ago", "from now"))
	if res.Progress != nil {
		log.Infof("%d of %d branches done", res.Progress.Completed, res.Progress.Total)
	}
	for _, f := range res.Conflicts {
		log.Infof("  conflict: %s", f)
	}
	return nil
}
