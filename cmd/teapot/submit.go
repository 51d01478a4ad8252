package main

import (
	"context"
	"errors"
	"fmt"

	"go.abhg.dev/teapot/internal/git"
	"go.abhg.dev/teapot/internal/silog"
	"go.abhg.dev/teapot/internal/teapot/engineerr"
)

type submitCmd struct {
	Head string `arg:"" predictor:"branches" help:"Commit-ish of the branch to move"`
	Base string `arg:"" predictor:"branches" help:"Commit-ish of the new base"`
}

func (cmd *submitCmd) Run(ctx context.Context, log *silog.Logger) error {
	wt, err := git.OpenWorktree(ctx, "", git.OpenOptions{Log: log})
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}
	repo := wt.Repository()

	eng, err := buildEngine(ctx, log)
	if err != nil {
		return err
	}

	head, err := repo.PeelToCommit(ctx, cmd.Head)
	if err != nil {
		return fmt.Errorf("resolve %q: %w", cmd.Head, err)
	}
	base, err := repo.PeelToCommit(ctx, cmd.Base)
	if err != nil {
		return fmt.Errorf("resolve %q: %w", cmd.Base, err)
	}

	res, err := eng.Submit(ctx, head, base)
	if err != nil {
		return describeEngineErr(log, err)
	}

	if res.NoOp {
		log.Info("nothing to do: branch is already based there")
		return nil
	}

	log.Infof("will rebase %d branch(es) onto %s", len(res.Preview.Branches), res.Preview.TargetBaseSHA)
	for _, b := range res.Preview.Branches {
		log.Infof("  %s", b)
	}
	log.Info("run 'teapot confirm' to proceed, or 'teapot cancel' to discard")
	return nil
}

// describeEngineErr logs the engine's typed error code, if any, at
// debug level, so a --verbose run shows it without cluttering the
// default output; the error itself is still returned for kong to
// report.
func describeEngineErr(log *silog.Logger, err error) error {
	var eerr *engineerr.Error
	if errors.As(err, &eerr) {
		log.Debugf("engine error code=%s", eerr.Code)
	}
	return err
}
