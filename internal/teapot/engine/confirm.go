package engine

import (
	"context"

	"go.abhg.dev/teapot/internal/teapot/engineerr"
	"go.abhg.dev/teapot/internal/teapot/execctx"
	"go.abhg.dev/teapot/internal/teapot/executor"
	"go.abhg.dev/teapot/internal/teapot/model"
	"go.abhg.dev/teapot/internal/teapot/plan"
	"go.abhg.dev/teapot/internal/teapot/trunk"
)

// Confirm accepts the pending intent built by the most recent Submit
// call and drives it to completion or the first conflict suspension.
// It fails with engineerr.NoSession if there is no pending intent (the
// caller never submitted, or already confirmed/cancelled it).
func (e *Engine) Confirm(ctx context.Context) (*Result, error) {
	unlock := e.lock()
	defer unlock()

	pending := e.takePending()
	if pending == nil {
		return nil, engineerr.New(engineerr.NoSession, "no pending rebase intent to confirm")
	}

	originalBranch, err := e.Repo.CurrentBranch(ctx)
	if err != nil {
		return nil, engineerr.Wrap(engineerr.GitOperationFailed, "determine current branch", err)
	}

	trunkRes, terr := trunk.Resolve(pending.snap, e.Cfg.TrunkCandidates)
	if terr != nil {
		return nil, engineerr.Wrap(engineerr.BranchNotFound, "resolve trunk branch", terr)
	}

	state := plan.CreateRebasePlan(trunkRes.HeadSHA, pending.intent, e.genID, nowMs())

	stored := &model.StoredRebaseSession{
		Intent:                *pending.intent,
		State:                 state,
		OriginalBranch:        originalBranch,
		AutoDetachedWorktrees: detachWorktrees(pending.autoDetach),
	}

	if err := e.Sessions.CreateSession(ctx, e.RepoPath, *stored); err != nil {
		return nil, engineerr.Wrap(engineerr.SessionExists, "create rebase session", err)
	}

	ec, err := e.ExecCtx.Acquire(ctx, execctx.AcquireOptions{
		RepoPath:            e.RepoPath,
		TrunkHeadSHA:        trunkRes.HeadSHA,
		Purpose:             "confirm rebase intent for " + pending.intent.Targets[0].Node.Branch,
		UseParallelWorktree: e.Cfg.UseParallelWorktree,
		ActiveTreeClean:     !pending.snap.Status.IsRebasing && len(pending.snap.Status.AllChangedFiles) == 0,
		ActiveTreePath:      originalActiveTreePath(pending.snap),
	})
	if err != nil {
		if cerr := e.Sessions.ClearSession(ctx, e.RepoPath); cerr != nil {
			e.Log.Warn("failed to clear session after context acquisition failure", "error", cerr)
		}
		return nil, engineerr.Wrap(engineerr.ContextCreationFailed, "acquire execution context", err)
	}

	wt, err := e.openExecWorktree(ctx, ec)
	if err != nil {
		return nil, err
	}
	x := newExecutor(wt, e.Cfg, e.Log)

	return e.runAndFinalize(ctx, stored, ec, func() (*executor.Result, error) {
		return x.Run(ctx, &stored.State, &stored.Intent)
	})
}

func detachWorktrees(wts []model.Worktree) []model.AutoDetachedWorktree {
	out := make([]model.AutoDetachedWorktree, 0, len(wts))
	for _, w := range wts {
		out = append(out, model.AutoDetachedWorktree{Path: w.Path, Branch: w.Branch})
	}
	return out
}

func originalActiveTreePath(snap *model.RepoSnapshot) string {
	for _, wt := range snap.Worktrees {
		if wt.IsMain {
			return wt.Path
		}
	}
	return ""
}
