package engine

import (
	"context"
	"errors"

	"go.abhg.dev/teapot/internal/teapot/engineerr"
	"go.abhg.dev/teapot/internal/teapot/execctx"
	"go.abhg.dev/teapot/internal/teapot/executor"
	"go.abhg.dev/teapot/internal/teapot/model"
	"go.abhg.dev/teapot/internal/teapot/session"
	"go.abhg.dev/teapot/internal/teapot/validate"
)

// Continue resumes a suspended rebase after the user has resolved
// conflicts, and drains the remainder of the queue.
func (e *Engine) Continue(ctx context.Context) (*Result, error) {
	unlock := e.lock()
	defer unlock()

	stored, ec, x, err := e.resumeSetup(ctx, continuePreconditions)
	if err != nil {
		return nil, err
	}

	return e.runAndFinalize(ctx, stored, ec, func() (*executor.Result, error) {
		return x.Continue(ctx, &stored.State, &stored.Intent)
	})
}

// Skip abandons the conflicted commit of the active job and drains the
// remainder of the queue.
func (e *Engine) Skip(ctx context.Context) (*Result, error) {
	unlock := e.lock()
	defer unlock()

	stored, ec, x, err := e.resumeSetup(ctx, nil) // skip doesn't require resolved files
	if err != nil {
		return nil, err
	}

	return e.runAndFinalize(ctx, stored, ec, func() (*executor.Result, error) {
		return x.Skip(ctx, &stored.State, &stored.Intent)
	})
}

// Abort cancels the in-progress rebase and clears the session. It is
// idempotent: aborting with no session present succeeds silently.
func (e *Engine) Abort(ctx context.Context) (*Result, error) {
	unlock := e.lock()
	defer unlock()

	if _, err := e.Sessions.GetSession(ctx, e.RepoPath); err != nil {
		if errors.Is(err, session.ErrNotExist) {
			return &Result{Drained: true}, nil
		}
		return nil, err
	}

	storedPath, _ := e.ExecCtx.GetStoredExecutionPath(e.RepoPath)
	ec := &model.ExecutionContext{ExecutionPath: storedPath, IsTemporary: storedPath != ""}
	if storedPath != "" {
		wt, openErr := e.openExecWorktree(ctx, ec)
		if openErr == nil {
			x := executor.New(executor.NewGitWorktree(wt), e.Cfg, e.Log)
			if err := x.Abort(ctx); err != nil {
				e.Log.Warn("abort rebase failed", "error", err)
			}
		} else {
			e.Log.Warn("failed to open execution worktree for abort", "error", openErr)
		}
	}

	if err := e.ExecCtx.ClearStoredContext(ctx); err != nil {
		e.Log.Warn("failed to clear stored execution context", "error", err)
	}
	if err := e.ExecCtx.Release(ctx, ec); err != nil {
		e.Log.Warn("failed to release execution context", "error", err)
	}
	if err := e.Sessions.ClearSession(ctx, e.RepoPath); err != nil {
		return nil, engineerr.Wrap(engineerr.GitOperationFailed, "clear rebase session", err)
	}

	// Git's own rebase-abort already restored each branch head that was
	// mid-rebase; stored.State carries no ref surgery of its own to undo.
	return &Result{Drained: true}, nil
}

func continuePreconditions(snap *model.RepoSnapshot, stored *model.StoredRebaseSession) *engineerr.Error {
	return validate.ContinuePreconditions(snap, stored)
}

// resumeSetup loads the active session, re-validates preconditions (if
// precheck is non-nil), re-acquires the execution context (reusing a
// stored one from a prior suspension), and builds an Executor over it.
func (e *Engine) resumeSetup(
	ctx context.Context,
	precheck func(*model.RepoSnapshot, *model.StoredRebaseSession) *engineerr.Error,
) (*model.StoredRebaseSession, *model.ExecutionContext, *executor.Executor, error) {
	stored, err := e.Sessions.GetSession(ctx, e.RepoPath)
	if errors.Is(err, session.ErrNotExist) {
		return nil, nil, nil, engineerr.New(engineerr.NoSession, "no rebase session in progress")
	}
	if err != nil {
		return nil, nil, nil, err
	}

	if precheck != nil {
		snap, serr := e.Snapshot.Load(ctx)
		if serr != nil {
			return nil, nil, nil, serr
		}
		if verr := precheck(snap, stored); verr != nil {
			return nil, nil, nil, verr
		}
	}

	ec, acErr := e.reacquireContext(ctx, stored)
	if acErr != nil {
		return nil, nil, nil, acErr
	}

	wt, err := e.openExecWorktree(ctx, ec)
	if err != nil {
		return nil, nil, nil, err
	}

	return stored, ec, newExecutor(wt, e.Cfg, e.Log), nil
}

func (e *Engine) reacquireContext(ctx context.Context, stored *model.StoredRebaseSession) (*model.ExecutionContext, error) {
	ec, err := e.ExecCtx.Acquire(ctx, execctx.AcquireOptions{
		RepoPath:     e.RepoPath,
		TrunkHeadSHA: stored.State.Session.InitialTrunkSHA,
		Purpose:      "resume rebase session",
	})
	if err != nil {
		return nil, engineerr.Wrap(engineerr.ContextCreationFailed, "acquire execution context", err)
	}
	return ec, nil
}
