// Package engine wires together the validator, state machine, session
// store, execution context manager, and executor into the seven public
// operations named in spec.md §6.2: Submit, Confirm, Cancel, Continue,
// Abort, Skip, and Status. It is the facade a CLI or UI drives; callers
// never touch internal/teapot/plan or internal/teapot/executor
// directly.
//
// Grounded on internal/spice/service.go and
// internal/handler/restack/handler.go's shape: a struct of narrow,
// named dependency interfaces (Worktree, Store, Service) rather than a
// god-interface, with Request/Response types per operation.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.abhg.dev/teapot/internal/git"
	"go.abhg.dev/teapot/internal/random"
	"go.abhg.dev/teapot/internal/silog"
	"go.abhg.dev/teapot/internal/teapot/config"
	"go.abhg.dev/teapot/internal/teapot/enginelock"
	"go.abhg.dev/teapot/internal/teapot/engineerr"
	"go.abhg.dev/teapot/internal/teapot/execctx"
	"go.abhg.dev/teapot/internal/teapot/executor"
	"go.abhg.dev/teapot/internal/teapot/intent"
	"go.abhg.dev/teapot/internal/teapot/model"
	"go.abhg.dev/teapot/internal/teapot/session"
	"go.abhg.dev/teapot/internal/teapot/validate"
)

// Repository is the subset of *git.Repository the engine depends on
// directly, beyond what execctx.Manager and snapshot.Loader already
// narrow for themselves.
type Repository interface {
	GitDir() string
	CurrentBranch(ctx context.Context) (string, error)
	Checkout(ctx context.Context, branch string) error
	OpenWorktree(ctx context.Context, dir string) (*git.Worktree, error)
}

var _ Repository = (*git.Repository)(nil)

// SnapshotLoader produces the [model.RepoSnapshot] the engine evaluates
// every operation against. Repository-model construction is an
// external collaborator (spec.md §1); the engine only consumes the
// result.
type SnapshotLoader interface {
	Load(ctx context.Context) (*model.RepoSnapshot, error)
}

// SnapshotLoaderFunc adapts a function to a SnapshotLoader.
type SnapshotLoaderFunc func(ctx context.Context) (*model.RepoSnapshot, error)

// Load calls f.
func (f SnapshotLoaderFunc) Load(ctx context.Context) (*model.RepoSnapshot, error) { return f(ctx) }

// Engine is the facade over one repository's rebase operations. Build
// one with [New] and reuse it across calls; it is safe for concurrent
// use by multiple goroutines (per-repository serialization is handled
// internally via Locks).
type Engine struct {
	RepoPath string // required; canonical repository path, used as the lock/session/store key

	Repo     Repository     // required
	Snapshot SnapshotLoader // required
	Sessions *session.Store // required
	ExecCtx  *execctx.Manager // required
	Cfg      config.Config
	Log      *silog.Logger

	// Locks serializes operations against the same repository path.
	// A zero Registry works; share one across Engine instances that
	// might target the same repository concurrently.
	Locks *enginelock.Registry

	pendingMu sync.Mutex
	pending   *pendingSubmission
}

// New builds an Engine with functional defaults for Cfg, Log, and
// Locks where the caller leaves them zero.
func New(e Engine) *Engine {
	if e.Cfg.TrunkCandidates == nil && !e.Cfg.UseParallelWorktree &&
		e.Cfg.WorktreeSetupTimeout == 0 && e.Cfg.RebaseDepthCap == 0 {
		e.Cfg = config.Default()
	}
	if e.Log == nil {
		e.Log = silog.Nop()
	}
	if e.Locks == nil {
		e.Locks = &enginelock.Registry{}
	}
	return &e
}

func (e *Engine) lock() func() {
	return e.Locks.Lock(e.RepoPath)
}

// pendingSubmission is a built-but-unconfirmed intent awaiting the
// user's Confirm or Cancel. It's held only in memory: spec.md's
// crash-recovery guarantee applies to an *active* session (§4.6), not
// to a submission the user hasn't yet accepted, so there is nothing to
// persist here. See DESIGN.md for the two-phase submit/confirm
// rationale.
type pendingSubmission struct {
	intent     *model.RebaseIntent
	snap       *model.RepoSnapshot
	autoDetach []model.Worktree
}

func (e *Engine) setPending(p *pendingSubmission) {
	e.pendingMu.Lock()
	defer e.pendingMu.Unlock()
	e.pending = p
}

func (e *Engine) takePending() *pendingSubmission {
	e.pendingMu.Lock()
	defer e.pendingMu.Unlock()
	p := e.pending
	e.pending = nil
	return p
}

func newExecutor(wt *git.Worktree, cfg config.Config, log *silog.Logger) *executor.Executor {
	return executor.New(executor.NewGitWorktree(wt), cfg, log)
}

// openExecWorktree opens a worktree handle at ec's execution path.
func (e *Engine) openExecWorktree(ctx context.Context, ec *model.ExecutionContext) (*git.Worktree, error) {
	wt, err := e.Repo.OpenWorktree(ctx, ec.ExecutionPath)
	if err != nil {
		return nil, engineerr.Wrap(engineerr.GitOperationFailed, "open execution worktree", err)
	}
	return wt, nil
}

func (e *Engine) genID() string { return random.Alnum(12) }

func nowMs() int64 { return time.Now().UnixMilli() }

// runAndFinalize drives x.Run to completion or suspension and applies
// the resulting state to the session store and execution context,
// matching the Executor.execute bridge described in spec.md §4.8.
func (e *Engine) runAndFinalize(
	ctx context.Context,
	stored *model.StoredRebaseSession,
	ec *model.ExecutionContext,
	run func() (*executor.Result, error),
) (*Result, error) {
	result, err := run()
	if err != nil {
		e.cleanupOnError(ctx, stored, ec)
		return nil, err
	}

	if result.Suspended != nil {
		stored.State.Session.Status = model.SessionAwaitingUser
		if err := e.Sessions.UpdateState(ctx, e.RepoPath, stored.State); err != nil {
			e.Log.Warn("failed to persist session state", "error", err)
		}
		if err := e.ExecCtx.StoreContext(ctx, ec); err != nil {
			e.Log.Warn("failed to persist execution context", "error", err)
		}
		return &Result{Suspended: true, Conflicts: result.Suspended.ConflictSnapshot.Files}, nil
	}

	// Drained: finalize.
	e.finalize(ctx, stored, ec)
	return &Result{Drained: true}, nil
}

func (e *Engine) cleanupOnError(ctx context.Context, stored *model.StoredRebaseSession, ec *model.ExecutionContext) {
	if err := e.Sessions.UpdateState(ctx, e.RepoPath, stored.State); err != nil {
		e.Log.Warn("failed to persist session state after error", "error", err)
	}
	if err := e.ExecCtx.StoreContext(ctx, ec); err != nil {
		e.Log.Warn("failed to persist execution context after error", "error", err)
	}
}

// finalize restores auto-detached worktrees and the original branch,
// then marks the session completed and clears it, per spec.md §4.8's
// finalization step. Restoration failures are collected as warnings,
// not fatal: the rebase itself already succeeded.
func (e *Engine) finalize(ctx context.Context, stored *model.StoredRebaseSession, ec *model.ExecutionContext) []string {
	var warnings []string

	for _, wt := range stored.AutoDetachedWorktrees {
		restoreWT, err := e.Repo.OpenWorktree(ctx, wt.Path)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("reopen worktree %s: %v", wt.Path, err))
			continue
		}
		if err := restoreWT.Checkout(ctx, wt.Branch); err != nil {
			warnings = append(warnings, fmt.Sprintf("restore %s in %s: %v", wt.Branch, wt.Path, err))
		}
	}

	if stored.OriginalBranch != "" {
		if err := e.Repo.Checkout(ctx, stored.OriginalBranch); err != nil {
			warnings = append(warnings, fmt.Sprintf("checkout original branch %s: %v", stored.OriginalBranch, err))
		}
	}

	if err := e.ExecCtx.ClearStoredContext(ctx); err != nil {
		e.Log.Warn("failed to clear stored execution context", "error", err)
	}
	if err := e.ExecCtx.Release(ctx, ec); err != nil {
		e.Log.Warn("failed to release execution context", "error", err)
	}

	stored.State.Session.Status = model.SessionCompleted
	if err := e.Sessions.ClearSession(ctx, e.RepoPath); err != nil {
		e.Log.Warn("failed to clear rebase session", "error", err)
	}

	for _, w := range warnings {
		e.Log.Warn("finalization step failed", "detail", w)
	}
	return warnings
}

// Result summarizes the outcome of an operation that drives the
// executor (Confirm, Continue, Skip).
type Result struct {
	Drained   bool
	Suspended bool
	Conflicts []string
}

// buildIntent is shared by Submit and by anything that needs a fresh
// intent for the snapshot at hand.
func (e *Engine) buildIntent(snap *model.RepoSnapshot, headSHA, baseSHA git.Hash) (*model.RebaseIntent, error) {
	b := intent.New(snap, e.Cfg.TrunkCandidates, e.genID)
	ri, err := b.Build(headSHA, baseSHA)
	if err != nil {
		switch {
		case errors.Is(err, intent.ErrInvalidHead):
			return nil, engineerr.Wrap(engineerr.BranchNotFound, "no branch found at that commit", err)
		case errors.Is(err, intent.ErrTrunkHead):
			return nil, engineerr.Wrap(engineerr.InvalidIntent, "cannot move the trunk branch", err)
		default:
			return nil, engineerr.Wrap(engineerr.InvalidIntent, "build rebase intent", err)
		}
	}
	return ri, nil
}

// validateForSubmit runs the submit validator chain and reports the
// auto-detach candidates the caller should preserve for finalization.
func (e *Engine) validateForSubmit(
	snap *model.RepoSnapshot,
	ri *model.RebaseIntent,
	existing *model.StoredRebaseSession,
	activeWorktreePath string,
) ([]model.Worktree, *engineerr.Error) {
	req := &validate.Request{
		Snap:               snap,
		Intent:             ri,
		Session:            existing,
		ActiveWorktreePath: activeWorktreePath,
	}
	if err := validate.Run(req, validate.Chain); err != nil {
		return nil, err
	}
	return validate.AutoDetachCandidates(req), nil
}
