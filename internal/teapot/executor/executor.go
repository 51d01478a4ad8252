// Package executor drives the Git side of a rebase plan: it pulls one
// job at a time from the state machine in internal/teapot/plan, runs
// the corresponding "git rebase --onto" in a worktree, and translates
// the result back into state-machine transitions. It also implements
// Continue, Skip, and Abort for a suspended, conflicted job.
//
// Grounded on the teacher's internal/handler/restack/handler.go, which
// drives git.Worktree.Rebase and classifies the result by matching
// *git.RebaseInterruptError, and on internal/spice/restack.go for the
// "continue after conflict" shape. internal/teapot/plan supplies the
// pure bookkeeping; this package supplies the I/O.
package executor

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"

	"go.abhg.dev/teapot/internal/git"
	"go.abhg.dev/teapot/internal/must"
	"go.abhg.dev/teapot/internal/random"
	"go.abhg.dev/teapot/internal/silog"
	"go.abhg.dev/teapot/internal/teapot/conflict"
	"go.abhg.dev/teapot/internal/teapot/config"
	"go.abhg.dev/teapot/internal/teapot/engineerr"
	"go.abhg.dev/teapot/internal/teapot/model"
	"go.abhg.dev/teapot/internal/teapot/plan"
)

//go:generate mockgen -package executor -destination mocks_test.go -typed . Worktree

// Worktree is the subset of *git.Worktree the executor depends on.
type Worktree interface {
	Rebase(ctx context.Context, req git.RebaseRequest) error
	RebaseContinue(ctx context.Context, opts *git.RebaseContinueOptions) error
	RebaseSkip(ctx context.Context) error
	RebaseAbort(ctx context.Context) error
	ListFilesPaths(ctx context.Context, opts *git.ListFilesOptions) iter.Seq2[string, error]
	PeelToCommit(ctx context.Context, ref string) (git.Hash, error)
	ListCommits(ctx context.Context, start, stop string) iter.Seq2[git.Hash, error]
	Add(ctx context.Context, pathspecs []string) error
	RootDir() string
}

// Executor drives one execution context's worktree through a rebase
// plan's jobs.
type Executor struct {
	WT  Worktree
	Cfg config.Config
	Log *silog.Logger
}

// New builds an Executor over wt.
func New(wt Worktree, cfg config.Config, log *silog.Logger) *Executor {
	if log == nil {
		log = silog.Nop()
	}
	return &Executor{WT: wt, Cfg: cfg, Log: log}
}

// realWorktree adapts a *git.Worktree to the Worktree interface,
// supplying ListCommits (which only exists on *git.Repository) by
// delegating to the worktree's own repository handle.
type realWorktree struct {
	*git.Worktree
}

// NewGitWorktree wraps wt for use as an Executor's Worktree.
func NewGitWorktree(wt *git.Worktree) Worktree {
	return realWorktree{wt}
}

func (w realWorktree) ListCommits(ctx context.Context, start, stop string) iter.Seq2[git.Hash, error] {
	return func(yield func(git.Hash, error) bool) {
		rl, err := w.Worktree.Repository().ListCommits(ctx, start, stop)
		if err != nil {
			yield("", err)
			return
		}
		for rl.Next() {
			if !yield(git.Hash(rl.Commit()), nil) {
				return
			}
		}
		if err := rl.Err(); err != nil {
			yield("", err)
		}
	}
}

// Result summarizes one Run call.
type Result struct {
	// Drained reports that every job completed, was skipped, or was
	// abandoned due to a failed ancestor: the plan needs no further
	// attention.
	Drained bool

	// Suspended is non-nil if execution paused awaiting user conflict
	// resolution.
	Suspended *model.RebaseJob
}

// DepthExceededError indicates a branch's owned range is larger than
// the configured cap.
type DepthExceededError struct {
	Branch string
	Count  int
	Cap    int
}

func (e *DepthExceededError) Error() string {
	return fmt.Sprintf("branch %s owns %d commits, exceeding the configured cap of %d", e.Branch, e.Count, e.Cap)
}

// Run drives jobs out of state until the queue drains or a conflict
// suspends it. intent supplies the StackNode tree used to enqueue
// descendants once their parent completes.
func (x *Executor) Run(ctx context.Context, state *model.RebaseState, intent *model.RebaseIntent) (*Result, error) {
	for {
		job, ok := plan.NextJob(state, nowMsPlaceholder(state))
		if !ok {
			return &Result{Drained: true}, nil
		}

		suspended, err := x.executeJob(ctx, state, job, intent)
		if err != nil {
			return nil, err
		}
		if suspended {
			return &Result{Suspended: job}, nil
		}
	}
}

// nowMsPlaceholder returns the session's start time, so no wall-clock
// read is made per job: NextJob does not read its timestamp argument.
func nowMsPlaceholder(state *model.RebaseState) int64 {
	return state.Session.StartedAt
}

func (x *Executor) executeJob(ctx context.Context, state *model.RebaseState, job *model.RebaseJob, intent *model.RebaseIntent) (suspended bool, err error) {
	node, ok := intent.NodeByBranch(job.Branch)
	must.Bef(ok, "job %q has no corresponding intent node for branch %q", job.ID, job.Branch)

	if depthCap := x.Cfg.RebaseDepthCap; depthCap > 0 && len(node.OwnedSHAs) > depthCap {
		plan.FailJob(state, job)
		return false, &DepthExceededError{Branch: job.Branch, Count: len(node.OwnedSHAs), Cap: depthCap}
	}

	if len(node.OwnedSHAs) == 0 {
		plan.SkipJob(state, job)
		plan.EnqueueDescendants(state, node, node.HeadSHA, randomID, state.Session.StartedAt)
		return false, nil
	}

	x.Log.Debug("rebasing branch",
		"branch", job.Branch,
		"upstream", job.OriginalBaseSHA.Short(),
		"onto", job.TargetBaseSHA.Short(),
	)

	err = x.WT.Rebase(ctx, git.RebaseRequest{
		Branch:   job.Branch,
		Upstream: job.OriginalBaseSHA.String(),
		Onto:     job.TargetBaseSHA.String(),
		Quiet:    true,
	})
	if err != nil {
		var interrupt *git.RebaseInterruptError
		if errors.As(err, &interrupt) && interrupt.Kind == git.RebaseInterruptConflict {
			conflicted := x.conflictedFiles(ctx)
			plan.RecordConflict(state, job, conflicted)
			return true, nil
		}
		plan.FailJob(state, job)
		return false, engineerr.Wrap(engineerr.GitOperationFailed, "rebase failed for branch "+job.Branch, err)
	}

	newHead, err := x.WT.PeelToCommit(ctx, job.Branch)
	if err != nil {
		plan.FailJob(state, job)
		return false, engineerr.Wrap(engineerr.GitOperationFailed, "resolve new head for branch "+job.Branch, err)
	}

	rewrites, err := x.pairRewrites(ctx, job, newHead)
	if err != nil {
		plan.FailJob(state, job)
		return false, err
	}

	plan.CompleteJob(state, job, rewrites)
	plan.EnqueueDescendants(state, node, newHead, randomID, state.Session.StartedAt)
	return false, nil
}

// pairRewrites maps the branch's pre-rebase owned commits to its
// post-rebase commits by position: oldest-first on both sides. A plain
// (non-interactive, non-autosquash) rebase preserves commit count and
// order, so positional pairing is exact.
func (x *Executor) pairRewrites(ctx context.Context, job *model.RebaseJob, newHead git.Hash) ([]model.CommitRewrite, error) {
	oldSHAs, err := drainHashes(x.WT.ListCommits(ctx, job.OriginalHeadSHA.String(), job.OriginalBaseSHA.String()))
	if err != nil {
		return nil, engineerr.Wrap(engineerr.GitOperationFailed, "list original commits for "+job.Branch, err)
	}

	newSHAs, err := drainHashes(x.WT.ListCommits(ctx, newHead.String(), job.TargetBaseSHA.String()))
	if err != nil {
		return nil, engineerr.Wrap(engineerr.GitOperationFailed, "list rewritten commits for "+job.Branch, err)
	}
	if len(newSHAs) == 0 {
		x.Log.Info("rebase left branch with no commits", "event", "empty-rebase", "branch", job.Branch)
	}

	// ListCommits (rev-list) reports newest first; reverse to match
	// StackNode.OwnedSHAs' oldest-first convention before pairing.
	slices.Reverse(oldSHAs)
	slices.Reverse(newSHAs)

	n := min(len(oldSHAs), len(newSHAs))
	rewrites := make([]model.CommitRewrite, 0, n)
	for i := 0; i < n; i++ {
		rewrites = append(rewrites, model.CommitRewrite{
			Branch: job.Branch,
			OldSHA: oldSHAs[i],
			NewSHA: newSHAs[i],
		})
	}
	return rewrites, nil
}

func drainHashes(seq iter.Seq2[git.Hash, error]) ([]git.Hash, error) {
	var out []git.Hash
	for h, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

func (x *Executor) conflictedFiles(ctx context.Context) []string {
	var files []string
	for path, err := range x.WT.ListFilesPaths(ctx, &git.ListFilesOptions{Unmerged: true}) {
		if err != nil {
			continue
		}
		files = append(files, path)
	}
	return files
}

// Continue resumes a suspended job after the user has resolved
// conflicts. Any conflicted file whose markers have all been removed
// is auto-staged first, per spec.md §4.8; the user is not required to
// run "git add" themselves.
func (x *Executor) Continue(ctx context.Context, state *model.RebaseState, intent *model.RebaseIntent) (*Result, error) {
	job, ok := state.Job(state.Queue.ActiveJobID)
	if !ok {
		return nil, engineerr.New(engineerr.NoSession, "no suspended job to continue")
	}

	if job.ConflictSnapshot != nil {
		resolved := conflict.ResolvedFiles(ctx, x.WT.RootDir(), job.ConflictSnapshot.Files)
		if len(resolved) > 0 {
			if err := x.WT.Add(ctx, resolved); err != nil {
				return nil, engineerr.Wrap(engineerr.GitOperationFailed, "stage resolved files", err)
			}
		}
	}

	if err := x.WT.RebaseContinue(ctx, nil); err != nil {
		var interrupt *git.RebaseInterruptError
		if errors.As(err, &interrupt) && interrupt.Kind == git.RebaseInterruptConflict {
			plan.RecordConflict(state, job, x.conflictedFiles(ctx))
			return &Result{Suspended: job}, nil
		}
		plan.FailJob(state, job)
		return nil, engineerr.Wrap(engineerr.GitOperationFailed, "continue rebase for branch "+job.Branch, err)
	}

	newHead, err := x.WT.PeelToCommit(ctx, job.Branch)
	if err != nil {
		plan.FailJob(state, job)
		return nil, engineerr.Wrap(engineerr.GitOperationFailed, "resolve new head for branch "+job.Branch, err)
	}

	rewrites, err := x.pairRewrites(ctx, job, newHead)
	if err != nil {
		plan.FailJob(state, job)
		return nil, err
	}

	node, ok := intent.NodeByBranch(job.Branch)
	must.Bef(ok, "continuing job %q has no corresponding intent node", job.ID)

	plan.CompleteJob(state, job, rewrites)
	plan.EnqueueDescendants(state, node, newHead, randomID, state.Session.StartedAt)

	return x.Run(ctx, state, intent)
}

// Skip abandons the current conflicted commit and continues the
// in-progress rebase, per spec.md §4.8.
func (x *Executor) Skip(ctx context.Context, state *model.RebaseState, intent *model.RebaseIntent) (*Result, error) {
	job, ok := state.Job(state.Queue.ActiveJobID)
	if !ok {
		return nil, engineerr.New(engineerr.NoSession, "no suspended job to skip")
	}

	if err := x.WT.RebaseSkip(ctx); err != nil {
		var interrupt *git.RebaseInterruptError
		if errors.As(err, &interrupt) && interrupt.Kind == git.RebaseInterruptConflict {
			plan.RecordConflict(state, job, x.conflictedFiles(ctx))
			return &Result{Suspended: job}, nil
		}
		plan.FailJob(state, job)
		return nil, engineerr.Wrap(engineerr.GitOperationFailed, "skip commit for branch "+job.Branch, err)
	}

	newHead, err := x.WT.PeelToCommit(ctx, job.Branch)
	if err != nil {
		plan.FailJob(state, job)
		return nil, engineerr.Wrap(engineerr.GitOperationFailed, "resolve new head for branch "+job.Branch, err)
	}

	rewrites, err := x.pairRewrites(ctx, job, newHead)
	if err != nil {
		plan.FailJob(state, job)
		return nil, err
	}

	node, ok := intent.NodeByBranch(job.Branch)
	must.Bef(ok, "skipping job %q has no corresponding intent node", job.ID)

	plan.CompleteJob(state, job, rewrites)
	plan.EnqueueDescendants(state, node, newHead, randomID, state.Session.StartedAt)

	return x.Run(ctx, state, intent)
}

// Abort cancels the in-progress git rebase. The caller (engine) is
// responsible for clearing the session and releasing the execution
// context.
func (x *Executor) Abort(ctx context.Context) error {
	if err := x.WT.RebaseAbort(ctx); err != nil {
		return engineerr.Wrap(engineerr.GitOperationFailed, "abort rebase", err)
	}
	return nil
}

// randomID is overridden in tests for determinism.
var randomID plan.IDGenerator = defaultIDGenerator

func defaultIDGenerator() string {
	return random.Alnum(12)
}
