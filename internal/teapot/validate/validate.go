// Package validate implements the chain of preconditions every
// external-entry engine operation passes through before it is allowed
// to proceed, per spec.md §4.5.
//
// Grounded on the precondition checks scattered through the teacher's
// internal/spice/service.go and handler/* packages, consolidated here
// into one explicit, independently testable chain in the spec's
// enumerated order.
package validate

import (
	"go.abhg.dev/teapot/internal/git"
	"go.abhg.dev/teapot/internal/teapot/engineerr"
	"go.abhg.dev/teapot/internal/teapot/model"
)

// Request bundles everything a predicate might need to inspect.
type Request struct {
	Snap    *model.RepoSnapshot
	Intent  *model.RebaseIntent
	Session *model.StoredRebaseSession // nil if no session exists yet

	// ActiveWorktreePath is the path of the worktree the request was
	// issued from, used to tell "the active worktree" apart from
	// "some other worktree" when checking for lock conflicts.
	ActiveWorktreePath string
}

// Predicate is a single named precondition. It returns nil if the
// request satisfies the precondition, or a *engineerr.Error otherwise.
type Predicate func(*Request) *engineerr.Error

// Chain is the predicates applied, in order, to a submit request.
var Chain = []Predicate{
	IntentNonEmpty,
	NoRebaseInProgress,
	NoExistingSession,
	NotDetached,
	TargetRefsExist,
	NoWorktreeConflicts,
}

// Run applies every predicate in order, stopping at (and returning) the
// first failure.
func Run(req *Request, chain []Predicate) *engineerr.Error {
	for _, p := range chain {
		if err := p(req); err != nil {
			return err
		}
	}
	return nil
}

// IntentNonEmpty requires that the intent have at least one target.
func IntentNonEmpty(req *Request) *engineerr.Error {
	if req.Intent == nil || len(req.Intent.Targets) == 0 {
		return engineerr.New(engineerr.InvalidIntent, "rebase intent has no targets")
	}
	return nil
}

// NoRebaseInProgress requires that the working tree not be mid-rebase,
// per the Git adapter's status.
func NoRebaseInProgress(req *Request) *engineerr.Error {
	if req.Snap.Status.IsRebasing {
		return engineerr.New(engineerr.RebaseInProgress, "a git rebase is already in progress")
	}
	return nil
}

// NoExistingSession requires that no session record already exist for
// this repository.
func NoExistingSession(req *Request) *engineerr.Error {
	if req.Session != nil {
		return engineerr.New(engineerr.SessionExists, "a rebase session is already in progress")
	}
	return nil
}

// NotDetached requires that the current HEAD be on a branch.
func NotDetached(req *Request) *engineerr.Error {
	if req.Snap.Status.Detached {
		return engineerr.New(engineerr.DetachedHead, "HEAD is detached")
	}
	return nil
}

// TargetRefsExist requires that every target branch still resolve to
// the SHA the plan was built from, and that each target's new base
// exists and differs from the branch's original base.
func TargetRefsExist(req *Request) *engineerr.Error {
	for _, target := range req.Intent.Targets {
		if err := checkNode(req.Snap, target.Node, target.TargetBaseSHA); err != nil {
			return err
		}
	}
	return nil
}

// checkNode validates a target root against the snapshot and against
// targetBaseSHA, then validates each descendant against the snapshot
// only: a descendant's real target base isn't known until its parent
// actually rebases, so targetBaseSHA (the root's new base) isn't a
// meaningful comparison for it.
func checkNode(snap *model.RepoSnapshot, node *model.StackNode, targetBaseSHA git.Hash) *engineerr.Error {
	if err := checkBranchUnchanged(snap, node); err != nil {
		return err
	}

	if _, ok := snap.Commit(targetBaseSHA); !ok {
		if _, isBranchHead := snap.BranchByHead(targetBaseSHA); !isBranchHead {
			return engineerr.New(engineerr.TargetNotFound, "target base no longer exists")
		}
	}
	if targetBaseSHA == node.BaseSHA {
		return engineerr.New(engineerr.SameBase, "branch "+node.Branch+" is already based on the target")
	}

	for _, child := range node.Children {
		if err := checkDescendant(snap, child); err != nil {
			return err
		}
	}
	return nil
}

// checkDescendant validates a non-root stack node against the snapshot
// only, skipping the root's TargetNotFound/SameBase checks (see checkNode).
func checkDescendant(snap *model.RepoSnapshot, node *model.StackNode) *engineerr.Error {
	if err := checkBranchUnchanged(snap, node); err != nil {
		return err
	}
	for _, child := range node.Children {
		if err := checkDescendant(snap, child); err != nil {
			return err
		}
	}
	return nil
}

func checkBranchUnchanged(snap *model.RepoSnapshot, node *model.StackNode) *engineerr.Error {
	b, ok := snap.BranchByName(node.Branch)
	if !ok {
		return engineerr.New(engineerr.BranchNotFound, "branch "+node.Branch+" no longer exists")
	}
	if b.Head != node.HeadSHA {
		return engineerr.New(engineerr.BranchMoved, "branch "+node.Branch+" moved since the plan was created")
	}
	return nil
}

// NoWorktreeConflicts requires that no branch in the intent be checked
// out, dirty, in a worktree other than the active one. Clean worktrees
// holding target branches are reported via AutoDetach so the caller can
// detach them as part of preparation.
func NoWorktreeConflicts(req *Request) *engineerr.Error {
	branches := collectBranches(req.Intent)

	for _, wt := range req.Snap.Worktrees {
		if wt.Path == req.ActiveWorktreePath {
			continue
		}
		if wt.Branch == "" {
			continue
		}
		if _, wanted := branches[wt.Branch]; !wanted {
			continue
		}
		if wt.Dirty {
			return engineerr.Wrap(engineerr.WorktreeConflict,
				"branch "+wt.Branch+" is checked out with uncommitted changes in another worktree",
				nil,
			)
		}
		// Clean worktrees holding a target branch are reported so
		// the caller can auto-detach them; that's not a validation
		// failure.
	}
	return nil
}

// AutoDetachCandidates returns the clean, non-active worktrees that
// hold a target branch and should be auto-detached before execution,
// per spec.md §4.5's no-worktree-conflicts rule.
func AutoDetachCandidates(req *Request) []model.Worktree {
	branches := collectBranches(req.Intent)

	var out []model.Worktree
	for _, wt := range req.Snap.Worktrees {
		if wt.Path == req.ActiveWorktreePath || wt.Branch == "" || wt.Dirty {
			continue
		}
		if _, wanted := branches[wt.Branch]; wanted {
			out = append(out, wt)
		}
	}
	return out
}

func collectBranches(intent *model.RebaseIntent) map[string]struct{} {
	out := make(map[string]struct{})
	var walk func(*model.StackNode)
	walk = func(n *model.StackNode) {
		out[n.Branch] = struct{}{}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, t := range intent.Targets {
		walk(t.Node)
	}
	return out
}

// ContinuePreconditions requires a session, an in-progress git rebase,
// and at least one conflicted file in the working-tree status. The
// engine checks this before the executor's Continue, which then
// auto-stages files whose conflict markers have all been removed
// (spec.md §4.5's "continue" rule).
func ContinuePreconditions(snap *model.RepoSnapshot, session *model.StoredRebaseSession) *engineerr.Error {
	if session == nil {
		return engineerr.New(engineerr.NoSession, "no rebase session to continue")
	}
	if !snap.Status.IsRebasing {
		return engineerr.New(engineerr.RebaseInProgress, "no git rebase is currently in progress")
	}
	if len(snap.Status.Conflicted) == 0 {
		return engineerr.New(engineerr.InvalidIntent, "no conflicted files to resolve")
	}
	return nil
}

// AbortPreconditions requires that mid-rebase state be present; if
// absent, Abort is idempotent and should succeed without calling this
// at all (the caller checks session == nil first).
func AbortPreconditions(session *model.StoredRebaseSession) *engineerr.Error {
	if session == nil {
		return engineerr.New(engineerr.NoSession, "no rebase session to abort")
	}
	return nil
}
