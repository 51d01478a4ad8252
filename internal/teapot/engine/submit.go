package engine

import (
	"context"
	"errors"

	"go.abhg.dev/teapot/internal/git"
	"go.abhg.dev/teapot/internal/teapot/model"
	"go.abhg.dev/teapot/internal/teapot/session"
)

// SubmitResult is the outcome of Submit: either a previewed intent
// awaiting Confirm/Cancel, a no-op (the requested move changes
// nothing), or a validation failure.
type SubmitResult struct {
	// NoOp is true when headSHA is already based on baseSHA, or
	// baseSHA is already an ancestor of its current base (spec.md
	// §4.3's fast-forward-inverse case). Nothing else is populated.
	NoOp bool

	// Preview describes the branches the pending intent would touch,
	// for the caller to render before the user confirms.
	Preview *IntentPreview
}

// IntentPreview summarizes a pending [model.RebaseIntent] for display.
type IntentPreview struct {
	RootBranch    string
	TargetBaseSHA git.Hash
	Branches      []string // root branch plus every descendant, in tree order
}

// Submit computes the full rebase intent for moving the branch at
// headSHA onto newBaseSHA (spec.md §4.3) and validates it, but does not
// execute anything: the caller must follow with Confirm or Cancel.
//
// Returns (nil, *engineerr.Error) with code WORKTREE_CONFLICT if a
// target branch is checked out dirty elsewhere; the error's message
// names the first such branch, and no list of conflicting worktrees is
// attached. Other validation failures use their own codes.
func (e *Engine) Submit(ctx context.Context, headSHA, baseSHA git.Hash) (*SubmitResult, error) {
	unlock := e.lock()
	defer unlock()

	snap, err := e.Snapshot.Load(ctx)
	if err != nil {
		return nil, err
	}

	ri, buildErr := e.buildIntent(snap, headSHA, baseSHA)
	if buildErr != nil {
		return nil, buildErr
	}
	if ri == nil {
		return &SubmitResult{NoOp: true}, nil
	}

	existing, err := e.Sessions.GetSession(ctx, e.RepoPath)
	if err != nil && !errors.Is(err, session.ErrNotExist) {
		return nil, err
	}

	activePath := ""
	if len(snap.Worktrees) > 0 {
		for _, wt := range snap.Worktrees {
			if wt.IsMain {
				activePath = wt.Path
				break
			}
		}
	}

	autoDetach, verr := e.validateForSubmit(snap, ri, existing, activePath)
	if verr != nil {
		return nil, verr
	}

	e.setPending(&pendingSubmission{intent: ri, snap: snap, autoDetach: autoDetach})

	return &SubmitResult{Preview: previewOf(ri)}, nil
}

func previewOf(ri *model.RebaseIntent) *IntentPreview {
	root := ri.Targets[0].Node
	p := &IntentPreview{
		RootBranch:    root.Branch,
		TargetBaseSHA: ri.Targets[0].TargetBaseSHA,
	}
	var walk func(*model.StackNode)
	walk = func(n *model.StackNode) {
		p.Branches = append(p.Branches, n.Branch)
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	return p
}
