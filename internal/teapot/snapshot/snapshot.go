// Package snapshot builds the [model.RepoSnapshot] the engine consumes,
// from a real repository on disk. It is a thin, swappable caller of the
// engine: the engine never imports this package, and any caller that
// can produce a [model.RepoSnapshot] some other way (a test fixture, a
// cached view) is free to skip it entirely.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"go.abhg.dev/teapot/internal/git"
	"go.abhg.dev/teapot/internal/teapot/config"
	"go.abhg.dev/teapot/internal/teapot/model"
)

// Repository is the subset of the concrete Git adapter the loader
// depends on. Narrow so tests can stub it without a real repository.
type Repository interface {
	LocalBranches(ctx context.Context) ([]string, error)
	PeelToCommit(ctx context.Context, ref string) (git.Hash, error)
	CommitLog(ctx context.Context, start, stop string) iter.Seq2[git.LogEntry, error]
}

// ActiveWorktree is the subset of *git.Worktree the loader depends on
// for the currently active working tree's status.
type ActiveWorktree struct {
	Path   string
	IsMain bool
	WT     interface {
		Status(ctx context.Context) (*git.Status, error)
		RebaseState(ctx context.Context) (*git.RebaseState, error)
	}
}

var _ Repository = (*git.Repository)(nil)

// Loader assembles a [model.RepoSnapshot] from a repository and a list
// of worktrees known to be attached to it.
type Loader struct {
	Repo Repository
	Cfg  config.Config

	// HistoryDepth bounds how many commits are walked per branch,
	// from the branch head back towards the merge base with any
	// trunk candidate. Zero means unbounded (walk to root).
	HistoryDepth int
}

// New returns a Loader for repo using cfg's trunk candidates and
// rebase depth cap as the default history walk depth.
func New(repo Repository, cfg config.Config) *Loader {
	return &Loader{Repo: repo, Cfg: cfg, HistoryDepth: cfg.RebaseDepthCap}
}

// Load builds a snapshot: every local branch and the commits reachable
// from its head (bounded by HistoryDepth), the worktrees the caller
// supplies, and the active worktree's status.
func (l *Loader) Load(ctx context.Context, worktrees []model.Worktree, active *ActiveWorktree) (*model.RepoSnapshot, error) {
	names, err := l.Repo.LocalBranches(ctx)
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}

	trunkSet := make(map[string]bool, len(l.Cfg.TrunkCandidates))
	for _, name := range l.Cfg.TrunkCandidates {
		trunkSet[name] = true
	}

	snap := &model.RepoSnapshot{
		Commits:   make(map[git.Hash]model.Commit),
		Worktrees: worktrees,
	}

	for _, name := range names {
		head, err := l.Repo.PeelToCommit(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("resolve branch %s: %w", name, err)
		}

		snap.Branches = append(snap.Branches, model.Branch{
			Ref:     "refs/heads/" + name,
			Name:    name,
			Head:    head,
			IsTrunk: trunkSet[name],
		})

		if err := l.walkHistory(ctx, snap, head); err != nil {
			return nil, fmt.Errorf("walk history for %s: %w", name, err)
		}
	}

	if active != nil {
		status, err := active.WT.Status(ctx)
		if err != nil {
			return nil, fmt.Errorf("working tree status: %w", err)
		}
		wts := toWorkingTreeStatus(status)

		if _, err := active.WT.RebaseState(ctx); err == nil {
			wts.IsRebasing = true
		} else if !errors.Is(err, git.ErrNoRebase) {
			return nil, fmt.Errorf("check rebase state: %w", err)
		}

		snap.Status = wts
	}

	return snap, nil
}

// walkHistory streams commits reachable from head and records them in
// snap.Commits, stopping early once a commit already seen (from an
// earlier branch's walk, or the configured depth) is reached.
func (l *Loader) walkHistory(ctx context.Context, snap *model.RepoSnapshot, head git.Hash) error {
	var count int
	for entry, err := range l.Repo.CommitLog(ctx, head.String(), "") {
		if err != nil {
			return err
		}
		if _, seen := snap.Commits[entry.Hash]; seen {
			return nil
		}

		snap.Commits[entry.Hash] = model.Commit{
			SHA:        entry.Hash,
			Parent:     entry.Parent,
			Message:    entry.Subject,
			AuthoredAt: time.Unix(entry.AuthorUnix, 0).UTC(),
		}

		count++
		if l.HistoryDepth > 0 && count >= l.HistoryDepth {
			return nil
		}
	}
	return nil
}

func toWorkingTreeStatus(st *git.Status) model.WorkingTreeStatus {
	all := make([]string, 0, len(st.Staged)+len(st.Modified)+len(st.Created)+
		len(st.Deleted)+len(st.Renamed)+len(st.NotAdded)+len(st.Conflicted))
	for _, group := range [][]string{
		st.Staged, st.Modified, st.Created, st.Deleted, st.Renamed, st.NotAdded, st.Conflicted,
	} {
		all = append(all, group...)
	}

	return model.WorkingTreeStatus{
		CurrentBranch:   st.Branch,
		CurrentCommit:   st.Head,
		Detached:        st.Detached,
		Staged:          st.Staged,
		Modified:        st.Modified,
		Created:         st.Created,
		Deleted:         st.Deleted,
		Renamed:         st.Renamed,
		NotAdded:        st.NotAdded,
		Conflicted:      st.Conflicted,
		AllChangedFiles: all,
	}
}
