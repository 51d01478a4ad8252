package git

import (
	"bytes"
	"context"
	"fmt"
	"iter"
	"strings"

	"go.abhg.dev/teapot/internal/silog"
)

// Worktree is a checkout of a Git repository at a specific path.
// Operations that require a working tree (e.g. branch checkout, rebase, etc.)
// are only available on the worktree.
type Worktree struct {
	gitDir  string // absolute path to wt's .git directory
	rootDir string // absolute path to the root directory of the worktree
	repo    *Repository

	log  *silog.Logger
	exec execer
}

func newWorktree(gitDir, rootDir string, repo *Repository, log *silog.Logger, exec execer) *Worktree {
	return &Worktree{
		gitDir:  gitDir,
		rootDir: rootDir,
		repo:    repo,
		log:     log,
		exec:    exec,
	}
}

func (w *Worktree) gitCmd(ctx context.Context, args ...string) *gitCmd {
	return newGitCmd(ctx, w.log, w.exec, args...).Dir(w.rootDir)
}

// RootDir returns the absolute path to the root directory of the worktree.
func (w *Worktree) RootDir() string {
	return w.rootDir
}

// GitDir returns the absolute path to this worktree's Git directory.
// For a linked worktree this is the per-worktree administrative
// directory (resolved from its "gitdir:" pointer), not the main
// repository's common Git directory.
func (w *Worktree) GitDir() string {
	return w.gitDir
}

// Repository returns the Git repository that this worktree belongs to.
func (w *Worktree) Repository() *Repository {
	return w.repo
}

// OpenWorktree opens the Git worktree rooted at the given directory.
// If dir is empty, the current working directory is used.
func OpenWorktree(ctx context.Context, dir string, opts OpenOptions) (*Worktree, error) {
	repo, err := Open(ctx, dir, opts)
	if err != nil {
		return nil, err
	}
	return repo.OpenWorktree(ctx, dir)
}

// OpenWorktree opens a worktree of this repository at the given directory.
func (r *Repository) OpenWorktree(ctx context.Context, dir string) (*Worktree, error) {
	out, err := r.gitCmd(ctx, "rev-parse", "--show-toplevel", "--absolute-git-dir").
		Dir(dir).
		OutputChomp()
	if err != nil {
		return nil, err
	}

	rootDir, gitDir, ok := strings.Cut(out, "\n")
	if !ok {
		return nil, fmt.Errorf("unexpected output from git rev-parse: %q", out)
	}
	return newWorktree(gitDir, rootDir, r, r.log, r.exec), nil
}

// WorktreeListItem represents a worktree associated with a repository.
type WorktreeListItem struct {
	// Path is the path to the worktree.
	// Use this with Repository.OpenWorktree.
	Path string

	// Bare reports that the worktree is a bare repository.
	Bare bool

	// Detached reports that the worktree is in a detached HEAD state.
	Detached bool

	// LockedReason reports why the worktree is locked, if it is.
	// It is empty if the worktree is not locked.
	LockedReason string

	// Branch is the name of the branch checked out in this worktree.
	// If empty, the worktree may not have a branch checked out.
	Branch string

	// Head is the hash of the HEAD commit in this worktree.
	Head Hash
}

// AddWorktreeRequest specifies the parameters for creating a new
// worktree.
type AddWorktreeRequest struct {
	// Path is the directory to create the worktree at.
	Path string // required

	// Commitish is the commit-ish to check out in the new worktree.
	// If empty, defaults to HEAD.
	Commitish string

	// Detach checks out Commitish in detached-HEAD state instead of
	// creating or using a branch.
	Detach bool
}

// AddWorktree creates a new worktree for the repository.
func (r *Repository) AddWorktree(ctx context.Context, req AddWorktreeRequest) (*Worktree, error) {
	args := []string{"worktree", "add"}
	if req.Detach {
		args = append(args, "--detach")
	}
	args = append(args, req.Path)
	if req.Commitish != "" {
		args = append(args, req.Commitish)
	}

	if err := r.gitCmd(ctx, args...).Run(); err != nil {
		return nil, fmt.Errorf("git worktree add: %w", err)
	}

	return r.OpenWorktree(ctx, req.Path)
}

// RemoveWorktreeOptions specifies options for removing a worktree.
type RemoveWorktreeOptions struct {
	// Force removes the worktree even if it has uncommitted changes
	// or is currently locked.
	Force bool
}

// RemoveWorktree removes the worktree at path. It tolerates "already
// gone" errors: removing a worktree that Git no longer knows about is
// not an error.
func (r *Repository) RemoveWorktree(ctx context.Context, path string, opts RemoveWorktreeOptions) error {
	args := []string{"worktree", "remove"}
	if opts.Force {
		args = append(args, "--force")
	}
	args = append(args, path)

	if err := r.gitCmd(ctx, args...).Run(); err != nil {
		if strings.Contains(err.Error(), "is not a working tree") {
			return nil
		}
		return fmt.Errorf("git worktree remove: %w", err)
	}
	return nil
}

// PruneWorktrees removes stale administrative data for worktrees whose
// directories no longer exist.
func (r *Repository) PruneWorktrees(ctx context.Context) error {
	if err := r.gitCmd(ctx, "worktree", "prune").Run(); err != nil {
		return fmt.Errorf("git worktree prune: %w", err)
	}
	return nil
}

// Worktrees returns a list of worktrees associated with the repository.
func (r *Repository) Worktrees(ctx context.Context) iter.Seq2[*WorktreeListItem, error] {
	return func(yield func(*WorktreeListItem, error) bool) {
		var item *WorktreeListItem
		for line, err := range r.gitCmd(ctx, "worktree", "list", "--porcelain", "-z").Scan(splitNullByte) {
			if err != nil {
				yield(nil, fmt.Errorf("worktree list: %w", err))
				return
			}

			// worktree list porcelain has output in the form:
			//
			//	worktree <path>
			//	attr1 <value>
			//	attr2 <value>
			//	boolattr1
			//	boolattr2
			//
			// Where worktree is the first line for a worktree,
			// and then the attributes follow.
			// An empty line indicates the end of a worktree entry.
			if len(line) == 0 {
				if item != nil {
					if !yield(item, nil) {
						return
					}
				}
				item = nil
				continue
			}

			key, value, _ := bytes.Cut(line, []byte(" "))
			switch string(key) {
			case "worktree":
				item = &WorktreeListItem{Path: string(value)}
			case "detached":
				item.Detached = true
			case "bare":
				item.Bare = true
			case "branch":
				item.Branch = strings.TrimPrefix(string(value), "refs/heads/")
			case "HEAD":
				item.Head = Hash(value)
			case "locked":
				item.LockedReason = string(value)
			default:
				// Ignore unknown attributes.
			}
		}
	}
}
