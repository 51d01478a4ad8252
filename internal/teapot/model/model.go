// Package model defines the data types shared by the stacked-branch
// rebase engine: commits, branches, worktrees, the repository snapshot
// the engine consumes, and the intent/plan/session types that describe
// an in-flight rebase.
package model

import (
	"time"

	"go.abhg.dev/teapot/internal/git"
)

// Commit is an immutable Git commit as seen by the engine.
// Ancestry is expressed purely through Parent; merge commits
// are treated as if they had only their first parent.
type Commit struct {
	SHA     git.Hash
	Parent  git.Hash // empty for a root commit
	Message string

	// AuthoredAt is the authoritative time of the commit.
	AuthoredAt time.Time
}

// AuthoredAtMs reports AuthoredAt in milliseconds since epoch,
// for callers that need the wire representation the spec describes.
func (c Commit) AuthoredAtMs() int64 {
	return c.AuthoredAt.UnixMilli()
}

// Branch is a named reference to a commit.
type Branch struct {
	// Ref is the full reference name, e.g. "refs/heads/feature".
	Ref string

	// Name is the short branch name, e.g. "feature".
	Name string

	Head     git.Hash
	IsTrunk  bool
	IsRemote bool
}

// TrunkCandidateNames lists the default trunk-candidate short names,
// in precedence order. A repository-local Config may override this.
var TrunkCandidateNames = []string{"main", "master", "develop", "trunk"}

// ProtectedTrunkNames is the case-insensitive set of branch names that
// can never be deleted, renamed, or cleaned up, regardless of whether
// they're the trunk in the current snapshot.
var ProtectedTrunkNames = TrunkCandidateNames

// Worktree is a working directory associated with the repository.
type Worktree struct {
	Path string

	// Branch is the name of the branch checked out here, or empty
	// if the worktree is in detached-HEAD state.
	Branch string

	Detached bool
	Dirty    bool
	IsMain   bool
}

// WorkingTreeStatus reports the status of the active working tree.
type WorkingTreeStatus struct {
	CurrentBranch   string
	CurrentCommit   git.Hash
	Detached        bool
	IsRebasing      bool
	Staged          []string
	Modified        []string
	Created         []string
	Deleted         []string
	Renamed         []string
	NotAdded        []string
	Conflicted      []string
	AllChangedFiles []string
}

// RepoSnapshot is an immutable view of a repository's commits, branches,
// worktrees, and working-tree status at a point in time. The engine
// never mutates a snapshot; the host rebuilds one when it needs a fresh
// view of the repository.
type RepoSnapshot struct {
	// Commits maps a commit SHA to the commit itself.
	Commits map[git.Hash]Commit

	// Branches lists every branch known to the snapshot, in the
	// order the host enumerated them (insertion order is used by
	// the trunk resolver as a deterministic tie-break).
	Branches []Branch

	Worktrees []Worktree

	// Status is the working-tree status of the currently active path.
	Status WorkingTreeStatus
}

// BranchByName returns the branch with the given short name, if any.
func (s *RepoSnapshot) BranchByName(name string) (Branch, bool) {
	for _, b := range s.Branches {
		if b.Name == name {
			return b, true
		}
	}
	return Branch{}, false
}

// BranchByHead returns the first local branch whose head equals sha,
// preferring non-remote branches so that BranchByHead(headSHA) resolves
// to the branch a user would mean when they say "this branch".
func (s *RepoSnapshot) BranchByHead(sha git.Hash) (Branch, bool) {
	var remote Branch
	var haveRemote bool
	for _, b := range s.Branches {
		if b.Head != sha {
			continue
		}
		if !b.IsRemote {
			return b, true
		}
		if !haveRemote {
			remote, haveRemote = b, true
		}
	}
	return remote, haveRemote
}

// Commit looks up a commit by SHA.
func (s *RepoSnapshot) Commit(sha git.Hash) (Commit, bool) {
	c, ok := s.Commits[sha]
	return c, ok
}
