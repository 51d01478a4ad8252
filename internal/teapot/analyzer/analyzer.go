// Package analyzer infers parent/child branch relationships from the
// commit DAG alone. It never consults stored branch metadata: stack
// shape is a pure function of the snapshot's commits and branch heads.
package analyzer

import (
	"go.abhg.dev/container/ring"
	"go.abhg.dev/teapot/internal/git"
	"go.abhg.dev/teapot/internal/teapot/model"
)

// Analyzer computes direct child branches of a commit by walking
// first-parent ancestry only; merge commits are treated as if they had
// a single parent, so stacks are assumed linear.
type Analyzer struct {
	snap *model.RepoSnapshot
}

// New builds an Analyzer over the given snapshot.
func New(snap *model.RepoSnapshot) *Analyzer {
	return &Analyzer{snap: snap}
}

// Parent returns the first-parent commit of sha, or false if sha is a
// root commit or unknown.
func (a *Analyzer) Parent(sha git.Hash) (git.Hash, bool) {
	c, ok := a.snap.Commit(sha)
	if !ok || c.Parent == "" {
		return "", false
	}
	return c.Parent, true
}

// DirectChildren returns every branch whose head is a descendant of c
// and whose first-parent path back to c does not cross another branch
// head first. This is the set of branches that directly sit "above" c
// in the stack.
//
// Cycles in the parent graph (shouldn't occur in Git, but possible for
// malformed input) are detected with a visited set and break the walk
// rather than looping forever.
func (a *Analyzer) DirectChildren(c git.Hash) []model.Branch {
	var children []model.Branch
	for _, b := range a.snap.Branches {
		if b.IsRemote || b.Head == c {
			continue
		}
		if owner, ok := a.walkToOwningCommit(b.Head, c); ok && owner == c {
			children = append(children, b)
		}
	}
	return children
}

// walkToOwningCommit walks first-parent ancestry from head until it
// finds a commit that is either the target c, or some other branch's
// head (at which point head does not directly own c). It reports the
// commit where the walk stopped, and whether it reached c without
// crossing another branch's head.
func (a *Analyzer) walkToOwningCommit(head, c git.Hash) (git.Hash, bool) {
	visited := make(map[git.Hash]struct{})
	cur := head
	first := true
	for {
		if _, seen := visited[cur]; seen {
			return cur, false // cycle
		}
		visited[cur] = struct{}{}

		if cur == c {
			return cur, true
		}

		if !first {
			if _, ok := a.snap.BranchByHead(cur); ok {
				// Crossed another branch's head before reaching c.
				return cur, false
			}
		}
		first = false

		parent, ok := a.Parent(cur)
		if !ok {
			return cur, false
		}
		cur = parent
	}
}

// OwnedRange walks ancestry from head until it hits base (exclusive) or
// a root, returning the commits oldest-first.
func (a *Analyzer) OwnedRange(head, base git.Hash) []git.Hash {
	var shas []git.Hash
	visited := make(map[git.Hash]struct{})
	cur := head
	for cur != "" && cur != base {
		if _, seen := visited[cur]; seen {
			break
		}
		visited[cur] = struct{}{}
		shas = append(shas, cur)

		parent, ok := a.Parent(cur)
		if !ok {
			break
		}
		cur = parent
	}

	reverse(shas)
	return shas
}

func reverse(s []git.Hash) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// DescendantBranches performs a breadth-first walk of the stack rooted
// at head, returning every branch transitively above it in BFS order
// (nearest descendants first). Used by the intent builder to discover
// the full set of branches a cascading rebase must touch.
func (a *Analyzer) DescendantBranches(head git.Hash) []model.Branch {
	var out []model.Branch
	var q ring.Q[git.Hash]
	q.Push(head)
	for !q.Empty() {
		cur := q.Pop()
		for _, child := range a.DirectChildren(cur) {
			out = append(out, child)
			q.Push(child.Head)
		}
	}
	return out
}
