// Package intent builds a [model.RebaseIntent] from a single rebase
// request: move the branch at headSHA onto newBaseSHA. It computes the
// full set of descendant branches that must follow, the commit ranges
// each owns, and their new bases, per spec.md §4.3.
//
// Grounded on internal/spice/onto.go's handling of the "original base
// becomes reachable from the new base" edge case: if newBaseSHA is
// already an ancestor of the branch's current base, there is nothing to
// rewrite.
package intent

import (
	"errors"

	"go.abhg.dev/teapot/internal/git"
	"go.abhg.dev/teapot/internal/teapot/analyzer"
	"go.abhg.dev/teapot/internal/teapot/model"
	"go.abhg.dev/teapot/internal/teapot/trunk"
)

// ErrInvalidHead indicates that headSHA does not match any tracked
// branch.
var ErrInvalidHead = errors.New("invalid head: no branch found at that commit")

// ErrTrunkHead indicates that headSHA refers to the trunk branch's head,
// which can never be the subject of a rebase intent.
var ErrTrunkHead = errors.New("cannot move the trunk branch")

// Builder builds rebase intents over a fixed snapshot.
type Builder struct {
	snap       *model.RepoSnapshot
	analyzer   *analyzer.Analyzer
	candidates []string

	// idGen produces job-independent intent ids. If nil, intents get
	// an empty ID (the engine supplies a real id generator).
	idGen func() string
}

// New builds an intent Builder over snap, using candidates as the
// trunk-candidate precedence list (nil uses the defaults).
func New(snap *model.RepoSnapshot, candidates []string, idGen func() string) *Builder {
	return &Builder{
		snap:       snap,
		analyzer:   analyzer.New(snap),
		candidates: candidates,
		idGen:      idGen,
	}
}

// Build computes the rebase intent for moving headSHA onto newBaseSHA.
// It returns (nil, nil) for no-op cases per spec.md §4.3: the branch
// already sits on newBaseSHA, or newBaseSHA is already an ancestor of
// the branch's current base (the rebase would be a fast-forward
// inverse, i.e. nothing to replay).
func (b *Builder) Build(headSHA, newBaseSHA git.Hash) (*model.RebaseIntent, error) {
	branch, ok := b.snap.BranchByHead(headSHA)
	if !ok {
		return nil, ErrInvalidHead
	}

	if trunkRes, err := trunk.Resolve(b.snap, b.candidates); err == nil {
		if trunkRes.HeadSHA == headSHA {
			return nil, ErrTrunkHead
		}
	}

	originalBase, ownedSHAs := b.ownershipOf(branch.Head, "")

	if originalBase == newBaseSHA {
		return nil, nil // no-op: branch is already based on newBaseSHA
	}

	// Fast-forward-inverse: newBaseSHA is already an ancestor of the
	// current base, so rewriting would replay nothing new.
	if b.isAncestorOfBase(newBaseSHA, originalBase) {
		return nil, nil
	}

	root := &model.StackNode{
		Branch:    branch.Name,
		HeadSHA:   branch.Head,
		BaseSHA:   originalBase,
		OwnedSHAs: ownedSHAs,
	}
	b.attachChildren(root)

	id := ""
	if b.idGen != nil {
		id = b.idGen()
	}

	return &model.RebaseIntent{
		ID: id,
		Targets: []model.RebaseTarget{
			{Node: root, TargetBaseSHA: newBaseSHA},
		},
	}, nil
}

// ownershipOf computes a branch's current base and owned commits by
// walking ancestry from head until another branch head or the trunk is
// encountered. If baseHint is non-empty (the parent's head, when
// building a child node) it is used directly as the stopping point
// instead of re-discovering it.
func (b *Builder) ownershipOf(head git.Hash, baseHint git.Hash) (base git.Hash, owned []git.Hash) {
	if baseHint != "" {
		return baseHint, b.analyzer.OwnedRange(head, baseHint)
	}

	base = b.findOwningBase(head)
	return base, b.analyzer.OwnedRange(head, base)
}

// findOwningBase walks ancestry from head until it finds another
// branch's head or the trunk head, returning that commit as the
// branch's current base.
func (b *Builder) findOwningBase(head git.Hash) git.Hash {
	trunkRes, hasTrunk := trunk.Resolve(b.snap, b.candidates)

	cur := head
	visited := make(map[git.Hash]struct{})
	first := true
	for cur != "" {
		if _, seen := visited[cur]; seen {
			break
		}
		visited[cur] = struct{}{}

		if hasTrunk && cur == trunkRes.HeadSHA {
			return cur
		}
		if !first {
			if _, ok := b.snap.BranchByHead(cur); ok {
				return cur
			}
		}
		first = false

		parent, ok := b.analyzer.Parent(cur)
		if !ok {
			return cur // reached a root
		}
		cur = parent
	}
	return cur
}

// isAncestorOfBase reports whether candidate is an ancestor of (or
// equal to) base, using the same first-parent walk the rest of the
// analyzer uses, since the engine treats stacks as linear.
func (b *Builder) isAncestorOfBase(candidate, base git.Hash) bool {
	if candidate == base {
		return true
	}
	cur := base
	visited := make(map[git.Hash]struct{})
	for cur != "" {
		if _, seen := visited[cur]; seen {
			return false
		}
		visited[cur] = struct{}{}
		if cur == candidate {
			return true
		}
		parent, ok := b.analyzer.Parent(cur)
		if !ok {
			return false
		}
		cur = parent
	}
	return false
}

// attachChildren recursively attaches every direct descendant branch of
// node as a child StackNode, each with its own ownership range computed
// using the parent's head as its base.
func (b *Builder) attachChildren(node *model.StackNode) {
	for _, child := range b.analyzer.DirectChildren(node.HeadSHA) {
		_, owned := b.ownershipOf(child.Head, node.HeadSHA)
		childNode := &model.StackNode{
			Branch:    child.Name,
			HeadSHA:   child.Head,
			BaseSHA:   node.HeadSHA,
			OwnedSHAs: owned,
		}
		node.Children = append(node.Children, childNode)
		b.attachChildren(childNode)
	}
}
