// Package trunk identifies the trunk branch and trunk-head commit of a
// repository snapshot.
package trunk

import (
	"errors"
	"strings"

	"go.abhg.dev/teapot/internal/git"
	"go.abhg.dev/teapot/internal/teapot/model"
)

// ErrNoTrunk indicates that no trunk branch could be identified.
var ErrNoTrunk = errors.New("no trunk branch found")

// Resolved describes the trunk branch selected for a snapshot.
type Resolved struct {
	Branch   model.Branch
	HeadSHA  git.Hash
}

// Resolve selects the trunk branch per spec.md §4.1: prefer a branch
// explicitly flagged trunk; otherwise the first trunk candidate found
// in precedence order; otherwise, if no local candidate exists but a
// remote-tracking ref for a candidate name does, use that.
//
// candidates, if nil, defaults to model.TrunkCandidateNames.
func Resolve(snap *model.RepoSnapshot, candidates []string) (Resolved, error) {
	if len(candidates) == 0 {
		candidates = model.TrunkCandidateNames
	}

	for _, b := range snap.Branches {
		if b.IsTrunk && !b.IsRemote {
			return Resolved{Branch: b, HeadSHA: b.Head}, nil
		}
	}

	for _, name := range candidates {
		for _, b := range snap.Branches {
			if b.IsRemote {
				continue
			}
			if strings.EqualFold(b.Name, name) {
				return Resolved{Branch: b, HeadSHA: b.Head}, nil
			}
		}
	}

	// No local candidate; fall back to a remote-tracking ref for a
	// candidate name, in the same precedence order.
	for _, name := range candidates {
		for _, b := range snap.Branches {
			if !b.IsRemote {
				continue
			}
			if remoteShortName(b.Name) == name {
				return Resolved{Branch: b, HeadSHA: b.Head}, nil
			}
		}
	}

	return Resolved{}, ErrNoTrunk
}

// remoteShortName strips a leading "<remote>/" component from a
// remote-tracking branch name, e.g. "origin/main" -> "main".
func remoteShortName(name string) string {
	if i := strings.IndexByte(name, '/'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// IsCandidate reports whether name (case-insensitive) is one of the
// trunk-candidate names.
func IsCandidate(name string, candidates []string) bool {
	if len(candidates) == 0 {
		candidates = model.TrunkCandidateNames
	}
	for _, c := range candidates {
		if strings.EqualFold(name, c) {
			return true
		}
	}
	return false
}

// BestParentBranch picks, among the branches whose head equals sha, the
// branch that should be treated as the "owner" of that commit: trunk
// wins outright; otherwise the oldest branch by snapshot insertion
// order (deterministic, reproducible across runs).
func BestParentBranch(snap *model.RepoSnapshot, sha git.Hash) (model.Branch, bool) {
	var best model.Branch
	var have bool
	for _, b := range snap.Branches {
		if b.Head != sha {
			continue
		}
		if b.IsTrunk {
			return b, true
		}
		if !have {
			best, have = b, true
		}
	}
	if !have {
		return model.Branch{}, false
	}
	return best, true
}
