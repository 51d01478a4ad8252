// Package prtarget resolves the correct base branch for a pull request
// when intermediate branches in its stack have been merged out from
// under it. It has no forge dependency: callers supply the PR
// head/base/state shape directly.
//
// Grounded on the head/base/state/merged-set shape the teacher's forge
// test double (internal/forge/shamhub) uses to model PR lifecycle
// transitions, reused here without any concrete forge client.
package prtarget

import "go.abhg.dev/teapot/internal/teapot/engineerr"

// PullRequest is the minimal shape the resolver needs from a forge PR:
// which branch it proposes merging (Head) into which branch (Base).
type PullRequest struct {
	Head string
	Base string
}

// Resolve walks the chain of pull requests rooted at target, replacing
// target with the base of whichever PR's head matches it, for as long
// as target names a merged branch. It stops and returns target as soon
// as target is unmerged.
//
// trunkFallback, if non-empty, is returned when the walk runs off the
// end of the chain (no PR has target as its head) while target is
// still merged. If trunkFallback is empty in that case, Resolve fails
// with engineerr.CannotDetermineBase.
//
// The walk is cycle-protected by a hop budget of len(prs)+1: a correct
// chain can be walked in at most len(prs) hops, so exceeding that
// indicates a cycle.
func Resolve(target string, prs []PullRequest, merged map[string]bool, trunkFallback string) (string, *engineerr.Error) {
	byHead := make(map[string]PullRequest, len(prs))
	for _, pr := range prs {
		byHead[pr.Head] = pr
	}

	maxHops := len(prs) + 1
	for hop := 0; hop < maxHops; hop++ {
		if !merged[target] {
			return target, nil
		}

		pr, ok := byHead[target]
		if !ok {
			if trunkFallback != "" {
				return trunkFallback, nil
			}
			return "", engineerr.New(engineerr.CannotDetermineBase,
				"branch "+target+" is merged but its pull request chain does not reach an unmerged base")
		}
		target = pr.Base
	}

	return "", engineerr.New(engineerr.CannotDetermineBase,
		"pull request chain for "+target+" did not resolve within the hop budget (possible cycle)")
}
