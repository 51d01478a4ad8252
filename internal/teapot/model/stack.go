package model

import (
	"sort"

	"go.abhg.dev/teapot/internal/git"
	"go.abhg.dev/teapot/internal/maputil"
)

// StackNode is one branch's position in a rebase intent's target tree.
// The same branch appears in at most one node per intent.
type StackNode struct {
	Branch string

	HeadSHA git.Hash
	BaseSHA git.Hash

	// OwnedSHAs are the commits this branch contributes over its base,
	// oldest-first.
	OwnedSHAs []git.Hash

	Children []*StackNode
}

// RebaseTarget encodes "rewrite Node.Branch so its owned commits land
// on top of TargetBaseSHA."
type RebaseTarget struct {
	Node          *StackNode
	TargetBaseSHA git.Hash
}

// RebaseIntent is a user-submitted wish, expanded to the full set of
// branches that must move. It is immutable once created.
type RebaseIntent struct {
	ID        string
	CreatedAt int64 // ms since epoch

	Targets []RebaseTarget
}

// NodeByBranch looks up a node anywhere in the intent's target trees by
// branch name.
func (ri *RebaseIntent) NodeByBranch(branch string) (*StackNode, bool) {
	for _, t := range ri.Targets {
		if n := findNode(t.Node, branch); n != nil {
			return n, true
		}
	}
	return nil, false
}

func findNode(n *StackNode, branch string) *StackNode {
	if n == nil {
		return nil
	}
	if n.Branch == branch {
		return n
	}
	for _, c := range n.Children {
		if found := findNode(c, branch); found != nil {
			return found
		}
	}
	return nil
}

// JobStatus is the lifecycle state of a RebaseJob.
type JobStatus string

// Job statuses.
const (
	JobPending      JobStatus = "pending"
	JobInProgress   JobStatus = "in-progress"
	JobAwaitingUser JobStatus = "awaiting-user"
	JobCompleted    JobStatus = "completed"
	JobFailed       JobStatus = "failed"
	JobSkipped      JobStatus = "skipped"
)

// CommitRewrite is a single pre/post pairing produced by replaying one
// commit during a rebase.
type CommitRewrite struct {
	Branch string
	OldSHA git.Hash
	NewSHA git.Hash
}

// ConflictSnapshot records the conflicted files observed when a job was
// suspended awaiting user resolution.
type ConflictSnapshot struct {
	Files []string
}

// RebaseJob is the atomic per-branch rebase unit executed by the queue.
type RebaseJob struct {
	ID string

	Branch          string
	OriginalBaseSHA git.Hash
	OriginalHeadSHA git.Hash
	TargetBaseSHA   git.Hash

	Status JobStatus

	CreatedAt int64 // ms since epoch

	Rewrites         []CommitRewrite
	ConflictSnapshot *ConflictSnapshot
}

// RebaseQueue holds the pending job ids and the currently active job,
// if any. At most one job is active at a time.
type RebaseQueue struct {
	PendingJobIDs []string
	ActiveJobID   string // empty if none
}

// SessionStatus is the lifecycle state of a rebase session.
type SessionStatus string

// Session statuses.
const (
	SessionRunning     SessionStatus = "running"
	SessionAwaitingUser SessionStatus = "awaiting-user"
	SessionCompleted    SessionStatus = "completed"
	SessionAborted      SessionStatus = "aborted"
)

// Session is the mutable, durable part of a rebase's progress.
type Session struct {
	ID             string
	StartedAt      int64 // ms since epoch
	Status         SessionStatus
	InitialTrunkSHA git.Hash

	// CommitMap grows monotonically: once an (oldSHA -> newSHA) pair
	// for a branch is recorded it is never removed.
	CommitMap []CommitRewrite
}

// HasRewrite reports whether the session's commit map already records
// a rewrite for (branch, oldSHA), used to de-duplicate appends.
func (s *Session) HasRewrite(branch string, oldSHA git.Hash) bool {
	for _, r := range s.CommitMap {
		if r.Branch == branch && r.OldSHA == oldSHA {
			return true
		}
	}
	return false
}

// RebaseState is the full pure state the state machine operates over:
// the session, every job by id, and the pending/active queue.
type RebaseState struct {
	Session Session
	JobsByID map[string]*RebaseJob
	Queue    RebaseQueue
}

// Job looks up a job by id.
func (s *RebaseState) Job(id string) (*RebaseJob, bool) {
	j, ok := s.JobsByID[id]
	return j, ok
}

// SortedJobIDs returns every job id in JobsByID in a stable,
// deterministic order, for status displays and logging where map
// iteration order would otherwise vary between calls.
func (s *RebaseState) SortedJobIDs() []string {
	ids := maputil.Keys(s.JobsByID)
	sort.Strings(ids)
	return ids
}

// ContinuationRequest describes which logical operation was interrupted
// by a conflict (grounded on the teacher's rebase-rescue mechanism). No
// engine operation sets or reads it: Continue resumes from the stored
// RebaseState and RebaseIntent alone.
type ContinuationRequest struct {
	// Command is the original engine operation, e.g. "submit".
	Command string

	// Args are the original operation's arguments (head/base SHAs,
	// branch names) needed to describe what is being resumed.
	Args []string
}

// AutoDetachedWorktree records a worktree the validator detached from a
// target branch so the rebase could proceed, for restoration during
// finalization.
type AutoDetachedWorktree struct {
	Path   string
	Branch string
}

// StoredRebaseSession is the durable record persisted by the session
// store: everything needed to resume a rebase after a crash or a
// conflict suspension.
type StoredRebaseSession struct {
	Intent RebaseIntent
	State  RebaseState

	OriginalBranch string

	AutoDetachedWorktrees []AutoDetachedWorktree

	Continuation *ContinuationRequest
}

// ExecutionContext is the concrete working tree the engine executes
// jobs against.
type ExecutionContext struct {
	ExecutionPath string
	IsTemporary   bool
	AcquiredAt    int64 // ms since epoch
	Purpose       string
}
