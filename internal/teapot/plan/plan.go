// Package plan implements the pure state machine that turns a rebase
// intent into an ordered queue of per-branch jobs, records completions
// and conflicts, and enqueues children only after their parent
// succeeds. Every function here is pure: no I/O, no global state.
//
// Grounded on internal/handler/restack/handler.go's scope/ordering
// logic and internal/spice/restack.go's completion bookkeeping,
// generalized from "restack one tracked branch" to "drive an arbitrary
// intent tree".
package plan

import (
	"go.abhg.dev/teapot/internal/git"
	"go.abhg.dev/teapot/internal/must"
	"go.abhg.dev/teapot/internal/teapot/model"
)

// IDGenerator produces unique job ids. The engine supplies a real
// generator (e.g. random.Alnum); tests can supply a deterministic one.
type IDGenerator func() string

// CreateRebasePlan produces the initial [model.RebaseState] for intent.
//
// One job is created per root target; descendant-branch jobs are not
// pre-enqueued. They're appended when their parent completes, so each
// child's target base reflects the parent's actual new head rather than
// a guess made at plan-creation time.
func CreateRebasePlan(
	initialTrunkSHA git.Hash,
	intent *model.RebaseIntent,
	genID IDGenerator,
	nowMs int64,
) model.RebaseState {
	state := model.RebaseState{
		Session: model.Session{
			StartedAt:       nowMs,
			Status:          model.SessionRunning,
			InitialTrunkSHA: initialTrunkSHA,
		},
		JobsByID: make(map[string]*model.RebaseJob),
	}

	for _, target := range intent.Targets {
		job := &model.RebaseJob{
			ID:              genID(),
			Branch:          target.Node.Branch,
			OriginalBaseSHA: target.Node.BaseSHA,
			OriginalHeadSHA: target.Node.HeadSHA,
			TargetBaseSHA:   target.TargetBaseSHA,
			Status:          model.JobPending,
			CreatedAt:       nowMs,
		}
		state.JobsByID[job.ID] = job
		state.Queue.PendingJobIDs = append(state.Queue.PendingJobIDs, job.ID)
	}

	return state
}

// NextJob promotes the next pending job to in-progress and returns it,
// or returns (nil, false) if the queue is empty.
//
// Per spec.md §4.4, promoting a job while another is already
// in-progress or awaiting-user is a caller error (the executor's
// per-repository lock should prevent this); it is reported with
// must, not a returned error, since it indicates a programming fault.
func NextJob(state *model.RebaseState, nowMs int64) (*model.RebaseJob, bool) {
	must.Bef(state.Queue.ActiveJobID == "",
		"NextJob called while job %q is still active", state.Queue.ActiveJobID)

	if len(state.Queue.PendingJobIDs) == 0 {
		return nil, false
	}

	id := state.Queue.PendingJobIDs[0]
	state.Queue.PendingJobIDs = state.Queue.PendingJobIDs[1:]

	job, ok := state.JobsByID[id]
	must.Bef(ok, "job %q in queue but not in jobsById", id)

	job.Status = model.JobInProgress
	state.Queue.ActiveJobID = job.ID

	return job, true
}

// RecordConflict transitions job to awaiting-user, snapshotting the
// conflicted-file list, and moves the session to awaiting-user too.
func RecordConflict(state *model.RebaseState, job *model.RebaseJob, conflictedFiles []string) {
	must.BeEqualf(state.Queue.ActiveJobID, job.ID,
		"RecordConflict called for job %q, but active job is %q", job.ID, state.Queue.ActiveJobID)

	job.Status = model.JobAwaitingUser
	job.ConflictSnapshot = &model.ConflictSnapshot{Files: append([]string(nil), conflictedFiles...)}
	state.Session.Status = model.SessionAwaitingUser
}

// CompleteJob transitions job to completed, appending rewrites into the
// session's commit map (de-duplicated by (branch, oldSHA)), and clears
// the active-job marker.
func CompleteJob(state *model.RebaseState, job *model.RebaseJob, rewrites []model.CommitRewrite) {
	must.BeEqualf(state.Queue.ActiveJobID, job.ID,
		"CompleteJob called for job %q, but active job is %q", job.ID, state.Queue.ActiveJobID)

	job.Status = model.JobCompleted
	job.Rewrites = rewrites
	appendRewrites(state, rewrites)

	state.Queue.ActiveJobID = ""
	if state.Session.Status == model.SessionAwaitingUser {
		state.Session.Status = model.SessionRunning
	}
}

// SkipJob transitions job directly to skipped with an empty rewrite
// list, for branches with no owned commits (spec.md §4.4 tie-break):
// children still cascade using the parent's unchanged head.
func SkipJob(state *model.RebaseState, job *model.RebaseJob) {
	job.Status = model.JobSkipped
	job.Rewrites = nil
	if state.Queue.ActiveJobID == job.ID {
		state.Queue.ActiveJobID = ""
	}
}

// FailJob transitions job to failed. Per spec.md §4.4, previously
// completed work is not rolled back; the caller is responsible for
// dropping the job's subtree from the queue.
func FailJob(state *model.RebaseState, job *model.RebaseJob) {
	job.Status = model.JobFailed
	if state.Queue.ActiveJobID == job.ID {
		state.Queue.ActiveJobID = ""
	}
}

// EnqueueDescendants appends one new job per direct child of
// parentNode, each targeting parentNewHeadSHA as its new base. The
// child's OriginalBaseSHA is parentNode's pre-rebase head, matching
// spec.md §4.4's job-construction rule.
func EnqueueDescendants(
	state *model.RebaseState,
	parentNode *model.StackNode,
	parentNewHeadSHA git.Hash,
	genID IDGenerator,
	nowMs int64,
) []*model.RebaseJob {
	var created []*model.RebaseJob
	for _, child := range parentNode.Children {
		job := &model.RebaseJob{
			ID:              genID(),
			Branch:          child.Branch,
			OriginalBaseSHA: parentNode.HeadSHA,
			OriginalHeadSHA: child.HeadSHA,
			TargetBaseSHA:   parentNewHeadSHA,
			Status:          model.JobPending,
			CreatedAt:       nowMs,
		}
		state.JobsByID[job.ID] = job
		state.Queue.PendingJobIDs = append(state.Queue.PendingJobIDs, job.ID)
		created = append(created, job)
	}
	return created
}

// IsDrained reports whether the queue has no pending or active jobs.
func IsDrained(state *model.RebaseState) bool {
	return len(state.Queue.PendingJobIDs) == 0 && state.Queue.ActiveJobID == ""
}

func appendRewrites(state *model.RebaseState, rewrites []model.CommitRewrite) {
	for _, r := range rewrites {
		if state.Session.HasRewrite(r.Branch, r.OldSHA) {
			continue
		}
		state.Session.CommitMap = append(state.Session.CommitMap, r)
	}
}
