package plan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.abhg.dev/teapot/internal/git"
	"go.abhg.dev/teapot/internal/teapot/model"
	"go.abhg.dev/teapot/internal/teapot/plan"
)

func idSeq(prefix string) plan.IDGenerator {
	n := 0
	return func() string {
		n++
		return prefix + string(rune('0'+n))
	}
}

func oneTargetIntent() *model.RebaseIntent {
	child := &model.StackNode{Branch: "child", BaseSHA: "B", HeadSHA: "C", OwnedSHAs: []git.Hash{"C"}}
	root := &model.StackNode{
		Branch: "parent", BaseSHA: "A", HeadSHA: "B",
		OwnedSHAs: []git.Hash{"B"},
		Children:  []*model.StackNode{child},
	}
	return &model.RebaseIntent{
		Targets: []model.RebaseTarget{{Node: root, TargetBaseSHA: "D"}},
	}
}

func TestCreateRebasePlanEnqueuesOnlyRootJobs(t *testing.T) {
	st := plan.CreateRebasePlan("A", oneTargetIntent(), idSeq("job-"), 1000)

	assert.Len(t, st.JobsByID, 1)
	assert.Len(t, st.Queue.PendingJobIDs, 1)
	assert.Equal(t, model.SessionRunning, st.Session.Status)
	assert.Equal(t, git.Hash("A"), st.Session.InitialTrunkSHA)

	job := st.JobsByID[st.Queue.PendingJobIDs[0]]
	assert.Equal(t, "parent", job.Branch)
	assert.Equal(t, model.JobPending, job.Status)
}

func TestNextJobPromotesAndMarksActive(t *testing.T) {
	st := plan.CreateRebasePlan("A", oneTargetIntent(), idSeq("job-"), 1000)

	job, ok := plan.NextJob(&st, 1001)
	require.True(t, ok)
	assert.Equal(t, model.JobInProgress, job.Status)
	assert.Equal(t, job.ID, st.Queue.ActiveJobID)
	assert.Empty(t, st.Queue.PendingJobIDs)
}

func TestNextJobReturnsFalseWhenQueueEmpty(t *testing.T) {
	st := model.RebaseState{JobsByID: map[string]*model.RebaseJob{}}

	_, ok := plan.NextJob(&st, 1000)
	assert.False(t, ok)
}

func TestRecordConflictMovesJobAndSessionToAwaitingUser(t *testing.T) {
	st := plan.CreateRebasePlan("A", oneTargetIntent(), idSeq("job-"), 1000)
	job, _ := plan.NextJob(&st, 1001)

	plan.RecordConflict(&st, job, []string{"f.txt"})

	assert.Equal(t, model.JobAwaitingUser, job.Status)
	assert.Equal(t, model.SessionAwaitingUser, st.Session.Status)
	require.NotNil(t, job.ConflictSnapshot)
	assert.Equal(t, []string{"f.txt"}, job.ConflictSnapshot.Files)
}

func TestCompleteJobAppendsRewritesAndClearsActive(t *testing.T) {
	st := plan.CreateRebasePlan("A", oneTargetIntent(), idSeq("job-"), 1000)
	job, _ := plan.NextJob(&st, 1001)

	rewrites := []model.CommitRewrite{{Branch: "parent", OldSHA: "B", NewSHA: "B2"}}
	plan.CompleteJob(&st, job, rewrites)

	assert.Equal(t, model.JobCompleted, job.Status)
	assert.Equal(t, rewrites, job.Rewrites)
	assert.Equal(t, rewrites, st.Session.CommitMap)
	assert.Empty(t, st.Queue.ActiveJobID)
}

func TestCompleteJobDeduplicatesCommitMapEntries(t *testing.T) {
	st := plan.CreateRebasePlan("A", oneTargetIntent(), idSeq("job-"), 1000)
	job, _ := plan.NextJob(&st, 1001)

	r := model.CommitRewrite{Branch: "parent", OldSHA: "B", NewSHA: "B2"}
	plan.CompleteJob(&st, job, []model.CommitRewrite{r})

	// Re-recording the same job id is not a realistic flow, but the
	// append helper must still refuse to duplicate existing entries if
	// invoked again with the same rewrite (e.g. a retried completion).
	st.Queue.ActiveJobID = job.ID
	plan.CompleteJob(&st, job, []model.CommitRewrite{r})

	assert.Equal(t, []model.CommitRewrite{r}, st.Session.CommitMap)
}

func TestCompleteJobResumesRunningSessionFromAwaitingUser(t *testing.T) {
	st := plan.CreateRebasePlan("A", oneTargetIntent(), idSeq("job-"), 1000)
	job, _ := plan.NextJob(&st, 1001)
	plan.RecordConflict(&st, job, []string{"f.txt"})

	st.Queue.ActiveJobID = job.ID // continue resumes the same active job
	plan.CompleteJob(&st, job, nil)

	assert.Equal(t, model.SessionRunning, st.Session.Status)
}

func TestSkipJobClearsActiveWithEmptyRewrites(t *testing.T) {
	st := plan.CreateRebasePlan("A", oneTargetIntent(), idSeq("job-"), 1000)
	job, _ := plan.NextJob(&st, 1001)

	plan.SkipJob(&st, job)

	assert.Equal(t, model.JobSkipped, job.Status)
	assert.Empty(t, job.Rewrites)
	assert.Empty(t, st.Queue.ActiveJobID)
}

func TestFailJobDoesNotRollBackCompletedWork(t *testing.T) {
	st := plan.CreateRebasePlan("A", oneTargetIntent(), idSeq("job-"), 1000)
	job, _ := plan.NextJob(&st, 1001)
	plan.CompleteJob(&st, job, []model.CommitRewrite{{Branch: "parent", OldSHA: "B", NewSHA: "B2"}})

	children := plan.EnqueueDescendants(&st, oneTargetIntent().Targets[0].Node, "B2", idSeq("child-"), 1002)
	require.Len(t, children, 1)
	childJob, ok := plan.NextJob(&st, 1003)
	require.True(t, ok)

	plan.FailJob(&st, childJob)

	assert.Equal(t, model.JobFailed, childJob.Status)
	assert.Len(t, st.Session.CommitMap, 1, "parent's completed rewrite must survive the child's failure")
}

func TestEnqueueDescendantsUsesParentPreRebaseHeadAsOriginalBase(t *testing.T) {
	st := plan.CreateRebasePlan("A", oneTargetIntent(), idSeq("job-"), 1000)
	root := oneTargetIntent().Targets[0].Node

	created := plan.EnqueueDescendants(&st, root, "B2", idSeq("child-"), 1001)

	require.Len(t, created, 1)
	assert.Equal(t, "child", created[0].Branch)
	assert.Equal(t, git.Hash("B"), created[0].OriginalBaseSHA)
	assert.Equal(t, git.Hash("B2"), created[0].TargetBaseSHA)
	assert.Contains(t, st.Queue.PendingJobIDs, created[0].ID)
}

func TestIsDrainedReportsEmptyQueue(t *testing.T) {
	st := model.RebaseState{}
	assert.True(t, plan.IsDrained(&st))

	st.Queue.PendingJobIDs = []string{"job-1"}
	assert.False(t, plan.IsDrained(&st))
}
