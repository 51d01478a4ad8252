package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.abhg.dev/teapot/internal/git"
	"go.abhg.dev/teapot/internal/teapot/engineerr"
	"go.abhg.dev/teapot/internal/teapot/model"
	"go.abhg.dev/teapot/internal/teapot/validate"
)

func basicIntent() *model.RebaseIntent {
	node := &model.StackNode{Branch: "feature", HeadSHA: "B", BaseSHA: "A"}
	return &model.RebaseIntent{
		Targets: []model.RebaseTarget{{Node: node, TargetBaseSHA: "D"}},
	}
}

func baseSnapshot() *model.RepoSnapshot {
	return &model.RepoSnapshot{
		Commits: map[git.Hash]model.Commit{
			"A": {SHA: "A"},
			"B": {SHA: "B", Parent: "A"},
			"D": {SHA: "D", Parent: "A"},
		},
		Branches: []model.Branch{
			{Name: "main", Head: "D", IsTrunk: true},
			{Name: "feature", Head: "B"},
		},
	}
}

func TestIntentNonEmptyRejectsEmptyTargets(t *testing.T) {
	err := validate.IntentNonEmpty(&validate.Request{Intent: &model.RebaseIntent{}})
	require.NotNil(t, err)
	assert.Equal(t, engineerr.InvalidIntent, err.Code)
}

func TestIntentNonEmptyAcceptsPopulatedTargets(t *testing.T) {
	err := validate.IntentNonEmpty(&validate.Request{Intent: basicIntent()})
	assert.Nil(t, err)
}

func TestNoRebaseInProgressRejectsMidRebaseTree(t *testing.T) {
	snap := baseSnapshot()
	snap.Status.IsRebasing = true

	err := validate.NoRebaseInProgress(&validate.Request{Snap: snap})
	require.NotNil(t, err)
	assert.Equal(t, engineerr.RebaseInProgress, err.Code)
}

func TestNoExistingSessionRejectsWhenSessionPresent(t *testing.T) {
	err := validate.NoExistingSession(&validate.Request{Session: &model.StoredRebaseSession{}})
	require.NotNil(t, err)
	assert.Equal(t, engineerr.SessionExists, err.Code)
}

func TestNotDetachedRejectsDetachedHead(t *testing.T) {
	snap := baseSnapshot()
	snap.Status.Detached = true

	err := validate.NotDetached(&validate.Request{Snap: snap})
	require.NotNil(t, err)
	assert.Equal(t, engineerr.DetachedHead, err.Code)
}

func TestTargetRefsExistRejectsMissingBranch(t *testing.T) {
	snap := baseSnapshot()
	snap.Branches = snap.Branches[:1] // drop "feature"

	err := validate.TargetRefsExist(&validate.Request{Snap: snap, Intent: basicIntent()})
	require.NotNil(t, err)
	assert.Equal(t, engineerr.BranchNotFound, err.Code)
}

func TestTargetRefsExistRejectsMovedBranch(t *testing.T) {
	snap := baseSnapshot()
	for i := range snap.Branches {
		if snap.Branches[i].Name == "feature" {
			snap.Branches[i].Head = "D" // moved since the plan was built
		}
	}

	err := validate.TargetRefsExist(&validate.Request{Snap: snap, Intent: basicIntent()})
	require.NotNil(t, err)
	assert.Equal(t, engineerr.BranchMoved, err.Code)
}

func TestTargetRefsExistRejectsSameBase(t *testing.T) {
	snap := baseSnapshot()
	intentSameBase := &model.RebaseIntent{
		Targets: []model.RebaseTarget{
			{Node: &model.StackNode{Branch: "feature", HeadSHA: "B", BaseSHA: "A"}, TargetBaseSHA: "A"},
		},
	}

	err := validate.TargetRefsExist(&validate.Request{Snap: snap, Intent: intentSameBase})
	require.NotNil(t, err)
	assert.Equal(t, engineerr.SameBase, err.Code)
}

func TestTargetRefsExistAcceptsValidTargets(t *testing.T) {
	err := validate.TargetRefsExist(&validate.Request{Snap: baseSnapshot(), Intent: basicIntent()})
	assert.Nil(t, err)
}

func TestNoWorktreeConflictsRejectsDirtyOtherWorktree(t *testing.T) {
	snap := baseSnapshot()
	snap.Worktrees = []model.Worktree{
		{Path: "/other", Branch: "feature", Dirty: true},
	}

	err := validate.NoWorktreeConflicts(&validate.Request{
		Snap: snap, Intent: basicIntent(), ActiveWorktreePath: "/main",
	})
	require.NotNil(t, err)
	assert.Equal(t, engineerr.WorktreeConflict, err.Code)
}

func TestNoWorktreeConflictsIgnoresActiveWorktree(t *testing.T) {
	snap := baseSnapshot()
	snap.Worktrees = []model.Worktree{
		{Path: "/main", Branch: "feature", Dirty: true},
	}

	err := validate.NoWorktreeConflicts(&validate.Request{
		Snap: snap, Intent: basicIntent(), ActiveWorktreePath: "/main",
	})
	assert.Nil(t, err)
}

func TestAutoDetachCandidatesReturnsCleanNonActiveWorktrees(t *testing.T) {
	snap := baseSnapshot()
	snap.Worktrees = []model.Worktree{
		{Path: "/main", Branch: "main"},
		{Path: "/clean-other", Branch: "feature", Dirty: false},
		{Path: "/dirty-other", Branch: "feature", Dirty: true},
	}

	req := &validate.Request{Snap: snap, Intent: basicIntent(), ActiveWorktreePath: "/main"}

	// A dirty worktree is a hard validation failure, so only assert the
	// detach-candidate selection logic here, independent of NoWorktreeConflicts.
	candidates := validate.AutoDetachCandidates(req)
	require.Len(t, candidates, 1)
	assert.Equal(t, "/clean-other", candidates[0].Path)
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	req := &validate.Request{Intent: &model.RebaseIntent{}, Snap: baseSnapshot()}

	err := validate.Run(req, validate.Chain)
	require.NotNil(t, err)
	assert.Equal(t, engineerr.InvalidIntent, err.Code)
}

func TestContinuePreconditionsRequireSessionRebaseAndConflicts(t *testing.T) {
	err := validate.ContinuePreconditions(baseSnapshot(), nil)
	require.NotNil(t, err)
	assert.Equal(t, engineerr.NoSession, err.Code)

	snap := baseSnapshot()
	sess := &model.StoredRebaseSession{}
	err = validate.ContinuePreconditions(snap, sess)
	require.NotNil(t, err)
	assert.Equal(t, engineerr.RebaseInProgress, err.Code)

	snap.Status.IsRebasing = true
	err = validate.ContinuePreconditions(snap, sess)
	require.NotNil(t, err)
	assert.Equal(t, engineerr.InvalidIntent, err.Code)

	snap.Status.Conflicted = []string{"f.txt"}
	err = validate.ContinuePreconditions(snap, sess)
	assert.Nil(t, err)
}

func TestAbortPreconditionsRequireSession(t *testing.T) {
	err := validate.AbortPreconditions(nil)
	require.NotNil(t, err)
	assert.Equal(t, engineerr.NoSession, err.Code)

	err = validate.AbortPreconditions(&model.StoredRebaseSession{})
	assert.Nil(t, err)
}
