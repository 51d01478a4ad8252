package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go.abhg.dev/teapot/internal/git"
	"go.abhg.dev/teapot/internal/teapot/model"
)

func TestRebaseIntentNodeByBranch(t *testing.T) {
	child := &model.StackNode{Branch: "child"}
	root := &model.StackNode{Branch: "root", Children: []*model.StackNode{child}}
	ri := &model.RebaseIntent{
		Targets: []model.RebaseTarget{{Node: root, TargetBaseSHA: "deadbeef"}},
	}

	got, ok := ri.NodeByBranch("child")
	assert.True(t, ok)
	assert.Same(t, child, got)

	_, ok = ri.NodeByBranch("missing")
	assert.False(t, ok)
}

func TestSessionHasRewriteDedupesByBranchAndOldSHA(t *testing.T) {
	s := &model.Session{
		CommitMap: []model.CommitRewrite{
			{Branch: "feature", OldSHA: "aaa", NewSHA: "bbb"},
		},
	}

	assert.True(t, s.HasRewrite("feature", "aaa"))
	assert.False(t, s.HasRewrite("feature", "ccc"))
	assert.False(t, s.HasRewrite("other", "aaa"))
}

func TestRebaseStateSortedJobIDsIsDeterministic(t *testing.T) {
	st := &model.RebaseState{
		JobsByID: map[string]*model.RebaseJob{
			"z-job": {ID: "z-job"},
			"a-job": {ID: "a-job"},
			"m-job": {ID: "m-job"},
		},
	}

	assert.Equal(t, []string{"a-job", "m-job", "z-job"}, st.SortedJobIDs())
	assert.Equal(t, []string{"a-job", "m-job", "z-job"}, st.SortedJobIDs())
}

func TestRepoSnapshotBranchByHeadPrefersLocal(t *testing.T) {
	snap := &model.RepoSnapshot{
		Branches: []model.Branch{
			{Name: "origin/feature", Head: "sha1", IsRemote: true},
			{Name: "feature", Head: "sha1"},
		},
	}

	b, ok := snap.BranchByHead(git.Hash("sha1"))
	assert.True(t, ok)
	assert.Equal(t, "feature", b.Name)
	assert.False(t, b.IsRemote)
}

func TestRepoSnapshotBranchByHeadFallsBackToRemote(t *testing.T) {
	snap := &model.RepoSnapshot{
		Branches: []model.Branch{
			{Name: "origin/feature", Head: "sha1", IsRemote: true},
		},
	}

	b, ok := snap.BranchByHead(git.Hash("sha1"))
	assert.True(t, ok)
	assert.Equal(t, "origin/feature", b.Name)
}

func TestRepoSnapshotBranchByName(t *testing.T) {
	snap := &model.RepoSnapshot{
		Branches: []model.Branch{{Name: "main", Head: "sha1"}},
	}

	b, ok := snap.BranchByName("main")
	assert.True(t, ok)
	assert.Equal(t, git.Hash("sha1"), b.Head)

	_, ok = snap.BranchByName("nope")
	assert.False(t, ok)
}
