package analyzer_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go.abhg.dev/teapot/internal/git"
	"go.abhg.dev/teapot/internal/teapot/analyzer"
	"go.abhg.dev/teapot/internal/teapot/model"
)

// linearStack builds a snapshot for:
//
//	main(A) -> parent(A,B) -> child-1(B,C1)
//	                       \-> child-2(B,C2)
func linearStack() *model.RepoSnapshot {
	commits := map[git.Hash]model.Commit{
		"A":  {SHA: "A"},
		"B":  {SHA: "B", Parent: "A"},
		"C1": {SHA: "C1", Parent: "B"},
		"C2": {SHA: "C2", Parent: "B"},
	}
	return &model.RepoSnapshot{
		Commits: commits,
		Branches: []model.Branch{
			{Name: "main", Head: "A", IsTrunk: true},
			{Name: "parent", Head: "B"},
			{Name: "child-1", Head: "C1"},
			{Name: "child-2", Head: "C2"},
		},
	}
}

func TestDirectChildrenStopsAtInterveningBranchHead(t *testing.T) {
	a := analyzer.New(linearStack())

	children := a.DirectChildren("A")
	var names []string
	for _, c := range children {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"parent"}, names)
}

func TestDirectChildrenFindsImmediateDescendants(t *testing.T) {
	a := analyzer.New(linearStack())

	children := a.DirectChildren("B")
	var names []string
	for _, c := range children {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"child-1", "child-2"}, names)
}

func TestDirectChildrenSkipsRemoteBranches(t *testing.T) {
	snap := linearStack()
	snap.Branches = append(snap.Branches, model.Branch{Name: "origin/parent", Head: "B", IsRemote: true})
	a := analyzer.New(snap)

	children := a.DirectChildren("A")
	for _, c := range children {
		assert.NotEqual(t, "origin/parent", c.Name)
	}
}

func TestOwnedRangeIsOldestFirst(t *testing.T) {
	a := analyzer.New(linearStack())

	owned := a.OwnedRange("C1", "A")
	assert.Equal(t, []git.Hash{"B", "C1"}, owned)
}

func TestOwnedRangeStopsAtBase(t *testing.T) {
	a := analyzer.New(linearStack())

	owned := a.OwnedRange("B", "B")
	assert.Empty(t, owned)
}

func TestDescendantBranchesBFSOrder(t *testing.T) {
	a := analyzer.New(linearStack())

	descendants := a.DescendantBranches("A")
	var names []string
	for _, b := range descendants {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"parent", "child-1", "child-2"}, names)
}

func TestParentOfRootCommitIsAbsent(t *testing.T) {
	a := analyzer.New(linearStack())

	_, ok := a.Parent("A")
	assert.False(t, ok)
}

func TestDirectChildrenDetectsCycleWithoutLooping(t *testing.T) {
	commits := map[git.Hash]model.Commit{
		"X": {SHA: "X", Parent: "Y"},
		"Y": {SHA: "Y", Parent: "X"},
	}
	snap := &model.RepoSnapshot{
		Commits: commits,
		Branches: []model.Branch{
			{Name: "loopy", Head: "X"},
		},
	}
	a := analyzer.New(snap)

	done := make(chan []model.Branch, 1)
	go func() { done <- a.DirectChildren("Y") }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("DirectChildren did not terminate on a cyclic graph")
	}
}
