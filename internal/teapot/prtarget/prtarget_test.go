package prtarget_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.abhg.dev/teapot/internal/teapot/engineerr"
	"go.abhg.dev/teapot/internal/teapot/prtarget"
)

func TestResolveWalksMergedChain(t *testing.T) {
	prs := []prtarget.PullRequest{
		{Head: "f-3", Base: "f-2"},
		{Head: "f-2", Base: "f-1"},
		{Head: "f-1", Base: "main"},
	}
	merged := map[string]bool{"f-1": true}

	got, err := prtarget.Resolve("f-1", prs, merged, "main")
	require.Nil(t, err)
	assert.Equal(t, "main", got)
}

func TestResolveReturnsUnmergedTargetUnchanged(t *testing.T) {
	got, err := prtarget.Resolve("f-2", nil, map[string]bool{}, "main")
	require.Nil(t, err)
	assert.Equal(t, "f-2", got)
}

func TestResolveFailsWithoutFallback(t *testing.T) {
	prs := []prtarget.PullRequest{
		{Head: "f-1", Base: "f-0"},
	}
	merged := map[string]bool{"f-1": true, "f-0": true}

	_, err := prtarget.Resolve("f-1", prs, merged, "")
	require.NotNil(t, err)
	assert.Equal(t, engineerr.CannotDetermineBase, err.Code)
}

func TestResolveCycleProtected(t *testing.T) {
	prs := []prtarget.PullRequest{
		{Head: "a", Base: "b"},
		{Head: "b", Base: "a"},
	}
	merged := map[string]bool{"a": true, "b": true}

	_, err := prtarget.Resolve("a", prs, merged, "")
	require.NotNil(t, err)
	assert.Equal(t, engineerr.CannotDetermineBase, err.Code)
}
