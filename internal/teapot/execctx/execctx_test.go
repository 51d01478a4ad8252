package execctx_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.abhg.dev/teapot/internal/git"
	"go.abhg.dev/teapot/internal/teapot/execctx"
	"go.abhg.dev/teapot/internal/teapot/model"
)

// stubRepo implements execctx.Repository without touching a real Git
// worktree: GitDir gives the stored-context sidecar file somewhere to
// live, and AddWorktree/RemoveWorktree record their calls and return
// the configured errors.
type stubRepo struct {
	gitDir      string
	addErr      error
	addCalls    int
	removeErr   error
	removePaths []string
}

func (s *stubRepo) GitDir() string { return s.gitDir }

func (s *stubRepo) AddWorktree(context.Context, git.AddWorktreeRequest) (*git.Worktree, error) {
	s.addCalls++
	return nil, s.addErr
}

func (s *stubRepo) RemoveWorktree(_ context.Context, path string, _ git.RemoveWorktreeOptions) error {
	s.removePaths = append(s.removePaths, path)
	return s.removeErr
}

func TestStoreAndGetStoredExecutionPathRoundTrips(t *testing.T) {
	repo := &stubRepo{gitDir: t.TempDir()}
	m := execctx.New(repo, nil)
	ctx := context.Background()

	ec := &model.ExecutionContext{ExecutionPath: "/tmp/teapot-abc123", IsTemporary: true, Purpose: "confirm"}
	require.NoError(t, m.StoreContext(ctx, ec))

	got, err := m.GetStoredExecutionPath("/repo")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/teapot-abc123", got)
}

func TestGetStoredExecutionPathAbsentWhenNoFileWritten(t *testing.T) {
	repo := &stubRepo{gitDir: t.TempDir()}
	m := execctx.New(repo, nil)

	got, err := m.GetStoredExecutionPath("/repo")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetStoredExecutionPathTreatsMalformedFileAsAbsent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "teapot-context.json"), []byte("{not json"), 0o644))

	repo := &stubRepo{gitDir: dir}
	m := execctx.New(repo, nil)

	got, err := m.GetStoredExecutionPath("/repo")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClearStoredContextIsIdempotent(t *testing.T) {
	repo := &stubRepo{gitDir: t.TempDir()}
	m := execctx.New(repo, nil)
	ctx := context.Background()

	require.NoError(t, m.StoreContext(ctx, &model.ExecutionContext{ExecutionPath: "/tmp/x"}))
	require.NoError(t, m.ClearStoredContext(ctx))
	require.NoError(t, m.ClearStoredContext(ctx)) // already absent; still succeeds

	got, err := m.GetStoredExecutionPath("/repo")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReleaseIsNoOpForNonTemporaryContext(t *testing.T) {
	repo := &stubRepo{gitDir: t.TempDir()}
	m := execctx.New(repo, nil)

	err := m.Release(context.Background(), &model.ExecutionContext{IsTemporary: false, ExecutionPath: "/active"})
	require.NoError(t, err)
	assert.Empty(t, repo.removePaths)
}

func TestReleaseRemovesTemporaryWorktree(t *testing.T) {
	repo := &stubRepo{gitDir: t.TempDir()}
	m := execctx.New(repo, nil)

	err := m.Release(context.Background(), &model.ExecutionContext{IsTemporary: true, ExecutionPath: "/tmp/teapot-xyz"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/tmp/teapot-xyz"}, repo.removePaths)
}

func TestReleaseSurfacesRemovalFailure(t *testing.T) {
	repo := &stubRepo{gitDir: t.TempDir(), removeErr: errors.New("boom")}
	m := execctx.New(repo, nil)

	err := m.Release(context.Background(), &model.ExecutionContext{IsTemporary: true, ExecutionPath: "/tmp/teapot-xyz"})
	assert.Error(t, err)
}

func TestAcquireReusesActiveTreeWhenParallelWorktreeConfigured(t *testing.T) {
	repo := &stubRepo{gitDir: t.TempDir()}
	m := execctx.New(repo, nil)

	ec, err := m.Acquire(context.Background(), execctx.AcquireOptions{
		RepoPath:            "/repo",
		UseParallelWorktree: true,
		ActiveTreeClean:     true,
		ActiveTreePath:      "/repo",
		Purpose:             "confirm",
	})
	require.NoError(t, err)
	assert.False(t, ec.IsTemporary)
	assert.Equal(t, "/repo", ec.ExecutionPath)
	assert.Zero(t, repo.addCalls, "in-place execution must not allocate a temporary worktree")
}

func TestAcquireSurfacesCreationFailureAfterRetries(t *testing.T) {
	repo := &stubRepo{gitDir: t.TempDir(), addErr: errors.New("locked")}
	m := execctx.New(repo, nil)
	m.MaxAttempts = 2

	_, err := m.Acquire(context.Background(), execctx.AcquireOptions{
		RepoPath:     "/repo",
		TrunkHeadSHA: "deadbeef",
	})

	var cerr *execctx.CreationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, 2, cerr.Attempts)
	assert.Equal(t, 2, repo.addCalls)
}
