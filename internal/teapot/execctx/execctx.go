// Package execctx implements the execution-context manager: the
// isolation mechanism that allocates a temporary, disposable working
// tree when the engine needs one, preserves uncommitted work in the
// user's primary tree, and releases the temporary tree when it's no
// longer needed.
//
// Grounded on internal/git/wt.go (Worktree, Repository.Worktrees,
// Repository.AddWorktree) for worktree allocation, and on the
// teacher's convention of storing small JSON sidecars keyed off the
// repository's Git directory for the stored-context file.
package execctx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.abhg.dev/teapot/internal/cmputil"
	"go.abhg.dev/teapot/internal/git"
	"go.abhg.dev/teapot/internal/random"
	"go.abhg.dev/teapot/internal/silog"
	"go.abhg.dev/teapot/internal/teapot/model"
)

// contextFileName is the name of the stored-context sidecar file inside
// the repository's Git directory. The name is load-bearing: it's part
// of the on-disk contract, not a cosmetic choice (spec.md §6.3).
const contextFileName = "teapot-context.json"

// Repository is the subset of *git.Repository the manager depends on.
type Repository interface {
	GitDir() string
	AddWorktree(ctx context.Context, req git.AddWorktreeRequest) (*git.Worktree, error)
	RemoveWorktree(ctx context.Context, path string, opts git.RemoveWorktreeOptions) error
}

// Manager allocates and releases execution contexts for a single
// repository.
type Manager struct {
	repo Repository
	log  *silog.Logger

	// MaxAttempts bounds the retry loop when allocating a temporary
	// worktree. Defaults to 3.
	MaxAttempts int
}

// New builds a Manager for repo.
func New(repo Repository, log *silog.Logger) *Manager {
	if log == nil {
		log = silog.Nop()
	}
	return &Manager{repo: repo, log: log, MaxAttempts: 3}
}

// CreationError is returned when a temporary worktree could not be
// allocated after retrying.
type CreationError struct {
	RepoPath string
	Attempts int
	Err      error
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("create execution context for %s: %d attempts failed: %v", e.RepoPath, e.Attempts, e.Err)
}

func (e *CreationError) Unwrap() error { return e.Err }

// AcquireOptions configures Acquire.
type AcquireOptions struct {
	// RepoPath identifies the repository for stored-context lookups
	// and error reporting.
	RepoPath string

	// TrunkHeadSHA is the commit the temporary worktree should be
	// created at, detached, when a new one must be allocated.
	TrunkHeadSHA git.Hash

	// Purpose is a short human-readable description, stored
	// alongside the context for diagnostics.
	Purpose string

	// UseParallelWorktree, when true and the active tree is clean
	// and unlocked, executes in-place instead of allocating a
	// temporary worktree (spec.md §4.7 policy, config-driven).
	UseParallelWorktree bool
	ActiveTreeClean     bool
	ActiveTreePath      string
}

// Acquire returns an ExecutionContext for the given options.
//
// If a stored context already exists for RepoPath (from a prior
// conflict suspension) and its directory still exists, that context is
// returned unchanged: the manager never allocates a new temporary tree
// while a stored one exists.
func (m *Manager) Acquire(ctx context.Context, opts AcquireOptions) (*model.ExecutionContext, error) {
	if stored, err := m.GetStoredExecutionPath(opts.RepoPath); err == nil && stored != "" {
		if _, statErr := os.Stat(stored); statErr == nil {
			storedCtx, err := m.readContextFile()
			if err == nil {
				return storedCtx, nil
			}
		}
	}

	if opts.UseParallelWorktree && opts.ActiveTreeClean && opts.ActiveTreePath != "" {
		return &model.ExecutionContext{
			ExecutionPath: opts.ActiveTreePath,
			IsTemporary:   false,
			AcquiredAt:    time.Now().UnixMilli(),
			Purpose:       opts.Purpose,
		}, nil
	}

	maxAttempts := m.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		path := m.tempWorktreePath(opts.RepoPath)
		wt, err := m.repo.AddWorktree(ctx, git.AddWorktreeRequest{
			Path:      path,
			Commitish: opts.TrunkHeadSHA.String(),
			Detach:    true,
		})
		if err != nil {
			lastErr = err
			m.log.Warn("failed to allocate temporary worktree, retrying",
				"attempt", attempt, "error", err)
			continue
		}

		return &model.ExecutionContext{
			ExecutionPath: wt.RootDir(),
			IsTemporary:   true,
			AcquiredAt:    time.Now().UnixMilli(),
			Purpose:       opts.Purpose,
		}, nil
	}

	return nil, &CreationError{RepoPath: opts.RepoPath, Attempts: maxAttempts, Err: lastErr}
}

func (m *Manager) tempWorktreePath(repoPath string) string {
	base := filepath.Dir(repoPath)
	name := "teapot-" + random.Alnum(8)
	return filepath.Join(base, name)
}

// Release tears down context if it's temporary. Non-temporary contexts
// are a no-op. "Already gone" errors are tolerated.
func (m *Manager) Release(ctx context.Context, ec *model.ExecutionContext) error {
	if ec == nil || !ec.IsTemporary {
		return nil
	}
	if err := m.repo.RemoveWorktree(ctx, ec.ExecutionPath, git.RemoveWorktreeOptions{Force: true}); err != nil {
		return fmt.Errorf("release execution context: %w", err)
	}
	return nil
}

// storedContextFile is the on-disk shape of the stored-context sidecar.
type storedContextFile struct {
	ExecutionPath string `json:"executionPath"`
	IsTemporary   bool   `json:"isTemporary"`
	AcquiredAtMs  int64  `json:"acquiredAtMs"`
	Purpose       string `json:"purpose"`
}

func (m *Manager) contextFilePath() string {
	return filepath.Join(m.repo.GitDir(), contextFileName)
}

// StoreContext persists ec so the next Acquire call (continue/abort
// after a suspension) reuses the same tree.
func (m *Manager) StoreContext(_ context.Context, ec *model.ExecutionContext) error {
	data, err := json.Marshal(storedContextFile{
		ExecutionPath: ec.ExecutionPath,
		IsTemporary:   ec.IsTemporary,
		AcquiredAtMs:  ec.AcquiredAt,
		Purpose:       ec.Purpose,
	})
	if err != nil {
		return fmt.Errorf("marshal execution context: %w", err)
	}
	return writeFileAtomic(m.contextFilePath(), data)
}

// ClearStoredContext deletes the stored-context file, whether or not
// its content is valid. A missing file is not an error.
func (m *Manager) ClearStoredContext(context.Context) error {
	err := os.Remove(m.contextFilePath())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear stored execution context: %w", err)
	}
	return nil
}

// GetStoredExecutionPath returns the execution path of the stored
// context, or "" if none (including when the file is malformed, which
// is treated as absent).
func (m *Manager) GetStoredExecutionPath(string) (string, error) {
	ec, err := m.readContextFile()
	if err != nil {
		return "", nil //nolint:nilerr // malformed/missing is "absent", not an error
	}
	return ec.ExecutionPath, nil
}

func (m *Manager) readContextFile() (*model.ExecutionContext, error) {
	data, err := os.ReadFile(m.contextFilePath())
	if err != nil {
		return nil, err
	}

	var f storedContextFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("malformed execution context file: %w", err)
	}
	if cmputil.Zero(f.ExecutionPath) {
		return nil, errors.New("malformed execution context file: missing path")
	}

	return &model.ExecutionContext{
		ExecutionPath: f.ExecutionPath,
		IsTemporary:   f.IsTemporary,
		AcquiredAt:    f.AcquiredAtMs,
		Purpose:       f.Purpose,
	}, nil
}

// writeFileAtomic writes data to path by writing to a temp file in the
// same directory and renaming it into place, so readers never observe a
// partially-written file (spec.md's cross-process durability note).
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".teapot-context-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) //nolint:errcheck // best-effort cleanup after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
