package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.abhg.dev/teapot/internal/git"
	"go.abhg.dev/teapot/internal/silog"
	"go.abhg.dev/teapot/internal/storage"
	"go.abhg.dev/teapot/internal/teapot/config"
	"go.abhg.dev/teapot/internal/teapot/engine"
	"go.abhg.dev/teapot/internal/teapot/execctx"
	"go.abhg.dev/teapot/internal/teapot/model"
	"go.abhg.dev/teapot/internal/teapot/session"
	"go.abhg.dev/teapot/internal/teapot/snapshot"
)

// sessionRef is the Git ref teapot's own session/state records live
// under, namespaced the way the teacher's state storage dedicates a ref
// to its own JSON-blob tree.
const sessionRef = "refs/teapot/data"

// buildEngine opens the repository rooted at the current working
// directory and wires every dependency the engine needs around it.
func buildEngine(ctx context.Context, log *silog.Logger) (*engine.Engine, error) {
	wt, err := git.OpenWorktree(ctx, "", git.OpenOptions{Log: log})
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	repo := wt.Repository()

	cfg, err := loadConfig(ctx, repo, wt.RootDir(), log)
	if err != nil {
		return nil, err
	}

	backend := storage.NewGitBackend(storage.GitConfig{
		Repo:        repo,
		Ref:         sessionRef,
		AuthorName:  "teapot",
		AuthorEmail: "teapot@localhost",
		Log:         log,
	})

	loader := snapshot.New(repo, cfg)
	snapLoader := engine.SnapshotLoaderFunc(func(ctx context.Context) (*model.RepoSnapshot, error) {
		return loadSnapshot(ctx, repo, wt, loader)
	})

	return engine.New(engine.Engine{
		RepoPath: repo.GitDir(),
		Repo:     repo,
		Snapshot: snapLoader,
		Sessions: session.New(backend),
		ExecCtx:  execctx.New(repo, log),
		Cfg:      cfg,
		Log:      log,
	}), nil
}

// loadConfig reads teapot.* Git config keys plus an optional
// repo-local .teapot.yml override file, per spec.md §6.3's ambient
// configuration layer.
func loadConfig(ctx context.Context, repo *git.Repository, rootDir string, log *silog.Logger) (config.Config, error) {
	cfgSrc := git.NewConfig(git.ConfigOptions{Dir: rootDir, Log: log})

	yamlBytes, err := os.ReadFile(filepath.Join(rootDir, ".teapot.yml"))
	if err != nil && !os.IsNotExist(err) {
		return config.Config{}, fmt.Errorf("read .teapot.yml: %w", err)
	}

	cfg, err := config.Load(ctx, cfgSrc, yamlBytes)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// loadSnapshot enumerates every worktree attached to repo, treating the
// first one git-worktree-list reports as the main worktree, and
// populates the active worktree's status from wt (the one the CLI was
// invoked in).
func loadSnapshot(ctx context.Context, repo *git.Repository, activeWT *git.Worktree, loader *snapshot.Loader) (*model.RepoSnapshot, error) {
	var worktrees []model.Worktree
	var active *snapshot.ActiveWorktree

	for item, err := range repo.Worktrees(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list worktrees: %w", err)
		}

		isMain := len(worktrees) == 0
		worktrees = append(worktrees, model.Worktree{
			Path:     item.Path,
			Branch:   item.Branch,
			Detached: item.Detached,
			IsMain:   isMain,
		})

		if item.Path != activeWT.RootDir() {
			continue
		}

		status, err := activeWT.Status(ctx)
		if err != nil {
			return nil, fmt.Errorf("working tree status: %w", err)
		}
		worktrees[len(worktrees)-1].Dirty = statusIsDirty(status)

		active = &snapshot.ActiveWorktree{Path: item.Path, IsMain: isMain, WT: activeWT}
	}

	return loader.Load(ctx, worktrees, active)
}

// statusIsDirty reports whether a git.Status has any pending change in
// any category.
func statusIsDirty(st *git.Status) bool {
	return len(st.Staged) > 0 || len(st.Modified) > 0 || len(st.Created) > 0 ||
		len(st.Deleted) > 0 || len(st.Renamed) > 0 || len(st.NotAdded) > 0 ||
		len(st.Conflicted) > 0
}
