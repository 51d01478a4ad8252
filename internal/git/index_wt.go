package git

import (
	"context"
	"fmt"
)

// WriteIndexTree writes the current index to a new tree object.
func (w *Worktree) WriteIndexTree(ctx context.Context) (Hash, error) {
	cmd := w.gitCmd(ctx, "write-tree")
	out, err := cmd.OutputChomp()
	if err != nil {
		return "", fmt.Errorf("write-tree: %w", err)
	}
	return Hash(out), nil
}

// Add stages the given pathspecs, relative to the worktree root, into
// the index. Used to re-stage files after a conflict's markers have
// been manually resolved.
func (w *Worktree) Add(ctx context.Context, pathspecs []string) error {
	if len(pathspecs) == 0 {
		return nil
	}
	args := append([]string{"add", "--"}, pathspecs...)
	if err := w.gitCmd(ctx, args...).Run(); err != nil {
		return fmt.Errorf("git add: %w", err)
	}
	return nil
}
