package main

import (
	"context"
	"time"

	"go.abhg.dev/komplete"
	"go.abhg.dev/teapot/internal/git"
	"go.abhg.dev/teapot/internal/text"
)

type completeCmd struct {
	*komplete.Command `embed:""`
}

func (c *completeCmd) Help() string {
	return text.Dedent(`
		Generates shell completion scripts for teapot.
		To install the script, add the generated script to your shell's
		rc file. For example:

			# bash
			teapot complete bash >> ~/.bashrc

			# zsh
			teapot complete zsh >> ~/.zshrc

			# fish
			teapot complete fish >> ~/.config/fish/config.fish
	`)
}

// predictBranches offers local branch names for arguments tagged
// predictor:"branches" (submitCmd's Head/Base).
func predictBranches(komplete.Args) (predictions []string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	repo, err := git.Open(ctx, ".", git.OpenOptions{})
	if err != nil {
		return nil
	}

	branches, err := repo.LocalBranches(ctx)
	if err != nil {
		return nil
	}
	return branches
}
