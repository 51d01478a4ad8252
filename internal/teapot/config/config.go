// Package config defines the engine's tunables: trunk-candidate
// precedence, the parallel-worktree policy, timeouts, and the rebase
// depth cap. Values are loaded from repository-local Git config
// ("teapot.*" keys), the way the teacher loads "spice.*" keys, with a
// repo-local ".teapot.yml" file as a secondary override for values that
// don't map cleanly onto single config keys.
package config

import (
	"context"
	"fmt"
	"iter"
	"strconv"
	"time"

	"go.abhg.dev/teapot/internal/git"
	"gopkg.in/yaml.v3"
)

// Config holds the engine's tunable behavior.
type Config struct {
	// TrunkCandidates is the precedence-ordered list of short branch
	// names considered trunk candidates.
	TrunkCandidates []string

	// UseParallelWorktree, when false (the default), makes every
	// rebase acquire a temporary worktree regardless of whether the
	// active tree is clean. When true, a clean, unlocked active tree
	// is reused in place.
	UseParallelWorktree bool

	// WorktreeSetupTimeout bounds commands run while initializing a
	// temporary worktree.
	WorktreeSetupTimeout time.Duration

	// RebaseDepthCap bounds how many commits executeJob will
	// enumerate for a single branch's owned range.
	RebaseDepthCap int
}

// Default returns the engine's functional defaults.
func Default() Config {
	return Config{
		TrunkCandidates:      append([]string(nil), defaultTrunkCandidates...),
		UseParallelWorktree:  false,
		WorktreeSetupTimeout: 5 * time.Minute,
		RebaseDepthCap:       100,
	}
}

var defaultTrunkCandidates = []string{"main", "master", "develop", "trunk"}

// gitConfigLister is the subset of *git.Config the loader depends on.
type gitConfigLister interface {
	ListRegexp(ctx context.Context, pattern string) (iter.Seq2[git.ConfigEntry, error], error)
}

var _ gitConfigLister = (*git.Config)(nil)

// fileOverrides is the shape of an optional repo-local .teapot.yml file,
// for settings that don't map cleanly onto single git-config keys.
type fileOverrides struct {
	TrunkCandidates      []string `yaml:"trunkCandidates"`
	UseParallelWorktree  *bool    `yaml:"useParallelWorktree"`
	WorktreeSetupTimeout string   `yaml:"worktreeSetupTimeout"`
	RebaseDepthCap       *int     `yaml:"rebaseDepthCap"`
}

// Load reads "teapot.*" keys from Git config, applying them over the
// functional defaults. yamlBytes, if non-nil, is the contents of a
// repo-local .teapot.yml file layered on top.
func Load(ctx context.Context, cfg gitConfigLister, yamlBytes []byte) (Config, error) {
	out := Default()

	entries, err := cfg.ListRegexp(ctx, `^teapot\.`)
	if err != nil {
		return out, fmt.Errorf("list teapot.* config: %w", err)
	}

	var sawTrunkCandidates bool
	for entry, err := range entries {
		if err != nil {
			return out, fmt.Errorf("read teapot.* config: %w", err)
		}

		_, _, name := entry.Key.Canonical().Split()
		switch name {
		case "trunkcandidates":
			if !sawTrunkCandidates {
				out.TrunkCandidates = nil
				sawTrunkCandidates = true
			}
			out.TrunkCandidates = append(out.TrunkCandidates, entry.Value)
		case "useparallelworktree":
			b, err := strconv.ParseBool(entry.Value)
			if err != nil {
				return out, fmt.Errorf("teapot.useParallelWorktree: %w", err)
			}
			out.UseParallelWorktree = b
		case "worktreesetuptimeout":
			d, err := time.ParseDuration(entry.Value)
			if err != nil {
				return out, fmt.Errorf("teapot.worktreeSetupTimeout: %w", err)
			}
			out.WorktreeSetupTimeout = d
		case "rebasedepthcap":
			n, err := strconv.Atoi(entry.Value)
			if err != nil {
				return out, fmt.Errorf("teapot.rebaseDepthCap: %w", err)
			}
			out.RebaseDepthCap = n
		}
	}

	if len(yamlBytes) > 0 {
		var fo fileOverrides
		if err := yaml.Unmarshal(yamlBytes, &fo); err != nil {
			return out, fmt.Errorf("parse .teapot.yml: %w", err)
		}
		if len(fo.TrunkCandidates) > 0 {
			out.TrunkCandidates = fo.TrunkCandidates
		}
		if fo.UseParallelWorktree != nil {
			out.UseParallelWorktree = *fo.UseParallelWorktree
		}
		if fo.WorktreeSetupTimeout != "" {
			d, err := time.ParseDuration(fo.WorktreeSetupTimeout)
			if err != nil {
				return out, fmt.Errorf(".teapot.yml worktreeSetupTimeout: %w", err)
			}
			out.WorktreeSetupTimeout = d
		}
		if fo.RebaseDepthCap != nil {
			out.RebaseDepthCap = *fo.RebaseDepthCap
		}
	}

	return out, nil
}
