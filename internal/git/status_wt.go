package git

import (
	"context"
	"fmt"
	"strings"
)

// Status reports the working tree's current branch, HEAD commit, and
// file-level changes, parsed from 'git status --porcelain=v2 --branch'.
type Status struct {
	// Branch is the current branch name, empty if detached.
	Branch string

	// Head is the commit hash of HEAD.
	Head Hash

	// Detached reports that HEAD is not on a branch.
	Detached bool

	Staged     []string
	Modified   []string
	Created    []string
	Deleted    []string
	Renamed    []string
	NotAdded   []string
	Conflicted []string
}

// Status reads the worktree's status via 'git status --porcelain=v2'.
func (w *Worktree) Status(ctx context.Context) (*Status, error) {
	out, err := w.gitCmd(ctx, "status", "--porcelain=v2", "--branch", "--untracked-files=normal").
		OutputString()
	if err != nil {
		return nil, fmt.Errorf("git status: %w", err)
	}

	st := &Status{Detached: true}
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "# branch.head "):
			name := strings.TrimPrefix(line, "# branch.head ")
			if name != "(detached)" {
				st.Branch = name
				st.Detached = false
			}
		case strings.HasPrefix(line, "# branch.oid "):
			st.Head = Hash(strings.TrimPrefix(line, "# branch.oid "))
		case strings.HasPrefix(line, "1 "):
			parseOrdinaryEntry(st, line)
		case strings.HasPrefix(line, "2 "):
			parseRenamedEntry(st, line)
		case strings.HasPrefix(line, "u "):
			parseUnmergedEntry(st, line)
		case strings.HasPrefix(line, "? "):
			st.NotAdded = append(st.NotAdded, strings.TrimPrefix(line, "? "))
		}
	}

	return st, nil
}

// parseOrdinaryEntry handles porcelain v2's "1" (ordinary change) entry
// kind: "1 <XY> <sub> <mH> <mI> <mW> <hH> <hI> <path>".
func parseOrdinaryEntry(st *Status, line string) {
	fields := strings.SplitN(line, " ", 9)
	if len(fields) < 9 {
		return
	}
	classifyEntry(st, fields[1], fields[8])
}

// parseRenamedEntry handles porcelain v2's "2" (renamed/copied) entry
// kind, which carries one extra "<X><score>" field before the path:
// "2 <XY> <sub> <mH> <mI> <mW> <hH> <hI> <X><score> <path><TAB><origPath>".
func parseRenamedEntry(st *Status, line string) {
	fields := strings.SplitN(line, " ", 10)
	if len(fields) < 10 {
		return
	}
	path := fields[9]
	if idx := strings.IndexByte(path, '\t'); idx >= 0 {
		path = path[:idx]
	}
	st.Renamed = append(st.Renamed, path)

	xy := fields[1]
	if xy[1] != '.' {
		st.Modified = append(st.Modified, path)
	}
}

func classifyEntry(st *Status, xy, path string) {
	indexStatus, workStatus := xy[0], xy[1]
	switch indexStatus {
	case 'A':
		st.Created = append(st.Created, path)
	case 'D':
		st.Deleted = append(st.Deleted, path)
	case '.':
		// not staged
	default:
		st.Staged = append(st.Staged, path)
	}
	if workStatus != '.' {
		st.Modified = append(st.Modified, path)
	}
}

func parseUnmergedEntry(st *Status, line string) {
	fields := strings.SplitN(line, " ", 11)
	if len(fields) < 11 {
		return
	}
	st.Conflicted = append(st.Conflicted, fields[10])
}
