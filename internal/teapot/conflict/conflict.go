// Package conflict scans file contents for unresolved Git conflict
// markers, grounded on the file-scanning style of internal/git's
// worktree file-listing helpers.
package conflict

import (
	"bufio"
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	markerStart = "<<<<<<< "
	markerMid   = "======="
	markerEnd   = ">>>>>>> "
)

// HasUnresolvedMarkers reports whether content contains an unresolved
// Git conflict marker set: a "<<<<<<< " line, a "=======" line, and a
// ">>>>>>> " line, each present somewhere in the content. The absence
// of any one of the three classifies the content as resolved, even if
// some markers remain (the remainder is treated as literal text).
func HasUnresolvedMarkers(content []byte) bool {
	var sawStart, sawMid, sawEnd bool

	scan := bufio.NewScanner(bytes.NewReader(content))
	scan.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scan.Scan() {
		line := scan.Text()
		switch {
		case strings.HasPrefix(line, markerStart):
			sawStart = true
		case line == markerMid:
			sawMid = true
		case strings.HasPrefix(line, markerEnd):
			sawEnd = true
		}
	}

	return sawStart && sawMid && sawEnd
}

// FileIsResolved reports whether the file at path is free of unresolved
// conflict markers. Unreadable files are treated as resolved, per
// spec.md §4.10.
func FileIsResolved(path string) bool {
	content, err := os.ReadFile(path)
	if err != nil {
		return true
	}
	return !HasUnresolvedMarkers(content)
}

// ResolvedFiles filters conflicted, a list of paths relative to root
// reported as conflicted by the working-tree status, down to those that
// no longer contain unresolved markers.
func ResolvedFiles(ctx context.Context, root string, conflicted []string) []string {
	_ = ctx // no I/O here needs cancellation; kept for call-site symmetry
	var resolved []string
	for _, rel := range conflicted {
		full := filepath.Join(root, rel)
		if fi, err := os.Stat(full); err != nil || fi.Mode()&fs.ModeType != 0 && !fi.Mode().IsRegular() {
			// Missing or non-regular (e.g. deleted-by-us) files
			// have no markers to resolve; treat as resolved.
			resolved = append(resolved, rel)
			continue
		}
		if FileIsResolved(full) {
			resolved = append(resolved, rel)
		}
	}
	return resolved
}
