package git

import (
	"bufio"
	"context"
	"fmt"
	"iter"
	"strconv"
	"strings"
)

// LogEntry is a single commit as reported by CommitLog: its identity,
// first parent, author time, and subject line.
type LogEntry struct {
	Hash       Hash
	Parent     Hash // empty for a root commit
	AuthorUnix int64
	Subject    string
}

// CommitLog streams the commits reachable from start but not from stop,
// newest first, following only first parents (merge commits are treated
// as if they had a single parent).
func (r *Repository) CommitLog(ctx context.Context, start, stop string) iter.Seq2[LogEntry, error] {
	return func(yield func(LogEntry, error) bool) {
		args := []string{
			"rev-list", "--first-parent",
			"--format=%H%x1f%P%x1f%at%x1f%s%x00",
			start,
		}
		if stop != "" {
			args = append(args, "--not", stop)
		}
		args = append(args, "--")

		cmd := r.gitCmd(ctx, args...)
		out, err := cmd.StdoutPipe()
		if err != nil {
			yield(LogEntry{}, fmt.Errorf("pipe: %w", err))
			return
		}

		if err := cmd.Start(); err != nil {
			yield(LogEntry{}, fmt.Errorf("start rev-list: %w", err))
			return
		}

		scanner := bufio.NewScanner(out)
		scanner.Split(splitNullByte)

		for scanner.Scan() {
			raw := strings.TrimSpace(scanner.Text())
			if raw == "" {
				continue
			}

			// rev-list --format writes "commit <hash>\n<format>";
			// drop the leading line.
			_, raw, _ = strings.Cut(raw, "\n")

			entry, err := parseLogEntry(raw)
			if err != nil {
				_ = cmd.Kill()
				yield(LogEntry{}, err)
				return
			}
			if !yield(entry, nil) {
				_ = cmd.Kill()
				return
			}
		}

		if err := scanner.Err(); err != nil {
			_ = cmd.Kill()
			yield(LogEntry{}, fmt.Errorf("scan: %w", err))
			return
		}

		if err := cmd.Wait(); err != nil {
			yield(LogEntry{}, fmt.Errorf("git rev-list: %w", err))
		}
	}
}

func parseLogEntry(raw string) (LogEntry, error) {
	fields := strings.Split(raw, "\x1f")
	if len(fields) < 4 {
		return LogEntry{}, fmt.Errorf("malformed rev-list entry: %q", raw)
	}

	authorUnix, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return LogEntry{}, fmt.Errorf("parse author time: %w", err)
	}

	var parent Hash
	if parents := strings.Fields(fields[1]); len(parents) > 0 {
		parent = Hash(parents[0])
	}

	return LogEntry{
		Hash:       Hash(fields[0]),
		Parent:     parent,
		AuthorUnix: authorUnix,
		Subject:    fields[3],
	}, nil
}
