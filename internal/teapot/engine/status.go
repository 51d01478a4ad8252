package engine

import (
	"context"
	"errors"

	"go.abhg.dev/teapot/internal/teapot/model"
	"go.abhg.dev/teapot/internal/teapot/session"
)

// Progress summarizes how far a session has advanced through its
// queue, for status displays.
type Progress struct {
	Completed int
	Total     int
}

// StatusResult is the response to the Status operation (spec.md §6.2).
type StatusResult struct {
	IsRebasing bool
	HasSession bool

	// State is the session's lifecycle status, if HasSession.
	State model.SessionStatus

	// StartedAt is the session's start time, in ms since epoch, if
	// HasSession.
	StartedAt int64

	// Conflicts lists the files the active job's conflict snapshot
	// recorded, if the session is awaiting user input.
	Conflicts []string

	Progress *Progress
}

// Status reports the current rebase session's progress, if any.
func (e *Engine) Status(ctx context.Context) (*StatusResult, error) {
	unlock := e.lock()
	defer unlock()

	snap, err := e.Snapshot.Load(ctx)
	if err != nil {
		return nil, err
	}

	out := &StatusResult{IsRebasing: snap.Status.IsRebasing}

	stored, err := e.Sessions.GetSession(ctx, e.RepoPath)
	if errors.Is(err, session.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}

	out.HasSession = true
	out.State = stored.State.Session.Status
	out.StartedAt = stored.State.Session.StartedAt

	jobIDs := stored.State.SortedJobIDs()
	progress := &Progress{Total: len(jobIDs)}
	for _, id := range jobIDs {
		j, _ := stored.State.Job(id)
		switch j.Status {
		case model.JobCompleted, model.JobSkipped, model.JobFailed:
			progress.Completed++
		}
	}
	out.Progress = progress

	if active, ok := stored.State.Job(stored.State.Queue.ActiveJobID); ok && active.ConflictSnapshot != nil {
		out.Conflicts = active.ConflictSnapshot.Files
	}

	return out, nil
}
