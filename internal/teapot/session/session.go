// Package session implements the durable rebase-session store: the
// only crash-recovery mechanism the engine has. A single record exists
// per repository, keyed by canonical repository path.
//
// Grounded on internal/spice/state/storage's Backend abstraction: an
// in-memory backend serves tests, a Git-ref-backed one serves
// production, matching the teacher's own test/production split.
package session

import (
	"context"
	"errors"
	"fmt"

	"go.abhg.dev/teapot/internal/storage"
	"go.abhg.dev/teapot/internal/teapot/model"
)

// ErrExists indicates that a session record already exists for a
// repository path.
var ErrExists = errors.New("session already exists")

// ErrNotExist indicates that no session record exists for a repository
// path.
var ErrNotExist = errors.New("session does not exist")

const keyPrefix = "sessions/"

// Store persists [model.StoredRebaseSession] records keyed by canonical
// repository path, on top of a [storage.Backend].
type Store struct {
	db *storage.DB
}

// New builds a Store over the given backend.
func New(backend storage.Backend) *Store {
	return &Store{db: storage.NewDB(backend)}
}

func key(repoPath string) string {
	return keyPrefix + repoPath
}

// CreateSession persists a brand-new session for path. It fails with
// ErrExists if a record already exists.
func (s *Store) CreateSession(ctx context.Context, path string, sess model.StoredRebaseSession) error {
	if _, err := s.GetSession(ctx, path); err == nil {
		return ErrExists
	} else if !errors.Is(err, ErrNotExist) {
		return err
	}

	if err := s.db.Set(ctx, key(path), sess, "create rebase session"); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetSession returns the session for path, or ErrNotExist if absent.
func (s *Store) GetSession(ctx context.Context, path string) (*model.StoredRebaseSession, error) {
	var sess model.StoredRebaseSession
	if err := s.db.Get(ctx, key(path), &sess); err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, ErrNotExist
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &sess, nil
}

// UpdateState overwrites the state field of the session for path.
// Failure to persist is the caller's concern to log; it does not, by
// itself, abort an in-progress executor operation (spec.md §4.6).
func (s *Store) UpdateState(ctx context.Context, path string, newState model.RebaseState) error {
	sess, err := s.GetSession(ctx, path)
	if err != nil {
		return err
	}
	sess.State = newState
	if err := s.db.Set(ctx, key(path), *sess, "update rebase session state"); err != nil {
		return fmt.Errorf("update session state: %w", err)
	}
	return nil
}

// Put overwrites the entire stored session for path, atomically.
func (s *Store) Put(ctx context.Context, path string, sess model.StoredRebaseSession) error {
	if err := s.db.Set(ctx, key(path), sess, "update rebase session"); err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

// ClearSession idempotently removes the session record for path.
func (s *Store) ClearSession(ctx context.Context, path string) error {
	if err := s.db.Delete(ctx, key(path), "clear rebase session"); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// ClearAutoDetachedWorktrees zeroes only the restoration list of the
// session for path, leaving the rest of the record untouched.
func (s *Store) ClearAutoDetachedWorktrees(ctx context.Context, path string) error {
	sess, err := s.GetSession(ctx, path)
	if err != nil {
		return err
	}
	sess.AutoDetachedWorktrees = nil
	return s.Put(ctx, path, *sess)
}
