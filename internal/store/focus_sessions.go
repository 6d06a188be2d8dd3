package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/focusflowapp/focusflow-server/internal/domain"
	domainerrors "github.com/focusflowapp/focusflow-server/internal/errors"
)

const (
	sessionPrefix             = "fses:"
	sessionByUserPrefix       = "fses:idx:user:"
	sessionByUserStatusPrefix = "fses:idx:userstatus:"
)

func sessionKey(id string) []byte {
	return []byte(sessionPrefix + id)
}

func sessionUserIndexKey(userID, id string) []byte {
	return []byte(sessionByUserPrefix + userID + ":" + id)
}

func sessionUserStatusIndexKey(userID string, status domain.SessionStatus, id string) []byte {
	return []byte(sessionByUserStatusPrefix + userID + ":" + string(status) + ":" + id)
}

// CreateFocusSession stores a session and its indexes atomically.
func (s *Store) CreateFocusSession(ctx context.Context, session *domain.FocusSession) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(sessionKey(session.ID), data); err != nil {
			return fmt.Errorf("set session: %w", err)
		}

		// Index: by user
		if err := txn.Set(sessionUserIndexKey(session.UserID, session.ID), []byte(session.ID)); err != nil {
			return fmt.Errorf("set user index: %w", err)
		}

		// Index: by user+status, maintained on every status change
		if err := txn.Set(sessionUserStatusIndexKey(session.UserID, session.Status, session.ID), []byte(session.ID)); err != nil {
			return fmt.Errorf("set user-status index: %w", err)
		}

		return nil
	})
}

// GetFocusSession retrieves a session by ID.
func (s *Store) GetFocusSession(ctx context.Context, id string) (*domain.FocusSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var session domain.FocusSession
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return domainerrors.NotFound("session not found")
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &session)
		})
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// UpdateFocusSession overwrites a session, moving the user+status index
// entry when the status changed. prevStatus is the status the caller
// read before mutating.
func (s *Store) UpdateFocusSession(ctx context.Context, session *domain.FocusSession, prevStatus domain.SessionStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return s.writeSession(txn, session, prevStatus, data)
	})
}

// CompleteFocusSession persists the completed session and the updated
// user aggregate in one transaction, so rewards are never applied
// without the session flipping to completed (or the other way around).
func (s *Store) CompleteFocusSession(ctx context.Context, session *domain.FocusSession, prevStatus domain.SessionStatus, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sessionData, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	userData, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := s.writeSession(txn, session, prevStatus, sessionData); err != nil {
			return err
		}
		if err := txn.Set([]byte(userPrefix+user.ID), userData); err != nil {
			return fmt.Errorf("set user: %w", err)
		}
		return nil
	})
}

// writeSession sets the session document and maintains the user+status
// index inside an open transaction.
func (s *Store) writeSession(txn *badger.Txn, session *domain.FocusSession, prevStatus domain.SessionStatus, data []byte) error {
	if err := txn.Set(sessionKey(session.ID), data); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	if prevStatus != session.Status {
		if err := txn.Delete(sessionUserStatusIndexKey(session.UserID, prevStatus, session.ID)); err != nil {
			return fmt.Errorf("delete old status index: %w", err)
		}
		if err := txn.Set(sessionUserStatusIndexKey(session.UserID, session.Status, session.ID), []byte(session.ID)); err != nil {
			return fmt.Errorf("set status index: %w", err)
		}
	}
	return nil
}

// GetActiveFocusSession returns the user's active session, or a
// not-found error when there is none. Paused sessions do not count.
func (s *Store) GetActiveFocusSession(ctx context.Context, userID string) (*domain.FocusSession, error) {
	sessions, err := s.getSessionsByPrefix(ctx, sessionByUserStatusPrefix+userID+":"+string(domain.StatusActive)+":")
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, domainerrors.NotFound("active session not found")
	}
	return sessions[0], nil
}

// GetSessionsForUser retrieves all of a user's sessions, optionally
// filtered by status. Ordering is up to the caller.
func (s *Store) GetSessionsForUser(ctx context.Context, userID string, status domain.SessionStatus) ([]*domain.FocusSession, error) {
	if status != "" {
		return s.getSessionsByPrefix(ctx, sessionByUserStatusPrefix+userID+":"+string(status)+":")
	}
	return s.getSessionsByPrefix(ctx, sessionByUserPrefix+userID+":")
}

// GetCompletedSessionsSince retrieves the user's completed sessions
// created at or after the cutoff.
func (s *Store) GetCompletedSessionsSince(ctx context.Context, userID string, since time.Time) ([]*domain.FocusSession, error) {
	sessions, err := s.getSessionsByPrefix(ctx, sessionByUserStatusPrefix+userID+":"+string(domain.StatusCompleted)+":")
	if err != nil {
		return nil, err
	}

	filtered := sessions[:0]
	for _, session := range sessions {
		if !session.CreatedAt.Before(since) {
			filtered = append(filtered, session)
		}
	}
	return filtered, nil
}

// getSessionsByPrefix retrieves sessions matching an index prefix.
// Uses a single transaction to collect IDs and fetch all sessions (no N+1).
func (s *Store) getSessionsByPrefix(ctx context.Context, prefix string) ([]*domain.FocusSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var sessions []*domain.FocusSession

	err := s.db.View(func(txn *badger.Txn) error {
		// First pass: collect session IDs from index
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		var ids []string
		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				ids = append(ids, string(val))
				return nil
			})
			if err != nil {
				return err
			}
		}

		// Second pass: batch fetch in the same transaction
		sessions = make([]*domain.FocusSession, 0, len(ids))
		for _, id := range ids {
			item, err := txn.Get(sessionKey(id))
			if err != nil {
				continue // Skip dangling index entries
			}

			var session domain.FocusSession
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &session)
			}); err != nil {
				return err
			}
			sessions = append(sessions, &session)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sessions, nil
}
