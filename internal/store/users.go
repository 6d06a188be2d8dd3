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

const userPrefix = "user:"

// CreateUser stores a new user aggregate. Fails if the ID is taken.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	key := []byte(userPrefix + user.ID)
	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return domainerrors.Conflict("user already exists")
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key, data)
	})
}

// GetUser retrieves a user aggregate by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var user domain.User
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(userPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return domainerrors.NotFound("user not found")
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		})
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser overwrites a user aggregate.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(userPrefix+user.ID), data)
	})
}

// EnsureUser fetches the aggregate for id, creating a zero-valued one
// on first sight. Owners are provisioned lazily on their first request.
func (s *Store) EnsureUser(ctx context.Context, id string, now time.Time) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var user domain.User
	err := s.db.Update(func(txn *badger.Txn) error {
		key := []byte(userPrefix + id)
		item, err := txn.Get(key)
		if err == nil {
			return item.Value(func(val []byte) error {
				return json.Unmarshal(val, &user)
			})
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		user = *domain.NewUser(id, now)
		data, err := json.Marshal(&user)
		if err != nil {
			return fmt.Errorf("marshal user: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
