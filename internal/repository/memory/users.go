package memory

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
)

type userRecord struct {
	model.User
}

type UserRepository struct {
	store *Store
}

func (r *UserRepository) Create(_ context.Context, user *model.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if user.TelegramID != 0 {
		for _, u := range r.store.users {
			if u.TelegramID == user.TelegramID {
				return fmt.Errorf("create user: telegram id %d already registered", user.TelegramID)
			}
		}
	}

	user.ID = r.store.id()
	user.CreatedAt = r.store.now()
	r.store.users[user.ID] = &userRecord{User: *user}
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (*model.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	u, ok := r.store.users[id]
	if !ok {
		return nil, nil
	}
	user := u.User
	return &user, nil
}

func (r *UserRepository) GetByTelegramID(_ context.Context, telegramID int64) (*model.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, u := range r.store.users {
		if u.TelegramID == telegramID {
			user := u.User
			return &user, nil
		}
	}
	return nil, nil
}

func (r *UserRepository) Update(_ context.Context, user *model.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[user.ID]; !ok {
		return fmt.Errorf("update user: %w", model.ErrNotFound)
	}
	r.store.users[user.ID] = &userRecord{User: *user}
	return nil
}
