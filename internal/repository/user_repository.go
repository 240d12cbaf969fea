package repository

import (
	"context"
	"sync"
	"time"

	"github.com/yuZuPluZ/tickets/internal/identity"
	"github.com/yuZuPluZ/tickets/internal/model"
	apperrors "github.com/yuZuPluZ/tickets/pkg/app_errors"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	FindByID(ctx context.Context, id int) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	AddRole(ctx context.Context, id int, role model.Role) error
	RemoveRole(ctx context.Context, id int, role model.Role) error
}

// UserRepositoryImpl 使用者表（記憶體版）。Lookups return copies so role
// mutations never race with readers.
type UserRepositoryImpl struct {
	mu       sync.RWMutex
	registry *identity.Registry
	users    map[int]*model.User
	byEmail  map[string]int
}

func NewUserRepository(registry *identity.Registry) UserRepository {
	return &UserRepositoryImpl{
		registry: registry,
		users:    make(map[int]*model.User),
		byEmail:  make(map[string]int),
	}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[user.Email]; taken {
		return nil, apperrors.ErrEmailTaken
	}

	user.ID = r.registry.Next(identity.KindUser)
	user.CreatedAt = time.Now().UTC()

	r.users[user.ID] = user
	r.byEmail[user.Email] = user.ID

	return copyUser(user), nil
}

func (r *UserRepositoryImpl) List(ctx context.Context) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*model.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, copyUser(u))
	}
	return users, nil
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id int) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return copyUser(user), nil
}

func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return copyUser(r.users[id]), nil
}

func (r *UserRepositoryImpl) AddRole(ctx context.Context, id int, role model.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	if user.HasRole(role) {
		return nil
	}
	user.Roles = append(user.Roles, role)
	return nil
}

func (r *UserRepositoryImpl) RemoveRole(ctx context.Context, id int, role model.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	roles := user.Roles[:0]
	for _, existing := range user.Roles {
		if existing != role {
			roles = append(roles, existing)
		}
	}
	user.Roles = roles
	return nil
}

func copyUser(u *model.User) *model.User {
	clone := *u
	clone.Roles = append([]model.Role(nil), u.Roles...)
	return &clone
}
