package users

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// UserServiceImpl implements the UserService interface.
// Every mutating call holds the write lock for the whole load→modify→save
// cycle; reads share the read lock.
type UserServiceImpl struct {
	store CollectionStore
	mu    sync.RWMutex
}

// NewUserService creates a new user service instance
func NewUserService(store CollectionStore) *UserServiceImpl {
	return &UserServiceImpl{
		store: store,
	}
}

// ListUsers returns the whole collection in stored order
func (s *UserServiceImpl) ListUsers(ctx context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// CreateUser appends a new user with id max(existing)+1
func (s *UserServiceImpl) CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error) {
	if req == nil {
		return nil, NewValidationError("", "request is required")
	}
	name, ok := rawString(req.Name)
	if !ok || name == "" {
		return nil, NewValidationError("name", "name is required")
	}
	age, ok := rawNumber(req.Age)
	if !ok {
		return nil, NewValidationError("age", "age must be a number")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user := User{
		ID:   nextID(users),
		Name: name,
		Age:  age,
	}
	users = append(users, user)

	if err := s.store.Save(ctx, users); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// UpdateUser applies the usable fields of req to the user with the given id.
// Fields that are absent or unusable keep their previous value.
func (s *UserServiceImpl) UpdateUser(ctx context.Context, id int64, req *UpdateUserRequest) (*User, error) {
	if req == nil {
		req = &UpdateUserRequest{}
	}
	name, nameOK := rawString(req.Name)
	nameOK = nameOK && name != ""
	age, ageOK := rawNumber(req.Age)
	if !nameOK && !ageOK && present(req.Age) {
		return nil, NewValidationError("age", "provide at least name or age (number) to update")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update user %d: %w", id, err)
	}

	idx := indexOf(users, id)
	if idx == -1 {
		return nil, NewNotFoundError(id)
	}

	if nameOK {
		users[idx].Name = name
	}
	if ageOK {
		users[idx].Age = age
	}

	if err := s.store.Save(ctx, users); err != nil {
		return nil, fmt.Errorf("failed to update user %d: %w", id, err)
	}

	user := users[idx]
	return &user, nil
}

// DeleteUser removes the user with the given id, keeping the order of the rest
func (s *UserServiceImpl) DeleteUser(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}

	idx := indexOf(users, id)
	if idx == -1 {
		return NewNotFoundError(id)
	}

	users = append(users[:idx], users[idx+1:]...)

	if err := s.store.Save(ctx, users); err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}

	return nil
}

// SearchUsers returns users whose name contains query, ignoring case
func (s *UserServiceImpl) SearchUsers(ctx context.Context, query string) ([]User, error) {
	if query == "" {
		return nil, NewValidationError("name", "query is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	users, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	needle := strings.ToLower(query)
	matches := make([]User, 0)
	for _, user := range users {
		if user.Name == "" {
			continue
		}
		if strings.Contains(strings.ToLower(user.Name), needle) {
			matches = append(matches, user)
		}
	}

	return matches, nil
}

func nextID(users []User) int64 {
	var maxID int64
	for _, user := range users {
		if user.ID > maxID {
			maxID = user.ID
		}
	}
	return maxID + 1
}

func indexOf(users []User, id int64) int {
	for i, user := range users {
		if user.ID == id {
			return i
		}
	}
	return -1
}
