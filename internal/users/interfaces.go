package users

import (
	"context"
)

// CollectionStore loads and saves the whole user collection at once.
// The collection is the unit of persistence: Save replaces everything.
type CollectionStore interface {
	// Load returns the stored collection in stored order, or an empty one
	// if nothing has been saved yet
	Load(ctx context.Context) ([]User, error)

	// Save replaces the stored collection with users
	Save(ctx context.Context, users []User) error

	// Name identifies the backend in logs and health output
	Name() string
}

// UserService defines the interface for user service operations
type UserService interface {
	ListUsers(ctx context.Context) ([]User, error)
	CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error)
	UpdateUser(ctx context.Context, id int64, req *UpdateUserRequest) (*User, error)
	DeleteUser(ctx context.Context, id int64) error
	SearchUsers(ctx context.Context, query string) ([]User, error)
}
