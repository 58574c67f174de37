package users

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// UserSchema represents the users table schema in PostgreSQL.
// Position keeps the collection order across load/save.
type UserSchema struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID       int64   `bun:"id,pk"`
	Name     string  `bun:"name,notnull"`
	Age      float64 `bun:"age,notnull"`
	Position int     `bun:"position,notnull"`
}

// PostgresStore implements CollectionStore using PostgreSQL
type PostgresStore struct {
	db *bun.DB
}

// NewPostgresStore creates a new PostgreSQL collection store
func NewPostgresStore(db *bun.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres connects to PostgreSQL and verifies the connection
func OpenPostgres(ctx context.Context, dsn string, maxConnections int) (*bun.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	if maxConnections <= 0 {
		maxConnections = 10
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	sqldb.SetMaxOpenConns(maxConnections)
	sqldb.SetMaxIdleConns(maxConnections / 2)
	sqldb.SetConnMaxLifetime(time.Hour)

	db := bun.NewDB(sqldb, pgdialect.New())

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// Name returns the backend name
func (s *PostgresStore) Name() string {
	return "postgres"
}

// EnsureSchema creates the users table if it does not exist
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*UserSchema)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	return nil
}

// Ping checks that the database is reachable
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Load returns all users ordered by their stored position
func (s *PostgresStore) Load(ctx context.Context) ([]User, error) {
	var rows []UserSchema
	err := s.db.NewSelect().
		Model(&rows).
		Order("position ASC").
		Scan(ctx)
	if err != nil {
		return nil, NewIOError("load", "users", err)
	}

	users := make([]User, 0, len(rows))
	for _, row := range rows {
		users = append(users, UserSchemaToUser(row))
	}
	return users, nil
}

// Save replaces the table contents with users inside one transaction
func (s *PostgresStore) Save(ctx context.Context, users []User) error {
	rows := make([]UserSchema, 0, len(users))
	for i, user := range users {
		rows = append(rows, UserToUserSchema(user, i))
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*UserSchema)(nil)).
			Where("1 = 1").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to clear users: %w", err)
		}

		if len(rows) == 0 {
			return nil
		}

		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert users: %w", err)
		}
		return nil
	})
	if err != nil {
		return NewIOError("save", "users", err)
	}

	return nil
}

// Helper conversion functions
func UserSchemaToUser(schema UserSchema) User {
	return User{
		ID:   schema.ID,
		Name: schema.Name,
		Age:  schema.Age,
	}
}

func UserToUserSchema(user User, position int) UserSchema {
	return UserSchema{
		ID:       user.ID,
		Name:     user.Name,
		Age:      user.Age,
		Position: position,
	}
}
