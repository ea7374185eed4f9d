package repository

import (
	"context"
	"errors"
	"fmt"

	"acquisitions/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// ErrDuplicateEmail is wrapped by the StoreError returned when an insert hits
// the users.email unique constraint.
var ErrDuplicateEmail = errors.New("email already registered")

// StoreError reports a failed query against the users table
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("users store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Querier is the subset of pgxpool.Pool used by the repositories
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository defines operations for user data
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Insert(ctx context.Context, name, email, hashedPassword, role string) (*model.User, error)
}

type userRepository struct {
	db Querier
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db Querier) UserRepository {
	return &userRepository{db: db}
}

// FindByEmail retrieves a user by email, returning nil when there is none
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	sql := `SELECT id, name, email, password, role, created_at, updated_at FROM users WHERE email = $1 LIMIT 1`
	err := r.db.QueryRow(ctx, sql, email).Scan(
		&user.ID, &user.Name, &user.Email, &user.Password, &user.Role, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found is not an error for this method's contract
		}
		return nil, &StoreError{Op: "find by email", Err: err}
	}
	return user, nil
}

// Insert creates a user row and returns it with the generated fields filled in
func (r *userRepository) Insert(ctx context.Context, name, email, hashedPassword, role string) (*model.User, error) {
	user := &model.User{Name: name, Email: email, Password: hashedPassword, Role: role}
	sql := `INSERT INTO users (name, email, password, role)
            VALUES ($1, $2, $3, $4) RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, sql, name, email, hashedPassword, role).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, &StoreError{Op: "insert", Err: ErrDuplicateEmail}
		}
		return nil, &StoreError{Op: "insert", Err: err}
	}
	return user, nil
}
