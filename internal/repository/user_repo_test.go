package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	selectByEmail = regexp.QuoteMeta(`SELECT id, name, email, password, role, created_at, updated_at FROM users WHERE email = $1 LIMIT 1`)
	insertUser    = regexp.QuoteMeta(`INSERT INTO users (name, email, password, role)`)
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestUserRepository_FindByEmail(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now()

	mock.ExpectQuery(selectByEmail).
		WithArgs("ann@x.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "password", "role", "created_at", "updated_at"}).
			AddRow(int64(7), "Ann", "ann@x.com", "$2a$10$hash", "user", now, now))

	user, err := repo.FindByEmail(context.Background(), "ann@x.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, "Ann", user.Name)
	assert.Equal(t, "$2a$10$hash", user.Password)
	assert.Equal(t, "user", user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmail_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(selectByEmail).
		WithArgs("nobody@x.com").
		WillReturnError(pgx.ErrNoRows)

	user, err := repo.FindByEmail(context.Background(), "nobody@x.com")
	assert.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmail_DBError(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(selectByEmail).
		WithArgs("ann@x.com").
		WillReturnError(errors.New("connection refused"))

	user, err := repo.FindByEmail(context.Background(), "ann@x.com")
	assert.Nil(t, user)
	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "find by email", storeErr.Op)
	assert.NotErrorIs(t, err, ErrDuplicateEmail)
}

func TestUserRepository_Insert(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now()

	mock.ExpectQuery(insertUser).
		WithArgs("Ann", "ann@x.com", "$2a$10$hash", "user").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(1), now, now))

	user, err := repo.Insert(context.Background(), "Ann", "ann@x.com", "$2a$10$hash", "user")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "ann@x.com", user.Email)
	assert.Equal(t, now, user.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Insert_UniqueViolation(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(insertUser).
		WithArgs("Ann", "ann@x.com", "$2a$10$hash", "user").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	user, err := repo.Insert(context.Background(), "Ann", "ann@x.com", "$2a$10$hash", "user")
	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	var storeErr *StoreError
	assert.ErrorAs(t, err, &storeErr)
}

func TestUserRepository_Insert_OtherError(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(insertUser).
		WithArgs("Ann", "ann@x.com", "$2a$10$hash", "user").
		WillReturnError(&pgconn.PgError{Code: "23502"})

	_, err := repo.Insert(context.Background(), "Ann", "ann@x.com", "$2a$10$hash", "user")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateEmail)
}
