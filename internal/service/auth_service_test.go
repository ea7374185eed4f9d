package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"acquisitions/internal/model"
	"acquisitions/internal/repository"
	"acquisitions/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// memoryRepo enforces email uniqueness at insert time like the real unique
// constraint. gate, when set, holds every FindByEmail until released so
// concurrent sign-ups all pass the pre-check.
type memoryRepo struct {
	mu      sync.Mutex
	nextID  int64
	byEmail map[string]*model.User
	gate    chan struct{}
	findErr error
	insErr  error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byEmail: make(map[string]*model.User)}
}

func (r *memoryRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	if r.gate != nil {
		<-r.gate
	}
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memoryRepo) Insert(_ context.Context, name, email, hashedPassword, role string) (*model.User, error) {
	if r.insErr != nil {
		return nil, r.insErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[email]; ok {
		return nil, &repository.StoreError{Op: "insert", Err: repository.ErrDuplicateEmail}
	}
	r.nextID++
	now := time.Now()
	u := &model.User{ID: r.nextID, Name: name, Email: email, Password: hashedPassword, Role: role, CreatedAt: now, UpdatedAt: now}
	r.byEmail[email] = u
	cp := *u
	return &cp, nil
}

func (r *memoryRepo) count(email string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[email]; ok {
		return 1
	}
	return 0
}

type failingHasher struct{}

func (failingHasher) Hash(string) (string, error) { return "", utils.ErrHashing }

func (failingHasher) Verify(string, string) (bool, error) { return false, utils.ErrHashing }

func newTestService(repo repository.UserRepository) AuthService {
	return NewAuthService(repo, utils.NewPasswordHasher(bcrypt.MinCost))
}

func TestCreateUser_ThenAuthenticate(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, "Ann", "ann@x.com", "secret1", "")
	require.NoError(t, err)
	assert.Empty(t, created.Password)
	assert.Equal(t, model.RoleUser, created.Role)
	assert.NotZero(t, created.ID)

	stored, _ := repo.FindByEmail(ctx, "ann@x.com")
	assert.NotEqual(t, "secret1", stored.Password)

	authed, err := svc.AuthenticateUser(ctx, "ann@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, authed.ID)
	assert.Empty(t, authed.Password)
}

func TestCreateUser_KeepsRequestedRole(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	created, err := svc.CreateUser(context.Background(), "Boss", "boss@x.com", "secret1", model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, created.Role)
}

func TestCreateUser_Duplicate(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "Ann", "ann@x.com", "secret1", "")
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, "Ann Again", "ann@x.com", "secret2", "")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
	assert.Equal(t, 1, repo.count("ann@x.com"))
}

func TestCreateUser_ConcurrentDuplicates(t *testing.T) {
	repo := newMemoryRepo()
	repo.gate = make(chan struct{})
	svc := newTestService(repo)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateUser(context.Background(), "Ann", "ann@x.com", "secret1", "")
			errs <- err
		}()
	}
	close(repo.gate)
	wg.Wait()
	close(errs)

	var ok, dup int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrUserAlreadyExists):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, attempts-1, dup)
	assert.Equal(t, 1, repo.count("ann@x.com"))
}

func TestCreateUser_LookupError(t *testing.T) {
	repo := newMemoryRepo()
	repo.findErr = &repository.StoreError{Op: "find by email", Err: errors.New("connection refused")}
	svc := newTestService(repo)

	_, err := svc.CreateUser(context.Background(), "Ann", "ann@x.com", "secret1", "")
	var storeErr *repository.StoreError
	assert.ErrorAs(t, err, &storeErr)
	assert.NotErrorIs(t, err, ErrUserAlreadyExists)
}

func TestCreateUser_InsertError(t *testing.T) {
	repo := newMemoryRepo()
	repo.insErr = &repository.StoreError{Op: "insert", Err: errors.New("connection reset")}
	svc := newTestService(repo)

	_, err := svc.CreateUser(context.Background(), "Ann", "ann@x.com", "secret1", "")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserAlreadyExists)
}

func TestCreateUser_HashError(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewAuthService(repo, failingHasher{})

	_, err := svc.CreateUser(context.Background(), "Ann", "ann@x.com", "secret1", "")
	assert.ErrorIs(t, err, utils.ErrHashing)
	assert.Equal(t, 0, repo.count("ann@x.com"))
}

func TestAuthenticateUser_WrongPassword(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()
	_, err := svc.CreateUser(ctx, "Ann", "ann@x.com", "secret1", "")
	require.NoError(t, err)

	_, err = svc.AuthenticateUser(ctx, "ann@x.com", "secret2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NotErrorIs(t, err, ErrUserNotFound)
}

func TestAuthenticateUser_UnknownEmail(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	_, err := svc.AuthenticateUser(context.Background(), "nobody@x.com", "whatever")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateUser_MalformedStoredHash(t *testing.T) {
	repo := newMemoryRepo()
	_, err := repo.Insert(context.Background(), "Ann", "ann@x.com", "not-a-hash", model.RoleUser)
	require.NoError(t, err)
	svc := newTestService(repo)

	_, err = svc.AuthenticateUser(context.Background(), "ann@x.com", "secret1")
	assert.ErrorIs(t, err, utils.ErrHashing)
}
