package application_test

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"accounthub/internal/application"
	"accounthub/internal/domain/entity"
	"accounthub/internal/domain/repository"
	"accounthub/pkg/helpers"
)

// Mock repositories use the function-fields pattern so each test overrides
// only what it needs.

type mockUserRepo struct {
	createFn        func(ctx context.Context, u *entity.User) error
	getByIDFn       func(ctx context.Context, id string) (*entity.User, error)
	getByUsernameFn func(ctx context.Context, username string) (*entity.User, error)
	updateFn        func(ctx context.Context, u *entity.User) error
}

func (m *mockUserRepo) Create(ctx context.Context, u *entity.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, u)
	}
	u.ID = "user-1"
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) Update(ctx context.Context, u *entity.User) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, u)
	}
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newAccountService(repo repository.UserRepository) *application.AccountService {
	return application.NewAccountService(repo, nil, nil, quietLogger(), "avatars/default_avatar.png", false)
}

func TestRegisterHashesPassword(t *testing.T) {
	var created *entity.User
	repo := &mockUserRepo{createFn: func(ctx context.Context, u *entity.User) error {
		created = u
		u.ID = "user-1"
		return nil
	}}
	svc := newAccountService(repo)

	u, err := svc.Register(context.Background(), "alice", "alice@example.com", "supersecret")
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.NotEqual(t, "supersecret", created.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("supersecret")))
	assert.True(t, created.IsActive)
	assert.Equal(t, "avatars/default_avatar.png", created.AvatarURL)
	assert.Equal(t, "user-1", u.ID)
}

func TestRegisterDuplicateUsernamePassthrough(t *testing.T) {
	repo := &mockUserRepo{createFn: func(ctx context.Context, u *entity.User) error {
		return repository.ErrDuplicateUsername
	}}
	svc := newAccountService(repo)

	_, err := svc.Register(context.Background(), "alice", "a@b.com", "supersecret")
	assert.ErrorIs(t, err, repository.ErrDuplicateUsername)
}

func TestAuthenticateGenericFailure(t *testing.T) {
	hash, err := helpers.HashPassword("rightpassword")
	require.NoError(t, err)
	known := &entity.User{ID: "user-1", Username: "alice", Password: hash, IsActive: true}
	inactive := &entity.User{ID: "user-2", Username: "bob", Password: hash, IsActive: false}

	repo := &mockUserRepo{getByUsernameFn: func(ctx context.Context, username string) (*entity.User, error) {
		switch username {
		case "alice":
			return known, nil
		case "bob":
			return inactive, nil
		}
		return nil, repository.ErrNotFound
	}}
	svc := newAccountService(repo)

	// Unknown user and wrong password are indistinguishable.
	_, err = svc.Authenticate(context.Background(), "nobody", "whatever")
	assert.ErrorIs(t, err, application.ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "alice", "wrongpassword")
	assert.ErrorIs(t, err, application.ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "bob", "rightpassword")
	assert.ErrorIs(t, err, application.ErrInvalidCredentials)

	u, err := svc.Authenticate(context.Background(), "alice", "rightpassword")
	require.NoError(t, err)
	assert.Equal(t, "user-1", u.ID)
}

func TestUpdateProfileScopedToOwner(t *testing.T) {
	stored := &entity.User{ID: "user-1", Username: "alice", Email: "old@example.com", IsActive: true}
	var updated *entity.User
	repo := &mockUserRepo{
		getByIDFn: func(ctx context.Context, id string) (*entity.User, error) {
			if id == "user-1" {
				copy := *stored
				return &copy, nil
			}
			return nil, repository.ErrNotFound
		},
		updateFn: func(ctx context.Context, u *entity.User) error {
			updated = u
			return nil
		},
	}
	svc := newAccountService(repo)

	_, err := svc.UpdateProfile(context.Background(), "user-1", application.UpdateProfileInput{
		Username: "alice2",
		Email:    "new@example.com",
		Bio:      "hi",
		Website:  "https://alice.example.com",
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "user-1", updated.ID)
	assert.Equal(t, "alice2", updated.Username)
	assert.Equal(t, "new@example.com", updated.Email)

	_, err = svc.UpdateProfile(context.Background(), "ghost", application.UpdateProfileInput{Username: "x", Email: "x@y.z"})
	assert.ErrorIs(t, err, application.ErrUserNotFound)
}
