package application

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"accounthub/internal/domain/entity"
	"accounthub/internal/domain/repository"
	"accounthub/pkg/helpers"
	"accounthub/pkg/mailer"
	"accounthub/pkg/mailer/templates"
)

var (
	// ErrInvalidCredentials is the single failure mode of Authenticate; it
	// never distinguishes unknown user from wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrBlobsUnavailable   = errors.New("blob store not configured")
)

// AccountService owns registration, authentication and profile edits.
type AccountService struct {
	Repo          repository.UserRepository
	Blobs         BlobStore                // nil disables avatar upload
	Pub           *helpers.RabbitPublisher // nil disables the welcome email
	Logger        *logrus.Logger
	DefaultAvatar string
	MailEnabled   bool
}

func NewAccountService(repo repository.UserRepository, blobs BlobStore, pub *helpers.RabbitPublisher, logger *logrus.Logger, defaultAvatar string, mailEnabled bool) *AccountService {
	return &AccountService{
		Repo:          repo,
		Blobs:         blobs,
		Pub:           pub,
		Logger:        logger,
		DefaultAvatar: defaultAvatar,
		MailEnabled:   mailEnabled,
	}
}

// Register persists a new active account. Duplicate usernames come back as
// repository.ErrDuplicateUsername from the store's unique constraint.
func (s *AccountService) Register(ctx context.Context, username, email, password string) (*entity.User, error) {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Username:  username,
		Email:     email,
		Password:  hash,
		AvatarURL: s.DefaultAvatar,
		IsActive:  true,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}

	if s.Pub != nil && s.MailEnabled {
		job := mailer.EmailJob{
			To:       u.Email,
			Template: templates.Welcome,
			Data:     map[string]any{"Username": u.Username},
		}
		if err := s.Pub.PublishJSON(ctx, job); err != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("welcome email enqueue failed")
		}
	}
	return u, nil
}

// Authenticate validates username/password. Every failure collapses into
// ErrInvalidCredentials to prevent user enumeration.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*entity.User, error) {
	u, err := s.Repo.GetByUsername(ctx, username)
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *AccountService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// AvatarUpload carries an optional replacement avatar image.
type AvatarUpload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
}

type UpdateProfileInput struct {
	Username string
	Email    string
	Bio      string
	Website  string
	Avatar   *AvatarUpload
}

// UpdateProfile mutates the owning user's record only; the target is always
// the authenticated user, never a client-supplied id.
func (s *AccountService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}

	u.Username = in.Username
	u.Email = in.Email
	u.Bio = in.Bio
	u.Website = in.Website

	if in.Avatar != nil {
		url, err := s.storeAvatar(ctx, userID, in.Avatar)
		if err != nil {
			return nil, err
		}
		u.AvatarURL = url
	}

	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AccountService) storeAvatar(ctx context.Context, userID string, a *AvatarUpload) (string, error) {
	if s.Blobs == nil {
		return "", ErrBlobsUnavailable
	}
	ext := strings.ToLower(filepath.Ext(a.Filename))
	objectPath := "avatars/" + userID + "/" + uuid.NewString() + ext
	return s.Blobs.Put(ctx, objectPath, a.ContentType, a.Reader)
}
