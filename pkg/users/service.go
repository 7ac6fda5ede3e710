package users

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/platinummonkey/workboard/pkg/apperr"
	"github.com/platinummonkey/workboard/pkg/async"
	"github.com/platinummonkey/workboard/pkg/auth"
	"github.com/platinummonkey/workboard/pkg/observability"
	"github.com/platinummonkey/workboard/pkg/rbac"
	"github.com/platinummonkey/workboard/pkg/storage"
)

// RoleResolver reports a user's role in a workspace
type RoleResolver interface {
	ResolveRole(ctx context.Context, userID, workspaceID string) (rbac.Role, error)
}

// AvatarStore stores avatar images. *storage.ObjectStore satisfies it.
type AvatarStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(url string) (string, bool)
}

// Provisioner sets up what a new account starts with. It runs inside the
// registration transaction; an error discards the account too.
type Provisioner interface {
	Provision(ctx context.Context, tx *sqlx.Tx, u *User) error
}

// Service implements account operations
type Service struct {
	store       *Store
	hasher      *auth.Hasher
	tokens      *auth.TokenManager
	resolver    RoleResolver
	avatars     AvatarStore
	provisioner Provisioner
	logger      *observability.Logger
	now         func() time.Time
}

// NewService creates a user service. avatars may be nil, which disables
// avatar upload.
func NewService(store *Store, hasher *auth.Hasher, tokens *auth.TokenManager, resolver RoleResolver, avatars AvatarStore, logger *observability.Logger) *Service {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Service{
		store:    store,
		hasher:   hasher,
		tokens:   tokens,
		resolver: resolver,
		avatars:  avatars,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// SetProvisioner installs p to run for every registration
func (s *Service) SetProvisioner(p Provisioner) {
	s.provisioner = p
}

// Register creates an account and returns a session for it
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || utf8.RuneCountInString(name) > 255 {
		return nil, apperr.BadRequest(apperr.CodeValidation, "name is required and must be at most 255 characters")
	}
	email := normalizeEmail(in.Email)
	if _, err := mail.ParseAddress(email); err != nil || len(email) > 255 {
		return nil, apperr.BadRequest(apperr.CodeValidation, "a valid email is required")
	}
	if err := auth.ValidatePassword(in.Password); err != nil {
		return nil, apperr.BadRequest(apperr.CodeValidation, err.Error())
	}

	hash, err := s.hasher.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("failed to register", err)
	}

	now := s.now()
	u := &User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = storage.WithTx(ctx, s.store.db, func(tx *sqlx.Tx) error {
		if err := createUser(ctx, tx, u); err != nil {
			return err
		}
		if s.provisioner == nil {
			return nil
		}
		return s.provisioner.Provision(ctx, tx, u)
	})
	if err != nil {
		return nil, err
	}

	observability.FromContext(ctx, s.logger).WithField("user_id", u.ID).Info("user registered")
	return s.session(u)
}

// Login verifies credentials and returns a session. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	invalid := apperr.Unauthorized(apperr.CodeInvalidCredentials, "invalid email or password")

	u, err := s.store.GetByEmail(ctx, in.Email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, invalid
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, invalid
	}
	if err := s.hasher.CheckPassword(u.PasswordHash, in.Password); err != nil {
		if err == auth.ErrPasswordMismatch {
			return nil, invalid
		}
		return nil, apperr.Internal("failed to log in", err)
	}

	now := s.now()
	if err := s.store.TouchLogin(ctx, u.ID, now); err != nil {
		return nil, err
	}
	u.LastLoginAt = &now

	return s.session(u)
}

// Get returns the user with id
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.store.GetByID(ctx, id)
}

// SetCurrentWorkspace switches the user's current workspace. The user must be
// a member of it.
func (s *Service) SetCurrentWorkspace(ctx context.Context, userID, workspaceID string) (*User, error) {
	if _, err := s.resolver.ResolveRole(ctx, userID, workspaceID); err != nil {
		return nil, err
	}
	if err := s.store.SetCurrentWorkspace(ctx, nil, userID, &workspaceID, s.now()); err != nil {
		return nil, err
	}
	return s.store.GetByID(ctx, userID)
}

// UploadAvatar stores a new avatar image and points the user at it. The
// previous avatar object is removed in the background.
func (s *Service) UploadAvatar(ctx context.Context, userID string, data []byte, contentType string) (*User, error) {
	if s.avatars == nil {
		return nil, apperr.Unavailable("avatar upload is not configured")
	}
	ext, ok := avatarTypes[contentType]
	if !ok {
		return nil, apperr.BadRequest(apperr.CodeValidation, "avatar must be a png, jpeg, gif or webp image")
	}
	if len(data) == 0 || len(data) > MaxAvatarBytes {
		return nil, apperr.BadRequest(apperr.CodeValidation, fmt.Sprintf("avatar must be between 1 byte and %d bytes", MaxAvatarBytes))
	}

	u, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("avatars/%s/%s.%s", userID, uuid.NewString(), ext)
	url, err := s.avatars.Put(ctx, key, data, contentType)
	if err != nil {
		return nil, apperr.Internal("failed to store avatar", err)
	}

	now := s.now()
	if err := s.store.SetAvatar(ctx, userID, url, now); err != nil {
		return nil, err
	}

	if u.AvatarURL != nil {
		if oldKey, ok := s.avatars.KeyFromURL(*u.AvatarURL); ok {
			logger := observability.FromContext(ctx, s.logger)
			async.SafeGo(context.WithoutCancel(ctx), 30*time.Second, "delete old avatar", logger, func(ctx context.Context) error {
				return s.avatars.Delete(ctx, oldKey)
			})
		}
	}

	u.AvatarURL = &url
	u.UpdatedAt = now
	return u, nil
}

func (s *Service) session(u *User) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(u.ID, u.Email, u.Name)
	if err != nil {
		return nil, apperr.Internal("failed to issue token", err)
	}
	return &Session{User: u, Token: token, ExpiresAt: expiresAt}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
