package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/schedule-app/backend/internal/model"
	"github.com/schedule-app/backend/internal/token"
	"github.com/sirupsen/logrus"
)

// AuthService orchestrates account operations over the UserStore and
// the token codec. It holds no mutable state of its own.
type AuthService struct {
	store UserStore
	codec *token.Codec
	log   *logrus.Logger
}

func NewAuthService(store UserStore, codec *token.Codec, log *logrus.Logger) *AuthService {
	if log == nil {
		log = logrus.New()
	}
	return &AuthService{store: store, codec: codec, log: log}
}

// Register creates a new account. Email uniqueness is checked before
// username, matching the order error messages are reported in.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	if err := asValidationError(req.Validate()); err != nil {
		return nil, err
	}

	if _, err := s.store.FindByEmail(ctx, req.Email); err == nil {
		return nil, &ConflictError{Field: "email"}
	} else if !errors.Is(err, ErrUserNotExists) {
		return nil, fmt.Errorf("find by email: %w", err)
	}

	if _, err := s.store.FindByUsername(ctx, req.Username); err == nil {
		return nil, &ConflictError{Field: "username"}
	} else if !errors.Is(err, ErrUserNotExists) {
		return nil, fmt.Errorf("find by username: %w", err)
	}

	user := &model.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	}

	created, err := s.store.Create(ctx, user, req.Password)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return created, nil
}

// LoginResult is what a successful login hands back to the transport.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

// loginDummyHash is a well-formed bcrypt hash that matches no password.
// It is compared against when the username is unknown so that path
// costs a hash comparison too.
const loginDummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Login validates the credential pair and issues a session token.
// Unknown username and wrong password collapse into the same error so
// responses cannot be used to enumerate accounts, and both paths run a
// password comparison so timing does not give the difference away.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*LoginResult, error) {
	if err := req.Validate(); err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.store.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotExists) {
			_ = s.store.VerifyPassword(&model.User{PasswordHash: loginDummyHash}, req.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find by username: %w", err)
	}

	if err := s.store.VerifyPassword(user, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	signed, expiresAt, err := s.codec.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &LoginResult{Token: signed, ExpiresAt: expiresAt, User: user}, nil
}

// ChangePassword verifies the current password before asking the store
// to set the new one. The subject comes from an already verified token.
func (s *AuthService) ChangePassword(ctx context.Context, subject string, req model.ChangePasswordRequest) error {
	if err := asValidationError(req.Validate()); err != nil {
		return err
	}

	user, err := s.resolveSubject(ctx, subject)
	if err != nil {
		return err
	}

	if err := s.store.VerifyPassword(user, req.CurrentPassword); err != nil {
		return &ValidationError{Fields: map[string]string{
			"currentPassword": "current password is incorrect",
		}}
	}

	if err := s.store.UpdatePassword(ctx, user.ID, req.NewPassword); err != nil {
		return mapStoreError(err)
	}
	return nil
}

// UpdateProfile applies the non-empty fields of the patch. Blank fields
// are ignored rather than cleared.
func (s *AuthService) UpdateProfile(ctx context.Context, subject string, req model.UpdateProfileRequest) (*model.User, error) {
	if err := asValidationError(req.Validate()); err != nil {
		return nil, err
	}

	user, err := s.resolveSubject(ctx, subject)
	if err != nil {
		return nil, err
	}

	if req.Username != "" && req.Username != user.Username {
		if _, err := s.store.FindByUsername(ctx, req.Username); err == nil {
			return nil, &ConflictError{Field: "username"}
		} else if !errors.Is(err, ErrUserNotExists) {
			return nil, fmt.Errorf("find by username: %w", err)
		}
		user.Username = req.Username
	}
	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}

	updated, err := s.store.UpdateProfile(ctx, user)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return updated, nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.store.List(ctx)
}

// Logout is a no-op: tokens are self-contained and there is no
// server-side revocation list, so an issued token stays valid until it
// expires. The endpoint exists for clients that want a hook to clear
// local state. Known limitation.
func (s *AuthService) Logout(ctx context.Context) error {
	return nil
}

// SeedAdmin creates the bootstrap account on startup when configured
// and not already present.
func (s *AuthService) SeedAdmin(ctx context.Context, username, password, email string) error {
	if username == "" || password == "" {
		return nil
	}
	if email == "" {
		email = username + "@localhost"
	}

	if _, err := s.store.FindByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, ErrUserNotExists) {
		return fmt.Errorf("find by username: %w", err)
	}

	_, err := s.store.Create(ctx, &model.User{Username: username, Email: email}, password)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	s.log.WithField("username", username).Info("seeded admin user")
	return nil
}

func (s *AuthService) resolveSubject(ctx context.Context, subject string) (*model.User, error) {
	user, err := s.store.FindByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, ErrUserNotExists) {
			// Valid token for a user the store no longer has.
			s.log.WithField("subject", subject).Warn("token subject missing from store")
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find by username: %w", err)
	}
	return user, nil
}

// mapStoreError translates store failures into the API taxonomy without
// leaking storage detail.
func mapStoreError(err error) error {
	var policyErr *PasswordPolicyError
	switch {
	case errors.As(err, &policyErr):
		return &ValidationError{Fields: map[string]string{"password": policyErr.Error()}}
	case errors.Is(err, ErrUsernameTaken):
		return &ConflictError{Field: "username"}
	case errors.Is(err, ErrEmailTaken):
		return &ConflictError{Field: "email"}
	default:
		return err
	}
}
