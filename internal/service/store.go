package service

import (
	"context"
	"errors"
	"strings"

	"github.com/schedule-app/backend/internal/model"
)

// Store-level sentinels. The Postgres implementation lives in
// internal/db; tests substitute in-memory fakes.
var (
	ErrUserNotExists    = errors.New("no such user")
	ErrUsernameTaken    = errors.New("username already taken")
	ErrEmailTaken       = errors.New("email already taken")
	ErrPasswordMismatch = errors.New("password does not match")
	ErrEventNotFound    = errors.New("event not found")
)

// PasswordPolicyError reports why a candidate password was rejected by
// the store's policy.
type PasswordPolicyError struct {
	Reasons []string
}

func (e *PasswordPolicyError) Error() string {
	return "password policy: " + strings.Join(e.Reasons, "; ")
}

// UserStore owns user records, credential hashing and uniqueness. All
// methods taking a context may block on storage I/O and must honor
// cancellation; none are retried by the caller.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)

	// Create hashes the password and inserts the record. Returns
	// *PasswordPolicyError, ErrUsernameTaken or ErrEmailTaken on policy
	// and uniqueness failures.
	Create(ctx context.Context, user *model.User, password string) (*model.User, error)

	// VerifyPassword checks a cleartext password against the record's
	// hash. Pure; returns ErrPasswordMismatch on failure.
	VerifyPassword(user *model.User, password string) error

	UpdatePassword(ctx context.Context, id, newPassword string) error
	UpdateProfile(ctx context.Context, user *model.User) (*model.User, error)
}

// ScheduleStore owns calendar events. Every query is scoped to the
// owning user; an event belonging to someone else reads as not found.
type ScheduleStore interface {
	ListEvents(ctx context.Context, userID string) ([]model.Event, error)
	GetEvent(ctx context.Context, userID, eventID string) (*model.Event, error)
	CreateEvent(ctx context.Context, event *model.Event) (*model.Event, error)
	UpdateEvent(ctx context.Context, event *model.Event) (*model.Event, error)
	DeleteEvent(ctx context.Context, userID, eventID string) error
}
