package db

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/schedule-app/backend/internal/model"
	"github.com/schedule-app/backend/internal/service"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	// bcrypt only uses the first 72 bytes; longer input is an error.
	maxPasswordLength = 72
)

var _ service.UserStore = (*Postgres)(nil)

const userColumns = `id, username, email, first_name, last_name, phone, password_hash, created_at, updated_at`

func (db *Postgres) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return db.scanUser(db.Pool.QueryRow(ctx, query, username))
}

func (db *Postgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return db.scanUser(db.Pool.QueryRow(ctx, query, email))
}

func (db *Postgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return db.scanUser(db.Pool.QueryRow(ctx, query, id))
}

func (db *Postgres) List(ctx context.Context) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`
	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		var user model.User
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.FirstName,
			&user.LastName,
			&user.Phone,
			&user.PasswordHash,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, &user)
	}
	return users, rows.Err()
}

// Create hashes the password, assigns an id and inserts the record.
// Uniqueness races that slip past the service-level lookups surface
// here through the unique constraints.
func (db *Postgres) Create(ctx context.Context, user *model.User, password string) (*model.User, error) {
	if err := checkPasswordPolicy(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO users (id, username, email, first_name, last_name, phone, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING ` + userColumns
	row := db.Pool.QueryRow(ctx, query,
		uuid.NewString(), user.Username, user.Email, user.FirstName, user.LastName, user.Phone, string(hash))

	created, err := db.scanUser(row)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}
	return created, nil
}

func (db *Postgres) VerifyPassword(user *model.User, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return service.ErrPasswordMismatch
	}
	return nil
}

func (db *Postgres) UpdatePassword(ctx context.Context, id, newPassword string) error {
	if err := checkPasswordPolicy(newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	tag, err := db.Pool.Exec(ctx, `
		UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2
	`, string(hash), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return service.ErrUserNotExists
	}
	return nil
}

func (db *Postgres) UpdateProfile(ctx context.Context, user *model.User) (*model.User, error) {
	query := `
		UPDATE users
		SET username = $1, first_name = $2, last_name = $3, phone = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING ` + userColumns
	row := db.Pool.QueryRow(ctx, query,
		user.Username, user.FirstName, user.LastName, user.Phone, user.ID)

	updated, err := db.scanUser(row)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}
	return updated, nil
}

func (db *Postgres) scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.Phone,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrUserNotExists
		}
		return nil, err
	}
	return &user, nil
}

// checkPasswordPolicy enforces the store's password rules and collects
// every failed rule so the caller can report them all at once.
func checkPasswordPolicy(password string) error {
	var reasons []string
	if len(password) < minPasswordLength {
		reasons = append(reasons, "must be at least 8 characters")
	}
	if len(password) > maxPasswordLength {
		reasons = append(reasons, "must be at most 72 characters")
	}
	hasLetter, hasDigit := false, false
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter {
		reasons = append(reasons, "must contain a letter")
	}
	if !hasDigit {
		reasons = append(reasons, "must contain a digit")
	}
	if len(reasons) > 0 {
		return &service.PasswordPolicyError{Reasons: reasons}
	}
	return nil
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if strings.Contains(pgErr.ConstraintName, "email") {
			return service.ErrEmailTaken
		}
		return service.ErrUsernameTaken
	}
	return err
}
