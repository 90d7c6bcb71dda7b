// Package token issues and verifies the signed session tokens that
// authorize requests against the API. Tokens are self-contained HS256
// JWTs; nothing is tracked server-side, so a token stays valid until
// its expiration regardless of later account changes.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/schedule-app/backend/internal/config"
	"github.com/schedule-app/backend/internal/model"
)

// HS256 needs a key at least as long as its output to be worth anything.
const minSecretLength = 32

var (
	ErrMisconfigured = errors.New("token config invalid")

	// ErrMalformed, ErrExpired and ErrSignature classify verification
	// failures for internal logging. Callers facing the network must
	// collapse all three into a single unauthenticated response.
	ErrMalformed = errors.New("token malformed")
	ErrExpired   = errors.New("token expired")
	ErrSignature = errors.New("token signature invalid")
)

// Claims is the fixed claim set carried by every session token.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"uid"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Codec signs and verifies session tokens. It is pure and safe for
// concurrent use; the config is read-only after construction.
type Codec struct {
	secret   []byte
	issuer   string
	audience string
	validity time.Duration
}

func NewCodec(cfg config.JWTConfig) (*Codec, error) {
	if len(cfg.SecretKey) < minSecretLength {
		return nil, fmt.Errorf("%w: JWT_SECRET_KEY must be at least %d bytes", ErrMisconfigured, minSecretLength)
	}
	if cfg.Issuer == "" || cfg.Audience == "" {
		return nil, fmt.Errorf("%w: JWT_ISSUER and JWT_AUDIENCE are required", ErrMisconfigured)
	}
	return &Codec{
		secret:   []byte(cfg.SecretKey),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		validity: time.Duration(cfg.ExpirationHours * float64(time.Hour)),
	}, nil
}

// Issue builds a token for the given user. The jti claim is a fresh
// random id for tracing; it plays no part in revocation.
func (c *Codec) Issue(user *model.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(c.validity)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			ID:        uuid.NewString(),
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{c.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify decodes the token string and returns its claims. The signature
// comparison inside the library is constant-time. Issuer or audience
// mismatches are reported as signature failures: a token minted for
// another deployment is treated as forged.
func (c *Codec) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.secret, nil
	},
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, classify(err)
	}
	if !tok.Valid {
		return nil, ErrSignature
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		return fmt.Errorf("%w: %v", ErrSignature, err)
	}
}
