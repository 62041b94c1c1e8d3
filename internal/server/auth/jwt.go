// Package auth implements the token codec: it signs a user identity with an
// expiry into an HS256 JWT and verifies such tokens statelessly.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/solarauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultIssuer = "auth0"
	DefaultTTL    = 7 * 24 * time.Hour
)

// ErrEmptySecret is returned by NewCodec when no signing key is configured.
var ErrEmptySecret = errors.New("token signing secret is empty")

// Claims are the registered claims plus the user id of the token owner.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"user_id"`
}

type CodecOption func(*Codec)

func WithIssuer(issuer string) CodecOption {
	return func(c *Codec) { c.issuer = issuer }
}

func WithTTL(ttl time.Duration) CodecOption {
	return func(c *Codec) { c.ttl = ttl }
}

// WithClock replaces time.Now, mostly for expiry tests.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) { c.now = now }
}

// Codec issues and decodes tokens. It holds no mutable state and is safe
// for concurrent use.
type Codec struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

func NewCodec(secret []byte, opts ...CodecOption) (*Codec, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	c := &Codec{
		secret: secret,
		issuer: DefaultIssuer,
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.issuer == "" {
		return nil, errors.New("token issuer is empty")
	}
	if c.ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}

	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	return c, nil
}

// Issue signs a token for userID that expires after the configured TTL.
func (c *Codec) Issue(userID int64) (string, error) {
	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		UserID: userID,
	})

	return token.SignedString(c.secret)
}

// Decode verifies signature, algorithm, issuer and expiry and returns the
// embedded user id. Every failure is reported as common.ErrInvalidToken.
func (c *Codec) Decode(tokenString string) (int64, error) {
	if tokenString == "" {
		return 0, common.ErrInvalidToken
	}

	claims := &Claims{}
	token, err := c.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, common.ErrInvalidToken
	}
	if claims.UserID <= 0 {
		return 0, common.ErrInvalidToken
	}

	return claims.UserID, nil
}
