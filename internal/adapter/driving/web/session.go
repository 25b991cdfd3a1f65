package web

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ericfisherdev/autoreview/internal/domain/model"
)

const sessionIssuer = "autoreview"

// ErrInvalidSession is returned for session cookies that fail verification.
var ErrInvalidSession = errors.New("invalid session")

// sessionClaims is the JWT payload of the session cookie. The subject is the
// user's uid.
type sessionClaims struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// SessionCodec signs and verifies session cookies with HS256.
type SessionCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionCodec creates a SessionCodec. secret must be at least 32 bytes.
func NewSessionCodec(secret []byte) *SessionCodec {
	return &SessionCodec{secret: secret, ttl: sessionTTL, now: time.Now}
}

// Encode returns the signed session token for s.
func (c *SessionCodec) Encode(s model.Session) (string, error) {
	now := c.now()
	claims := sessionClaims{
		Name:    s.DisplayName,
		Email:   s.Email,
		Picture: s.PhotoURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   s.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// Decode verifies raw and returns the session it carries.
func (c *SessionCodec) Decode(raw string) (*model.Session, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(token *jwt.Token) (any, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidSession)
	}

	return &model.Session{
		UID:         claims.Subject,
		DisplayName: claims.Name,
		Email:       claims.Email,
		PhotoURL:    claims.Picture,
	}, nil
}

// MaxAge is the cookie lifetime in seconds.
func (c *SessionCodec) MaxAge() int {
	return int(c.ttl / time.Second)
}
