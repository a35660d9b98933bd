// Package auth guards the staff surface: one shared admin password,
// exchanged for a short-lived HS256 token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/parcelbooking/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleAdmin = "admin"
	issuer    = "parcelbooking"
)

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// AttemptCounter tracks failed logins per client address.
type AttemptCounter interface {
	LoginFailures(ctx context.Context, ip string) (int64, error)
	RegisterLoginFailure(ctx context.Context, ip string, window time.Duration) (int64, error)
	ResetLoginFailures(ctx context.Context, ip string) error
}

type Authenticator struct {
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	maxAttempts  int
	lockout      time.Duration
	attempts     AttemptCounter
	log          logrus.FieldLogger
	now          func() time.Time
}

type Option func(*Authenticator)

// WithAttemptLimit locks an address out for window after max failures.
func WithAttemptLimit(counter AttemptCounter, max int, window time.Duration) Option {
	return func(a *Authenticator) {
		a.attempts = counter
		a.maxAttempts = max
		a.lockout = window
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(a *Authenticator) {
		a.log = log
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) {
		a.now = now
	}
}

func NewAuthenticator(passwordHash, secret string, ttl time.Duration, opts ...Option) *Authenticator {
	a := &Authenticator{
		passwordHash: []byte(passwordHash),
		secret:       []byte(secret),
		ttl:          ttl,
		log:          logrus.StandardLogger(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// HashPassword returns the bcrypt hash to put in auth.admin_password_hash.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Login checks the shared admin password and issues a token. It returns
// domain.ErrTooManyAttempts while ip is locked out and domain.ErrUnauthorized
// on a wrong password.
func (a *Authenticator) Login(ctx context.Context, ip, password string) (Token, error) {
	if a.limited() {
		n, err := a.attempts.LoginFailures(ctx, ip)
		if err != nil {
			a.log.WithError(err).Warn("read login failures")
		} else if n >= int64(a.maxAttempts) {
			return Token{}, domain.ErrTooManyAttempts
		}
	}

	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		if a.limited() {
			if _, err := a.attempts.RegisterLoginFailure(ctx, ip, a.lockout); err != nil {
				a.log.WithError(err).Warn("record login failure")
			}
		}
		a.log.WithField("ip", ip).Warn("admin login failed")
		return Token{}, domain.ErrUnauthorized
	}

	if a.limited() {
		if err := a.attempts.ResetLoginFailures(ctx, ip); err != nil {
			a.log.WithError(err).Warn("reset login failures")
		}
	}
	return a.Issue()
}

func (a *Authenticator) Issue() (Token, error) {
	now := a.now().UTC()
	exp := now.Add(a.ttl)
	claims := Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   RoleAdmin,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	return Token{AccessToken: signed, TokenType: "Bearer", ExpiresAt: exp}, nil
}

// Verify parses raw and requires an unexpired HS256 admin token.
func (a *Authenticator) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !tok.Valid {
		return nil, errors.Join(domain.ErrUnauthorized, err)
	}
	if claims.Role != RoleAdmin {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

func (a *Authenticator) limited() bool {
	return a.attempts != nil && a.maxAttempts > 0
}
