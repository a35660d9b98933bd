package auth

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/parcelbooking/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memoryCounter struct {
	mu       sync.Mutex
	failures map[string]int64
}

func newMemoryCounter() *memoryCounter {
	return &memoryCounter{failures: map[string]int64{}}
}

func (c *memoryCounter) LoginFailures(_ context.Context, ip string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failures[ip], nil
}

func (c *memoryCounter) RegisterLoginFailure(_ context.Context, ip string, _ time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[ip]++
	return c.failures[ip], nil
}

func (c *memoryCounter) ResetLoginFailures(_ context.Context, ip string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.failures, ip)
	return nil
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testHash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAuthenticator_LoginAndVerify(t *testing.T) {
	a := NewAuthenticator(testHash(t, "s3cret"), "jwt-secret", time.Hour, WithLogger(quietLogger()))

	tok, err := a.Login(context.Background(), "10.0.0.1", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.NotEmpty(t, tok.AccessToken)

	claims, err := a.Verify(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestAuthenticator_WrongPassword(t *testing.T) {
	a := NewAuthenticator(testHash(t, "s3cret"), "jwt-secret", time.Hour, WithLogger(quietLogger()))

	_, err := a.Login(context.Background(), "10.0.0.1", "guess")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthenticator_Lockout(t *testing.T) {
	counter := newMemoryCounter()
	a := NewAuthenticator(testHash(t, "s3cret"), "jwt-secret", time.Hour,
		WithAttemptLimit(counter, 3, 15*time.Minute), WithLogger(quietLogger()))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := a.Login(ctx, "10.0.0.1", "guess")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	}

	_, err := a.Login(ctx, "10.0.0.1", "s3cret")
	assert.ErrorIs(t, err, domain.ErrTooManyAttempts)

	_, err = a.Login(ctx, "10.0.0.2", "s3cret")
	require.NoError(t, err)
}

func TestAuthenticator_SuccessResetsFailures(t *testing.T) {
	counter := newMemoryCounter()
	a := NewAuthenticator(testHash(t, "s3cret"), "jwt-secret", time.Hour,
		WithAttemptLimit(counter, 3, 15*time.Minute), WithLogger(quietLogger()))
	ctx := context.Background()

	_, _ = a.Login(ctx, "10.0.0.1", "guess")
	_, err := a.Login(ctx, "10.0.0.1", "s3cret")
	require.NoError(t, err)

	n, _ := counter.LoginFailures(ctx, "10.0.0.1")
	assert.Zero(t, n)
}

func TestAuthenticator_VerifyRejects(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	a := NewAuthenticator(testHash(t, "s3cret"), "jwt-secret", time.Hour,
		WithClock(func() time.Time { return now }), WithLogger(quietLogger()))

	tok, err := a.Issue()
	require.NoError(t, err)

	other := NewAuthenticator("", "other-secret", time.Hour, WithClock(func() time.Time { return now }))
	_, err = other.Verify(tok.AccessToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = a.Verify("not-a-token")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	now = now.Add(2 * time.Hour)
	_, err = a.Verify(tok.AccessToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthenticator_VerifyRejectsNonAdminRole(t *testing.T) {
	a := NewAuthenticator("", "jwt-secret", time.Hour)
	claims := Claims{
		Role: "customer",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("jwt-secret"))
	require.NoError(t, err)

	_, err = a.Verify(raw)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestHashPassword(t *testing.T) {
	h, err := HashPassword("s3cret")
	require.NoError(t, err)
	a := NewAuthenticator(h, "jwt-secret", time.Minute, WithLogger(quietLogger()))
	_, err = a.Login(context.Background(), "ip", "s3cret")
	assert.NoError(t, err)
}
