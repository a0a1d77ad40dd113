package account

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of a resolved identity
type Identity interface {
	ID() string
	Username() string
	Email() string
	Services() []string
}

// IdentityProvider ensures we have a store to retrieve identities
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, username, password string) (Identity, error)
	FindIdentity(ctx context.Context, id string) (Identity, error)
	FindIdentityByAccessToken(ctx context.Context, token string) (Identity, error)
}

// NotificationSink delivers a human-readable message to an operator
// channel. Delivery is best-effort; callers never act on a failure.
type NotificationSink interface {
	Send(ctx context.Context, message string) error
}

// NotificationSinkFunc adapts a function to the NotificationSink interface.
type NotificationSinkFunc func(ctx context.Context, message string) error

// Send implements NotificationSink.
func (f NotificationSinkFunc) Send(ctx context.Context, message string) error {
	if f == nil {
		return nil
	}
	return f(ctx, message)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// Config holds the options the subsystem consumes but does not own.
// Token expiration is in hours, the reset token TTL in seconds.
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetIssuer() string
	GetAudience() []string
	GetPasswordResetTokenTTL() int
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ACCOUNT "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] ACCOUNT "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] ACCOUNT "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] ACCOUNT "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
