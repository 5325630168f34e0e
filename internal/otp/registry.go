// Package otp issues and verifies the short-lived codes that prove email
// ownership during registration.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const DefaultTTL = 5 * time.Minute

const (
	codeMin  = 100000
	codeSpan = 900000
)

var (
	ErrEmailRequired = errors.New("otp: email is required")
	ErrNotFound      = errors.New("otp: no pending code for email")
	ErrMismatch      = errors.New("otp: code does not match")
	ErrExpired       = errors.New("otp: code expired")
)

// Registry holds at most one pending code per email. Issue replaces any
// previous code; Verify consumes the code on success in a single atomic step.
type Registry interface {
	Issue(ctx context.Context, email string) (Entry, error)
	Verify(ctx context.Context, email, code string) error
	// TTL is how long an issued code stays valid.
	TTL() time.Duration
}

// Entry is a pending verification challenge.
type Entry struct {
	Email     string
	Code      string
	ExpiresAt time.Time
}

// Expired reports whether the entry is past its deadline at now.
func (e Entry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// CodeGenerator produces a fresh code.
type CodeGenerator func() (string, error)

// GenerateCode returns a uniformly random six digit code in 100000-999999.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10), nil
}

// NormalizeEmail is the key form used by every registry implementation.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Reason maps verify errors onto short labels for logs and metrics.
func Reason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrMismatch):
		return "mismatch"
	case errors.Is(err, ErrExpired):
		return "expired"
	default:
		return "error"
	}
}

type options struct {
	ttl      time.Duration
	now      func() time.Time
	generate CodeGenerator
}

// Option customizes a registry.
type Option func(*options)

func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func WithCodeGenerator(gen CodeGenerator) Option {
	return func(o *options) {
		if gen != nil {
			o.generate = gen
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		ttl:      DefaultTTL,
		now:      time.Now,
		generate: GenerateCode,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
