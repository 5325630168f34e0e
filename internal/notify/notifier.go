// Package notify delivers outbound email.
package notify

import (
	"context"
	"errors"
	"net/mail"
	"strings"
)

var (
	ErrInvalidAddress  = errors.New("notify: invalid recipient address")
	ErrDeliveryFailure = errors.New("notify: delivery failed")
)

// Notifier sends a single HTML message.
type Notifier interface {
	Send(ctx context.Context, to, subject, bodyHTML string) error
}

// ValidateAddress accepts a bare address such as "a@b.com".
func ValidateAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", ErrInvalidAddress
	}
	parsed, err := mail.ParseAddress(address)
	if err != nil || parsed.Address != address || !strings.Contains(parsed.Address[strings.LastIndex(parsed.Address, "@")+1:], ".") {
		return "", ErrInvalidAddress
	}
	return parsed.Address, nil
}
