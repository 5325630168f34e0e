package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/fastfood-backend/pkg/logger"
)

const defaultGuestCartTTL = 72 * time.Hour

type staleCartDeleter interface {
	DeleteStaleGuestCarts(ctx context.Context, cutoff time.Time) (int64, error)
}

type GuestCartExpiryJobParams struct {
	Logger *logger.Logger
	Carts  staleCartDeleter
	TTL    time.Duration
}

// NewGuestCartExpiryJob drops anonymous carts nobody has touched for TTL.
func NewGuestCartExpiryJob(params GuestCartExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	if params.Carts == nil {
		return nil, errors.New("cart repository required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = defaultGuestCartTTL
	}
	return &guestCartExpiryJob{
		logg:  params.Logger,
		carts: params.Carts,
		ttl:   ttl,
		now:   time.Now,
	}, nil
}

type guestCartExpiryJob struct {
	logg  *logger.Logger
	carts staleCartDeleter
	ttl   time.Duration
	now   func() time.Time
}

func (j *guestCartExpiryJob) Name() string { return "guest-cart-expiry" }

func (j *guestCartExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.ttl)
	deleted, err := j.carts.DeleteStaleGuestCarts(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("delete stale guest carts: %w", err)
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":        cutoff,
		"lines_deleted": deleted,
	}), "cron.guest_carts_expired")
	return nil
}
