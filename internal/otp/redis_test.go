package otp

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisclient "github.com/angelmondragon/fastfood-backend/pkg/redis"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*redisclient.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	raw := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })
	return redisclient.NewFromRaw(raw), mr
}

func uniqueEmail() string {
	return uuid.NewString() + "@example.com"
}

func TestRedisRegistryRequiresScripter(t *testing.T) {
	_, err := NewRedisRegistry(nil, time.Minute)
	require.Error(t, err)
	_, err = NewRedisRegistry(&redisclient.Client{}, time.Minute)
	require.Error(t, err)
}

func TestRedisRegistrySingleUse(t *testing.T) {
	client, _ := newTestRedis(t)
	ctx := context.Background()
	reg, err := NewRedisRegistry(client, time.Minute)
	require.NoError(t, err)

	email := uniqueEmail()
	entry, err := reg.Issue(ctx, email)
	require.NoError(t, err)

	raw, err := client.Get(ctx, client.OTPKey(email))
	require.NoError(t, err)
	stored, err := decodeEntry(email, raw)
	require.NoError(t, err)
	require.Equal(t, entry.Code, stored.Code)

	require.ErrorIs(t, reg.Verify(ctx, email, "000000"), ErrMismatch)
	require.NoError(t, reg.Verify(ctx, email, entry.Code))
	require.ErrorIs(t, reg.Verify(ctx, email, entry.Code), ErrNotFound)
}

func TestRedisRegistryExpiredAndSuperseded(t *testing.T) {
	client, _ := newTestRedis(t)
	ctx := context.Background()
	clock := &fakeClock{now: time.Now()}
	reg, err := NewRedisRegistry(client, time.Minute,
		WithClock(clock.Now),
		WithCodeGenerator(sequenceGenerator("555555", "666666")),
	)
	require.NoError(t, err)

	email := uniqueEmail()
	_, err = reg.Issue(ctx, email)
	require.NoError(t, err)
	_, err = reg.Issue(ctx, email)
	require.NoError(t, err)
	require.ErrorIs(t, reg.Verify(ctx, email, "555555"), ErrMismatch)

	clock.Advance(6 * time.Minute)
	require.ErrorIs(t, reg.Verify(ctx, email, "666666"), ErrExpired)
}

func TestRedisRegistryExpiryBeatsMismatch(t *testing.T) {
	client, _ := newTestRedis(t)
	ctx := context.Background()
	clock := &fakeClock{now: time.Now()}
	reg, err := NewRedisRegistry(client, time.Minute,
		WithClock(clock.Now),
		WithTTL(2*time.Minute),
		WithCodeGenerator(sequenceGenerator("123456")),
	)
	require.NoError(t, err)

	email := uniqueEmail()
	_, err = reg.Issue(ctx, email)
	require.NoError(t, err)

	clock.Advance(2*time.Minute + time.Second)
	require.ErrorIs(t, reg.Verify(ctx, email, "999999"), ErrExpired)
	require.ErrorIs(t, reg.Verify(ctx, email, "123456"), ErrExpired)
}

func TestRedisRegistryKeyLivesForTTLPlusGrace(t *testing.T) {
	client, mr := newTestRedis(t)
	ctx := context.Background()
	reg, err := NewRedisRegistry(client, time.Minute, WithTTL(2*time.Minute))
	require.NoError(t, err)

	email := uniqueEmail()
	_, err = reg.Issue(ctx, email)
	require.NoError(t, err)
	require.Equal(t, 3*time.Minute, mr.TTL(client.OTPKey(NormalizeEmail(email))))

	mr.FastForward(3*time.Minute + time.Second)
	require.ErrorIs(t, reg.Verify(ctx, email, "000000"), ErrNotFound)
}

func TestRedisRegistryUnknownEmail(t *testing.T) {
	client, _ := newTestRedis(t)
	reg, err := NewRedisRegistry(client, time.Minute)
	require.NoError(t, err)
	require.ErrorIs(t, reg.Verify(context.Background(), uniqueEmail(), "123456"), ErrNotFound)
}

func TestDecodeEntryRejectsGarbage(t *testing.T) {
	_, err := decodeEntry("a@x.com", "no-separator")
	require.Error(t, err)
	_, err = decodeEntry("a@x.com", "123456|soon")
	require.Error(t, err)
}
