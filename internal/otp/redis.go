package otp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	verifyMissing  = 0
	verifyOK       = 1
	verifyExpired  = 2
	verifyMismatch = 3
)

// value layout: "<code>|<expires unix millis>"
var verifyScript = redis.NewScript(`
local raw = redis.call('GET', KEYS[1])
if not raw then
	return 0
end

local sep = string.find(raw, '|', 1, true)
if not sep then
	return 0
end

local code = string.sub(raw, 1, sep - 1)
local expires = tonumber(string.sub(raw, sep + 1))
if tonumber(ARGV[2]) > expires then
	return 2
end
if code ~= ARGV[1] then
	return 3
end

redis.call('DEL', KEYS[1])
return 1
`)

type redisStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	OTPKey(email string) string
	Scripter() redis.Scripter
}

// RedisRegistry shares entries across API replicas. Keys outlive the code by
// a retention grace so late attempts still report ErrExpired.
type RedisRegistry struct {
	store redisStore
	grace time.Duration
	opts  options
}

func NewRedisRegistry(store redisStore, grace time.Duration, opts ...Option) (*RedisRegistry, error) {
	if store == nil {
		return nil, errors.New("redis store is required")
	}
	if store.Scripter() == nil {
		return nil, errors.New("redis store cannot run scripts")
	}
	if grace < 0 {
		grace = 0
	}
	return &RedisRegistry{store: store, grace: grace, opts: buildOptions(opts)}, nil
}

func (r *RedisRegistry) TTL() time.Duration { return r.opts.ttl }

func (r *RedisRegistry) Issue(ctx context.Context, email string) (Entry, error) {
	key := NormalizeEmail(email)
	if key == "" {
		return Entry{}, ErrEmailRequired
	}
	code, err := r.opts.generate()
	if err != nil {
		return Entry{}, err
	}
	entry := Entry{
		Email:     key,
		Code:      code,
		ExpiresAt: r.opts.now().Add(r.opts.ttl),
	}
	if err := r.store.Set(ctx, r.store.OTPKey(key), encodeEntry(entry), r.opts.ttl+r.grace); err != nil {
		return Entry{}, fmt.Errorf("store otp: %w", err)
	}
	return entry, nil
}

func (r *RedisRegistry) Verify(ctx context.Context, email, code string) error {
	key := r.store.OTPKey(NormalizeEmail(email))
	now := r.opts.now().UnixMilli()

	status, err := verifyScript.Run(ctx, r.store.Scripter(), []string{key}, code, now).Int()
	if err != nil {
		return fmt.Errorf("verify otp: %w", err)
	}
	switch status {
	case verifyOK:
		return nil
	case verifyExpired:
		return ErrExpired
	case verifyMismatch:
		return ErrMismatch
	case verifyMissing:
		return ErrNotFound
	default:
		return fmt.Errorf("verify otp: unexpected script status %d", status)
	}
}

func encodeEntry(e Entry) string {
	return e.Code + "|" + strconv.FormatInt(e.ExpiresAt.UnixMilli(), 10)
}

func decodeEntry(email, raw string) (Entry, error) {
	code, expires, ok := strings.Cut(raw, "|")
	if !ok {
		return Entry{}, fmt.Errorf("malformed otp value %q", raw)
	}
	ms, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("malformed otp expiry: %w", err)
	}
	return Entry{Email: email, Code: code, ExpiresAt: time.UnixMilli(ms)}, nil
}
