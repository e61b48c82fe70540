// Package credstore provides per-channel credential storage. Channel senders
// look their credentials up at dispatch time by fixed key, so enabling a
// channel never requires a recompile or restart.
package credstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Fixed credential keys, one per channel kind.
const (
	KeySlackWebhook   = "slack_webhook"
	KeyDiscordWebhook = "discord_webhook"
	KeyTeamsWebhook   = "teams_webhook"
	KeyTelegramBot    = "telegram_bot"
	KeySMTPPassword   = "smtp_password"
	KeyDesktopEnabled = "desktop_enabled"
)

// ErrNotConfigured is returned by helpers when a channel has no stored
// credential. Callers treat it as "skip this channel", not as a failure.
var ErrNotConfigured = errors.New("channel not configured")

// Store is the credential store consumed by the notification dispatcher.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// RedisStore keeps credentials in Redis under a fixed key prefix.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a RedisStore on an established client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "cred:"}
}

func (s *RedisStore) key(k string) string { return s.prefix + k }

// Get returns the credential for key. Absence is not an error.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("credstore get %q: %w", key, err)
	}
	return v, true, nil
}

// Set stores value under key with no expiry.
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("credstore set %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is a no-op.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("credstore delete %q: %w", key, err)
	}
	return nil
}
