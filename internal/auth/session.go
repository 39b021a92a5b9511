package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Identity is the authenticated staff member attached to a request.
type Identity struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// SessionStore issues and resolves session tokens.
type SessionStore interface {
	// Create stores identity under a new token and returns the token.
	Create(ctx context.Context, identity Identity) (string, error)

	// Get resolves a token. It returns (nil, nil) for unknown or expired tokens.
	Get(ctx context.Context, token string) (*Identity, error)

	// Delete removes a token.
	Delete(ctx context.Context, token string) error
}

const sessionKeyPrefix = "session:"

// redisSessionStore implements SessionStore on Redis keys with a TTL.
type redisSessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	newToken func() string
	logger   zerolog.Logger
}

// NewRedisSessionStore creates a Redis-backed session store.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration, logger zerolog.Logger) SessionStore {
	return &redisSessionStore{
		client:   client,
		ttl:      ttl,
		newToken: uuid.NewString,
		logger:   logger.With().Str("component", "session-store").Logger(),
	}
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

// Create stores identity under a new token and returns the token.
func (s *redisSessionStore) Create(ctx context.Context, identity Identity) (string, error) {
	payload, err := json.Marshal(identity)
	if err != nil {
		return "", fmt.Errorf("failed to encode session: %w", err)
	}

	token := s.newToken()
	if err := s.client.Set(ctx, sessionKey(token), string(payload), s.ttl).Err(); err != nil {
		s.logger.Error().Err(err).Str("username", identity.Username).Msg("failed to store session")
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	s.logger.Debug().Str("username", identity.Username).Msg("session created")

	return token, nil
}

// Get resolves a token. It returns (nil, nil) for unknown or expired tokens.
func (s *redisSessionStore) Get(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, nil
	}

	value, err := s.client.Get(ctx, sessionKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load session")
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var identity Identity
	if err := json.Unmarshal([]byte(value), &identity); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	return &identity, nil
}

// Delete removes a token.
func (s *redisSessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		s.logger.Error().Err(err).Msg("failed to delete session")
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFrom returns the identity stored in ctx, if any.
func IdentityFrom(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*Identity)
	return identity, ok && identity != nil
}
